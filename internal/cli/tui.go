package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
	"github.com/matzehuels/scenedsl/pkg/errors"
	"github.com/matzehuels/scenedsl/pkg/prompt"
)

// FrameListModel is the bubbletea model for picking one training frame.
// Frames without exactly two examples are shown but cannot be selected.
type FrameListModel struct {
	Frames   []scene.Node
	Cursor   int
	Selected *scene.Node
	Height   int
	Offset   int
}

// NewFrameListModel creates a new frame list model.
func NewFrameListModel(frames []scene.Node) FrameListModel {
	return FrameListModel{Frames: frames, Height: 15}
}

func (m FrameListModel) Init() tea.Cmd { return nil }

// move shifts the cursor by delta, clamped to the list, and scrolls the
// window so the cursor stays visible.
func (m *FrameListModel) move(delta int) {
	if len(m.Frames) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Frames)-1)
	switch {
	case m.Cursor < m.Offset:
		m.Offset = m.Cursor
	case m.Cursor >= m.Offset+m.Height:
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m FrameListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Frames))
		case "end", "G":
			m.move(len(m.Frames))
		case "enter":
			if len(m.Frames) > 0 && usableFrame(m.Frames[m.Cursor]) {
				f := m.Frames[m.Cursor]
				m.Selected = &f
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// visible returns the table rows for the frames in the scroll window.
func (m FrameListModel) visible() [][]string {
	end := min(m.Offset+m.Height, len(m.Frames))
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		f := m.Frames[i]
		marker := "  "
		if i == m.Cursor {
			marker = "▸ "
		}
		edit := "✓"
		if strings.Contains(f.Name, prompt.PrimaryOnly) {
			edit = ""
		}
		rows = append(rows, []string{marker, f.Name, strconv.Itoa(len(f.Props.Children)), edit})
	}
	return rows
}

// cellStyle dims unusable frames and bolds the cursor row. Row -1 is the
// header.
func (m FrameListModel) cellStyle(row, col int) lipgloss.Style {
	style := lipgloss.NewStyle()
	if row == -1 {
		return style.Foreground(colorGray).Bold(true)
	}
	i := m.Offset + row
	if i >= len(m.Frames) {
		return style
	}
	switch {
	case !usableFrame(m.Frames[i]):
		style = style.Foreground(colorDim)
	case col < 2:
		style = style.Foreground(colorGreen)
	}
	return style.Bold(i == m.Cursor)
}

func (m FrameListModel) View() string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Frame", "Examples", "Edit").
		Rows(m.visible()...).
		StyleFunc(m.cellStyle)

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Training frames") + "\n")
	b.WriteString(StyleDim.Render("↑/↓ move  g/G first/last  ⏎ select  q quit") + "\n\n")
	b.WriteString(t.Render() + "\n")
	if m.Cursor < len(m.Frames) {
		b.WriteString(framePreview(m.Frames[m.Cursor]))
	}
	fmt.Fprintf(&b, "\n%s", StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Frames))))
	return b.String()
}

// framePreview shows the request labels the prompt entry of f would use, or
// why f cannot be used.
func framePreview(f scene.Node) string {
	before, after, err := prompt.Examples(f)
	if err != nil {
		return "  " + StyleWarning.Render(errors.UserMessage(err)) + "\n"
	}
	return fmt.Sprintf("  %s %s\n  %s %s\n",
		StyleDim.Render("primary:"), StyleValue.Render(prompt.Label(before.Name)),
		StyleDim.Render("edit:   "), StyleValue.Render(prompt.Label(after.Name)))
}

// usableFrame reports whether f holds the two examples a prompt entry needs.
func usableFrame(f scene.Node) bool {
	_, _, err := prompt.Examples(f)
	return err == nil
}
