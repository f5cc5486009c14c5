package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

func testFrames() []scene.Node {
	ex := func(name string) scene.Node {
		return scene.Node{Name: name, Kind: scene.KindRectangle, Props: scene.Props{Width: 1, Height: 1}}
	}
	return []scene.Node{
		{Name: "1. Button", Kind: scene.KindFrame, Props: scene.Props{Children: []scene.Node{ex("1. A"), ex("2. B")}}},
		{Name: "2. Broken", Kind: scene.KindFrame, Props: scene.Props{Children: []scene.Node{ex("1. A")}}},
		{Name: "3. Card (Primary Only)", Kind: scene.KindFrame, Props: scene.Props{Children: []scene.Node{ex("1. A"), ex("2. B")}}},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m FrameListModel, keys ...string) (FrameListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(FrameListModel)
	}
	return m, cmd
}

func TestFrameListNavigation(t *testing.T) {
	m := NewFrameListModel(testFrames())

	m, _ = press(m, "down", "down", "down")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2 (clamped)", m.Cursor)
	}
	m, _ = press(m, "k")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}
}

func TestFrameListSelect(t *testing.T) {
	m := NewFrameListModel(testFrames())

	m, cmd := press(m, "down", "enter")
	if m.Selected != nil || cmd != nil {
		t.Error("a frame without two examples must not be selectable")
	}

	m, cmd = press(m, "j", "enter")
	if m.Selected == nil || m.Selected.Name != "3. Card (Primary Only)" {
		t.Fatalf("Selected = %+v", m.Selected)
	}
	if cmd == nil {
		t.Error("selecting should quit")
	}
}

func TestFrameListQuit(t *testing.T) {
	m, cmd := press(NewFrameListModel(testFrames()), "q")
	if m.Selected != nil || cmd == nil {
		t.Error("q should quit without a selection")
	}
}

func TestFrameListJumpAndScroll(t *testing.T) {
	m := NewFrameListModel(testFrames())
	m.Height = 2

	m, _ = press(m, "G")
	if m.Cursor != 2 || m.Offset != 1 {
		t.Errorf("after G: Cursor = %d, Offset = %d; want 2, 1", m.Cursor, m.Offset)
	}
	m, _ = press(m, "g")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("after g: Cursor = %d, Offset = %d; want 0, 0", m.Cursor, m.Offset)
	}
	if rows := m.visible(); len(rows) != 2 || rows[0][0] != "▸ " {
		t.Errorf("visible = %q", rows)
	}
}

func TestFrameListEmpty(t *testing.T) {
	m, cmd := press(NewFrameListModel(nil), "down", "enter")
	if m.Cursor != 0 || m.Selected != nil || cmd != nil {
		t.Errorf("empty list: Cursor = %d, Selected = %v", m.Cursor, m.Selected)
	}
}

func TestFrameListView(t *testing.T) {
	view := NewFrameListModel(testFrames()).View()
	for _, want := range []string{"Training frames", "1. Button", "2. Broken", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFramePreview(t *testing.T) {
	frames := testFrames()

	got := framePreview(frames[0])
	if !strings.Contains(got, "primary:") || !strings.Contains(got, "A") || !strings.Contains(got, "B") {
		t.Errorf("preview of usable frame = %q", got)
	}
	if got := framePreview(frames[1]); !strings.Contains(got, "exactly 2 examples") {
		t.Errorf("preview of broken frame = %q", got)
	}
}
