package tree

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/scenedsl/pkg/core/color"
	"github.com/matzehuels/scenedsl/pkg/core/scene"
)

var (
	styleName      = lipgloss.NewStyle().Bold(true)
	styleContainer = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleLeaf      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleBranch    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleWarn      = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const (
	branchMid  = "├─ "
	branchLast = "└─ "
	pipeMid    = "│  "
	pipeLast   = "   "
)

// Outline renders s as an indented text tree, one node per line.
func Outline(s scene.Scene, opts Options) string {
	var b strings.Builder
	for i, n := range s.Nodes {
		writeOutline(&b, n, "", i == len(s.Nodes)-1, opts)
	}
	return b.String()
}

func writeOutline(b *strings.Builder, n scene.Node, prefix string, last bool, opts Options) {
	branch, pipe := branchMid, pipeMid
	if last {
		branch, pipe = branchLast, pipeLast
	}
	b.WriteString(styleBranch.Render(prefix + branch))
	b.WriteString(outlineLabel(n, opts))
	b.WriteByte('\n')

	for i, c := range n.Props.Children {
		writeOutline(b, c, prefix+pipe, i == len(n.Props.Children)-1, opts)
	}
}

func outlineLabel(n scene.Node, opts Options) string {
	kind := styleLeaf.Render(string(n.Kind))
	if n.Kind.IsContainer() {
		kind = styleContainer.Render(string(n.Kind))
	}
	parts := []string{styleName.Render(n.Name), kind}

	if opts.Detailed && !n.Kind.IsContainer() {
		p := n.Props
		parts = append(parts, styleLeaf.Render(fmt.Sprintf("%g,%g %g×%g", p.Position.X, p.Position.Y, p.Width, p.Height)))
		if p.Color != nil {
			hex := color.Encode(*p.Color)
			swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
			parts = append(parts, swatch+" "+styleLeaf.Render(hex))
		}
	}
	if !n.Kind.IsContainer() && n.HasChildren() {
		parts = append(parts, styleWarn.Render("(leaf with children)"))
	}
	return strings.Join(parts, "  ")
}
