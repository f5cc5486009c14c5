package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/scenedsl/pkg/core/diff"
	"github.com/matzehuels/scenedsl/pkg/errors"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Exported styles, shared with the frame picker.
var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(14)

	// Patch operations, colored like a unified diff.
	styleOpSet     = lipgloss.NewStyle().Foreground(colorGreen)
	styleOpDelete  = lipgloss.NewStyle().Foreground(colorRed)
	styleOpReplace = lipgloss.NewStyle().Foreground(colorYellow)
)

// statusOut receives every status line. Converted data never goes here.
var statusOut io.Writer = os.Stderr

// =============================================================================
// Status Lines
// =============================================================================

func status(icon string, style lipgloss.Style, format string, args []any) {
	fmt.Fprintln(statusOut, style.Render(icon)+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) {
	status("✓", lipgloss.NewStyle().Foreground(colorGreen), format, args)
}

func printWarning(format string, args ...any) {
	status("!", StyleWarning, format, args)
}

func printInfo(format string, args ...any) {
	status("›", lipgloss.NewStyle().Foreground(colorGray), format, args)
}

// PrintError reports err on the status stream, followed by its error code
// when it has one.
func PrintError(err error) {
	msg := errors.UserMessage(err)
	if code := errors.GetCode(err); code != "" {
		msg += " " + StyleDim.Render("["+string(code)+"]")
	}
	status("✗", StyleError, "%s", []any{msg})
}

func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile reports a written output file.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render("→")+" "+StyleValue.Render(path))
}

func printNextStep(description, cmd string) {
	fmt.Fprintln(statusOut, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printKeyValue writes an aligned "key value" line to w. Unlike the status
// lines it is command output.
func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Scene and Patch Summaries
// =============================================================================

func printStats(roots, nodes int) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf("%d roots · %d nodes", roots, nodes)))
}

// formatSummary renders a patch summary: a count line followed by one line
// per touched path.
func formatSummary(s diff.Summary) string {
	if len(s.Paths) == 0 {
		return StyleDim.Render("no changes") + "\n"
	}

	sep := StyleDim.Render(" · ")
	var b strings.Builder
	b.WriteString(styleOpSet.Render(fmt.Sprintf("%d set", s.Set)) + sep +
		styleOpDelete.Render(fmt.Sprintf("%d deleted", s.Deleted)) + sep +
		styleOpReplace.Render(fmt.Sprintf("%d replaced", s.Replaced)) + "\n")
	for _, p := range s.Paths {
		b.WriteString("  " + StyleDim.Render("→") + " " + StyleValue.Render(p) + "\n")
	}
	return b.String()
}
