package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/gaurav-prasanna/mdrepair/core"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	stageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Width(10)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// stageNouns names what each stage counts.
var stageNouns = map[string]string{
	core.StageEntities: "entities fixed",
	core.StageImages:   "images repaired",
	core.StageLinks:    "links fixed",
	core.StageAssets:   "references rewritten",
}

// TextRenderer prints the human-readable summary.
type TextRenderer struct{}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render lays out one line per stage followed by the asset totals.
func (r *TextRenderer) Render(summary core.Summary) ([]byte, error) {
	var b strings.Builder
	title := "Summary"
	if isDryRun(summary) {
		title += " (dry run)"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	for _, s := range summary.Stages {
		noun := stageNouns[s.Stage]
		if noun == "" {
			noun = "changes"
		}
		line := fmt.Sprintf("%d %s in %d of %d documents", s.Count, noun, s.Changed, s.Scanned)
		if s.Cancelled {
			line += mutedStyle.Render(" (cancelled)")
		}
		if n := len(s.Failures); n > 0 {
			line += errorStyle.Render(fmt.Sprintf(", %d failed", n))
		}
		if n := len(s.Warnings); n > 0 {
			line += mutedStyle.Render(fmt.Sprintf(", %d warnings", n))
		}
		fmt.Fprintf(&b, "  %s %s\n", stageStyle.Render(s.Stage), line)
	}

	if a := summary.Assets; a != nil {
		fmt.Fprintf(&b, "  %s %d duplicates removed, %d unused removed, %s reclaimed\n",
			stageStyle.Render("deleted"), a.DuplicatesRemoved, a.UnusedRemoved,
			humanize.Bytes(uint64(a.BytesReclaimed)))
		if a.PendingDeletion > 0 {
			fmt.Fprintf(&b, "  %s %s\n", stageStyle.Render("pending"), mutedStyle.Render(
				fmt.Sprintf("%d files (%s) awaiting confirmation", a.PendingDeletion,
					humanize.Bytes(uint64(a.PendingBytes)))))
		}
		if n := len(a.DeleteFailures); n > 0 {
			fmt.Fprintf(&b, "  %s %s\n", stageStyle.Render("errors"),
				errorStyle.Render(fmt.Sprintf("%d deletions failed", n)))
		}
	}
	return []byte(b.String()), nil
}

func isDryRun(summary core.Summary) bool {
	for _, s := range summary.Stages {
		if s.DryRun {
			return true
		}
	}
	return false
}
