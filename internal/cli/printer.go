package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/AtRiskMedia/edify/internal/application/services"
	"github.com/AtRiskMedia/edify/internal/domain/entities/content"
)

const barWidth = 20

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true)

	colorStyles = map[content.RoadmapColor]lipgloss.Style{
		content.ColorPrimary:   lipgloss.NewStyle().Foreground(lipgloss.Color("#2563eb")),
		content.ColorAccent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316")),
		content.ColorHighlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")),
	}
)

// printer renders progress for the terminal.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

// Bar draws a fixed-width progress bar for percentage.
func Bar(percentage int) string {
	filled := percentage * barWidth / 100
	filled = max(0, min(filled, barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func (p *printer) bar(color content.RoadmapColor, percentage int) string {
	style, ok := colorStyles[color]
	if !ok {
		style = colorStyles[content.ColorPrimary]
	}
	return style.Render(Bar(percentage))
}

// RoadmapLine prints one roadmap with its overall progress.
func (p *printer) RoadmapLine(roadmap *content.Roadmap, summary *services.RoadmapSummary) {
	fmt.Fprintf(p.w, "%s %s %s\n",
		roadmap.Icon,
		titleStyle.Render(roadmap.Title),
		mutedStyle.Render("("+roadmap.ID+")"))
	fmt.Fprintf(p.w, "   %s %3d%%  %d/%d steps\n",
		p.bar(roadmap.Color, summary.Percentage),
		summary.Percentage,
		summary.CompletedSteps,
		summary.TotalSteps)
}

// RoadmapDetail prints every phase and step of a roadmap.
func (p *printer) RoadmapDetail(roadmap *content.Roadmap, summary *services.RoadmapSummary) {
	p.RoadmapLine(roadmap, summary)
	if summary.LastActivityAt != nil {
		fmt.Fprintln(p.w, mutedStyle.Render("   last activity "+summary.LastActivityAt.Local().Format("2006-01-02 15:04")))
	}
	for pi, phase := range roadmap.Phases {
		ps := summary.Phases[pi]
		fmt.Fprintf(p.w, "\n  %s %s\n", titleStyle.Render(fmt.Sprintf("Phase %d: %s", pi+1, phase.Name)), mutedStyle.Render(fmt.Sprintf("%d%%", ps.Percentage)))
		for si, step := range phase.Steps {
			mark := mutedStyle.Render("[ ]")
			if ps.Steps[si] {
				mark = doneStyle.Render("[x]")
			}
			fmt.Fprintf(p.w, "    %s %d.%d %s\n", mark, pi, si, step.Title)
		}
	}
}

// StepState reports the outcome of a toggle.
func (p *printer) StepState(state *services.StepState) {
	label := "not complete"
	if state.Completed {
		label = doneStyle.Render("complete")
	}
	fmt.Fprintf(p.w, "%s phase %d step %d is now %s\n", state.RoadmapID, state.PhaseIndex, state.StepIndex, label)
}
