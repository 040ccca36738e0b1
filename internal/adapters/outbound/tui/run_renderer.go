package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/buildgate/internal/domain"
)

var stageOrder = []domain.Stage{
	domain.StageLintChecked,
	domain.StageAutoFixed,
	domain.StageLicenseVerified,
	domain.StageReadyForTest,
	domain.StageTestRun,
	domain.StageReportGenerated,
}

// RenderRun renders the summary of a pipeline run.
func RenderRun(s *domain.RunSummary) string {
	var b strings.Builder

	passed := 0
	for _, m := range s.Modules {
		if m.Outcome == domain.OutcomePassed {
			passed++
		}
	}
	statusColor := success
	if passed < len(s.Modules) {
		statusColor = danger
	}
	title := headerStyle.Render("buildgate run")
	status := lipgloss.NewStyle().Bold(true).Foreground(statusColor).
		Render(fmt.Sprintf("%d / %d modules passed", passed, len(s.Modules)))
	mode := "local"
	if s.CI {
		mode = "ci"
	}
	meta := dimStyle.Render(fmt.Sprintf("%s  ·  %s  ·  %s", s.Workspace.Version, mode, s.Duration.Round(time.Millisecond)))

	b.WriteString(boxStyle.Render(title + "\n\n" + status + "\n" + meta))
	b.WriteString("\n\n")

	for i, m := range s.Modules {
		renderModule(&b, m)
		if i < len(s.Modules)-1 {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func renderModule(b *strings.Builder, m domain.ModuleResult) {
	outcome := lipgloss.NewStyle().Bold(true).Foreground(outcomeColor(m.Outcome)).Render(string(m.Outcome))
	fmt.Fprintf(b, "  %s %s\n", titleStyle.Render(padRight(m.Module, 20)), outcome)

	fmt.Fprintf(b, "    %s\n", renderStages(m.Stages))

	if m.FailedAt != "" {
		fmt.Fprintf(b, "    %s %s\n", failStyle.Render("✗"), dimStyle.Render("failed at "+string(m.FailedAt)))
	}
	for _, f := range m.Fixed {
		fmt.Fprintf(b, "    %s %s\n", warnStyle.Render("✎"), fileStyle.Render(shortenPath(f)))
	}
	renderViolationList(b, m.Violations, 6)

	if m.Tests != nil {
		p, f, sk := m.Tests.Counts()
		line := fmt.Sprintf("%d passed  %d failed  %d skipped", p, f, sk)
		style := passStyle
		if m.Tests.Failed() {
			style = failStyle
		}
		fmt.Fprintf(b, "    %s %s\n", faintStyle.Render(padRight("tests", 8)), style.Render(line))
		for _, c := range m.Tests.Cases {
			if c.Status == domain.TestFailed {
				fmt.Fprintf(b, "      %s %s.%s  %s\n", failStyle.Render("●"), c.Suite, c.Name, faintStyle.Render(c.Message))
			}
		}
	}
	if m.Report != nil {
		for _, c := range m.Report.Counters {
			if c.Type == "LINE" || c.Type == "BRANCH" {
				fmt.Fprintf(b, "    %s %.1f%%\n", faintStyle.Render(padRight(strings.ToLower(c.Type), 8)), c.Ratio()*100)
			}
		}
		for _, f := range m.Report.Files {
			fmt.Fprintf(b, "    %s %s\n", faintStyle.Render(padRight("report", 8)), fileStyle.Render(f))
		}
	}
	if m.Error != "" {
		fmt.Fprintf(b, "    %s %s\n", errorTagStyle.Render("error"), dimStyle.Render(m.Error))
	}
}

func renderStages(visited []domain.Stage) string {
	seen := make(map[domain.Stage]bool, len(visited))
	for _, s := range visited {
		seen[s] = true
	}
	parts := make([]string, 0, len(stageOrder))
	for _, s := range stageOrder {
		switch {
		case seen[s]:
			parts = append(parts, passStyle.Render("●")+" "+dimStyle.Render(string(s)))
		case s == domain.StageAutoFixed:
			// only shown when it happened
		default:
			parts = append(parts, skipStyle.Render("○")+" "+skipStyle.Render(string(s)))
		}
	}
	return strings.Join(parts, "  ")
}

// RenderViolations renders findings of a check or license run.
func RenderViolations(title string, vs []domain.Violation) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(vs) == 0 {
		fmt.Fprintf(&b, "  %s  %s\n\n", titleStyle.Render(title), passStyle.Render("No violations found."))
		return b.String()
	}

	errs, warns, infos := countSeverities(vs)
	b.WriteString("  " + titleStyle.Render(title) + "  ")
	if errs > 0 {
		b.WriteString(errorTagStyle.Render(fmt.Sprintf("%d errors", errs)) + "  ")
	}
	if warns > 0 {
		b.WriteString(warnTagStyle.Render(fmt.Sprintf("%d warnings", warns)) + "  ")
	}
	if infos > 0 {
		b.WriteString(infoTagStyle.Render(fmt.Sprintf("%d info", infos)))
	}
	b.WriteString("\n\n")
	renderViolationList(&b, vs, 0)
	b.WriteString("\n")
	return b.String()
}

// renderViolationList writes at most limit findings; limit 0 means all.
func renderViolationList(b *strings.Builder, vs []domain.Violation, limit int) {
	for i, v := range vs {
		if limit > 0 && i == limit {
			fmt.Fprintf(b, "    %s\n", faintStyle.Render(fmt.Sprintf("… and %d more", len(vs)-limit)))
			return
		}
		loc := shortenPath(v.File)
		if v.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, v.Line)
		}
		fmt.Fprintf(b, "    %s %s\n", severityTag(v.Severity), fileStyle.Render(loc))
		msg := v.Message
		if v.Rule != "" {
			msg += " [" + v.Rule + "]"
		}
		fmt.Fprintf(b, "         %s\n", dimStyle.Render(msg))
	}
}
