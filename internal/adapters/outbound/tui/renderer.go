package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/buildgate/internal/domain"
)

// ── warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	outcomeColors = map[domain.Outcome]lipgloss.Color{
		domain.OutcomePassed:      success,
		domain.OutcomeGateFailed:  danger,
		domain.OutcomeTestsFailed: lipgloss.Color("#FB923C"), // orange
		domain.OutcomeError:       danger,
		domain.OutcomeAborted:     skipColor,
	}

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderPlan formats the configured module policies of a workspace.
func RenderPlan(ws domain.WorkspaceConfig, policies []domain.ModulePolicy, gate domain.QualityGatePolicy, cov domain.CoverageReportPolicy) string {
	var b strings.Builder

	title := headerStyle.Render("buildgate")
	coords := titleStyle.Render(ws.GroupID + " " + ws.Version)
	channel := channelTag(ws.Channel())
	b.WriteString(boxStyle.Render(title + "\n\n" + coords + "  " + channel))
	b.WriteString("\n\n")

	if len(policies) == 0 {
		b.WriteString("  " + dimStyle.Render("No buildable modules found.") + "\n")
		return b.String()
	}

	for i, p := range policies {
		fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render(padRight(p.Module, 20)), dimStyle.Render(p.Coordinates.String()))
		fmt.Fprintf(&b, "    %s %s -> %s\n", faintStyle.Render(padRight("java", 12)), p.SourceLevel, p.TargetLevel)
		for _, t := range p.CompileTasks {
			fmt.Fprintf(&b, "    %s %s\n", faintStyle.Render(padRight(t.Name, 12)), dimStyle.Render(strings.Join(t.Args, " ")))
		}
		caps := make([]string, 0, len(p.Capabilities))
		for _, c := range p.Capabilities.Sorted() {
			caps = append(caps, string(c))
		}
		fmt.Fprintf(&b, "    %s %s\n", faintStyle.Render(padRight("plugins", 12)), dimStyle.Render(strings.Join(caps, ", ")))
		for _, bd := range p.Bundles {
			fmt.Fprintf(&b, "    %s %s\n", faintStyle.Render(padRight(bd.Classifier, 12)), fileStyle.Render(shortenPath(bd.Output)))
		}
		if i < len(policies)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n  " + separatorLine + "\n\n")

	checks := make([]string, 0, len(gate.Checks))
	for _, c := range gate.Checks {
		checks = append(checks, string(c))
	}
	if len(checks) == 0 {
		checks = append(checks, "none")
	}
	fmt.Fprintf(&b, "  %s %s\n", sectionStyle.Render(padRight("gates", 10)), strings.Join(checks, " → "))
	formats := make([]string, 0, 2)
	for _, f := range cov.Enabled() {
		formats = append(formats, string(f))
	}
	fmt.Fprintf(&b, "  %s %s  %s\n", sectionStyle.Render(padRight("report", 10)), strings.Join(formats, ", "), fileStyle.Render(cov.OutputDir))
	b.WriteString("\n")
	return b.String()
}

func channelTag(c domain.Channel) string {
	if c == domain.ChannelSnapshot {
		return warnTagStyle.Render(string(c))
	}
	return passStyle.Bold(true).Render(string(c))
}

func severityTag(severity string) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func countSeverities(vs []domain.Violation) (errors, warnings, infos int) {
	for _, v := range vs {
		switch v.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return
}

func outcomeColor(o domain.Outcome) lipgloss.Color {
	if c, ok := outcomeColors[o]; ok {
		return c
	}
	return fg
}

func shortenPath(path string) string {
	if idx := strings.Index(path, "src/"); idx >= 0 {
		return path[idx:]
	}
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats run history for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for _, e := range entries {
		hash := e.Commit
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}

		passed := 0
		for _, o := range e.Outcomes {
			if o == domain.OutcomePassed {
				passed++
			}
		}
		status := passStyle.Render(fmt.Sprintf("%d/%d passed", passed, len(e.Outcomes)))
		if passed < len(e.Outcomes) {
			status = failStyle.Render(fmt.Sprintf("%d/%d passed", passed, len(e.Outcomes)))
		}

		line := fmt.Sprintf("  %s  %s  %s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02 15:04")),
			faintStyle.Render(hash),
			padRight(e.Version, 16),
			status,
		)
		if e.CI {
			line += "  " + infoTagStyle.Render("ci")
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
