package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/openkraft/buildgate/internal/domain"
)

// RenderPublicationPlan renders what a publish would upload.
func RenderPublicationPlan(plans []domain.PublicationPlan) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(plans) == 0 {
		b.WriteString("  " + dimStyle.Render("Nothing to publish.") + "\n")
		return b.String()
	}

	p := plans[0].Policy
	fmt.Fprintf(&b, "  %s %s  %s\n", titleStyle.Render("Publish to"), sectionStyle.Render(p.RepositoryName), channelTag(p.Channel))
	fmt.Fprintf(&b, "  %s\n", fileStyle.Render(p.DestinationURL))
	auth := "anonymous"
	if p.Credentials != nil {
		auth = "as " + p.Credentials.Username
	}
	fmt.Fprintf(&b, "  %s\n\n", dimStyle.Render(auth))

	for _, plan := range plans {
		fmt.Fprintf(&b, "  %s\n", titleStyle.Render(plan.Module))
		for _, t := range plan.Targets {
			fmt.Fprintf(&b, "    %s %s\n", faintStyle.Render("↑"), dimStyle.Render(t))
		}
	}
	b.WriteString("\n")
	return b.String()
}

// RenderPublishResults renders the per-module outcome of a publish.
func RenderPublishResults(results []domain.PublishResult) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(&b, "  %s %s %s\n", failStyle.Render("✗"), titleStyle.Render(padRight(r.Module, 20)), channelTag(r.Channel))
			fmt.Fprintf(&b, "      %s\n", dimStyle.Render(r.Error))
			continue
		}
		fmt.Fprintf(&b, "  %s %s %s  %s\n", passStyle.Render("✓"), titleStyle.Render(padRight(r.Module, 20)), channelTag(r.Channel),
			dimStyle.Render(fmt.Sprintf("%d files", len(r.Uploaded))))
	}
	b.WriteString("\n")
	return b.String()
}

// RenderBundles lists the archives written by the bundle step.
func RenderBundles(results []domain.BundleResult) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(results) == 0 {
		b.WriteString("  " + dimStyle.Render("No bundles written.") + "\n")
		return b.String()
	}
	for _, r := range results {
		fmt.Fprintf(&b, "  %s %s %s  %s\n",
			passStyle.Render("●"),
			titleStyle.Render(padRight(r.Module, 16)),
			padRight(r.Classifier, 8),
			dimStyle.Render(fmt.Sprintf("%s  %s", humanize.Bytes(uint64(r.Size)), shortenPath(r.Path))))
	}
	b.WriteString("\n")
	return b.String()
}
