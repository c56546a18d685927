package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tdx/internal/tasks"
)

// RenderAccountReport formats an account run as a styled summary.
func RenderAccountReport(r *tasks.AccountReport) string {
	if r == nil {
		return styles.error.Render("No export result available")
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Todoist export: %s", r.Account)))
	b.WriteString("\n")

	for _, rep := range r.Reports {
		b.WriteString(renderOperation(rep))
	}

	elapsed := r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond)
	summary := fmt.Sprintf("%d records written, %d keys skipped in %s", r.Records(), r.Skipped(), elapsed)
	if r.Skipped() > 0 {
		b.WriteString("\n" + styles.warning.Render(summary))
	} else {
		b.WriteString("\n" + styles.success.Render(summary))
	}

	if r.ManifestPath != "" {
		b.WriteString("\n" + styles.muted.Render("Manifest: "+r.ManifestPath))
	}
	return b.String()
}

// RenderReport formats a single operation report.
func RenderReport(rep *tasks.Report) string {
	if rep == nil {
		return styles.error.Render("No export result available")
	}
	return strings.TrimSuffix(renderOperation(rep), "\n")
}

func renderOperation(rep *tasks.Report) string {
	var b strings.Builder

	switch {
	case rep.Err != nil:
		b.WriteString(styles.error.Render(fmt.Sprintf("✗ %s: %v", rep.Operation, rep.Err)))
	case rep.MissingInput():
		b.WriteString(styles.warning.Render(fmt.Sprintf("- %s: input file not found, nothing written", rep.Operation)))
	case len(rep.Files) == 0:
		b.WriteString(styles.warning.Render(fmt.Sprintf("- %s: nothing written", rep.Operation)))
	default:
		line := fmt.Sprintf("✓ %s: %d records (%d/%d keys)", rep.Operation, rep.Records, rep.Succeeded(), len(rep.Results))
		b.WriteString(styles.success.Render(line))
	}
	b.WriteString("\n")

	for _, f := range rep.Files {
		b.WriteString(styles.muted.Render("    " + f))
		b.WriteString("\n")
	}

	if rep.Ungrouped > 0 {
		b.WriteString(styles.warning.Render(fmt.Sprintf("    %d records without id left out of the grouped file", rep.Ungrouped)))
		b.WriteString("\n")
	}

	for _, res := range rep.Skipped() {
		if res.Status == tasks.StatusMissingInput {
			continue
		}
		b.WriteString(styles.warning.Render(fmt.Sprintf("  • %s: %s", res.Key, res.Reason)))
		b.WriteString("\n")
	}
	return b.String()
}
