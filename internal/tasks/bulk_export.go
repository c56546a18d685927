package tasks

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
)

// ManifestName is the file written next to each account's exports.
const ManifestName = "export_manifest.json"

// AccountPlan contains everything a run needs for one account.
type AccountPlan struct {
	Account            models.Account
	Windows            []models.DateWindow
	ArchivedProjectIDs []string
	OutputDir          string // Base output directory; exports go to OutputDir/<account>
	Prefix             string // File name prefix (default: api_v1_todoist_all)
	Extension          string // File extension (default: .ts for module mode, .json for json mode)
	Mode               formatter.Mode
}

func (p *AccountPlan) defaults() {
	if p.OutputDir == "" {
		p.OutputDir = "data"
	}
	if p.Prefix == "" {
		p.Prefix = "api_v1_todoist_all"
	}
	if p.Mode == "" {
		p.Mode = formatter.Module
	}
	if p.Extension == "" {
		p.Extension = ".ts"
		if p.Mode == formatter.JSON {
			p.Extension = ".json"
		}
	}
}

// AccountDir returns the directory holding an account's exports.
func AccountDir(dir string, account models.Account) string {
	return filepath.Join(dir, account.String())
}

// ExportPath builds <dir>/<account>/<prefix>_<account>_<category><ext>.
func ExportPath(dir, prefix string, account models.Account, op Operation, ext string) string {
	name := fmt.Sprintf("%s_%s_%s%s", prefix, account, op, ext)
	return filepath.Join(AccountDir(dir, account), name)
}

// ManifestPath returns the manifest location for an account.
func ManifestPath(dir string, account models.Account) string {
	return filepath.Join(AccountDir(dir, account), ManifestName)
}

// Path returns the export path of op under the plan's layout.
func (p AccountPlan) Path(op Operation) string {
	p.defaults()
	return ExportPath(p.OutputDir, p.Prefix, p.Account, op, p.Extension)
}

// RunAccount fetches completed tasks, active tasks, active projects and archived projects for one account,
// in that order, then writes the manifest.
//
// Per-key failures are recorded in the returned report and never stop the run.
// The only errors returned are an interrupted context, which leaves any existing manifest untouched,
// and a failure to write the manifest. The report is returned in both cases.
func (e *ExportEngine) RunAccount(ctx context.Context, prog chan<- ProgressUpdate, plan AccountPlan) (*AccountReport, error) {
	plan.defaults()

	engine := &ExportEngine{
		svc:    e.svc,
		mode:   plan.Mode,
		logger: shared.WithLogger(e.logger, "account", plan.Account),
	}

	report := &AccountReport{
		RunID:         shared.GenerateID(),
		FormatVersion: ManifestVersion,
		Account:       plan.Account,
		Mode:          string(plan.Mode),
		StartedAt:     time.Now(),
		Reports:       make([]*Report, 0, 4),
	}

	engine.logger.Info("starting export", "run_id", report.RunID, "windows", len(plan.Windows), "archived_projects", len(plan.ArchivedProjectIDs))

	report.Reports = append(report.Reports,
		engine.FetchCompletedTasks(ctx, prog, plan.Windows, plan.Path(OpCompletedTasks)),
		engine.FetchActiveTasks(ctx, prog, plan.Path(OpActiveTasks)),
		engine.FetchActiveProjects(ctx, prog, plan.Path(OpActiveProjects)),
		engine.FetchArchivedProjects(ctx, prog, plan.ArchivedProjectIDs, plan.Path(OpArchivedProjects)),
	)
	report.FinishedAt = time.Now()

	engine.logger.Info("export finished",
		"records", report.Records(),
		"skipped", report.Skipped(),
		"duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		engine.logger.Warn("export interrupted, manifest not written", "error", err)
		return report, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := ManifestPath(plan.OutputDir, plan.Account)
	if err := formatter.WriteManifest(report, manifestPath); err != nil {
		return report, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	report.ManifestPath = manifestPath
	return report, nil
}
