package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
)

// ExportEngine runs fetch-and-export operations sequentially against one account's service.
type ExportEngine struct {
	svc    services.Service
	mode   formatter.Mode
	logger *log.Logger
}

// EngineOpts contains configuration for [NewExportEngine].
type EngineOpts struct {
	Mode   formatter.Mode // Export serialization (default: module)
	Logger *log.Logger
}

// NewExportEngine creates a new ExportEngine for the given service.
func NewExportEngine(svc services.Service, opts EngineOpts) *ExportEngine {
	if opts.Mode == "" {
		opts.Mode = formatter.Module
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &ExportEngine{
		svc:    svc,
		mode:   opts.Mode,
		logger: opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ExportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// GroupByID maps records by their id field. Later records win on duplicate ids.
//
// Records without an id are left out and counted.
func GroupByID(records []models.Record) (map[string]models.Record, int) {
	byID := make(map[string]models.Record, len(records))
	missing := 0
	for _, rec := range records {
		id, ok := rec.ID()
		if !ok {
			missing++
			continue
		}
		byID[id] = rec
	}
	return byID, missing
}

// export writes records to out and, when grouped is set, the id-keyed mapping to its _by_id sibling.
func (e *ExportEngine) export(progress chan<- ProgressUpdate, rep *Report, records []models.Record, out string, grouped bool) {
	if err := formatter.Write(records, formatter.Target{Path: out, Mode: e.mode}); err != nil {
		rep.fail(fmt.Errorf("%w: %v", shared.ErrExportFailed, err))
		e.logger.Error("failed to write export", "operation", rep.Operation, "path", out, "error", err)
		return
	}
	rep.Records = len(records)
	rep.Files = append(rep.Files, out)
	e.logger.Info("wrote export", "operation", rep.Operation, "path", out, "records", len(records))
	e.sendProgress(progress, exportWrittenUpdate(out, len(records)))

	if !grouped {
		return
	}

	byID, missing := GroupByID(records)
	rep.Ungrouped = missing
	if missing > 0 {
		e.logger.Warn("records without id left out of grouped export", "operation", rep.Operation, "count", missing)
	}

	groupedPath := formatter.ByIDPath(out)
	if err := formatter.Write(byID, formatter.Target{Path: groupedPath, Mode: e.mode}); err != nil {
		rep.fail(fmt.Errorf("%w: %v", shared.ErrExportFailed, err))
		e.logger.Error("failed to write grouped export", "operation", rep.Operation, "path", groupedPath, "error", err)
		return
	}
	rep.Files = append(rep.Files, groupedPath)
	e.logger.Info("wrote export", "operation", rep.Operation, "path", groupedPath, "records", len(byID))
	e.sendProgress(progress, exportWrittenUpdate(groupedPath, len(byID)))
}

// skip logs a failed key.
func (e *ExportEngine) skip(progress chan<- ProgressUpdate, phase Phase, step, total int, key string, err error) {
	e.logger.Warn("skipping key", "phase", phase, "key", key, "error", err)
	e.sendProgress(progress, keySkippedUpdate(phase, step, total, key, err))
}

// canceled stops an operation before it writes output for an interrupted run.
func (e *ExportEngine) canceled(ctx context.Context, rep *Report) bool {
	if err := ctx.Err(); err != nil {
		rep.fail(err)
		e.logger.Warn("operation interrupted, export not written", "operation", rep.Operation, "error", err)
		return true
	}
	return false
}

// FetchCompletedTasks fetches completed tasks for every window and writes them with an id-keyed sibling.
//
// A failing window is skipped; records from pages received before the failure are kept.
// The export is written even when every window fails.
func (e *ExportEngine) FetchCompletedTasks(ctx context.Context, progress chan<- ProgressUpdate, windows []models.DateWindow, out string) *Report {
	start := time.Now()
	rep := newReport(OpCompletedTasks, models.KindTask)
	defer func() { rep.Duration = time.Since(start) }()

	all := []models.Record{}
	for i, w := range windows {
		e.sendProgress(progress, fetchWindowUpdate(i+1, len(windows), w))

		recs, err := e.svc.CompletedTasks(ctx, w.Start, w.End)
		all = append(all, recs...)
		rep.record(w.String(), len(recs), err)
		if err != nil {
			e.skip(progress, FetchCompleted, i+1, len(windows), w.String(), err)
			continue
		}
		e.logger.Debug("fetched window", "window", w, "records", len(recs))
	}

	if e.canceled(ctx, rep) {
		return rep
	}

	e.export(progress, rep, all, out, true)
	return rep
}

// fetchList runs a single paginated listing. Output is only written when the listing succeeds.
func (e *ExportEngine) fetchList(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	rep *Report,
	phase Phase,
	list func(context.Context) ([]models.Record, error),
	out string,
	grouped bool,
) *Report {
	start := time.Now()
	defer func() { rep.Duration = time.Since(start) }()

	key := string(rep.Operation)
	e.sendProgress(progress, fetchListUpdate(phase, key))

	recs, err := list(ctx)
	if recs == nil {
		recs = []models.Record{}
	}
	rep.record(key, len(recs), err)
	if err != nil {
		e.skip(progress, phase, 1, 1, key, err)
		e.logger.Warn("export not written", "operation", rep.Operation, "path", out)
		return rep
	}

	if e.canceled(ctx, rep) {
		return rep
	}

	e.export(progress, rep, recs, out, grouped)
	return rep
}

// FetchActiveTasks fetches all active tasks and writes them with an id-keyed sibling.
func (e *ExportEngine) FetchActiveTasks(ctx context.Context, progress chan<- ProgressUpdate, out string) *Report {
	rep := newReport(OpActiveTasks, models.KindTask)
	return e.fetchList(ctx, progress, rep, FetchActiveTasks, e.svc.Tasks, out, true)
}

// FetchActiveProjects fetches all active projects.
func (e *ExportEngine) FetchActiveProjects(ctx context.Context, progress chan<- ProgressUpdate, out string) *Report {
	rep := newReport(OpActiveProjects, models.KindProject)
	return e.fetchList(ctx, progress, rep, FetchActiveProjects, e.svc.Projects, out, false)
}

// fetchEach fetches one record per id, skipping ids that fail.
func (e *ExportEngine) fetchEach(
	ctx context.Context,
	progress chan<- ProgressUpdate,
	rep *Report,
	phase Phase,
	what string,
	ids []string,
	get func(context.Context, string) (models.Record, error),
) []models.Record {
	records := []models.Record{}
	for i, id := range ids {
		e.sendProgress(progress, fetchKeyUpdate(phase, i+1, len(ids), what, id))

		rec, err := get(ctx, id)
		if err != nil {
			rep.record(id, 0, err)
			e.skip(progress, phase, i+1, len(ids), id, err)
			continue
		}
		rep.record(id, 1, nil)
		records = append(records, rec)
	}
	return records
}

// FetchArchivedProjects fetches each configured archived project by id.
//
// The export is written even when the list is empty or every id fails.
func (e *ExportEngine) FetchArchivedProjects(ctx context.Context, progress chan<- ProgressUpdate, ids []string, out string) *Report {
	start := time.Now()
	rep := newReport(OpArchivedProjects, models.KindProject)
	defer func() { rep.Duration = time.Since(start) }()

	projects := e.fetchEach(ctx, progress, rep, FetchArchivedProjects, "project", ids, e.svc.Project)
	if e.canceled(ctx, rep) {
		return rep
	}

	e.export(progress, rep, projects, out, false)
	return rep
}

// FetchTasksFromFile reads task ids from a previous export at in and fetches each task individually.
//
// A missing input file is reported in the result and produces no output.
func (e *ExportEngine) FetchTasksFromFile(ctx context.Context, progress chan<- ProgressUpdate, in, out string) *Report {
	start := time.Now()
	rep := newReport(OpTasksByID, models.KindTask)
	defer func() { rep.Duration = time.Since(start) }()

	ids, err := formatter.ReadIDs(in)
	if err != nil {
		if errors.Is(err, shared.ErrMissingInput) {
			rep.missingInput(in, err)
			e.logger.Warn("input file not found", "path", in)
			return rep
		}
		rep.fail(err)
		e.logger.Error("failed to read task ids", "path", in, "error", err)
		return rep
	}

	e.logger.Info("fetching tasks by id", "path", in, "count", len(ids))
	tasks := e.fetchEach(ctx, progress, rep, FetchTaskByID, "task", ids, e.svc.Task)
	if e.canceled(ctx, rep) {
		return rep
	}

	e.export(progress, rep, tasks, out, true)
	return rep
}

// GroupByIDFromFile reads records from an export at in and writes their id-keyed mapping to out.
//
// out defaults to the _by_id sibling of in. A missing input file is reported and produces no output.
func (e *ExportEngine) GroupByIDFromFile(progress chan<- ProgressUpdate, in, out string) *Report {
	start := time.Now()
	rep := newReport(OpGroupByID, models.KindTask)
	defer func() { rep.Duration = time.Since(start) }()

	if out == "" {
		out = formatter.ByIDPath(in)
	}

	e.sendProgress(progress, groupUpdate(in))
	records, err := formatter.ReadRecords(in)
	if err != nil {
		if errors.Is(err, shared.ErrMissingInput) {
			rep.missingInput(in, err)
			e.logger.Warn("input file not found", "path", in)
			return rep
		}
		rep.fail(err)
		e.logger.Error("failed to read records", "path", in, "error", err)
		return rep
	}

	byID, missing := GroupByID(records)
	rep.record(in, len(records), nil)
	rep.Ungrouped = missing

	if err := formatter.Write(byID, formatter.Target{Path: out, Mode: e.mode}); err != nil {
		rep.fail(fmt.Errorf("%w: %v", shared.ErrExportFailed, err))
		e.logger.Error("failed to write grouped export", "path", out, "error", err)
		return rep
	}

	rep.Records = len(byID)
	rep.Files = append(rep.Files, out)
	e.logger.Info("grouped records by id", "path", out, "records", len(byID), "ungrouped", missing)
	e.sendProgress(progress, exportWrittenUpdate(out, len(byID)))
	return rep
}
