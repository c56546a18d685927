package tasks

import (
	"time"

	"github.com/desertthunder/tdx/internal/models"
)

// Operation names a fetch-and-export category. Values double as export file suffixes,
// except OpTasksByID and OpGroupByID which only label reports.
type Operation string

const (
	OpCompletedTasks   Operation = "completed_tasks"
	OpActiveTasks      Operation = "active_tasks"
	OpActiveProjects   Operation = "active_projects"
	OpArchivedProjects Operation = "archived_projects"
	OpTasksByID        Operation = "tasks_by_id"
	OpGroupByID        Operation = "group_by_id"

	// OpTasks is the file suffix for tasks fetched one id at a time; the
	// grouped copy lands next to it as <...>_tasks_by_id<ext>.
	OpTasks Operation = "tasks"
)

// Status is the outcome of one key within an operation.
type Status string

const (
	StatusSuccess      Status = "success"
	StatusSkipped      Status = "skipped"
	StatusMissingInput Status = "missing_input"
)

// KeyResult records what happened to a single date window, project id or task id.
type KeyResult struct {
	Key     string `json:"key"`
	Status  Status `json:"status"`
	Records int    `json:"records"`          // Records kept for this key, including pages received before a failure
	Reason  string `json:"reason,omitempty"` // Error message for skipped keys
	Err     error  `json:"-"`
}

// Report summarizes one operation.
type Report struct {
	Operation Operation     `json:"operation"`
	Kind      models.Kind   `json:"kind"`
	Results   []KeyResult   `json:"results"`
	Records   int           `json:"records"`             // Records written to the plain export
	Ungrouped int           `json:"ungrouped,omitempty"` // Records left out of the by-id export for lacking an id
	Files     []string      `json:"files"`
	Duration  time.Duration `json:"duration_ns"`
	Error     string        `json:"error,omitempty"`
	Err       error         `json:"-"`
}

func newReport(op Operation, kind models.Kind) *Report {
	return &Report{
		Operation: op,
		Kind:      kind,
		Results:   []KeyResult{},
		Files:     []string{},
	}
}

// record appends the outcome for key. A non-nil err marks the key skipped.
func (r *Report) record(key string, n int, err error) {
	res := KeyResult{Key: key, Status: StatusSuccess, Records: n}
	if err != nil {
		res.Status = StatusSkipped
		res.Reason = err.Error()
		res.Err = err
	}
	r.Results = append(r.Results, res)
}

func (r *Report) missingInput(path string, err error) {
	r.Results = append(r.Results, KeyResult{
		Key:    path,
		Status: StatusMissingInput,
		Reason: err.Error(),
		Err:    err,
	})
}

func (r *Report) fail(err error) {
	r.Err = err
	r.Error = err.Error()
}

// Succeeded counts keys fetched without error.
func (r *Report) Succeeded() int {
	return r.count(StatusSuccess)
}

// Skipped returns the keys that failed.
func (r *Report) Skipped() []KeyResult {
	skipped := []KeyResult{}
	for _, res := range r.Results {
		if res.Status != StatusSuccess {
			skipped = append(skipped, res)
		}
	}
	return skipped
}

// MissingInput reports whether the operation stopped because its input file was absent.
func (r *Report) MissingInput() bool {
	return r.count(StatusMissingInput) > 0
}

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// ManifestVersion is bumped whenever the export file layout changes.
const ManifestVersion = 1

// AccountReport collects the operation reports of one account run. It is written as the export manifest.
type AccountReport struct {
	RunID         string         `json:"run_id"`
	FormatVersion int            `json:"format_version"`
	Account       models.Account `json:"account"`
	Mode          string         `json:"mode"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Reports       []*Report      `json:"reports"`
	ManifestPath  string         `json:"-"`
}

// Records totals the records written across operations.
func (a *AccountReport) Records() int {
	n := 0
	for _, r := range a.Reports {
		n += r.Records
	}
	return n
}

// Skipped totals skipped keys across operations.
func (a *AccountReport) Skipped() int {
	n := 0
	for _, r := range a.Reports {
		n += len(r.Skipped())
	}
	return n
}
