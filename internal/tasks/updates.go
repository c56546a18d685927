package tasks

import (
	"fmt"

	"github.com/desertthunder/tdx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchCompleted Phase = iota
	FetchActiveTasks
	FetchActiveProjects
	FetchArchivedProjects
	FetchTaskByID
	GroupRecords
	WriteExport
)

func (p Phase) String() string {
	switch p {
	case FetchCompleted:
		return "fetch_completed"
	case FetchActiveTasks:
		return "fetch_active_tasks"
	case FetchActiveProjects:
		return "fetch_active_projects"
	case FetchArchivedProjects:
		return "fetch_archived_projects"
	case FetchTaskByID:
		return "fetch_task_by_id"
	case GroupRecords:
		return "group_by_id"
	case WriteExport:
		return "write_export"
	default:
		return ""
	}
}

func fetchWindowUpdate(step, total int, w models.DateWindow) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCompleted,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching tasks completed %s to %s...", step, total, w.Start.Format("2006-01-02"), w.End.Format("2006-01-02")),
		Data:    w,
	}
}

func fetchListUpdate(phase Phase, what string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s...", what),
	}
}

func fetchKeyUpdate(phase Phase, step, total int, what, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching %s %s...", step, total, what, id),
	}
}

func keySkippedUpdate(phase Phase, step, total int, key string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, key, err),
	}
}

func exportWrittenUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteExport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ Wrote %d records to %s", count, path),
		Data:    path,
	}
}

func groupUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   GroupRecords,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Grouping records from %s by id...", path),
	}
}
