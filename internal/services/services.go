// package services defines interface Service for interacting with the Todoist HTTP API
package services

import (
	"context"
	"time"

	"github.com/desertthunder/tdx/internal/models"
)

// Service defines the remote operations the exporter needs from a task tracker.
//
// List operations drain every page before returning. When a page fails mid-way the records
// received so far are returned together with the error.
type Service interface {
	// Projects retrieves all active projects.
	Projects(ctx context.Context) ([]models.Record, error)

	// Project retrieves a single project by ID, archived or not.
	Project(ctx context.Context, projectID string) (models.Record, error)

	// Tasks retrieves all active tasks.
	Tasks(ctx context.Context) ([]models.Record, error)

	// Task retrieves a single task by ID.
	Task(ctx context.Context, taskID string) (models.Record, error)

	// CompletedTasks retrieves tasks completed between since and until.
	CompletedTasks(ctx context.Context, since, until time.Time) ([]models.Record, error)

	// Name returns the name of the service (e.g., "Todoist")
	Name() string
}
