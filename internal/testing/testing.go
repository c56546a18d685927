// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/tdx/internal/models"
)

// MockService is a test double for services.Service.
//
// Single-item lookups are served from Projects/Tasks maps keyed by id; ids listed in Fail return an error.
type MockService struct {
	ActiveProjects []models.Record
	ActiveTasks    []models.Record
	ProjectsByID   map[string]models.Record
	TasksByID      map[string]models.Record
	Completed      func(since, until time.Time) ([]models.Record, error)
	Fail           map[string]error
	ProjectsErr    error
	TasksErr       error

	Calls []string
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) Projects(ctx context.Context) ([]models.Record, error) {
	m.Calls = append(m.Calls, "projects")
	return m.ActiveProjects, m.ProjectsErr
}

func (m *MockService) Project(ctx context.Context, projectID string) (models.Record, error) {
	m.Calls = append(m.Calls, "project:"+projectID)
	if err, ok := m.Fail[projectID]; ok {
		return nil, err
	}
	if p, ok := m.ProjectsByID[projectID]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("project %s not found", projectID)
}

func (m *MockService) Tasks(ctx context.Context) ([]models.Record, error) {
	m.Calls = append(m.Calls, "tasks")
	return m.ActiveTasks, m.TasksErr
}

func (m *MockService) Task(ctx context.Context, taskID string) (models.Record, error) {
	m.Calls = append(m.Calls, "task:"+taskID)
	if err, ok := m.Fail[taskID]; ok {
		return nil, err
	}
	if task, ok := m.TasksByID[taskID]; ok {
		return task, nil
	}
	return nil, fmt.Errorf("task %s not found", taskID)
}

func (m *MockService) CompletedTasks(ctx context.Context, since, until time.Time) ([]models.Record, error) {
	m.Calls = append(m.Calls, "completed:"+since.Format("2006-01"))
	if m.Completed == nil {
		return []models.Record{}, nil
	}
	return m.Completed(since, until)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
