package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tdx/internal/shared"
	tu "github.com/desertthunder/tdx/internal/testing"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *TodoistService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	srv, err := NewTodoistService(context.Background(), "test-token", TodoistOpts{BaseURL: server.URL, PageLimit: 2})
	if err != nil {
		t.Fatalf("NewTodoistService failed: %v", err)
	}
	return srv
}

func TestTodoistService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Defaults", func(t *testing.T) {
			srv, err := NewTodoistService(context.Background(), "token", TodoistOpts{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv.api.baseURL != todoistBaseURL {
				t.Errorf("expected default base URL, got %s", srv.api.baseURL)
			}
			if srv.pageLimit != defaultPageLimit {
				t.Errorf("expected default page limit, got %d", srv.pageLimit)
			}
			if srv.Name() != "Todoist" {
				t.Errorf("expected name Todoist, got %s", srv.Name())
			}
		})

		t.Run("Clamps Page Limit", func(t *testing.T) {
			srv, err := NewTodoistService(context.Background(), "token", TodoistOpts{PageLimit: 1000})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if srv.pageLimit != maxPageLimit {
				t.Errorf("expected page limit %d, got %d", maxPageLimit, srv.pageLimit)
			}
		})

		t.Run("Empty Token", func(t *testing.T) {
			_, err := NewTodoistService(context.Background(), "", TodoistOpts{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			srv, _ := NewTodoistService(context.Background(), "token", TodoistOpts{Timeout: 5 * time.Second})
			if srv.api.httpClient.Timeout != 5*time.Second {
				t.Errorf("expected timeout 5s, got %v", srv.api.httpClient.Timeout)
			}
		})
	})

	t.Run("Sends Bearer Token", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("expected bearer token header, got %q", got)
			}
			w.Write([]byte(`{"results": [], "next_cursor": null}`))
		})

		if _, err := srv.Projects(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Projects Drains Every Page", func(t *testing.T) {
		var cursors []string
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/projects" {
				t.Errorf("expected /projects, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("limit") != "2" {
				t.Errorf("expected limit=2, got %s", r.URL.Query().Get("limit"))
			}
			cursor := r.URL.Query().Get("cursor")
			cursors = append(cursors, cursor)

			switch cursor {
			case "":
				w.Write([]byte(`{"results": [{"id": "1"}, {"id": "2"}], "next_cursor": "c1"}`))
			case "c1":
				w.Write([]byte(`{"results": [{"id": "3"}], "next_cursor": null}`))
			default:
				t.Errorf("unexpected cursor %q", cursor)
			}
		})

		projects, err := srv.Projects(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(projects) != 3 {
			t.Fatalf("expected 3 projects, got %d", len(projects))
		}
		if id, _ := projects[2].ID(); id != "3" {
			t.Errorf("expected last project id 3, got %s", id)
		}
		if len(cursors) != 2 {
			t.Errorf("expected 2 requests, got %d", len(cursors))
		}
	})

	t.Run("Tasks Returns Partial Pages On Failure", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("cursor") == "" {
				w.Write([]byte(`{"results": [{"id": "1"}, {"id": "2"}], "next_cursor": "c1"}`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		})

		tasks, err := srv.Tasks(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if len(tasks) != 2 {
			t.Errorf("expected 2 partial tasks, got %d", len(tasks))
		}
		if !strings.Contains(err.Error(), "status 500") {
			t.Errorf("expected status in error, got %v", err)
		}
	})

	t.Run("Stuck Cursor", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"results": [{"id": "1"}], "next_cursor": "same"}`))
		})

		_, err := srv.Tasks(context.Background())
		if !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("CompletedTasks", func(t *testing.T) {
		since := time.Date(2010, time.January, 1, 0, 0, 0, 0, time.FixedZone("CET", 3600))
		until := time.Date(2010, time.March, 31, 23, 59, 59, 0, time.FixedZone("CET", 3600))

		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/tasks/completed/by_completion_date" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			q := r.URL.Query()
			if q.Get("since") != "2009-12-31T23:00:00Z" {
				t.Errorf("unexpected since %s", q.Get("since"))
			}
			if q.Get("until") != "2010-03-31T22:59:59Z" {
				t.Errorf("unexpected until %s", q.Get("until"))
			}
			w.Write([]byte(`{"items": [{"id": "a", "completed_at": "2010-02-01T10:00:00Z"}], "next_cursor": null}`))
		})

		tasks, err := srv.CompletedTasks(context.Background(), since, until)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tasks) != 1 {
			t.Fatalf("expected 1 completed task, got %d", len(tasks))
		}
	})

	t.Run("CompletedTasks Rejects Inverted Range", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		now := time.Now()
		if _, err := srv.CompletedTasks(context.Background(), now, now.Add(-time.Hour)); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Project", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/projects/2203306141":
				w.Write([]byte(`{"id": "2203306141", "name": "Archive", "is_archived": true, "child_order": 3}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		project, err := srv.Project(context.Background(), "2203306141")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if project["name"] != "Archive" {
			t.Errorf("expected name Archive, got %v", project["name"])
		}
		if fmt.Sprint(project["child_order"]) != "3" {
			t.Errorf("expected child_order 3, got %v", project["child_order"])
		}

		_, err = srv.Project(context.Background(), "missing")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		_, err = srv.Project(context.Background(), "")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Task With Malformed Body", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": `))
		})

		_, err := srv.Task(context.Background(), "1")
		if !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("Task With Null Body", func(t *testing.T) {
		srv := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`null`))
		})

		_, err := srv.Task(context.Background(), "1")
		if !errors.Is(err, shared.ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed"))}
		srv, err := NewTodoistService(context.Background(), "token", TodoistOpts{BaseURL: "http://example.com", HTTPClient: client})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		_, err = srv.Task(context.Background(), "1")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "2025-06-30T23:59:59Z" {
		t.Errorf("FormatTimestamp() = %s", got)
	}
}
