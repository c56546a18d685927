// Todoist API implementation of [Service]
//
// Endpoints based on https://developer.todoist.com/api/v1/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	"golang.org/x/oauth2"
)

const (
	todoistBaseURL   = "https://api.todoist.com/api/v1"
	defaultPageLimit = 200
	maxPageLimit     = 200
	timestampLayout  = "2006-01-02T15:04:05Z"
)

// TodoistOpts contains optional settings for [NewTodoistService].
type TodoistOpts struct {
	BaseURL    string        // Defaults to the public API v1 URL
	PageLimit  int           // Records per page, 1..200 (default: 200)
	Timeout    time.Duration // HTTP client timeout (default: none)
	HTTPClient *http.Client  // Base client wrapped by the token transport
}

// page is the envelope returned by every paginated endpoint.
type page struct {
	Results    []models.Record `json:"results"`
	Items      []models.Record `json:"items"`
	NextCursor *string         `json:"next_cursor"`
}

// TodoistService implements the Service interface for Todoist API interactions.
type TodoistService struct {
	api       *APIService
	pageLimit int
}

// NewTodoistService creates a Todoist client authenticated with the given API token.
func NewTodoistService(ctx context.Context, token string, opts TodoistOpts) (*TodoistService, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty Todoist API token", shared.ErrMissingCredentials)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = todoistBaseURL
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = defaultPageLimit
	}
	if opts.PageLimit > maxPageLimit {
		opts.PageLimit = maxPageLimit
	}
	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, src)
	client.Timeout = opts.Timeout

	return &TodoistService{
		api:       NewAPIService(opts.BaseURL, client),
		pageLimit: opts.PageLimit,
	}, nil
}

func (s *TodoistService) Name() string {
	return "Todoist"
}

// FormatTimestamp renders t the way the completed-tasks endpoint expects it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// doRequest performs an authenticated GET request and decodes the JSON body into result.
func (s *TodoistService) doRequest(ctx context.Context, endpoint string, params url.Values, result any) error {
	resp, err := s.api.Get(ctx, endpoint, params)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, endpoint, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", shared.ErrNotFound, endpoint)
	}

	if !resp.OK() {
		return fmt.Errorf("%w: %s: status %d: %s", shared.ErrAPIRequest, endpoint, resp.StatusCode, resp.Snippet(512))
	}

	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrInvalidResponse, endpoint, err)
	}

	return nil
}

// paginate follows next_cursor until the last page, collecting every record.
func (s *TodoistService) paginate(ctx context.Context, endpoint string, params url.Values) ([]models.Record, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("limit", fmt.Sprintf("%d", s.pageLimit))

	all := []models.Record{}
	cursor := ""
	for {
		if cursor != "" {
			params.Set("cursor", cursor)
		}

		var resp page
		if err := s.doRequest(ctx, endpoint, params, &resp); err != nil {
			return all, err
		}

		all = append(all, resp.Results...)
		all = append(all, resp.Items...)

		if resp.NextCursor == nil || *resp.NextCursor == "" {
			break
		}
		if *resp.NextCursor == cursor {
			return all, fmt.Errorf("%w: %s: cursor did not advance", shared.ErrInvalidResponse, endpoint)
		}
		cursor = *resp.NextCursor
	}

	return all, nil
}

// getOne fetches a single object from endpoint.
func (s *TodoistService) getOne(ctx context.Context, endpoint string) (models.Record, error) {
	var rec models.Record
	if err := s.doRequest(ctx, endpoint, nil, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s: empty body", shared.ErrInvalidResponse, endpoint)
	}
	return rec, nil
}

// Projects retrieves all active projects.
func (s *TodoistService) Projects(ctx context.Context) ([]models.Record, error) {
	return s.paginate(ctx, "/projects", nil)
}

// Project retrieves a single project by ID.
func (s *TodoistService) Project(ctx context.Context, projectID string) (models.Record, error) {
	if projectID == "" {
		return nil, fmt.Errorf("%w: empty project ID", shared.ErrInvalidArgument)
	}
	return s.getOne(ctx, "/projects/"+url.PathEscape(projectID))
}

// Tasks retrieves all active tasks.
func (s *TodoistService) Tasks(ctx context.Context) ([]models.Record, error) {
	return s.paginate(ctx, "/tasks", nil)
}

// Task retrieves a single task by ID.
func (s *TodoistService) Task(ctx context.Context, taskID string) (models.Record, error) {
	if taskID == "" {
		return nil, fmt.Errorf("%w: empty task ID", shared.ErrInvalidArgument)
	}
	return s.getOne(ctx, "/tasks/"+url.PathEscape(taskID))
}

// CompletedTasks retrieves tasks completed between since and until, inclusive.
func (s *TodoistService) CompletedTasks(ctx context.Context, since, until time.Time) ([]models.Record, error) {
	if until.Before(since) {
		return nil, fmt.Errorf("%w: until %s is before since %s", shared.ErrInvalidArgument, FormatTimestamp(until), FormatTimestamp(since))
	}

	params := url.Values{}
	params.Set("since", FormatTimestamp(since))
	params.Set("until", FormatTimestamp(until))
	return s.paginate(ctx, "/tasks/completed/by_completion_date", params)
}
