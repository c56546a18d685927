package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	th "github.com/desertthunder/tdx/internal/testing"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{"id": "6X7rM8997g3RQmvh", "content": "Write <report> & send", "priority": json.Number("4"), "labels": []any{"work"}},
		{"id": json.Number("2995104339"), "content": "Buy milk", "due": nil, "is_completed": true},
	}
}

func decode(t *testing.T, data []byte) any {
	t.Helper()
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("failed to parse %q: %v", string(data), err)
	}
	return v
}

func TestNames(t *testing.T) {
	t.Run("BindingName", func(t *testing.T) {
		tc := []struct {
			path string
			want string
		}{
			{path: "data/personal/api_v1_todoist_all_personal_completed_tasks.ts", want: "api_v1_todoist_all_personal_completed_tasks"},
			{path: "todoist-active-tasks.ts", want: "todoist_active_tasks"},
			{path: "out/tasks_by_id.json", want: "tasks_by_id"},
			{path: "noext", want: "noext"},
		}
		for _, tt := range tc {
			if got := BindingName(tt.path); got != tt.want {
				t.Errorf("BindingName(%q) = %q, want %q", tt.path, got, tt.want)
			}
		}
	})

	t.Run("ByIDPath", func(t *testing.T) {
		tc := []struct {
			path string
			want string
		}{
			{path: "data/work/completed_tasks.ts", want: "data/work/completed_tasks_by_id.ts"},
			{path: "tasks.json", want: "tasks_by_id.json"},
			{path: "dir.v2/tasks", want: "dir.v2/tasks_by_id"},
		}
		for _, tt := range tc {
			if got := ByIDPath(tt.path); got != tt.want {
				t.Errorf("ByIDPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		}
	})

	t.Run("ParseMode", func(t *testing.T) {
		if m, err := ParseMode("json"); err != nil || m != JSON {
			t.Errorf("ParseMode(json) = %v, %v", m, err)
		}
		if m, err := ParseMode("module"); err != nil || m != Module {
			t.Errorf("ParseMode(module) = %v, %v", m, err)
		}
		if _, err := ParseMode("yaml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("Plain Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.json")
		records := sampleRecords()

		if err := Write(records, Target{Path: path, Mode: JSON}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		th.AssertDirExists(t, filepath.Dir(path))

		got, err := ReadRecords(path)
		if err != nil {
			t.Fatalf("ReadRecords failed: %v", err)
		}
		if !reflect.DeepEqual(got, records) {
			t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, records)
		}

		content := th.MustReadFile(t, path)
		if !strings.Contains(content, "\n  {") {
			t.Errorf("expected indented output, got %s", content)
		}
		if !strings.Contains(content, "<report> &") {
			t.Errorf("expected unescaped HTML characters, got %s", content)
		}
	})

	t.Run("Module Round Trip With Equals In Name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a=b.ts")
		records := sampleRecords()

		if err := Write(records, Target{Path: path, Mode: Module}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		got, err := ReadRecords(path)
		if err != nil {
			t.Fatalf("ReadRecords failed: %v", err)
		}
		if !reflect.DeepEqual(got, records) {
			t.Errorf("round trip mismatch:\n got %#v\nwant %#v", got, records)
		}
	})

	t.Run("Module Output Matches Plain", func(t *testing.T) {
		dir := t.TempDir()
		modulePath := filepath.Join(dir, "active-tasks.ts")
		plainPath := filepath.Join(dir, "active-tasks.json")
		records := sampleRecords()

		if err := Write(records, Target{Path: modulePath, Mode: Module}); err != nil {
			t.Fatalf("Write module failed: %v", err)
		}
		if err := Write(records, Target{Path: plainPath, Mode: JSON}); err != nil {
			t.Fatalf("Write plain failed: %v", err)
		}

		content := th.MustReadFile(t, modulePath)
		if !strings.HasPrefix(content, "export const active_tasks = [") {
			t.Errorf("unexpected module prefix: %.40s", content)
		}
		if !strings.HasSuffix(content, "];\n") {
			t.Errorf("expected statement terminator, got %q", content[len(content)-5:])
		}

		stripped := strings.TrimPrefix(content, "export const active_tasks = ")
		stripped = strings.TrimSuffix(stripped, ";\n")

		plain := th.MustReadFile(t, plainPath)
		if !reflect.DeepEqual(decode(t, []byte(stripped)), decode(t, []byte(plain))) {
			t.Error("module payload differs from plain output")
		}
	})

	t.Run("Overwrites Existing File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "projects.json")
		th.MustWriteFile(t, path, strings.Repeat("x", 4096))

		if err := Write([]models.Record{}, Target{Path: path, Mode: JSON}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if got := th.MustReadFile(t, path); got != "[]\n" {
			t.Errorf("expected file to be replaced, got %q", got)
		}
	})

	t.Run("Mapping Export", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks_by_id.ts")
		byID := map[string]models.Record{"a": {"id": "a"}, "b": {"id": "b"}}

		if err := Write(byID, Target{Path: path, Mode: Module}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		payload, err := ReadExport(path)
		if err != nil {
			t.Fatalf("ReadExport failed: %v", err)
		}
		got := decode(t, payload).(map[string]any)
		if len(got) != 2 || got["a"].(map[string]any)["id"] != "a" {
			t.Errorf("unexpected mapping: %v", got)
		}
	})

	t.Run("Unknown Mode", func(t *testing.T) {
		err := Write([]models.Record{}, Target{Path: filepath.Join(t.TempDir(), "x"), Mode: "xml"})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "personal", "export_manifest.json")
		if err := WriteManifest(map[string]any{"account": "personal"}, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		got := decode(t, []byte(th.MustReadFile(t, path))).(map[string]any)
		if got["account"] != "personal" {
			t.Errorf("unexpected manifest: %v", got)
		}
	})
}

func TestReaders(t *testing.T) {
	t.Run("Missing File", func(t *testing.T) {
		_, err := ReadRecords(filepath.Join(t.TempDir(), "missing.ts"))
		if !errors.Is(err, shared.ErrMissingInput) {
			t.Errorf("expected ErrMissingInput, got %v", err)
		}
	})

	t.Run("Not A List", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "obj.json")
		th.MustWriteFile(t, path, `{"id": "1"}`)

		_, err := ReadRecords(path)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("Unwrap", func(t *testing.T) {
		tc := []struct {
			name  string
			input string
			want  string
		}{
			{name: "module", input: "export const x = [1, 2];", want: "[1, 2]"},
			{name: "module with newline", input: "export const x = {\"a\": 1};\n", want: "{\"a\": 1}"},
			{name: "plain", input: "  [1]\n", want: "[1]"},
			{name: "binding with equals sign", input: "export const a=b = [{\"id\": \"1\"}];\n", want: "[{\"id\": \"1\"}]"},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := string(Unwrap([]byte(tt.input))); got != tt.want {
					t.Errorf("Unwrap() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("ReadIDs", func(t *testing.T) {
		tc := []struct {
			name    string
			content string
			want    []string
			wantErr bool
		}{
			{name: "list of strings", content: `["a", "b"]`, want: []string{"a", "b"}},
			{name: "list of numbers", content: `[2995104339, 1]`, want: []string{"2995104339", "1"}},
			{name: "list of records", content: "export const t = [{\"id\": \"x\"}, {\"id\": 7}];", want: []string{"x", "7"}},
			{name: "id-keyed mapping", content: `{"b": {}, "a": {}}`, want: []string{"a", "b"}},
			{name: "record without id", content: `[{"content": "x"}]`, wantErr: true},
			{name: "scalar", content: `"x"`, wantErr: true},
			{name: "malformed", content: `[`, wantErr: true},
		}
		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "ids.ts")
				th.MustWriteFile(t, path, tt.content)

				got, err := ReadIDs(path)
				if tt.wantErr {
					if !errors.Is(err, shared.ErrInvalidInput) {
						t.Errorf("expected ErrInvalidInput, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !reflect.DeepEqual(got, tt.want) {
					t.Errorf("ReadIDs() = %v, want %v", got, tt.want)
				}
			})
		}
	})
}
