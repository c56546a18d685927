// package formatter writes record collections to export files as plain JSON or as importable modules
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
)

// Mode selects how an export file is serialized.
type Mode string

const (
	JSON   Mode = Mode(shared.ModeJSON)   // indented JSON document
	Module Mode = Mode(shared.ModeModule) // `export const <name> = <json>;`
)

const (
	modulePrefix = "export const "
	byIDSuffix   = "_by_id"
)

// ParseMode converts a configuration value into a [Mode].
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case JSON, Module:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%w: unknown export mode %q", shared.ErrInvalidArgument, s)
	}
}

// Target is a file path plus the serialization used for it.
type Target struct {
	Path string
	Mode Mode
}

// MarshalJSON encodes v as JSON without escaping HTML characters, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// BindingName derives the module binding from a file path: the base name without its extension, hyphens replaced with underscores.
func BindingName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "-", "_")
}

// ByIDPath returns the sibling path used for the id-keyed variant of an export.
//
// data/tasks.ts becomes data/tasks_by_id.ts
func ByIDPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + byIDSuffix + ext
}

// Render serializes data for the given target.
func Render(data any, t Target) ([]byte, error) {
	body, err := MarshalJSON(data, true)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}

	switch t.Mode {
	case Module:
		var buf bytes.Buffer
		buf.WriteString(modulePrefix)
		buf.WriteString(BindingName(t.Path))
		buf.WriteString(" = ")
		buf.Write(body)
		buf.WriteString(";\n")
		return buf.Bytes(), nil
	case JSON:
		return append(body, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: unknown export mode %q", shared.ErrInvalidArgument, t.Mode)
	}
}

// Write serializes data to the target, creating missing parent directories and overwriting any existing file.
func Write(data any, t Target) error {
	out, err := Render(data, t)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(t.Path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(t.Path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", t.Path, err)
	}

	return nil
}

// Unwrap strips the module binding and terminator when present, returning the JSON payload.
func Unwrap(data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if !bytes.HasPrefix(trimmed, []byte(modulePrefix)) {
		return trimmed
	}

	// Binding names come from file names and may contain '='.
	rest := trimmed[len(modulePrefix):]
	eq := bytes.Index(rest, []byte(" = "))
	if eq < 0 {
		return trimmed
	}

	payload := bytes.TrimSpace(rest[eq+len(" = "):])
	payload = bytes.TrimSuffix(payload, []byte(";"))
	return bytes.TrimSpace(payload)
}

// ReadExport reads an export file in either mode and returns its JSON payload.
//
// A missing file is reported as [shared.ErrMissingInput].
func ReadExport(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingInput, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Unwrap(data), nil
}

// ReadRecords reads a list export back into records.
func ReadRecords(path string) ([]models.Record, error) {
	payload, err := ReadExport(path)
	if err != nil {
		return nil, err
	}

	recs, err := models.DecodeRecords(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not a list of records: %v", shared.ErrInvalidInput, path, err)
	}
	return recs, nil
}

// ReadIDs reads identifiers from an export file.
//
// Accepted shapes are a list of ids, a list of records (their "id" fields), or an id-keyed mapping (its keys, sorted).
func ReadIDs(path string) ([]string, error) {
	payload, err := ReadExport(path)
	if err != nil {
		return nil, err
	}

	var raw any
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidInput, path, err)
	}

	ids := []string{}
	switch v := raw.(type) {
	case []any:
		for i, item := range v {
			id, ok := idOf(item)
			if !ok {
				return nil, fmt.Errorf("%w: %s: entry %d: %w", shared.ErrInvalidInput, path, i, shared.ErrMissingID)
			}
			ids = append(ids, id)
		}
	case map[string]any:
		for id := range v {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	default:
		return nil, fmt.Errorf("%w: %s: expected a list or mapping", shared.ErrInvalidInput, path)
	}

	return ids, nil
}

func idOf(item any) (string, bool) {
	switch v := item.(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	case map[string]any:
		return models.Record(v).ID()
	default:
		return "", false
	}
}

// WriteManifest writes an export manifest as indented JSON.
func WriteManifest(manifest any, path string) error {
	return Write(manifest, Target{Path: path, Mode: JSON})
}
