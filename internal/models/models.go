// package models defines the data model for the Todoist export tool
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Account selects which credential and archived project list a run uses.
type Account string

const (
	Personal Account = "personal"
	Work     Account = "work"
)

// Accounts lists every account in the order a full run processes them.
func Accounts() []Account {
	return []Account{Personal, Work}
}

// ParseAccount converts user input into an [Account].
func ParseAccount(s string) (Account, error) {
	switch Account(strings.ToLower(strings.TrimSpace(s))) {
	case Personal:
		return Personal, nil
	case Work:
		return Work, nil
	default:
		return "", fmt.Errorf("unknown account %q (expected personal or work)", s)
	}
}

func (a Account) String() string {
	return string(a)
}

// Kind is the record category a [Record] was fetched as.
type Kind string

const (
	KindTask    Kind = "task"
	KindProject Kind = "project"
)

// DateWindow bounds a single completed-tasks query. Start <= End.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

func (w DateWindow) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// Record is an opaque task or project payload.
//
// Values are decoded with [json.Number] so identifiers and counters round-trip unchanged.
type Record map[string]any

// ID returns the record's "id" field as a string.
//
// Numeric identifiers are formatted without exponent; a missing, null or empty id reports false.
func (r Record) ID() (string, bool) {
	v, ok := r["id"]
	if !ok || v == nil {
		return "", false
	}

	var id string
	switch t := v.(type) {
	case string:
		id = t
	case json.Number:
		id = t.String()
	case float64:
		id = fmt.Sprintf("%.0f", t)
	case int:
		id = fmt.Sprintf("%d", t)
	case int64:
		id = fmt.Sprintf("%d", t)
	default:
		id = fmt.Sprint(t)
	}

	if id == "" {
		return "", false
	}
	return id, true
}

// DecodeRecord decodes a single JSON object into a [Record].
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := decodeNumbers(data, &rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("expected a JSON object, got null")
	}
	return rec, nil
}

// DecodeRecords decodes a JSON array of objects into records.
func DecodeRecords(data []byte) ([]Record, error) {
	var recs []Record
	if err := decodeNumbers(data, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
