// Package models defines the domain types shared by the Todoist exporter.
//
// The package contains:
//   - [Account] : the configuration selector ("personal" or "work")
//   - [DateWindow] : a (start, end) pair bounding one completed-tasks query
//   - [Record] : an opaque task or project payload as returned by the API
//   - [Kind] : the record category a [Record] was fetched as
//
// Records are pass-through payloads. Only the "id" field is ever interpreted, and
// the payload is written back out exactly as it was decoded.
package models
