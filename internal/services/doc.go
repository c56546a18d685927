// Package services defines the [Service] interface for the remote task tracker and implements it for Todoist.
//
// # Todoist Implementation
//
// [TodoistService] talks to the Todoist API v1 (https://api.todoist.com/api/v1).
// Requests are authenticated with a bearer token through [oauth2.StaticTokenSource] and sent by
// [APIService], which returns raw status and body for the Todoist layer to interpret.
//
// List endpoints use cursor pagination: each response carries a page of records under
// "results" (or "items" for completed tasks) and a "next_cursor" that is null on the last page.
// [TodoistService] follows the cursor until it runs out.
//
// # Timestamps
//
// The completed-tasks endpoint takes since/until in UTC with a literal Z suffix, see [FormatTimestamp].
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotFound] : 404 for a single project or task
//   - [shared.ErrAPIRequest] : transport failure or any other non-2xx status
//   - [shared.ErrInvalidResponse] : body could not be decoded, or the cursor did not advance
//
// Records are decoded as opaque [models.Record] payloads; no fields are validated.
package services
