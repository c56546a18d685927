// Package tasks fetches Todoist records and writes them as export files, with progress reporting.
//
// # Core Operations
//
// [ExportEngine] runs one record category per call against a [services.Service]:
//
//  1. [ExportEngine.FetchCompletedTasks] : completed tasks, one query per quarterly [models.DateWindow]
//  2. [ExportEngine.FetchActiveTasks] : every active task
//  3. [ExportEngine.FetchActiveProjects] : every active project
//  4. [ExportEngine.FetchArchivedProjects] : archived projects looked up by id
//  5. [ExportEngine.FetchTasksFromFile] : tasks looked up by ids read from a previous export
//  6. [ExportEngine.GroupByIDFromFile] : an id-keyed copy of a previous export
//
// A failing key (window, id or listing) is logged and recorded as skipped. The remaining keys still run.
// Task exports also get an id-keyed sibling written next to them (see [formatter.ByIDPath]).
//
// # Account Runs
//
// [RunAccount] runs the first four operations in order for one account and writes
// an [AccountReport] as the export manifest.
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate]. Sends use select with default so a
// slow or absent reader never blocks a fetch.
package tasks
