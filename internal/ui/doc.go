// Package ui renders export progress and results for the terminal.
//
// [RenderAccountReport] summarizes one account run: per-operation record counts, written files and
// every skipped key with its reason. [RenderReport] does the same for a single operation run from
// the tasks or group commands.
//
// [RunProgress] drives a bubbletea program that turns a [tasks.ProgressUpdate] channel into a
// progress bar. It is only used when stdout is a terminal.
package ui
