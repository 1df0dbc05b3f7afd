// Package logging assembles structured slog loggers and formatting helpers used
// across the pattiprep jobs.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so job code tags log lines with the run id and
// job name. A no-op logger is provided for tests and wiring code that cannot
// fail.
package logging
