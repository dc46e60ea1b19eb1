// Package logging builds slog loggers for the daemon and CLI.
//
// It offers console and JSON handlers, typed attribute helpers, standardized
// field-name constants, and context plumbing that carries job, stage, and
// correlation identifiers into every log line emitted while a stage runs.
package logging
