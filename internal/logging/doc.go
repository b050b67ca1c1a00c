// Package logging provides structured logging for ragcheck.
//
// Logs are written as JSON via log/slog to ~/.ragcheck/logs/ragcheck.log
// with size-based rotation, and optionally mirrored to stderr. Check
// output itself goes to stdout and is never routed through the logger
// so that operators watching a run always see one line per check.
package logging
