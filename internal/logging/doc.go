// Package logging builds the slog loggers used by mediascribe.
//
// Console output is a compact human format with the stage and artifact in the
// header line; JSON output is meant for the per-run log file when machine
// processing is wanted. Context helpers copy the stage, artifact and run
// correlation id from a context onto log lines, and CleanupOldLogs prunes run
// logs past the configured retention.
package logging
