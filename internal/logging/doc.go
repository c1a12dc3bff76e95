// Package logging provides a simple leveled logging interface for the
// filetree search service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable.
// Setting LOG_FILE routes output to a size-rotated log file (in addition
// to stderr); rotation is tuned via LOG_MAX_SIZE_MB, LOG_MAX_BACKUPS,
// and LOG_MAX_AGE_DAYS.
package logging
