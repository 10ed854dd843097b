// Package logging configures slog for txtseek.
//
// Without --debug, logs go to stderr as text at warn level so they never
// interleave with search output. With --debug (or logging.file set), JSON
// logs are written to a size-rotated file under ~/.txtseek/logs/.
package logging
