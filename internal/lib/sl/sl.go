// Package sl contains small helpers for structured logging with log/slog.
package sl

import "log/slog"

// Err returns a slog.Attr with the "error" key and the error text as value.
//
// Example:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
