// Package logger adapts github.com/rs/zerolog into the small field-based
// interface the rest of this module logs through: component + message +
// field map, rather than the standard library's log/slog.
package logger

// Logger is the structured-logging contract every component depends on.
// Fields are logged as structured key/value pairs, never interpolated into
// the message string.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}
