package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZerologAdapter implements Logger over github.com/rs/zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

// NewZerolog wraps an arbitrary writer (file, buffer, network sink).
func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	l := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return &ZerologAdapter{logger: l}
}

// NewConsoleLogger writes human-readable console output to stdout, for
// interactive runs.
func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout}
	return NewZerolog(consoleWriter, level)
}

// NewRotatingFileLogger writes JSON-lines logs to a size/age-rotated file.
// A capture session can run for days unattended; lumberjack keeps that
// from becoming an unbounded log file.
func NewRotatingFileLogger(path string, level zerolog.Level, maxSizeMB, maxBackups, maxAgeDays int) *ZerologAdapter {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	return NewZerolog(writer, level)
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	event := z.logger.Info().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	event := z.logger.Error().Str("component", component).Err(err)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg("operation failed")
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	event := z.logger.Warn().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	event := z.logger.Debug().Str("component", component)
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(message)
}
