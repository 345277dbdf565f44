// Package log provides structured logging with operation context.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for the engines (structured fields)
//   - SugaredLogger: Printf-style logging for CLI surfaces
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OperationMeta identifies the operation every log entry belongs to.
type OperationMeta struct {
	OperationID string
	Mode        string
	Input       string
}

// Logger provides structured logging with operation context.
// All log entries include the operation identity fields.
type Logger struct {
	zap   *zap.Logger
	meta  OperationMeta
	level zapcore.Level
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a logger with operation context at the given level.
// Output defaults to os.Stderr.
func NewLogger(meta OperationMeta, level zapcore.Level) *Logger {
	return newLoggerWithWriter(meta, level, os.Stderr)
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop(), level: zapcore.FatalLevel}
}

// ParseLevel parses a level name (debug, info, warn, error). Empty means warn.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.WarnLevel, nil
	}
	return zapcore.ParseLevel(s)
}

// WithOutput returns a new logger with the same context writing to w.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return newLoggerWithWriter(l.meta, l.level, w)
}

// newLoggerWithWriter creates a logger writing JSON lines to w.
func newLoggerWithWriter(meta OperationMeta, level zapcore.Level, w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	contextFields := []zap.Field{
		zap.String("operation_id", meta.OperationID),
		zap.String("mode", meta.Mode),
	}
	if meta.Input != "" {
		contextFields = append(contextFields, zap.String("input", meta.Input))
	}

	return &Logger{zap: zap.New(core).With(contextFields...), meta: meta, level: level}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Error logs an error message.
func (l *Logger) Error(message string, fields map[string]any) {
	l.zap.Error(message, zap.Any("fields", fields))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Debugf logs a debug message with printf-style formatting.
func (s *SugaredLogger) Debugf(template string, args ...any) {
	s.sugar.Debugf(template, args...)
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (s *SugaredLogger) Warnf(template string, args ...any) {
	s.sugar.Warnf(template, args...)
}

// Errorf logs an error message with printf-style formatting.
func (s *SugaredLogger) Errorf(template string, args ...any) {
	s.sugar.Errorf(template, args...)
}

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
