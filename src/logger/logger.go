package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// -----------------------------------------------------------------------------

// Logger provides named, leveled logging for one component
type Logger struct {
	name  string
	entry *logrus.Entry
}

// levelSource is satisfied by *config.Config and *models.MConfig.
type levelSource interface {
	GetLogLevel() string
}

// -----------------------------------------------------------------------------

// NewLogger creates a new Logger instance writing to stdout.
// config may be nil, a level string, or anything exposing GetLogLevel.
func NewLogger(config interface{}, name string) *Logger {
	level := "INFO"
	switch c := config.(type) {
	case string:
		level = c
	case levelSource:
		level = c.GetLogLevel()
	}
	return NewLoggerWithOutput(level, name, os.Stdout)
}

// -----------------------------------------------------------------------------

// NewLoggerWithOutput creates a Logger with an explicit level and writer
func NewLoggerWithOutput(level string, name string, out io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
	base.SetLevel(parseLevel(level))

	return &Logger{
		name:  name,
		entry: base.WithField("component", name),
	}
}

// -----------------------------------------------------------------------------

// Named returns a sibling logger sharing the same output and level
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		name:  name,
		entry: l.entry.Logger.WithField("component", name),
	}
}

// -----------------------------------------------------------------------------

// Debug logs diagnostic messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debug(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Warning logs recoverable problems
func (l *Logger) Warning(format string, args ...interface{}) {
	l.entry.Warn(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.entry.Info(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Error(fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Critical logs critical errors and exits the application
func (l *Logger) Critical(format string, args ...interface{}) {
	l.entry.Error(fmt.Sprintf("CRITICAL: "+format, args...))
	os.Exit(1)
}

// -----------------------------------------------------------------------------

func parseLevel(level string) logrus.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return logrus.DebugLevel
	case "WARNING", "WARN":
		return logrus.WarnLevel
	case "ERROR":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
