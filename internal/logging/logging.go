package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// debugLogName is the debug log inside the XDG state directory.
const debugLogName = "git-lab/git-lab.log"

// AppLogger is the diagnostic logger. User-facing messages go through a
// Reporter instead; AppLogger output is only interesting when debugging.
//
// Setting DEBUG in the environment turns on debug output, which then goes
// to a log file truncated on every run instead of stderr.
type AppLogger struct {
	logger *log.Logger
	debug  bool
}

var (
	defaultLogger *AppLogger
	once          sync.Once
)

// GetDefault returns the process-wide logger, creating it on first use.
func GetDefault() *AppLogger {
	once.Do(func() {
		defaultLogger = NewAppLogger()
	})
	return defaultLogger
}

// Debug logs through the process-wide logger.
func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

// NewAppLogger builds a logger for the current environment. Without DEBUG
// only warnings reach stderr.
func NewAppLogger() *AppLogger {
	if os.Getenv("DEBUG") == "" {
		return newAppLogger(os.Stderr, log.WarnLevel, time.RFC3339, false)
	}

	path, file, err := openDebugLog()
	if err != nil {
		panic(err)
	}
	al := newAppLogger(file, log.DebugLevel, time.Kitchen, true)
	al.logger.SetReportCaller(true)
	al.logger.Info("Debug logging enabled", "log_file", path)
	return al
}

func newAppLogger(w io.Writer, level log.Level, timeFormat string, debug bool) *AppLogger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      timeFormat,
		Prefix:          "git-lab",
	})
	logger.SetLevel(level)
	return &AppLogger{logger: logger, debug: debug}
}

func openDebugLog() (string, *os.File, error) {
	path, err := xdg.StateFile(debugLogName)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve debug log path: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", nil, fmt.Errorf("failed to create debug log %s: %w", path, err)
	}
	return path, file, nil
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// DebugObject dumps obj with its field names.
func (al *AppLogger) DebugObject(name string, obj interface{}) {
	if al.debug {
		al.logger.Debug("Object dump", "name", name, "object", fmt.Sprintf("%+v", obj))
	}
}

// LogPerformance records how long operation took since start, e.g. the
// forge handshake.
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		al.logger.Debug("Performance", "operation", operation, "duration", time.Since(start))
	}
}

// LogStep records one step of a multi-step resolution.
func (al *AppLogger) LogStep(component, step string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug("Step",
			append([]interface{}{"component", component, "step", step}, keyvals...)...,
		)
	}
}

// NewTestLogger returns a debug logger writing to the returned buffer,
// without timestamps.
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{Prefix: "Test"})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{logger: logger, debug: true}, &buf
}
