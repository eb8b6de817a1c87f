package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the severity attached to every event record.
type Level string

const (
	LevelDebug   Level = "DEBUG"
	LevelInfo    Level = "INFO"
	LevelSuccess Level = "SUCCESS"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

const (
	fieldLevel     = "level"
	fieldComponent = "source"
	fieldRunID     = "run_id"
)

// DefaultLogFile is the event store used when no path is configured.
const DefaultLogFile = ".orchestrator/events.log"

// Options configures a Logger.
type Options struct {
	// FilePath is the append-only event store. Empty disables it.
	FilePath string
	// Console receives the human readable stream. Nil means stderr.
	Console io.Writer
	// Debug enables DEBUG records on the console. The store always gets them.
	Debug bool
	// NoColor disables ANSI colours on the console.
	NoColor bool
}

// Logger writes pipeline events to the console and the event store. It is
// created once per process and handed to every component.
type Logger struct {
	entry  *logrus.Entry
	closer io.Closer
}

// New builds a Logger from options.
func New(opts Options) (*Logger, error) {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.DebugLevel)

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleLevels := []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel, logrus.InfoLevel}
	if opts.Debug {
		consoleLevels = append(consoleLevels, logrus.DebugLevel)
	}
	base.AddHook(&writerHook{
		writer:    console,
		formatter: newConsoleFormatter(opts.NoColor),
		levels:    consoleLevels,
	})

	var closer io.Closer
	if opts.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		store := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    15, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		base.AddHook(&writerHook{
			writer:    store,
			formatter: &recordFormatter{},
			levels:    logrus.AllLevels,
		})
		closer = store
	}

	return &Logger{entry: logrus.NewEntry(base), closer: closer}, nil
}

// NewWithLogrus wraps an existing logrus logger. Tests use it with
// logrus/hooks/test.
func NewWithLogrus(l *logrus.Logger) *Logger {
	return &Logger{entry: logrus.NewEntry(l)}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return NewWithLogrus(l)
}

// Component returns a child logger tagging records with the emitting component.
func (l *Logger) Component(name string) *Logger {
	return &Logger{entry: l.entry.WithField(fieldComponent, name)}
}

// WithRunID returns a child logger tagging records with a pipeline run id.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{entry: l.entry.WithField(fieldRunID, id)}
}

// Log emits one record at the given level.
func (l *Logger) Log(level Level, message string) {
	e := l.entry.WithField(fieldLevel, string(level))
	switch level {
	case LevelDebug:
		e.Debug(message)
	case LevelWarning:
		e.Warn(message)
	case LevelError:
		e.Error(message)
	default:
		e.Info(message)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.Log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *Logger) Success(format string, args ...interface{}) {
	l.Log(LevelSuccess, fmt.Sprintf(format, args...))
}

func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LevelWarning, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LevelError, fmt.Sprintf(format, args...))
}

// Close flushes and closes the event store.
func (l *Logger) Close() error {
	if l.closer != nil {
		return l.closer.Close()
	}
	return nil
}
