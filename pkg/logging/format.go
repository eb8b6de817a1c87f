package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

const timestampLayout = "2006-01-02 15:04:05"

// Record is one line of the event store.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	RunID     string    `json:"run_id,omitempty"`
}

func recordFromEntry(e *logrus.Entry) Record {
	r := Record{Timestamp: e.Time, Message: e.Message}
	if v, ok := e.Data[fieldLevel].(string); ok {
		r.Level = Level(v)
	} else {
		r.Level = levelFromLogrus(e.Level)
	}
	if v, ok := e.Data[fieldComponent].(string); ok {
		r.Source = v
	}
	if v, ok := e.Data[fieldRunID].(string); ok {
		r.RunID = v
	}
	return r
}

func levelFromLogrus(l logrus.Level) Level {
	switch l {
	case logrus.DebugLevel, logrus.TraceLevel:
		return LevelDebug
	case logrus.WarnLevel:
		return LevelWarning
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

// recordFormatter renders entries as JSON lines for the event store.
type recordFormatter struct{}

func (f *recordFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b, err := json.Marshal(recordFromEntry(e))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal log record: %w", err)
	}
	return append(b, '\n'), nil
}

// consoleFormatter renders "[ts] [LEVEL] source: message" coloured by level.
type consoleFormatter struct {
	colors map[Level]*color.Color
}

func newConsoleFormatter(noColor bool) *consoleFormatter {
	colors := map[Level]*color.Color{
		LevelInfo:    color.New(color.FgCyan),
		LevelSuccess: color.New(color.FgGreen),
		LevelWarning: color.New(color.FgYellow),
		LevelError:   color.New(color.FgRed),
		LevelDebug:   color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &consoleFormatter{colors: colors}
}

func (f *consoleFormatter) Format(e *logrus.Entry) ([]byte, error) {
	r := recordFromEntry(e)
	line := fmt.Sprintf("[%s] [%s] %s: %s", r.Timestamp.Format(timestampLayout), r.Level, r.Source, r.Message)
	if c, ok := f.colors[r.Level]; ok {
		line = c.Sprint(line)
	}
	return []byte(line + "\n"), nil
}

// writerHook sends formatted entries of the selected levels to a writer.
type writerHook struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(e *logrus.Entry) error {
	b, err := h.formatter.Format(e)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(b)
	return err
}
