package mocks

import (
	"sync"

	"github.com/JulianoL13/app-config-aggregator/internal/common/logs"
)

type LoggerMock struct{}

func (LoggerMock) Debug(msg string, args ...any) {}
func (LoggerMock) Info(msg string, args ...any)  {}
func (LoggerMock) Warn(msg string, args ...any)  {}
func (LoggerMock) Error(msg string, args ...any) {}
func (LoggerMock) With(args ...any) logs.Logger  { return LoggerMock{} }

// Entry is one captured log call.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// RecordingLogger keeps every call so tests can assert on what was surfaced.
// Loggers derived with With share the parent's record.
type RecordingLogger struct {
	mu      *sync.Mutex
	entries *[]Entry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *RecordingLogger) With(args ...any) logs.Logger  { return l }

// Messages returns the messages logged at level, in call order.
func (l *RecordingLogger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, e := range *l.entries {
		if e.Level == level {
			out = append(out, e.Msg)
		}
	}
	return out
}

var (
	_ logs.Logger = LoggerMock{}
	_ logs.Logger = (*RecordingLogger)(nil)
)
