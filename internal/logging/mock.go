package logging

import (
	"fmt"
	"sync"
)

// MockLogger captures log entries for verification in tests.
// Loggers derived through WithField, WithFields and WithError share the
// parent's entry list, so entries logged on a child are visible on the root.
type MockLogger struct {
	sink          *mockSink
	pendingError  error
	pendingFields []Field
}

type mockSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// LogEntry represents a single log entry captured by MockLogger.
type LogEntry struct {
	Level   string
	Message string
	Fields  []Field
	Error   error
}

// NewMockLogger returns an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{sink: &mockSink{}}
}

func (m *MockLogger) record(level, msg string, fields []Field) {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)

	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	m.sink.entries = append(m.sink.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  all,
		Error:   m.pendingError,
	})
}

// Debug records a DEBUG entry.
func (m *MockLogger) Debug(msg string, fields ...Field) { m.record("DEBUG", msg, fields) }

// Info records an INFO entry.
func (m *MockLogger) Info(msg string, fields ...Field) { m.record("INFO", msg, fields) }

// Warn records a WARN entry.
func (m *MockLogger) Warn(msg string, fields ...Field) { m.record("WARN", msg, fields) }

// Error records an ERROR entry.
func (m *MockLogger) Error(msg string, fields ...Field) { m.record("ERROR", msg, fields) }

// Fatalf records a FATAL entry. It does not exit.
func (m *MockLogger) Fatalf(msg string, args ...interface{}) {
	m.record("FATAL", fmt.Sprintf(msg, args...), nil)
}

// WithError returns a child logger with an error attached.
func (m *MockLogger) WithError(err error) Logger {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
	return &MockLogger{
		sink:          m.sink,
		pendingError:  err,
		pendingFields: m.pendingFields,
	}
}

// WithField returns a child logger with a single field attached.
func (m *MockLogger) WithField(key string, value interface{}) Logger {
	return m.WithFields(Field{Key: key, Value: value})
}

// WithFields returns a child logger with multiple fields attached.
func (m *MockLogger) WithFields(fields ...Field) Logger {
	if m.sink == nil {
		m.sink = &mockSink{}
	}
	all := make([]Field, 0, len(m.pendingFields)+len(fields))
	all = append(all, m.pendingFields...)
	all = append(all, fields...)
	return &MockLogger{
		sink:          m.sink,
		pendingError:  m.pendingError,
		pendingFields: all,
	}
}

// GetEntries returns a copy of all captured log entries.
func (m *MockLogger) GetEntries() []LogEntry {
	if m.sink == nil {
		return nil
	}
	m.sink.mu.Lock()
	defer m.sink.mu.Unlock()
	out := make([]LogEntry, len(m.sink.entries))
	copy(out, m.sink.entries)
	return out
}

// GetEntriesByLevel returns all log entries of a specific level.
func (m *MockLogger) GetEntriesByLevel(level string) []LogEntry {
	var entries []LogEntry
	for _, entry := range m.GetEntries() {
		if entry.Level == level {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Clear removes all captured log entries.
func (m *MockLogger) Clear() {
	if m.sink == nil {
		return
	}
	m.sink.mu.Lock()
	m.sink.entries = nil
	m.sink.mu.Unlock()
}

// HasEntry checks if a log entry with the given level and message exists.
func (m *MockLogger) HasEntry(level, message string) bool {
	for _, entry := range m.GetEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

// FieldValue returns the value of the named field on an entry.
func (e LogEntry) FieldValue(key string) (interface{}, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}
