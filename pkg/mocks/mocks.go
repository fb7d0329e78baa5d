// Package mocks provides test doubles for the buildscript packages.
package mocks

//go:generate mockgen -destination=mock_cache.go -package=mocks github.com/poltergeist/buildscript/pkg/cache DirectoryCache

import (
	"sync"

	"github.com/poltergeist/buildscript/pkg/logger"
)

// LogEntry is one message captured by MockLogger.
type LogEntry struct {
	Level   string
	Job     string
	Message string
	Fields  map[string]interface{}
}

// MockLogger records every message instead of printing it.
type MockLogger struct {
	mu      *sync.Mutex
	entries *[]LogEntry
	job     string
}

// NewMockLogger creates a new recording logger
func NewMockLogger() *MockLogger {
	return &MockLogger{
		mu:      &sync.Mutex{},
		entries: &[]LogEntry{},
	}
}

func (m *MockLogger) record(level, message string, fields []logger.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	*m.entries = append(*m.entries, LogEntry{
		Level:   level,
		Job:     m.job,
		Message: message,
		Fields:  data,
	})
}

// Info records an info message
func (m *MockLogger) Info(message string, fields ...logger.Field) {
	m.record("info", message, fields)
}

// Error records an error message
func (m *MockLogger) Error(message string, fields ...logger.Field) {
	m.record("error", message, fields)
}

// Warn records a warning
func (m *MockLogger) Warn(message string, fields ...logger.Field) {
	m.record("warn", message, fields)
}

// Debug records a debug message
func (m *MockLogger) Debug(message string, fields ...logger.Field) {
	m.record("debug", message, fields)
}

// Success records a success message
func (m *MockLogger) Success(message string, fields ...logger.Field) {
	m.record("success", message, fields)
}

// WithJob returns a logger sharing this logger's entries.
func (m *MockLogger) WithJob(job string) logger.Logger {
	return &MockLogger{mu: m.mu, entries: m.entries, job: job}
}

// Entries returns a copy of the recorded entries.
func (m *MockLogger) Entries() []LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LogEntry(nil), *m.entries...)
}

// Messages returns the recorded messages at level, or all messages when level
// is empty.
func (m *MockLogger) Messages(level string) []string {
	var out []string
	for _, e := range m.Entries() {
		if level == "" || e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

var _ logger.Logger = (*MockLogger)(nil)
