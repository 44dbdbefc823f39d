// Package decisions records every automation decision to an append-only
// JSONL log, so a user can audit why the system did what it did.
package decisions

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Type identifies what kind of decision this is
type Type string

const (
	TypeFocusOn     Type = "focus_on"
	TypeFocusOff    Type = "focus_off"
	TypeBreak       Type = "break"
	TypeNightOn     Type = "night_on"
	TypeNightOff    Type = "night_off"
	TypeAutoSave    Type = "autosave"
	TypeMeetingSeen Type = "meeting_seen"
	TypeScheduled   Type = "scheduled"
	TypeError       Type = "error"
)

// Entry represents a single decision log entry
type Entry struct {
	Timestamp time.Time      `json:"ts"`
	Type      Type           `json:"type"`
	Rule      string         `json:"rule"`
	Summary   string         `json:"summary"`
	Intensity float64        `json:"intensity,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// Log is the decision logger
type Log struct {
	path string
	mu   sync.Mutex
}

// New creates a decision logger under statePath
func New(statePath string) *Log {
	return &Log{
		path: filepath.Join(statePath, "decisions.jsonl"),
	}
}

// Record appends an entry to the log
func (l *Log) Record(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// RecordError logs a rule failure
func (l *Log) RecordError(rule, summary string, err error) error {
	return l.Record(Entry{
		Type:    TypeError,
		Rule:    rule,
		Summary: summary,
		Data:    map[string]any{"error": err.Error()},
	})
}

// Recent returns the last n entries
func (l *Log) Recent(n int) ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	if n >= len(entries) {
		return entries, nil
	}
	return entries[len(entries)-n:], nil
}

// Today returns entries from today
func (l *Log) Today() ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var result []Entry
	for _, e := range entries {
		if !e.Timestamp.Before(midnight) {
			result = append(result, e)
		}
	}
	return result, nil
}

// ByType returns the most recent entries of a specific type
func (l *Log) ByType(t Type, limit int) ([]Entry, error) {
	entries, err := l.readAll()
	if err != nil {
		return nil, err
	}

	var result []Entry
	for i := len(entries) - 1; i >= 0 && len(result) < limit; i-- {
		if entries[i].Type == t {
			result = append(result, entries[i])
		}
	}
	return result, nil
}

func (l *Log) readAll() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []Entry
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
