// Package chat is the activity-aware conversational companion: an LLM
// responder with persistent history and quick note capture.
package chat

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Message is one turn of conversation.
type Message struct {
	Timestamp time.Time `json:"ts"`
	Speaker   string    `json:"speaker"`
	Content   string    `json:"content"`
}

// Note is a captured thought, outside the conversation flow.
type Note struct {
	Timestamp time.Time `json:"ts"`
	Content   string    `json:"content"`
}

// History persists conversation turns and notes in SQLite.
type History struct {
	db *sql.DB
}

const historySchema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	speaker TEXT NOT NULL,
	content TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	ts TEXT NOT NULL,
	content TEXT NOT NULL
);`

// NewHistory opens or creates the history database at path.
func NewHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Append records one conversation turn.
func (h *History) Append(speaker, content string) error {
	_, err := h.db.Exec(
		"INSERT INTO messages (ts, speaker, content) VALUES (?, ?, ?)",
		time.Now().Format(time.RFC3339), speaker, content)
	if err != nil {
		return fmt.Errorf("appending message: %w", err)
	}
	return nil
}

// Recent returns the last n turns in chronological order.
func (h *History) Recent(n int) ([]Message, error) {
	rows, err := h.db.Query(
		"SELECT ts, speaker, content FROM messages ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var ts string
		var m Message
		if err := rows.Scan(&ts, &m.Speaker, &m.Content); err != nil {
			return nil, err
		}
		m.Timestamp, _ = time.Parse(time.RFC3339, ts)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SaveNote records a captured note.
func (h *History) SaveNote(content string) error {
	_, err := h.db.Exec(
		"INSERT INTO notes (ts, content) VALUES (?, ?)",
		time.Now().Format(time.RFC3339), content)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

// Notes returns all captured notes, oldest first.
func (h *History) Notes() ([]Note, error) {
	rows, err := h.db.Query("SELECT ts, content FROM notes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("reading notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var ts string
		var n Note
		if err := rows.Scan(&ts, &n.Content); err != nil {
			return nil, err
		}
		n.Timestamp, _ = time.Parse(time.RFC3339, ts)
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
