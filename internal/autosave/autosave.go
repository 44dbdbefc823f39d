// Package autosave persists snippets of work-in-progress text captured when
// the active window changes mid-edit.
package autosave

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// MaxEntries bounds the store; oldest entries are evicted first.
const MaxEntries = 50

// MinLength is the shortest clipboard text worth saving.
const MinLength = 20

var codeKeywords = []string{
	"function", "class", "import", "def", "const", "let", "var",
}

// Entry is one saved snippet, tagged with the window switch that
// triggered it.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	FromWindow string    `json:"from_window"`
	ToWindow   string    `json:"to_window"`
	Content    string    `json:"clipboard_content"`
	Activity   string    `json:"activity"`
}

// Store is a JSON-file-backed ring of saved snippets.
type Store struct {
	mu      sync.Mutex
	path    string
	entries []Entry
}

// NewStore loads or creates the store at path.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading autosave store: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parsing autosave store: %w", err)
	}
	return s, nil
}

// Worth reports whether content looks like code worth preserving.
func Worth(content string) bool {
	if len(content) <= MinLength {
		return false
	}
	lowered := strings.ToLower(content)
	for _, kw := range codeKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Save appends an entry, evicting the oldest past MaxEntries.
func (s *Store) Save(fromWindow, toWindow, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, Entry{
		Timestamp:  time.Now(),
		FromWindow: fromWindow,
		ToWindow:   toWindow,
		Content:    content,
		Activity:   "auto_save",
	})
	if len(s.entries) > MaxEntries {
		s.entries = s.entries[len(s.entries)-MaxEntries:]
	}
	return s.flush()
}

// List returns a copy of the entries, oldest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Clear drops all entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	return s.flush()
}

func (s *Store) flush() error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating autosave dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding autosave store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing autosave store: %w", err)
	}
	return nil
}
