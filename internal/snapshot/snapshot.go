package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/vthunder/deskmate/internal/logging"
)

// Filenames the external capture process writes into the capture directory.
const (
	LiveFilename     = "live_output.json"
	AnalyzedFilename = "prediction_output.json"
)

// Analyzed is the optional activity classification produced by the analyzer.
type Analyzed struct {
	Activity    string  `json:"activity"`
	Description string  `json:"description"`
	Details     string  `json:"details"`
	Confidence  float64 `json:"confidence"`
}

// Snapshot is a point-in-time capture of user activity. Raw fields come from
// the live capture; Analyzed is nil when the classification is unavailable.
type Snapshot struct {
	ActiveWindow string `json:"active_window"`
	FocusedText  string `json:"focused_text"`
	Clipboard    string `json:"clipboard"`
	OCRText      string `json:"ocr_text"`

	Analyzed *Analyzed `json:"analyzed,omitempty"`
}

// Activity returns the classified activity name, or "" when no
// classification is available.
func (s Snapshot) Activity() string {
	if s.Analyzed == nil {
		return ""
	}
	return s.Analyzed.Activity
}

// Reader loads the latest snapshot from the capture directory. Read never
// fails: missing or corrupt data degrades to empty fields.
type Reader struct {
	dir string
}

// NewReader creates a Reader over the capture directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Read returns the current snapshot. The raw capture and the analyzed
// classification are sourced independently; losing one never loses the other.
func (r *Reader) Read() Snapshot {
	var snap Snapshot

	data, err := os.ReadFile(filepath.Join(r.dir, LiveFilename))
	if err != nil {
		logging.Debug("snapshot", "live capture unavailable: %v", err)
	} else if err := json.Unmarshal(data, &snap); err != nil {
		logging.Warn("snapshot", "live capture malformed: %v", err)
		snap = Snapshot{}
	}

	snap.Analyzed = r.readAnalyzed()
	return snap
}

func (r *Reader) readAnalyzed() *Analyzed {
	data, err := os.ReadFile(filepath.Join(r.dir, AnalyzedFilename))
	if err != nil {
		logging.Debug("snapshot", "analyzed activity unavailable: %v", err)
		return nil
	}

	var a Analyzed
	if err := json.Unmarshal(data, &a); err != nil {
		logging.Warn("snapshot", "analyzed activity malformed: %v", err)
		return nil
	}

	// Normalize at the boundary so rules never re-check.
	a.Activity = strings.ToLower(strings.TrimSpace(a.Activity))
	if a.Confidence < 0 {
		a.Confidence = 0
	}
	if a.Confidence > 1 {
		a.Confidence = 1
	}
	return &a
}
