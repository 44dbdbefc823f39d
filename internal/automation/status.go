package automation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/snapshot"
)

// StatusFilename is where the running engine publishes its state, under
// the state directory. Other processes read it through ReadStatus.
const StatusFilename = "status.json"

// Status is a point-in-time view of the engine state.
type Status struct {
	UpdatedAt    time.Time `json:"updated_at"`
	FocusActive  bool      `json:"focus_active"`
	FocusManual  bool      `json:"focus_manual"`
	FocusStart   time.Time `json:"focus_start,omitempty"`
	NightActive  bool      `json:"night_active"`
	Intensity    float64   `json:"intensity"`
	LastBreak    time.Time `json:"last_break,omitempty"`
	LastMeeting  string    `json:"last_meeting,omitempty"`
	LastWindow   string    `json:"last_window,omitempty"`
	SitesBlocked int       `json:"sites_blocked"`
	AutoSaves    int       `json:"auto_saves"`

	// Capture feed freshness, available only when a watcher is attached.
	CaptureSeen bool          `json:"capture_seen"`
	CaptureAge  time.Duration `json:"capture_age_ns,omitempty"`
}

// SetWatcher attaches the capture watcher so Status can report feed
// freshness. Optional.
func (e *Engine) SetWatcher(w *snapshot.Watcher) {
	e.mu.Lock()
	e.watcher = w
	e.mu.Unlock()
}

// Status reports current rule state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		UpdatedAt:   e.now(),
		FocusActive: e.focusActive,
		FocusManual: e.focusManual,
		FocusStart:  e.focusStart,
		NightActive: e.nightActive,
		Intensity:   e.intensityScore,
		LastBreak:   e.lastBreak,
		LastMeeting: e.lastMeeting,
		LastWindow:  e.lastWindow,
	}
	if e.focusActive {
		s.SitesBlocked = len(e.cfg.DistractionSites)
	}
	s.AutoSaves = len(e.saves.List())
	if e.watcher != nil {
		s.CaptureAge, s.CaptureSeen = e.watcher.Freshness()
	}
	return s
}

// publishStatus writes the current state to the state directory so the
// status command and MCP tools can read it from outside this process.
func (e *Engine) publishStatus() {
	data, err := json.MarshalIndent(e.Status(), "", "  ")
	if err != nil {
		logging.Debug("automation", "encoding status failed: %v", err)
		return
	}
	path := filepath.Join(e.cfg.StatePath, StatusFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logging.Debug("automation", "publishing status failed: %v", err)
	}
}

// ReadStatus loads the status last published by a running engine.
func ReadStatus(statePath string) (Status, error) {
	data, err := os.ReadFile(filepath.Join(statePath, StatusFilename))
	if err != nil {
		return Status{}, fmt.Errorf("reading published status: %w", err)
	}

	var s Status
	if err := json.Unmarshal(data, &s); err != nil {
		return Status{}, fmt.Errorf("parsing published status: %w", err)
	}
	return s, nil
}
