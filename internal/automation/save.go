package automation

import (
	"github.com/vthunder/deskmate/internal/autosave"
	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/logging"
)

// autosaveTick watches for application switches and snapshots clipboard
// text that looks like abandoned work in progress.
func (e *Engine) autosaveTick() {
	snap := e.reader.Read()

	e.mu.Lock()
	previous := e.lastWindow
	e.lastWindow = snap.ActiveWindow
	e.mu.Unlock()

	if previous == "" || previous == snap.ActiveWindow {
		return
	}
	if !autosave.Worth(snap.Clipboard) {
		return
	}

	if err := e.saves.Save(previous, snap.ActiveWindow, snap.Clipboard); err != nil {
		logging.Info("automation", "autosave failed: %v", err)
		e.record(decisions.Entry{
			Type:    decisions.TypeError,
			Rule:    "autosave",
			Summary: "save failed",
			Data:    map[string]any{"error": err.Error()},
		})
		return
	}

	e.record(decisions.Entry{
		Type:    decisions.TypeAutoSave,
		Rule:    "autosave",
		Summary: "saved work on window switch",
		Data: map[string]any{
			"from": previous,
			"to":   snap.ActiveWindow,
		},
	})
	logging.Debug("automation", "autosaved %d chars from %s", len(snap.Clipboard), previous)
}
