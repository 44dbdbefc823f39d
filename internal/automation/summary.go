package automation

import (
	"fmt"
	"strings"

	"github.com/tsawler/prose/v3"

	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/logging"
)

// summaryTick sends the end-of-day digest: counts per rule plus named
// entities pulled out of the day's meeting text.
func (e *Engine) summaryTick() {
	entries, err := e.log.Today()
	if err != nil {
		logging.Info("automation", "summary: reading decisions failed: %v", err)
		return
	}
	if len(entries) == 0 {
		return
	}

	counts := map[decisions.Type]int{}
	var meetingText []string
	for _, entry := range entries {
		counts[entry.Type]++
		if entry.Type == decisions.TypeMeetingSeen {
			meetingText = append(meetingText, entry.Summary)
		}
	}

	message := fmt.Sprintf("Focus sessions: %d. Breaks: %d. Auto-saves: %d (%d kept). Meetings: %d.",
		counts[decisions.TypeFocusOn],
		counts[decisions.TypeBreak],
		counts[decisions.TypeAutoSave],
		len(e.saves.List()),
		counts[decisions.TypeScheduled])

	if names := extractNames(strings.Join(meetingText, ". ")); len(names) > 0 {
		message += " With: " + strings.Join(names, ", ") + "."
	}

	ctx, cancel := e.tickContext()
	defer cancel()

	if err := e.system.Notify(ctx, "Daily Summary", message); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}
	logging.Info("automation", "daily summary: %s", message)
}

// extractNames pulls person and organization entities from meeting text.
func extractNames(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		logging.Debug("automation", "entity extraction failed: %v", err)
		return nil
	}

	seen := map[string]bool{}
	var names []string
	for _, ent := range doc.Entities() {
		if ent.Label != "PERSON" && ent.Label != "GPE" {
			continue
		}
		if seen[ent.Text] {
			continue
		}
		seen[ent.Text] = true
		names = append(names, ent.Text)
	}
	return names
}
