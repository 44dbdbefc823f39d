package automation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vthunder/deskmate/internal/autosave"
	"github.com/vthunder/deskmate/internal/config"
	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/effectors"
	"github.com/vthunder/deskmate/internal/schedule"
	"github.com/vthunder/deskmate/internal/snapshot"
)

type testEnv struct {
	engine     *Engine
	runner     *effectors.CaptureRunner
	saves      *autosave.Store
	log        *decisions.Log
	stateDir   string
	captureDir string
	clock      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stateDir := t.TempDir()
	captureDir := t.TempDir()

	cfg := config.Default()
	cfg.StatePath = stateDir
	cfg.CapturePath = captureDir
	cfg.BlockScript = "./block_sites.sh"

	runner := effectors.NewCaptureRunner(filepath.Join(stateDir, "calls.jsonl"))
	saves, err := autosave.NewStore(filepath.Join(stateDir, "autosaves.json"))
	if err != nil {
		t.Fatal(err)
	}
	log := decisions.New(stateDir)

	env := &testEnv{
		runner:     runner,
		saves:      saves,
		log:        log,
		stateDir:   stateDir,
		captureDir: captureDir,
		clock:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local),
	}

	env.engine = New(*cfg, snapshot.NewReader(captureDir), effectors.NewSystem(runner, cfg.BlockScript),
		saves, nil, log)
	env.engine.now = func() time.Time { return env.clock }
	return env
}

func (env *testEnv) advance(d time.Duration) {
	env.clock = env.clock.Add(d)
}

func (env *testEnv) writeSnapshot(t *testing.T, snap snapshot.Snapshot) {
	t.Helper()

	raw, err := json.Marshal(map[string]string{
		"active_window": snap.ActiveWindow,
		"focused_text":  snap.FocusedText,
		"clipboard":     snap.Clipboard,
		"ocr_text":      snap.OCRText,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.captureDir, snapshot.LiveFilename), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if snap.Analyzed == nil {
		os.Remove(filepath.Join(env.captureDir, snapshot.AnalyzedFilename))
		return
	}
	analyzed, err := json.Marshal(snap.Analyzed)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.captureDir, snapshot.AnalyzedFilename), analyzed, 0o644); err != nil {
		t.Fatal(err)
	}
}

func codingSnapshot() snapshot.Snapshot {
	return snapshot.Snapshot{
		ActiveWindow: "GoLand",
		Clipboard:    "func handler() {}",
		Analyzed:     &snapshot.Analyzed{Activity: "coding", Confidence: 0.9},
	}
}

func countByType(t *testing.T, log *decisions.Log, typ decisions.Type) int {
	t.Helper()
	entries, err := log.ByType(typ, 100)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestFocusEnablesAfterThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.writeSnapshot(t, codingSnapshot())

	env.engine.focusTick()
	if env.engine.Status().FocusActive {
		t.Fatal("focus enabled before threshold")
	}

	env.advance(30 * time.Minute)
	env.engine.focusTick()

	status := env.engine.Status()
	if !status.FocusActive {
		t.Fatal("focus not enabled at threshold")
	}
	if countByType(t, env.log, decisions.TypeFocusOn) != 1 {
		t.Error("focus_on decision not recorded")
	}

	calls, err := env.runner.Calls()
	if err != nil {
		t.Fatal(err)
	}
	var blocked bool
	for _, call := range calls {
		if call[0] == "./block_sites.sh" && call[1] == "block" {
			blocked = true
		}
	}
	if !blocked {
		t.Error("distraction sites not blocked on focus enable")
	}
}

func TestFocusDecay(t *testing.T) {
	env := newTestEnv(t)
	env.writeSnapshot(t, codingSnapshot())

	env.engine.focusTick()
	env.advance(30 * time.Minute)
	env.engine.focusTick()
	if !env.engine.Status().FocusActive {
		t.Fatal("setup: focus not active")
	}

	// Brief interruption does not disable.
	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "Safari",
		Analyzed:     &snapshot.Analyzed{Activity: "browsing", Confidence: 0.8},
	})
	env.advance(time.Minute)
	env.engine.focusTick()
	env.advance(5 * time.Minute)
	env.engine.focusTick()
	if !env.engine.Status().FocusActive {
		t.Fatal("focus disabled by brief interruption")
	}

	// Returning to coding resets the decay timer.
	env.writeSnapshot(t, codingSnapshot())
	env.advance(time.Minute)
	env.engine.focusTick()

	// A full threshold of non-coding disables.
	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "Safari",
		Analyzed:     &snapshot.Analyzed{Activity: "browsing", Confidence: 0.8},
	})
	env.advance(time.Minute)
	env.engine.focusTick()
	env.advance(30 * time.Minute)
	env.engine.focusTick()

	if env.engine.Status().FocusActive {
		t.Fatal("focus not disabled after sustained non-coding")
	}
	if countByType(t, env.log, decisions.TypeFocusOff) != 1 {
		t.Error("focus_off decision not recorded")
	}
}

func TestFocusManualOverride(t *testing.T) {
	env := newTestEnv(t)

	env.engine.SetFocus(context.Background(), true)
	status := env.engine.Status()
	if !status.FocusActive || !status.FocusManual {
		t.Fatal("manual enable not applied")
	}

	// The rule must not fight the override.
	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "Safari",
		Analyzed:     &snapshot.Analyzed{Activity: "browsing", Confidence: 0.9},
	})
	env.advance(2 * time.Hour)
	env.engine.focusTick()
	if !env.engine.Status().FocusActive {
		t.Fatal("rule disabled a manual focus session")
	}

	env.engine.ClearFocusOverride()
	env.engine.focusTick()
	env.advance(30 * time.Minute)
	env.engine.focusTick()
	if env.engine.Status().FocusActive {
		t.Fatal("focus not released after override cleared")
	}
}

func TestBreakTiers(t *testing.T) {
	env := newTestEnv(t)
	env.writeSnapshot(t, codingSnapshot())

	env.engine.mu.Lock()
	env.engine.focusActive = true
	env.engine.focusStart = env.clock.Add(-3 * time.Hour)
	env.engine.mu.Unlock()

	env.engine.breakTick()
	if countByType(t, env.log, decisions.TypeBreak) != 1 {
		t.Fatal("first break not suggested")
	}

	status := env.engine.Status()
	if status.Intensity <= 0.7 {
		t.Fatalf("intensity %.2f, want high tier", status.Intensity)
	}

	// Inside the high-intensity cooldown: no break.
	env.advance(10 * time.Minute)
	env.engine.breakTick()
	if countByType(t, env.log, decisions.TypeBreak) != 1 {
		t.Error("break suggested inside cooldown")
	}

	// Past the 20 minute cooldown: next break.
	env.advance(11 * time.Minute)
	env.engine.breakTick()
	if countByType(t, env.log, decisions.TypeBreak) != 2 {
		t.Error("break not suggested after cooldown")
	}
}

func TestBreaksOnlyDuringFocus(t *testing.T) {
	env := newTestEnv(t)
	env.writeSnapshot(t, codingSnapshot())

	env.engine.breakTick()
	if countByType(t, env.log, decisions.TypeBreak) != 0 {
		t.Error("break suggested outside focus mode")
	}
}

func TestNightModeTransitions(t *testing.T) {
	env := newTestEnv(t)
	env.clock = time.Date(2026, 9, 1, 21, 0, 0, 0, time.Local)

	env.engine.nightTick()
	if !env.engine.Status().NightActive {
		t.Fatal("night mode not enabled at 21:00")
	}
	if countByType(t, env.log, decisions.TypeNightOn) != 1 {
		t.Error("night_on decision not recorded")
	}

	// Repeat tick inside the window is idempotent.
	env.advance(time.Hour)
	env.engine.nightTick()
	if countByType(t, env.log, decisions.TypeNightOn) != 1 {
		t.Error("duplicate night_on transition")
	}

	// Early morning is still inside the window.
	env.clock = time.Date(2026, 9, 2, 6, 0, 0, 0, time.Local)
	env.engine.nightTick()
	if !env.engine.Status().NightActive {
		t.Error("night mode dropped before the window ends")
	}

	env.clock = time.Date(2026, 9, 2, 8, 0, 0, 0, time.Local)
	env.engine.nightTick()
	if env.engine.Status().NightActive {
		t.Fatal("night mode not disabled at 08:00")
	}
	if countByType(t, env.log, decisions.TypeNightOff) != 1 {
		t.Error("night_off decision not recorded")
	}
}

func TestAutosaveOnWindowSwitch(t *testing.T) {
	env := newTestEnv(t)

	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "VS Code",
		Clipboard:    "def train(model):\n    return model.fit()",
	})
	env.engine.autosaveTick()
	if len(env.saves.List()) != 0 {
		t.Fatal("saved without a window switch")
	}

	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "Slack",
		Clipboard:    "def train(model):\n    return model.fit()",
	})
	env.engine.autosaveTick()

	entries := env.saves.List()
	if len(entries) != 1 {
		t.Fatalf("got %d autosaves, want 1", len(entries))
	}
	if entries[0].FromWindow != "VS Code" {
		t.Errorf("saved window = %q, want the window left behind", entries[0].FromWindow)
	}
	if entries[0].ToWindow != "Slack" {
		t.Errorf("to window = %q, want the window switched to", entries[0].ToWindow)
	}
	if entries[0].Activity != "auto_save" {
		t.Errorf("activity tag = %q, want auto_save", entries[0].Activity)
	}
	if countByType(t, env.log, decisions.TypeAutoSave) != 1 {
		t.Error("autosave decision not recorded")
	}
}

func TestAutosaveSkipsNonCode(t *testing.T) {
	env := newTestEnv(t)

	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "Notes",
		Clipboard:    "groceries: milk, eggs, coffee beans and bread",
	})
	env.engine.autosaveTick()
	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "Safari",
		Clipboard:    "groceries: milk, eggs, coffee beans and bread",
	})
	env.engine.autosaveTick()

	if len(env.saves.List()) != 0 {
		t.Error("non-code clipboard saved")
	}
}

func TestMeetingDetectionDedup(t *testing.T) {
	env := newTestEnv(t)
	env.engine.sched = schedule.New(env.runner, nil)

	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "WhatsApp",
		Clipboard:    "let's meet tomorrow at 3pm to discuss budget",
	})

	env.engine.meetingTick()
	env.engine.meetingTick()

	if got := countByType(t, env.log, decisions.TypeMeetingSeen); got != 1 {
		t.Errorf("got %d meeting_seen decisions, want 1 (dedup)", got)
	}
	// Capture runner reports exit 0, so calcurse "succeeds".
	scheduled, err := env.log.ByType(decisions.TypeScheduled, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scheduled) != 1 {
		t.Fatalf("got %d scheduled decisions, want 1", len(scheduled))
	}
	if scheduled[0].Data["source"] != string(schedule.SourceCalcurse) {
		t.Errorf("source = %v, want calcurse", scheduled[0].Data["source"])
	}
}

func TestTriggerBreak(t *testing.T) {
	env := newTestEnv(t)

	// Manual trigger works outside focus mode and resets the cooldown.
	env.engine.TriggerBreak(context.Background())
	if countByType(t, env.log, decisions.TypeBreak) != 1 {
		t.Fatal("manual break not recorded")
	}
	if !env.engine.Status().LastBreak.Equal(env.clock) {
		t.Error("manual break did not reset last break time")
	}

	calls, err := env.runner.Calls()
	if err != nil {
		t.Fatal(err)
	}
	var notified bool
	for _, call := range calls {
		for _, arg := range call {
			if strings.Contains(arg, manualBreakMessage) {
				notified = true
			}
		}
	}
	if !notified {
		t.Error("manual break did not use the generic reminder text")
	}

	env.writeSnapshot(t, codingSnapshot())
	env.engine.mu.Lock()
	env.engine.focusActive = true
	env.engine.focusStart = env.clock.Add(-3 * time.Hour)
	env.engine.mu.Unlock()

	env.advance(10 * time.Minute)
	env.engine.breakTick()
	if countByType(t, env.log, decisions.TypeBreak) != 1 {
		t.Error("rule ignored cooldown set by manual break")
	}
}

func TestStatusPublishedForOtherProcesses(t *testing.T) {
	env := newTestEnv(t)

	if _, err := ReadStatus(env.stateDir); err == nil {
		t.Fatal("status readable before anything ran")
	}

	env.engine.SetFocus(context.Background(), true)

	status, err := ReadStatus(env.stateDir)
	if err != nil {
		t.Fatal(err)
	}
	if !status.FocusActive || !status.FocusManual {
		t.Errorf("published status = %+v, want manual focus on", status)
	}
	if !status.UpdatedAt.Equal(env.clock) {
		t.Errorf("published at %v, want %v", status.UpdatedAt, env.clock)
	}
}

func TestStatusReportsBlockedSites(t *testing.T) {
	env := newTestEnv(t)

	if env.engine.Status().SitesBlocked != 0 {
		t.Error("sites reported blocked while focus is off")
	}

	env.engine.SetFocus(context.Background(), true)
	if got := env.engine.Status().SitesBlocked; got != len(env.engine.cfg.DistractionSites) {
		t.Errorf("blocked site count = %d, want %d", got, len(env.engine.cfg.DistractionSites))
	}
}

func TestMeetingIgnoredOutsideMessaging(t *testing.T) {
	env := newTestEnv(t)

	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "GoLand",
		Clipboard:    "let's meet tomorrow at 3pm",
	})
	env.engine.meetingTick()

	if countByType(t, env.log, decisions.TypeMeetingSeen) != 0 {
		t.Error("meeting detected outside messaging context")
	}
}

func TestMeetingFromAnalyzedDescription(t *testing.T) {
	env := newTestEnv(t)

	// No messaging window and no meeting text in the raw capture; the
	// phrase only appears in the analyzer's description.
	env.writeSnapshot(t, snapshot.Snapshot{
		ActiveWindow: "GoLand",
		Analyzed: &snapshot.Analyzed{
			Activity:    "chatting",
			Confidence:  0.8,
			Description: "user agreed to meet tomorrow at 3pm to discuss budget",
		},
	})

	env.engine.meetingTick()
	env.engine.meetingTick()

	seen, err := env.log.ByType(decisions.TypeMeetingSeen, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(seen) != 1 {
		t.Fatalf("got %d meeting_seen decisions, want 1 (dedup)", len(seen))
	}
	if !strings.Contains(seen[0].Summary, "meet tomorrow") {
		t.Errorf("summary = %q, want the extracted phrase", seen[0].Summary)
	}
}
