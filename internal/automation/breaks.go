package automation

import (
	"context"
	"time"

	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/intensity"
	"github.com/vthunder/deskmate/internal/logging"
)

// Break cooldowns per intensity tier. Harder work earns earlier breaks.
const (
	highIntensityCooldown   = 20 * time.Minute
	mediumIntensityCooldown = 30 * time.Minute
	lowIntensityCooldown    = 60 * time.Minute
)

var breakMessages = map[string]string{
	"high_intensity":   "You've been working intensely! Time for a 5-minute break to recharge.",
	"medium_intensity": "You've been focused for a while. How about a quick 3-minute break?",
	"low_intensity":    "You've been working steadily. Consider a short break to refresh.",
}

// breakTick scores work intensity and suggests a break when the tier's
// cooldown has elapsed. Only runs while focus mode is active.
func (e *Engine) breakTick() {
	snap := e.reader.Read()
	now := e.now()

	e.mu.Lock()
	if !e.focusActive {
		e.mu.Unlock()
		return
	}

	score := intensity.Score(snap, e.focusStart, now)
	e.intensityScore = score

	var tier string
	var cooldown time.Duration
	switch {
	case score > 0.7:
		tier, cooldown = "high_intensity", highIntensityCooldown
	case score > 0.4:
		tier, cooldown = "medium_intensity", mediumIntensityCooldown
	default:
		tier, cooldown = "low_intensity", lowIntensityCooldown
	}

	due := e.lastBreak.IsZero() || now.Sub(e.lastBreak) > cooldown
	if due {
		e.lastBreak = now
	}
	e.mu.Unlock()

	if !due {
		return
	}

	ctx, cancel := e.tickContext()
	defer cancel()

	if err := e.system.Notify(ctx, "Break Time!", breakMessages[tier]); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}

	e.record(decisions.Entry{
		Type:      decisions.TypeBreak,
		Rule:      "breaks",
		Summary:   tier,
		Intensity: score,
	})
	logging.Info("automation", "break suggested (%s, intensity %.2f)", tier, score)
}

const manualBreakMessage = "Time for a break!"

// TriggerBreak sends a break reminder immediately, resetting the cooldown.
func (e *Engine) TriggerBreak(ctx context.Context) {
	e.mu.Lock()
	e.lastBreak = e.now()
	e.mu.Unlock()

	if err := e.system.Notify(ctx, "Break Time!", manualBreakMessage); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}
	e.record(decisions.Entry{
		Type:    decisions.TypeBreak,
		Rule:    "breaks",
		Summary: "manual",
	})
	e.publishStatus()
}
