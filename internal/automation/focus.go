package automation

import (
	"context"
	"time"

	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/logging"
)

// focusTick advances the focus state machine from the latest snapshot.
// Sustained coding past the threshold enables focus mode; an equally long
// stretch of anything else disables it. Manual overrides freeze the machine.
func (e *Engine) focusTick() {
	snap := e.reader.Read()
	now := e.now()
	threshold := time.Duration(e.cfg.FocusThresholdMinutes) * time.Minute

	var enable, disable bool

	e.mu.Lock()
	if e.focusManual {
		e.mu.Unlock()
		return
	}

	if snap.Activity() == "coding" {
		e.nonCodingStart = time.Time{}
		if e.focusStart.IsZero() {
			e.focusStart = now
		}
		if !e.focusActive && now.Sub(e.focusStart) >= threshold {
			e.focusActive = true
			enable = true
		}
	} else {
		if e.focusActive {
			if e.nonCodingStart.IsZero() {
				e.nonCodingStart = now
			}
			if now.Sub(e.nonCodingStart) >= threshold {
				e.focusActive = false
				e.nonCodingStart = time.Time{}
				disable = true
			}
		}
		e.focusStart = time.Time{}
	}
	e.mu.Unlock()

	ctx, cancel := e.tickContext()
	defer cancel()

	if enable {
		e.enableFocus(ctx, "sustained coding")
	}
	if disable {
		e.disableFocus(ctx, "coding stopped")
	}
}

func (e *Engine) enableFocus(ctx context.Context, reason string) {
	if err := e.system.BlockSites(ctx, true, e.cfg.DistractionSites...); err != nil {
		logging.Info("automation", "blocking sites failed: %v", err)
	}
	if err := e.system.Notify(ctx, "Focus Mode Enabled",
		"Distractions blocked. Stay focused on your work!"); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}

	e.record(decisions.Entry{
		Type:    decisions.TypeFocusOn,
		Rule:    "focus",
		Summary: reason,
	})
	logging.Info("automation", "focus mode enabled (%s)", reason)
}

func (e *Engine) disableFocus(ctx context.Context, reason string) {
	if err := e.system.BlockSites(ctx, false, e.cfg.DistractionSites...); err != nil {
		logging.Info("automation", "unblocking sites failed: %v", err)
	}
	if err := e.system.Notify(ctx, "Focus Mode Disabled",
		"Distractions unblocked. Take a break if needed!"); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}

	e.record(decisions.Entry{
		Type:    decisions.TypeFocusOff,
		Rule:    "focus",
		Summary: reason,
	})
	logging.Info("automation", "focus mode disabled (%s)", reason)
}

// SetFocus manually forces focus mode on or off. Manual state sticks until
// ClearFocusOverride, so the rule does not immediately fight the user.
func (e *Engine) SetFocus(ctx context.Context, on bool) {
	e.mu.Lock()
	changed := e.focusActive != on
	e.focusActive = on
	e.focusManual = true
	e.focusStart = time.Time{}
	e.nonCodingStart = time.Time{}
	e.mu.Unlock()
	defer e.publishStatus()

	if !changed {
		return
	}
	if on {
		e.enableFocus(ctx, "manual")
	} else {
		e.disableFocus(ctx, "manual")
	}
}

// ClearFocusOverride returns focus mode control to the rule.
func (e *Engine) ClearFocusOverride() {
	e.mu.Lock()
	e.focusManual = false
	e.mu.Unlock()
}
