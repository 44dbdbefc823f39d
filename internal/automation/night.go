package automation

import (
	"context"
	"fmt"

	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/logging"
)

// nightTick enters night mode inside the configured window and leaves it
// outside. The window wraps midnight: hour >= start or hour < end.
func (e *Engine) nightTick() {
	hour := e.now().Hour()
	inWindow := hour >= e.cfg.NightModeStartHour || hour < e.cfg.NightModeEndHour

	e.mu.Lock()
	var enable, disable bool
	if inWindow && !e.nightActive {
		e.nightActive = true
		enable = true
	} else if !inWindow && e.nightActive {
		e.nightActive = false
		disable = true
	}
	e.mu.Unlock()

	if !enable && !disable {
		return
	}

	ctx, cancel := e.tickContext()
	defer cancel()

	if enable {
		e.enterNight(ctx)
	} else {
		e.leaveNight(ctx)
	}
}

func (e *Engine) enterNight(ctx context.Context) {
	if err := e.system.SetBrightness(ctx, e.cfg.NightBrightness); err != nil {
		logging.Info("automation", "night brightness failed: %v", err)
	}
	if e.cfg.NightDarkMode {
		if err := e.system.SetDarkMode(ctx, true); err != nil {
			logging.Info("automation", "dark mode failed: %v", err)
		}
	}
	if err := e.system.Notify(ctx, "Night Mode Enabled",
		fmt.Sprintf("Screen brightness set to level %d for evening work.", e.cfg.NightBrightness)); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}

	e.record(decisions.Entry{Type: decisions.TypeNightOn, Rule: "night", Summary: "night window entered"})
	logging.Info("automation", "night mode enabled")
}

func (e *Engine) leaveNight(ctx context.Context) {
	if err := e.system.SetBrightness(ctx, e.cfg.DayBrightness); err != nil {
		logging.Info("automation", "day brightness failed: %v", err)
	}
	if e.cfg.NightDarkMode {
		if err := e.system.SetDarkMode(ctx, false); err != nil {
			logging.Info("automation", "dark mode failed: %v", err)
		}
	}
	if err := e.system.Notify(ctx, "Night Mode Disabled",
		"Good morning! Screen brightness restored."); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}

	e.record(decisions.Entry{Type: decisions.TypeNightOff, Rule: "night", Summary: "night window left"})
	logging.Info("automation", "night mode disabled")
}
