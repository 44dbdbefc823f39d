package effectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/vthunder/deskmate/internal/logging"
)

const (
	brightnessSteps   = 16 // hardware brightness range, in key presses
	keyBrightnessDown = 145
	keyBrightnessUp   = 144
)

// System drives the desktop through osascript and helper scripts.
type System struct {
	runner      Runner
	blockScript string
}

// NewSystem wires a System effector. blockScript may be "" to disable
// site blocking.
func NewSystem(runner Runner, blockScript string) *System {
	return &System{runner: runner, blockScript: blockScript}
}

// Notify shows a desktop notification.
func (s *System) Notify(ctx context.Context, title, message string) error {
	script := fmt.Sprintf("display notification %q with title %q", message, title)
	res, err := s.runner.Run(ctx, "osascript", "-e", script)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("notify: osascript exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	logging.Debug("effectors", "notified: %s", title)
	return nil
}

// SetBrightness dials the display to level, in hardware key presses out of
// 16. It zeroes the display first so the result is absolute, not relative.
func (s *System) SetBrightness(ctx context.Context, level int) error {
	if level < 0 {
		level = 0
	}
	if level > brightnessSteps {
		level = brightnessSteps
	}

	var b strings.Builder
	b.WriteString("tell application \"System Events\"\n")
	fmt.Fprintf(&b, "repeat %d times\nkey code %d\nend repeat\n", brightnessSteps, keyBrightnessDown)
	if level > 0 {
		fmt.Fprintf(&b, "repeat %d times\nkey code %d\nend repeat\n", level, keyBrightnessUp)
	}
	b.WriteString("end tell")

	res, err := s.runner.Run(ctx, "osascript", "-e", b.String())
	if err != nil {
		return fmt.Errorf("set brightness: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("set brightness: osascript exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// SetDarkMode switches system appearance.
func (s *System) SetDarkMode(ctx context.Context, enabled bool) error {
	script := fmt.Sprintf(
		"tell application \"System Events\" to tell appearance preferences to set dark mode to %t",
		enabled)
	res, err := s.runner.Run(ctx, "osascript", "-e", script)
	if err != nil {
		return fmt.Errorf("set dark mode: %w", err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("set dark mode: osascript exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// BlockSites invokes the block helper with "block" or "unblock" plus the
// site list. A missing script is a configuration choice, not an error.
func (s *System) BlockSites(ctx context.Context, block bool, sites ...string) error {
	if s.blockScript == "" {
		return nil
	}

	verb := "unblock"
	if block {
		verb = "block"
	}
	res, err := s.runner.Run(ctx, s.blockScript, append([]string{verb}, sites...)...)
	if err != nil {
		return fmt.Errorf("%s sites: %w", verb, err)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%s sites: script exited %d: %s", verb, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	logging.Info("effectors", "distraction sites %sed", verb)
	return nil
}

// RunAppleScript executes a full script body and returns its stdout.
func (s *System) RunAppleScript(ctx context.Context, script string) (string, error) {
	res, err := s.runner.Run(ctx, "osascript", "-e", script)
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("osascript exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}
