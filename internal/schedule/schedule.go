// Package schedule turns detected meeting text into calendar entries,
// degrading through a chain of methods until one succeeds.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vthunder/deskmate/internal/effectors"
	"github.com/vthunder/deskmate/internal/llm"
	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/meeting"
)

// Source identifies which method in the fallback chain scheduled the event.
type Source string

const (
	SourceCalcurse    Source = "calcurse"
	SourceGenerated   Source = "generated"
	SourceSimple      Source = "simple"
	SourceUltraSimple Source = "ultra-simple"
)

// Scheduler writes events to whatever calendar backend responds first:
// calcurse, then an LLM-generated AppleScript, then two deterministic
// AppleScript fallbacks.
type Scheduler struct {
	runner effectors.Runner
	llm    llm.Client
	now    func() time.Time
}

func New(runner effectors.Runner, client llm.Client) *Scheduler {
	return &Scheduler{runner: runner, llm: client, now: time.Now}
}

// Schedule runs the fallback chain for eventText and reports which method
// succeeded. It fails only when every method fails.
func (s *Scheduler) Schedule(ctx context.Context, eventText string) (Source, error) {
	if s.tryCalcurse(ctx, eventText) {
		return SourceCalcurse, nil
	}

	if script := s.generateScript(ctx, eventText); script != "" {
		if s.runScript(ctx, script) {
			return SourceGenerated, nil
		}
		logging.Info("schedule", "generated script failed, degrading")
	}

	if s.runScript(ctx, s.SimpleScript(eventText)) {
		return SourceSimple, nil
	}
	logging.Info("schedule", "simple script failed, degrading")

	if s.runScript(ctx, UltraSimpleScript(eventText)) {
		return SourceUltraSimple, nil
	}

	return "", fmt.Errorf("all scheduling methods failed for %q", eventText)
}

func (s *Scheduler) tryCalcurse(ctx context.Context, event string) bool {
	attempts := []func() (effectors.Result, error){
		func() (effectors.Result, error) {
			return s.runner.Run(ctx, "calcurse", "-a", "-n", event, "-d", "today")
		},
		func() (effectors.Result, error) {
			return s.runner.Run(ctx, "calcurse", "-n", event)
		},
		// Interactive add; a bare newline accepts the prompt.
		func() (effectors.Result, error) {
			return s.runner.RunInput(ctx, "\n", "calcurse", "-a", "-n", event)
		},
	}
	for _, attempt := range attempts {
		res, err := attempt()
		if err == nil && res.ExitCode == 0 {
			return true
		}
		if err != nil {
			logging.Debug("schedule", "calcurse unavailable: %v", err)
			continue
		}
		logging.Debug("schedule", "calcurse exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return false
}

func (s *Scheduler) generateScript(ctx context.Context, eventText string) string {
	if s.llm == nil {
		return ""
	}

	prompt := fmt.Sprintf(`You are an AppleScript expert. Generate a working AppleScript to schedule a calendar event.

Event text: %q

Requirements:
- Use ONLY the "Home" calendar
- Parse the meeting details intelligently from the text
- Extract date, time, and meeting purpose
- If date is "tomorrow", calculate the actual date
- If time is "8 pm", convert to 24-hour format (20:00)
- Set both start and end date (1 hour duration if not specified)
- Use a descriptive summary based on the meeting purpose
- Return ONLY AppleScript code, no explanations

AppleScript format:
tell application "Calendar"
  tell calendar "Home"
    set startDate to date "22 July, 2025 2:00 PM"
    set endDate to date "22 July, 2025 3:00 PM"
    make new event at end with properties {summary:"Meeting Summary", start date:startDate, end date:endDate}
  end tell
  activate
end tell

Parse this event text and generate the appropriate AppleScript.`, eventText)

	raw, err := s.llm.Generate(ctx, "", prompt)
	if err != nil {
		logging.Info("schedule", "script generation failed: %v", err)
		return ""
	}

	script := CleanScript(raw)
	if !ValidateScript(script) {
		logging.Info("schedule", "generated script failed validation")
		return ""
	}
	return script
}

func (s *Scheduler) runScript(ctx context.Context, script string) bool {
	res, err := s.runner.Run(ctx, "osascript", "-e", script)
	if err != nil {
		logging.Info("schedule", "osascript error: %v", err)
		return false
	}
	if res.ExitCode != 0 {
		logging.Debug("schedule", "osascript exited %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
		return false
	}
	return true
}

// SimpleScript builds a deterministic event script from parsed details,
// with a one hour duration.
func (s *Scheduler) SimpleScript(eventText string) string {
	details := meeting.ParseDetails(eventText, s.now())

	start, err := time.Parse("15:04", details.Time)
	if err != nil {
		start = s.now()
	}
	end := start.Add(time.Hour)

	return fmt.Sprintf(`tell application "Calendar"
  tell calendar "Home"
    set startDate to date "%s %s"
    set endDate to date "%s %s"
    make new event at end with properties {summary:"%s", start date:startDate, end date:endDate}
  end tell
  activate
end tell`,
		details.Date, clock12(start),
		details.Date, clock12(end),
		details.Purpose)
}

// UltraSimpleScript is the last-resort event script: no dates, just a
// summary, so Calendar cannot reject it.
func UltraSimpleScript(eventText string) string {
	return fmt.Sprintf(`tell application "Calendar"
  tell calendar "Home"
    make new event at end with properties {summary:"%s"}
  end tell
end tell`, eventText)
}

func clock12(t time.Time) string {
	hour := t.Hour()
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
		if hour > 12 {
			hour -= 12
		}
	} else if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute(), meridiem)
}
