package automation

import (
	"fmt"

	"github.com/vthunder/deskmate/internal/decisions"
	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/meeting"
)

// meetingTick scans messaging contexts for meeting phrases, then the
// analyzer's description and details, and schedules each newly seen one.
// Identical consecutive detections are dropped so one conversation does
// not create a pile of events.
func (e *Engine) meetingTick() {
	snap := e.reader.Read()

	if phrase := meeting.DetectInConversation(snap); phrase != "" {
		e.handleMeeting(phrase)
	}
	if snap.Analyzed != nil {
		if phrase := meeting.Extract(snap.Analyzed.Description + " " + snap.Analyzed.Details); phrase != "" {
			e.handleMeeting(phrase)
		}
	}
}

func (e *Engine) handleMeeting(phrase string) {
	e.mu.Lock()
	if phrase == e.lastMeeting {
		e.mu.Unlock()
		return
	}
	e.lastMeeting = phrase
	e.mu.Unlock()

	details := meeting.ParseDetails(phrase, e.now())
	e.record(decisions.Entry{
		Type:    decisions.TypeMeetingSeen,
		Rule:    "meetings",
		Summary: phrase,
		Data: map[string]any{
			"date":    details.Date,
			"time":    details.Time,
			"purpose": details.Purpose,
		},
	})
	logging.Info("automation", "meeting detected: %s", logging.Truncate(phrase, 120))

	if e.sched == nil {
		return
	}

	ctx, cancel := e.tickContext()
	defer cancel()

	source, err := e.sched.Schedule(ctx, phrase)
	if err != nil {
		logging.Info("automation", "scheduling failed: %v", err)
		if logErr := e.log.RecordError("meetings", "scheduling failed", err); logErr != nil {
			logging.Debug("automation", "decision log write failed: %v", logErr)
		}
		return
	}

	e.record(decisions.Entry{
		Type:    decisions.TypeScheduled,
		Rule:    "meetings",
		Summary: phrase,
		Data:    map[string]any{"source": string(source)},
	})
	if err := e.system.Notify(ctx, "Meeting Scheduled",
		fmt.Sprintf("%s on %s at %s", details.Purpose, details.Date, details.Time)); err != nil {
		logging.Debug("automation", "notify failed: %v", err)
	}
}
