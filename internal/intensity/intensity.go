// Package intensity computes the work-intensity heuristic used to pace
// break reminders. The weights are a tuned guess, not a calibrated model;
// they are kept exactly as shipped.
package intensity

import (
	"time"

	"github.com/vthunder/deskmate/internal/snapshot"
)

// ConfidenceFloor is the minimum classifier confidence before an activity
// contributes to the score.
const ConfidenceFloor = 0.7

// Score computes a work intensity score in [0, 1] from the current snapshot
// and the start of the continuous focus session (zero when none is running).
// The factors are additive and the sum is clamped at 1.0:
//
//	+0.4 coding           (confidence > 0.7)
//	+0.3 researching      (confidence > 0.7)
//	+0.3 writing          (confidence > 0.7)
//	+0.2 peak hours       (9-11 or 14-16 local, inclusive)
//	+0.2 session > 2h     (+0.1 when only > 1h)
//	+0.1 clipboard length > 10
func Score(snap snapshot.Snapshot, focusStart, now time.Time) float64 {
	score := 0.0

	if a := snap.Analyzed; a != nil && a.Confidence > ConfidenceFloor {
		switch a.Activity {
		case "coding":
			score += 0.4
		case "researching":
			score += 0.3
		case "writing":
			score += 0.3
		}
	}

	hour := now.Hour()
	if (hour >= 9 && hour <= 11) || (hour >= 14 && hour <= 16) {
		score += 0.2
	}

	if !focusStart.IsZero() {
		dur := now.Sub(focusStart)
		if dur > 2*time.Hour {
			score += 0.2
		} else if dur > time.Hour {
			score += 0.1
		}
	}

	if len(snap.Clipboard) > 10 {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
