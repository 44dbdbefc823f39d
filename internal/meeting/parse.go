package meeting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Details is the schedulable form of a detected meeting phrase.
type Details struct {
	Date    string // "2 January, 2006"
	Time    string // 24h "15:04"
	Purpose string
}

const dateLayout = "2 January, 2006"

var dayNames = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

var (
	clockPattern    = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(am|pm)?`)
	hourMeridiem    = regexp.MustCompile(`(?i)(\d{1,2})\s*(am|pm)`)
	purposeKeywords = []string{"discuss", "sync", "call", "meeting", "catch up", "review"}
)

var purposeSkipWords = map[string]bool{
	"tomorrow": true, "today": true, "the": true, "a": true, "an": true,
	"at": true, "on": true, "in": true, "about": true, "for": true,
	"with": true, "and": true, "or": true, "to": true, "of": true,
	"let": true, "lets": true, "we": true, "our": true, "your": true,
	"could": true, "not": true, "extract": true, "axvalue": true,
	"from": true, "focused": true, "element": true,
	"am": true, "pm": true,
}

// ParseDetails turns a meeting phrase into concrete scheduling details
// relative to now. Defaults: today's date, 10:00, purpose "Meeting".
func ParseDetails(text string, now time.Time) Details {
	return Details{
		Date:    parseDate(text, now),
		Time:    parseTime(text),
		Purpose: parsePurpose(text),
	}
}

func parseTime(text string) string {
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		meridiem := strings.ToLower(m[3])
		if meridiem == "pm" && hour != 12 {
			hour += 12
		} else if meridiem == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:%s", hour, m[2])
	}

	if m := hourMeridiem.FindStringSubmatch(text); m != nil {
		hour, _ := strconv.Atoi(m[1])
		meridiem := strings.ToLower(m[2])
		if meridiem == "pm" && hour != 12 {
			hour += 12
		} else if meridiem == "am" && hour == 12 {
			hour = 0
		}
		return fmt.Sprintf("%02d:00", hour)
	}

	return "10:00"
}

func parseDate(text string, now time.Time) string {
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, "tomorrow") {
		return now.AddDate(0, 0, 1).Format(dateLayout)
	}
	if strings.Contains(lowered, "today") {
		return now.Format(dateLayout)
	}

	// Monday-indexed weekday, so the named-day arithmetic below works on a
	// 0=Monday..6=Sunday scale.
	current := (int(now.Weekday()) + 6) % 7
	for i, day := range dayNames {
		if strings.Contains(lowered, day) {
			ahead := ((i-current)%7 + 7) % 7
			if ahead == 0 {
				ahead = 7 // same day name means next week
			}
			return now.AddDate(0, 0, ahead).Format(dateLayout)
		}
	}

	return now.Format(dateLayout)
}

func parsePurpose(text string) string {
	lowered := strings.ToLower(text)

	for _, kw := range purposeKeywords {
		idx := strings.Index(lowered, kw)
		if idx < 0 {
			continue
		}

		following := strings.Fields(lowered[idx+len(kw):])
		if len(following) > 5 {
			following = following[:5]
		}

		var kept []string
		for _, w := range following {
			w = strings.Trim(w, ".,!?;:")
			if len(w) <= 2 || purposeSkipWords[w] || startsWithDigit(w) {
				continue
			}
			kept = append(kept, w)
		}

		if len(kept) > 0 {
			return titleWords(kw) + " - " + strings.Join(kept, " ")
		}
		return titleWords(kw)
	}

	return "Meeting"
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
