// Package meeting detects meeting/event phrases in captured text and parses
// them into schedulable details.
package meeting

import (
	"regexp"
	"strings"

	"github.com/vthunder/deskmate/internal/snapshot"
)

// The pattern chains are ordered; the first pattern that matches wins and
// its full match text is returned. Order matters and is load-bearing.
var basicPatterns = compile([]string{
	// Messaging-style: verb ... time/date, with optional trailing purpose
	`(meet(?:ing)?|call|appointment|catch up|sync|discuss)[^\n]*?(tomorrow|today|\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2}|\d{1,2}/\d{1,2})[^\n]*?(?:to|for|about|discuss)?[^\n]*?(\w+)?`,
	// Scheduling verb ... meeting noun ... time/date
	`(schedule|book|arrange|set up|plan)[^\n]*?(meet(?:ing)?|call|appointment)[^\n]*?(tomorrow|today|\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2})`,
	// Time-first
	`(\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2})[^\n]*?(meet(?:ing)?|call|discuss|sync)[^\n]*?(?:to|for|about)?[^\n]*?(\w+)?`,
	// Day-name first
	`(tomorrow|today|monday|tuesday|wednesday|thursday|friday|saturday|sunday)[^\n]*?(meet(?:ing)?|call|discuss)[^\n]*?(?:at|on)?[^\n]*?(\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2})?`,
	// Simple fallback
	`(meet(?:ing)?|call|appointment)[^\n]*?(tomorrow|today|\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2})`,
})

// Sentence-bounded phrases used once a messaging context is established.
var fullPhrasePatterns = compile([]string{
	`[^.]*(meet(?:ing)?|call|appointment|sync|discuss)[^.]*(tomorrow|today|\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2})[^.]*`,
	`[^.]*(\d{1,2} ?(?:am|pm)|\d{1,2}:\d{2})[^.]*(meet(?:ing)?|call|discuss|sync)[^.]*`,
	`[^.]*(tomorrow|today|monday|tuesday|wednesday|thursday|friday|saturday|sunday)[^.]*(meet(?:ing)?|call|discuss)[^.]*`,
})

var messagingApps = []string{
	"whatsapp", "telegram", "slack", "discord", "teams", "zoom",
	"mail", "outlook", "gmail",
}

var messagingIndicators = []string{
	"chat", "message", "conversation", "contact", "group", "channel",
}

var meetingKeywords = []string{
	"meet", "meeting", "call", "appointment", "sync", "discuss", "catch up",
	"schedule", "book", "arrange", "set up", "plan", "coordinate",
}

var timeKeywords = []string{
	"tomorrow", "today", "monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday", "am", "pm", "morning", "afternoon", "evening",
}

func compile(patterns []string) []*regexp.Regexp {
	result := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		result = append(result, regexp.MustCompile("(?i)"+p))
	}
	return result
}

// Extract scans free text for a meeting/event phrase. It tries the basic
// patterns in order and returns the first full match, trimmed, or "" when
// nothing matches. Callers are responsible for deduplicating repeats.
func Extract(text string) string {
	return firstMatch(basicPatterns, text)
}

// IsMessagingContext reports whether the snapshot shows evidence of a
// messaging surface: a known app in the window title, or messaging UI
// keywords in the OCR text.
func IsMessagingContext(snap snapshot.Snapshot) bool {
	window := strings.ToLower(snap.ActiveWindow)
	for _, app := range messagingApps {
		if strings.Contains(window, app) {
			return true
		}
	}

	ocr := strings.ToLower(snap.OCRText)
	for _, indicator := range messagingIndicators {
		if strings.Contains(ocr, indicator) {
			return true
		}
	}
	return false
}

// DetectInConversation is the context-aware path: it requires a messaging
// context plus co-occurrence of a meeting keyword and a time keyword across
// the captured text, then tries the sentence-bounded phrase patterns before
// falling back to the basic extractor.
func DetectInConversation(snap snapshot.Snapshot) string {
	if !IsMessagingContext(snap) {
		return ""
	}

	combined := strings.ToLower(strings.Join([]string{
		snap.Clipboard, snap.FocusedText, snap.OCRText,
	}, " "))

	if !containsAny(combined, meetingKeywords) || !containsAny(combined, timeKeywords) {
		return ""
	}

	if phrase := firstMatch(fullPhrasePatterns, combined); phrase != "" {
		return phrase
	}
	return Extract(combined)
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindString(text); m != "" {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
