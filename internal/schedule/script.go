package schedule

import "strings"

var requiredElements = []string{
	`tell application "Calendar"`,
	`tell calendar "Home"`,
	"make new event",
	"summary:",
	"start date:",
	"end date:",
}

var errorIndicators = []string{
	"not defined",
	"undefined variable",
	"syntax error",
	"missing",
	"error",
}

// CleanScript extracts runnable AppleScript from an LLM response: strips
// markdown fences and any shell wrapper around the script body.
func CleanScript(raw string) string {
	script := raw

	if strings.Contains(script, "```") {
		for _, part := range strings.Split(script, "```") {
			if strings.Contains(part, "tell application") {
				script = part
				break
			}
		}
	}

	var kept []string
	inScript := false
	for _, line := range strings.Split(script, "\n") {
		if strings.Contains(line, "tell application") {
			inScript = true
		}
		if !inScript {
			continue
		}
		trimmed := strings.TrimSpace(line)
		if strings.Contains(line, "EOF") || strings.Contains(line, "osascript") || strings.HasPrefix(trimmed, `"`) {
			break
		}
		kept = append(kept, line)
	}

	if len(kept) > 0 {
		return strings.TrimSpace(strings.Join(kept, "\n"))
	}
	return strings.TrimSpace(script)
}

// ValidateScript checks a generated script for the required Calendar event
// structure and rejects scripts that contain error text.
func ValidateScript(script string) bool {
	for _, element := range requiredElements {
		if !strings.Contains(script, element) {
			return false
		}
	}

	lowered := strings.ToLower(script)
	for _, indicator := range errorIndicators {
		if strings.Contains(lowered, indicator) {
			return false
		}
	}
	return true
}
