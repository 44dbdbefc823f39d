package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vthunder/deskmate/internal/effectors"
	"github.com/vthunder/deskmate/internal/llm"
	"github.com/vthunder/deskmate/internal/logging"
	"github.com/vthunder/deskmate/internal/snapshot"
)

const historyWindow = 5

const systemPrompt = `You are a friendly and supportive companion who is aware of the user's current activity. Your role is to:
- Be cheerful, encouraging, and supportive
- Check in on their well-being during long work sessions
- Provide positive reinforcement and motivation
- Keep conversations light and engaging
- Suggest breaks when appropriate
- Reference their current activity when relevant and helpful

Keep your responses short (2-3 sentences max), friendly, and conversational. If you know what the user is currently doing, you can reference it naturally in your response.`

var clipboardMeetingKeywords = []string{"meet", "meeting", "call", "appointment", "schedule"}

var notePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^note[:\s]+(.+)`),
	regexp.MustCompile(`(?i)^make a note[:\s]+(.+)`),
	regexp.MustCompile(`(?i)^add note[:\s]+(.+)`),
	regexp.MustCompile(`(?i)^remember this[:\s]+(.+)`),
}

// Engine answers user messages with activity context and persistent history.
type Engine struct {
	llm     llm.Client
	history *History
	reader  *snapshot.Reader
	system  *effectors.System
}

// NewEngine wires the engine. system may be nil, in which case captured
// notes stay in the local store only.
func NewEngine(client llm.Client, history *History, reader *snapshot.Reader, system *effectors.System) *Engine {
	return &Engine{llm: client, history: history, reader: reader, system: system}
}

// Respond handles one user message. Note commands ("note: ...",
// "make a note ...", "remember this: ...") are captured without touching
// the LLM and mirrored to the Notes app when a system effector is wired.
func (e *Engine) Respond(ctx context.Context, message string) (string, error) {
	if note, ok := noteContent(message); ok {
		if err := e.history.SaveNote(note); err != nil {
			return "", err
		}
		if e.system != nil {
			if err := e.createAppNote(ctx, note); err != nil {
				logging.Info("chat", "Notes app write failed: %v", err)
				return fmt.Sprintf("Noted: %s", note), nil
			}
			return fmt.Sprintf("Noted! I've added this to your Notes app: '%s'", note), nil
		}
		return fmt.Sprintf("Noted: %s", note), nil
	}

	prompt := e.buildPrompt(message)
	reply, err := e.llm.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("chat response: %w", err)
	}
	if reply == "" {
		reply = "Sorry, I didn't catch that. Could you repeat?"
	}

	if err := e.history.Append("user", message); err != nil {
		logging.Info("chat", "history write failed: %v", err)
	}
	if err := e.history.Append("bot", reply); err != nil {
		logging.Info("chat", "history write failed: %v", err)
	}
	return reply, nil
}

func noteContent(message string) (string, bool) {
	trimmed := strings.TrimSpace(message)
	for _, re := range notePatterns {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func (e *Engine) createAppNote(ctx context.Context, note string) error {
	// Single quotes so the content cannot break out of the script string.
	content := strings.ReplaceAll(note, `"`, "'")
	script := fmt.Sprintf(`tell application "Notes"
    activate
    make new note at folder "Notes" with properties {name:"Quick note", body:"%s"}
end tell`, content)
	_, err := e.system.RunAppleScript(ctx, script)
	return err
}

func (e *Engine) buildPrompt(message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User: %s", message)

	if ctx := ActivityContext(e.reader.Read()); ctx != "" {
		fmt.Fprintf(&b, "\n\nCurrent Activity Context: %s", ctx)
	}

	if recent, err := e.history.Recent(historyWindow); err == nil && len(recent) > 0 {
		var lines []string
		for _, m := range recent {
			lines = append(lines, fmt.Sprintf("%s: %s", m.Speaker, m.Content))
		}
		fmt.Fprintf(&b, "\n\nRecent Conversation:\n%s", strings.Join(lines, "\n"))
	}

	b.WriteString("\n\nRespond as the companion:")
	return b.String()
}

// ActivityContext summarizes the snapshot for the prompt: what the user is
// doing (when confident), which window is active, and whether the clipboard
// holds meeting details.
func ActivityContext(snap snapshot.Snapshot) string {
	var parts []string

	if a := snap.Analyzed; a != nil && a.Description != "" && a.Confidence > 0.5 {
		parts = append(parts, fmt.Sprintf("I can see you're %s", strings.ToLower(a.Description)))
		if a.Details != "" {
			parts = append(parts, fmt.Sprintf("Specifically: %s", a.Details))
		}
	}

	if snap.ActiveWindow != "" && snap.ActiveWindow != "unknown" {
		parts = append(parts, fmt.Sprintf("You're currently using %s", snap.ActiveWindow))
	}

	if n := len(snap.Clipboard); n > 10 && n < 200 {
		lowered := strings.ToLower(snap.Clipboard)
		for _, kw := range clipboardMeetingKeywords {
			if strings.Contains(lowered, kw) {
				parts = append(parts, "I noticed you have meeting details in your clipboard")
				break
			}
		}
	}

	return strings.Join(parts, " ")
}
