package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vthunder/deskmate/internal/effectors"
	"github.com/vthunder/deskmate/internal/snapshot"
)

type stubLLM struct {
	reply   string
	prompts []string
}

func (s *stubLLM) Generate(_ context.Context, _, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.reply, nil
}

func newTestEngine(t *testing.T) (*Engine, *stubLLM, *History) {
	t.Helper()

	history, err := NewHistory(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { history.Close() })

	client := &stubLLM{reply: "Keep going, you're doing great!"}
	return NewEngine(client, history, snapshot.NewReader(t.TempDir()), nil), client, history
}

func TestRespondRecordsHistory(t *testing.T) {
	engine, _, history := newTestEngine(t)

	reply, err := engine.Respond(context.Background(), "how am I doing?")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Keep going, you're doing great!" {
		t.Errorf("reply = %q", reply)
	}

	messages, err := history.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(messages))
	}
	if messages[0].Speaker != "user" || messages[1].Speaker != "bot" {
		t.Errorf("wrong speakers: %v", messages)
	}
}

func TestRespondIncludesRecentConversation(t *testing.T) {
	engine, client, history := newTestEngine(t)

	if err := history.Append("user", "hello"); err != nil {
		t.Fatal(err)
	}
	if err := history.Append("bot", "hi there"); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Respond(context.Background(), "what did I say?"); err != nil {
		t.Fatal(err)
	}

	prompt := client.prompts[0]
	if !strings.Contains(prompt, "Recent Conversation:") || !strings.Contains(prompt, "user: hello") {
		t.Errorf("history missing from prompt:\n%s", prompt)
	}
}

func TestNoteCapture(t *testing.T) {
	engine, client, history := newTestEngine(t)

	reply, err := engine.Respond(context.Background(), "note: ship the release on Friday")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Noted: ship the release on Friday" {
		t.Errorf("reply = %q", reply)
	}
	if len(client.prompts) != 0 {
		t.Error("note capture should not call the LLM")
	}

	notes, err := history.Notes()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Content != "ship the release on Friday" {
		t.Errorf("notes = %v", notes)
	}
}

func TestNotePatternVariants(t *testing.T) {
	cases := []struct {
		message string
		want    string
		ok      bool
	}{
		{"note: buy milk", "buy milk", true},
		{"Note buy milk", "buy milk", true},
		{"make a note: call the bank", "call the bank", true},
		{"add note check the oven", "check the oven", true},
		{"remember this: passport renewal", "passport renewal", true},
		{"I should note that down later", "", false},
		{"hello there", "", false},
	}

	for _, c := range cases {
		got, ok := noteContent(c.message)
		if ok != c.ok || got != c.want {
			t.Errorf("noteContent(%q) = %q, %v; want %q, %v", c.message, got, ok, c.want, c.ok)
		}
	}
}

func TestNoteMirroredToNotesApp(t *testing.T) {
	history, err := NewHistory(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer history.Close()

	runner := effectors.NewCaptureRunner(filepath.Join(t.TempDir(), "calls.jsonl"))
	engine := NewEngine(&stubLLM{}, history, snapshot.NewReader(t.TempDir()),
		effectors.NewSystem(runner, ""))

	reply, err := engine.Respond(context.Background(), `note: say "hi" to Sam`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(reply, "Notes app") {
		t.Errorf("reply = %q", reply)
	}

	calls, err := runner.Calls()
	if err != nil {
		t.Fatal(err)
	}
	if len(calls) != 1 || calls[0][0] != "osascript" {
		t.Fatalf("unexpected calls: %v", calls)
	}
	script := calls[0][2]
	if !strings.Contains(script, `tell application "Notes"`) {
		t.Errorf("not a Notes script: %s", script)
	}
	if strings.Contains(script, `say "hi"`) {
		t.Error("double quotes not neutralized in note body")
	}
}

func TestHistoryRecentOrderAndLimit(t *testing.T) {
	history, err := NewHistory(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer history.Close()

	for _, content := range []string{"one", "two", "three"} {
		if err := history.Append("user", content); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := history.Recent(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].Content != "two" || recent[1].Content != "three" {
		t.Errorf("wrong window: %v", recent)
	}
}

func TestActivityContext(t *testing.T) {
	snap := snapshot.Snapshot{
		ActiveWindow: "GoLand",
		Clipboard:    "meeting with Dana at 3pm",
		Analyzed: &snapshot.Analyzed{
			Description: "Writing Go code",
			Details:     "editing a parser",
			Confidence:  0.8,
		},
	}

	ctx := ActivityContext(snap)
	for _, want := range []string{
		"I can see you're writing go code",
		"Specifically: editing a parser",
		"You're currently using GoLand",
		"meeting details in your clipboard",
	} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}

	// Low confidence drops the activity description.
	snap.Analyzed.Confidence = 0.3
	if strings.Contains(ActivityContext(snap), "I can see") {
		t.Error("low-confidence description included")
	}

	// Unknown window is not mentioned.
	snap.ActiveWindow = "unknown"
	if strings.Contains(ActivityContext(snap), "currently using") {
		t.Error("unknown window mentioned")
	}
}
