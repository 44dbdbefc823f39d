package effectors

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"
)

// CaptureRunner records every invocation to a JSONL file instead of touching
// the host. Used for synthetic runs and tests.
type CaptureRunner struct {
	mu   sync.Mutex
	path string

	ExitCode int
	Stdout   string
}

type capturedCall struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Args      []string  `json:"args"`
	Stdin     string    `json:"stdin,omitempty"`
}

func NewCaptureRunner(path string) *CaptureRunner {
	return &CaptureRunner{path: path}
}

func (c *CaptureRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return c.RunInput(ctx, "", name, args...)
}

func (c *CaptureRunner) RunInput(_ context.Context, stdin string, name string, args ...string) (Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	data, err := json.Marshal(capturedCall{
		Timestamp: time.Now(),
		Name:      name,
		Args:      args,
		Stdin:     stdin,
	})
	if err != nil {
		return Result{}, err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return Result{}, err
	}

	return Result{ExitCode: c.ExitCode, Stdout: c.Stdout}, nil
}

// Calls reads back everything recorded so far.
func (c *CaptureRunner) Calls() ([][]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var calls [][]string
	for _, line := range splitLines(data) {
		var call capturedCall
		if err := json.Unmarshal(line, &call); err != nil {
			return nil, err
		}
		calls = append(calls, append([]string{call.Name}, call.Args...))
	}
	return calls, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, data[start:i])
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}
