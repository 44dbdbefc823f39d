// Package effectors executes actions against the host system: notifications,
// display brightness, dark mode, site blocking, and calendar scheduling all
// go through a Runner so tests can stub out the host.
package effectors

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Result is the outcome of one command invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Runner executes an argv on the host. RunInput feeds stdin to commands
// that prompt.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
	RunInput(ctx context.Context, stdin string, name string, args ...string) (Result, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return runExec(ctx, "", name, args...)
}

func (ExecRunner) RunInput(ctx context.Context, stdin string, name string, args ...string) (Result, error) {
	return runExec(ctx, stdin, name, args...)
}

func runExec(ctx context.Context, stdin, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if _, ok := err.(*exec.ExitError); ok {
		// Non-zero exit is reported through ExitCode, not the error.
		return res, nil
	}
	return res, err
}
