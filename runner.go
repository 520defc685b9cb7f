package systemctl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Stdio is the set of streams handed to interactive commands
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// TerminalStdio returns the process's own standard streams
func TerminalStdio() Stdio {
	return Stdio{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Runner executes external commands on behalf of a Service.
// Implementations must be safe for concurrent use.
type Runner interface {
	// Run executes a command and captures its output
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

	// RunInteractive executes a command attached to the given streams and
	// returns its exit code. err is only set when the command could not be run.
	RunInteractive(ctx context.Context, stdio Stdio, name string, args ...string) (int, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	// Env, if non-nil, replaces the environment of spawned commands
	Env []string
}

var _ Runner = ExecRunner{}

// Run executes the command and returns its captured stdout and stderr
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// RunInteractive executes the command with stdio passed through
func (r ExecRunner) RunInteractive(ctx context.Context, stdio Stdio, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}
	cmd.Stdin = stdio.Stdin
	cmd.Stdout = stdio.Stdout
	cmd.Stderr = stdio.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
