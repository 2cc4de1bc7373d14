//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"radiantwavetech.com/radiantwave-updater/internal/logger"
)

const (
	// DefaultCommandTimeout bounds commands that do not set their own timeout.
	DefaultCommandTimeout = 30 * time.Second

	// waitDelay bounds how long output pipes may stay open after a kill.
	waitDelay = 2 * time.Second

	redacted = "[REDACTED]"
)

var (
	// ErrCommandNotFound is returned when the executable does not exist.
	ErrCommandNotFound = errors.New("command not found")
	// ErrCommandTimeout is returned when the command outlived its timeout.
	ErrCommandTimeout = errors.New("command timed out")
	// ErrCommandFailed is returned when the command could not complete successfully.
	ErrCommandFailed = errors.New("command failed")
)

// Command describes one external process invocation.
type Command struct {
	// Name is the executable to run.
	Name string
	// Args are passed to the executable as is.
	Args []string
	// Env holds KEY=value pairs added to the inherited environment.
	Env []string
	// Elevated routes the command through the privilege escalation prefix.
	Elevated bool
	// Timeout bounds the command; zero means DefaultCommandTimeout.
	Timeout time.Duration
	// Secrets are replaced with a placeholder whenever the command is logged.
	Secrets []string
}

// String renders the command for logs with secrets redacted.
func (c Command) String() string {
	return redact(strings.Join(append([]string{c.Name}, c.Args...), " "), c.Secrets)
}

// Result is what a finished process left behind.
type Result struct {
	// ExitCode is -1 when the process never started or was killed.
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands as local processes.
type ExecRunner struct {
	// escalation is prepended to the argv of elevated commands.
	escalation []string
}

// RunnerOption configures an ExecRunner.
type RunnerOption func(*ExecRunner)

// WithEscalation sets the argv prefix of elevated commands, e.g. sudo -n.
func WithEscalation(prefix []string) RunnerOption {
	return func(r *ExecRunner) {
		r.escalation = append([]string(nil), prefix...)
	}
}

// NewExecRunner creates a runner. Without options elevated commands run unprefixed.
func NewExecRunner(opts ...RunnerOption) *ExecRunner {
	r := new(ExecRunner)

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Argv returns the full argument vector the command is started with.
// Elevated commands with extra environment go through env(1), since escalation
// tools reset the environment.
func (r *ExecRunner) Argv(cmd Command) []string {
	argv := make([]string, 0, len(r.escalation)+len(cmd.Env)+len(cmd.Args)+2)

	if cmd.Elevated && len(r.escalation) > 0 {
		argv = append(argv, r.escalation...)

		if len(cmd.Env) > 0 {
			argv = append(argv, "env")
			argv = append(argv, cmd.Env...)
		}
	}

	argv = append(argv, cmd.Name)
	argv = append(argv, cmd.Args...)

	return argv
}

// Run starts the command, waits for it and classifies the outcome.
// A timeout is reported as ErrCommandTimeout, a non-zero exit as ErrCommandFailed.
// The result is never nil.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	timeout := cmd.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	argv := r.Argv(cmd)

	logger.DebugKV(ctx, "Running command",
		"argv", redact(strings.Join(argv, " "), cmd.Secrets),
		"timeout", timeout)

	var stdout, stderr bytes.Buffer

	//nolint:gosec // The argv is assembled from configuration, not user input.
	process := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	process.Stdout = &stdout
	process.Stderr = &stderr
	process.WaitDelay = waitDelay

	if len(cmd.Env) > 0 && !(cmd.Elevated && len(r.escalation) > 0) {
		process.Env = append(os.Environ(), cmd.Env...)
	}

	started := time.Now()
	err := process.Run()

	result := &Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(started),
	}

	if process.ProcessState != nil {
		result.ExitCode = process.ProcessState.ExitCode()
	}

	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return result, fmt.Errorf("%s: after %s: %w", cmd, timeout, ErrCommandTimeout)
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return result, fmt.Errorf("%s: %w", cmd, ErrCommandNotFound)
	case result.ExitCode > 0:
		return result, fmt.Errorf("%s: exit code %d: %w", cmd, result.ExitCode, ErrCommandFailed)
	default:
		return result, fmt.Errorf("%s: %w: %w", cmd, ErrCommandFailed, err)
	}
}

// LogFailure records a failed command with its stderr verbatim.
func LogFailure(ctx context.Context, message string, cmd Command, result *Result, err error) {
	kvs := []any{"command", cmd.String(), "error", err}

	if result != nil {
		kvs = append(kvs,
			"exit_code", result.ExitCode,
			"stderr", redact(strings.TrimSpace(result.Stderr), cmd.Secrets))
	}

	logger.ErrorKV(ctx, message, kvs...)
}

// LogOutput writes every non-empty stdout line at debug level.
func LogOutput(ctx context.Context, cmd Command, result *Result) {
	if result == nil {
		return
	}

	for _, line := range strings.Split(result.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		logger.DebugKV(ctx, "  "+redact(line, cmd.Secrets), "command", cmd.Name)
	}
}

func redact(s string, secrets []string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}

		s = strings.ReplaceAll(s, secret, redacted)
	}

	return s
}
