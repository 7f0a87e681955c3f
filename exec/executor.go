// Package exec provides an abstraction over command execution for testability.
// Production code uses RealExecutor, while tests inject a MockExecutor that
// returns pre-recorded outcomes.
//
// The central contract is Execute: a non-zero exit status is a normal Outcome,
// not an error. Errors are reserved for the cases where no outcome exists at
// all — the binary could not be spawned, or the caller cancelled the request.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// DefaultTimeout bounds a single command when the caller's context carries no
// deadline. A wedged subprocess (e.g. git unexpectedly waiting on a terminal)
// must never block a request indefinitely.
const DefaultTimeout = 60 * time.Second

// Spec describes one command invocation. Args are passed to the operating
// system as a discrete vector; no element is ever joined into a shell string,
// so user-controlled text (commit messages, refs) cannot inject arguments.
type Spec struct {
	Dir   string   // working directory; empty means the process's own
	Name  string   // binary name or path
	Args  []string // argument vector, order preserved
	Stdin []byte   // optional stdin payload
	Env   []string // appended to the parent environment
}

// Outcome is the captured result of a completed (or killed) command.
// Stdout and stderr are captured independently since callers distinguish
// diagnostic noise from authoritative output. Immutable once produced.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	TimedOut bool
}

// CommandExecutor abstracts command execution for testability.
type CommandExecutor interface {
	// Execute runs the command described by spec and returns its Outcome.
	// A non-zero exit code is returned as a normal Outcome so callers can
	// inspect stderr and classify. The error is non-nil only when the
	// process could not be spawned or the context was cancelled.
	// A context deadline terminates the subprocess and yields an Outcome
	// with TimedOut set.
	Execute(ctx context.Context, spec Spec) (Outcome, error)

	// Run executes a command and returns stdout, stderr, and any error
	// (including non-zero exit). Convenience for probe-style invocations
	// where only success/failure matters.
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)

	// Output executes a command and returns stdout, or an error on any
	// failure including non-zero exit.
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)

	// CombinedOutput executes a command and returns interleaved
	// stdout+stderr, with an error on any failure.
	CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}

// RealExecutor executes commands using os/exec.
type RealExecutor struct{}

// NewRealExecutor returns a new RealExecutor.
func NewRealExecutor() *RealExecutor {
	return &RealExecutor{}
}

// Execute runs the command and captures its outcome.
func (e *RealExecutor) Execute(ctx context.Context, spec Spec) (Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, spec.Name, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}
	if len(spec.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(spec.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err == nil {
		return outcome, nil
	}

	// The subprocess was killed by the context. Distinguish a deadline
	// (reported as a timeout Outcome) from caller cancellation (an error:
	// there is no meaningful outcome for an aborted request).
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			outcome.ExitCode = -1
			outcome.TimedOut = true
			if outcome.Stderr == "" {
				outcome.Stderr = "command timed out"
			}
			return outcome, nil
		}
		return Outcome{}, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
		return outcome, nil
	}

	// Spawn failure: binary missing, permission denied, bad directory.
	return Outcome{}, err
}

// Run executes a command and returns stdout, stderr, and any error.
func (e *RealExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()
	return stdoutBuf.Bytes(), stderrBuf.Bytes(), err
}

// Output executes a command and returns stdout, or error with stderr context.
func (e *RealExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.Output()
}

// CombinedOutput executes a command and returns combined stdout+stderr.
func (e *RealExecutor) CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// MockResponse defines the response for a mocked command.
type MockResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	TimedOut bool
	Err      error // spawn-level error; takes precedence over ExitCode
}

// CommandMatcher is a function that determines if a command matches.
type CommandMatcher func(dir, name string, args []string) bool

// MockRule defines a matching rule and its response.
type MockRule struct {
	Match    CommandMatcher
	Response MockResponse
}

// MockExecutor returns pre-recorded responses for commands.
// Rules are matched in registration order; the first match wins.
type MockExecutor struct {
	mu    sync.RWMutex
	rules []MockRule
	calls []MockCall
}

// MockCall records a command invocation for verification.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

// NewMockExecutor creates a new MockExecutor.
func NewMockExecutor() *MockExecutor {
	return &MockExecutor{}
}

// AddRule adds a matching rule with its response.
func (e *MockExecutor) AddRule(match CommandMatcher, response MockResponse) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = append(e.rules, MockRule{Match: match, Response: response})
}

// AddExactMatch adds a rule that matches a specific command exactly.
func (e *MockExecutor) AddExactMatch(name string, args []string, response MockResponse) {
	e.AddRule(func(dir, n string, a []string) bool {
		if n != name || len(a) != len(args) {
			return false
		}
		for i, arg := range args {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// AddPrefixMatch adds a rule that matches commands starting with specific args.
func (e *MockExecutor) AddPrefixMatch(name string, prefixArgs []string, response MockResponse) {
	e.AddRule(func(dir, n string, a []string) bool {
		if n != name || len(a) < len(prefixArgs) {
			return false
		}
		for i, arg := range prefixArgs {
			if a[i] != arg {
				return false
			}
		}
		return true
	}, response)
}

// GetCalls returns all recorded command invocations.
func (e *MockExecutor) GetCalls() []MockCall {
	e.mu.RLock()
	defer e.mu.RUnlock()
	calls := make([]MockCall, len(e.calls))
	copy(calls, e.calls)
	return calls
}

// ClearCalls clears the recorded command invocations.
func (e *MockExecutor) ClearCalls() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = nil
}

func (e *MockExecutor) findMatch(dir, name string, args []string) *MockResponse {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, rule := range e.rules {
		if rule.Match(dir, name, args) {
			return &rule.Response
		}
	}
	return nil
}

func (e *MockExecutor) recordCall(dir, name string, args []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, MockCall{Dir: dir, Name: name, Args: args})
}

// Execute returns the matched mock response as an Outcome.
// Unmatched commands succeed with empty output.
func (e *MockExecutor) Execute(ctx context.Context, spec Spec) (Outcome, error) {
	e.recordCall(spec.Dir, spec.Name, spec.Args)

	resp := e.findMatch(spec.Dir, spec.Name, spec.Args)
	if resp == nil {
		return Outcome{}, nil
	}
	if resp.Err != nil {
		return Outcome{}, resp.Err
	}
	return Outcome{
		ExitCode: resp.ExitCode,
		Stdout:   string(resp.Stdout),
		Stderr:   string(resp.Stderr),
		TimedOut: resp.TimedOut,
	}, nil
}

// mockErr converts a MockResponse into the error the Run-style helpers
// return: the spawn error if set, otherwise a synthetic exit error for
// non-zero codes.
func (r *MockResponse) mockErr() error {
	if r.Err != nil {
		return r.Err
	}
	if r.ExitCode != 0 {
		return &MockExitError{Code: r.ExitCode, Stderr: string(r.Stderr)}
	}
	return nil
}

// MockExitError stands in for a non-zero exit status from a mocked command.
type MockExitError struct {
	Code   int
	Stderr string
}

func (e *MockExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Run executes a mocked command.
func (e *MockExecutor) Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error) {
	e.recordCall(dir, name, args)

	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Stdout, resp.Stderr, resp.mockErr()
	}
	return nil, nil, nil
}

// Output executes a mocked command.
func (e *MockExecutor) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	e.recordCall(dir, name, args)

	if resp := e.findMatch(dir, name, args); resp != nil {
		return resp.Stdout, resp.mockErr()
	}
	return nil, nil
}

// CombinedOutput executes a mocked command.
func (e *MockExecutor) CombinedOutput(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	e.recordCall(dir, name, args)

	if resp := e.findMatch(dir, name, args); resp != nil {
		combined := append(append([]byte{}, resp.Stdout...), resp.Stderr...)
		return combined, resp.mockErr()
	}
	return nil, nil
}

// Ensure implementations satisfy the interface.
var _ CommandExecutor = (*RealExecutor)(nil)
var _ CommandExecutor = (*MockExecutor)(nil)
