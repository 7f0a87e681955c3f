package git

import (
	"context"
	"time"

	"github.com/tomhartley/gitbridge/exec"
)

// Service executes git plumbing in a specific working tree. Every command
// targets its repository with -C rather than by changing the process working
// directory, so one Service can safely serve concurrent requests against
// different repositories.
type Service struct {
	executor exec.CommandExecutor
	binary   string
	timeout  time.Duration
}

// quietEnv suppresses every interactive surface a git subcommand could open.
// Commands either succeed or fail fast; they never block on a prompt, an
// editor, or a pager.
var quietEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"GIT_EDITOR=true",
	"GIT_PAGER=cat",
	"GIT_OPTIONAL_LOCKS=0",
}

func NewService() *Service {
	return NewServiceWithExecutor(exec.NewRealExecutor())
}

func NewServiceWithExecutor(executor exec.CommandExecutor) *Service {
	return &Service{
		executor: executor,
		binary:   "git",
		timeout:  exec.DefaultTimeout,
	}
}

// SetBinary overrides the git binary path. Useful when the configured path
// differs from what PATH resolution would find.
func (s *Service) SetBinary(binary string) {
	if binary != "" {
		s.binary = binary
	}
}

// SetTimeout overrides the per-command timeout applied when the caller's
// context carries no deadline of its own.
func (s *Service) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// run executes one git command against dir and returns the raw outcome.
// A non-zero exit is not an error here; err reports only spawn failures and
// context cancellation.
func (s *Service) run(ctx context.Context, dir string, stdin []byte, args ...string) (exec.Outcome, error) {
	if _, ok := ctx.Deadline(); !ok && s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	argv := append([]string{"-C", dir}, args...)
	return s.executor.Execute(ctx, exec.Spec{
		Name:  s.binary,
		Args:  argv,
		Stdin: stdin,
		Env:   quietEnv,
	})
}

// exec runs one git command and folds spawn errors, timeouts, and non-zero
// exits into a classified *Error. op names the operation for error messages.
func (s *Service) exec(ctx context.Context, op, dir string, args ...string) (exec.Outcome, *Error) {
	out, err := s.run(ctx, dir, nil, args...)
	if gerr := classifyOutcome(op, out, err); gerr != nil {
		return out, gerr
	}
	return out, nil
}
