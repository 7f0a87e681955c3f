package git

import (
	"fmt"
	"strings"

	"github.com/tomhartley/gitbridge/exec"
)

// ErrorKind is the closed taxonomy for failed git invocations. Callers never
// see raw stderr as the primary signal; they see one of these kinds plus a
// human-readable message.
type ErrorKind string

const (
	KindNotAGitRepository ErrorKind = "NotAGitRepository"
	KindInvalidReference  ErrorKind = "InvalidReference"
	KindNoChangesToCommit ErrorKind = "NoChangesToCommit"
	KindMergeConflict     ErrorKind = "MergeConflict"
	KindPermissionDenied  ErrorKind = "PermissionDenied"
	KindUnknown           ErrorKind = "Unknown"
)

// classifyRule maps a lowercase substring to an ErrorKind. The table is
// ordered: some substrings are subsets of others, so the first match wins.
type classifyRule struct {
	substrings []string
	kind       ErrorKind
}

var classifyRules = []classifyRule{
	{[]string{"not a git repository"}, KindNotAGitRepository},
	{[]string{"no changes"}, KindNoChangesToCommit},
	{[]string{"unknown revision", "bad revision", "ambiguous argument"}, KindInvalidReference},
	{[]string{"conflict"}, KindMergeConflict},
	{[]string{"permission denied"}, KindPermissionDenied},
}

// Classify maps raw failure text onto an ErrorKind. Matching is
// case-insensitive substring matching over stderr first, then stdout, then
// the raised error's own message — stderr carries the most specific signal.
// Classification never fails; unmatched text resolves to KindUnknown.
func Classify(stderr, stdout, errMsg string) ErrorKind {
	for _, text := range []string{stderr, stdout, errMsg} {
		if kind, ok := classifyText(text); ok {
			return kind
		}
	}
	return KindUnknown
}

func classifyText(text string) (ErrorKind, bool) {
	if text == "" {
		return KindUnknown, false
	}
	lower := strings.ToLower(text)
	for _, rule := range classifyRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.kind, true
			}
		}
	}
	return KindUnknown, false
}

// Error is a classified git failure. Outcome carries the raw diagnostic text
// as auxiliary detail; Kind and Message are the authoritative signal.
type Error struct {
	Kind    ErrorKind
	Message string
	Outcome exec.Outcome
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Detail returns the raw diagnostic text that led to the classification,
// preferring stderr over stdout.
func (e *Error) Detail() string {
	if s := strings.TrimSpace(e.Outcome.Stderr); s != "" {
		return s
	}
	return strings.TrimSpace(e.Outcome.Stdout)
}

// classifyOutcome turns a finished invocation into a classified *Error, or
// nil when the command succeeded. err is the spawn-level error from the
// executor, if any.
func classifyOutcome(op string, out exec.Outcome, err error) *Error {
	if err != nil {
		return &Error{
			Kind:    Classify("", "", err.Error()),
			Message: fmt.Sprintf("%s: %v", op, err),
		}
	}
	if out.TimedOut {
		return &Error{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("%s: command timed out and was terminated", op),
			Outcome: out,
		}
	}
	if out.ExitCode != 0 {
		kind := Classify(out.Stderr, out.Stdout, "")
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(out.Stdout)
		}
		if msg == "" {
			msg = fmt.Sprintf("exit status %d", out.ExitCode)
		}
		return &Error{
			Kind:    kind,
			Message: fmt.Sprintf("%s: %s", op, firstLine(msg)),
			Outcome: out,
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
