package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomhartley/gitbridge/exec"
)

// StashEntry is one entry on the stash stack.
type StashEntry struct {
	Index       int
	Branch      string
	Description string
}

// stashRef renders the reflog selector for a stack index.
func stashRef(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}

// StashList returns the stash stack, newest first. The %gd%x00%s format
// yields the reflog selector and subject separated by a NUL byte, which
// cannot appear in either field.
func (s *Service) StashList(ctx context.Context, dir string) ([]StashEntry, *Error) {
	out, gerr := s.exec(ctx, "stash list", dir, "stash", "list", "--format=%gd%x00%s")
	if gerr != nil {
		return nil, gerr
	}
	var entries []StashEntry
	for _, line := range strings.Split(out.Stdout, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		selector, subject, ok := strings.Cut(line, "\x00")
		if !ok {
			continue
		}
		entry := StashEntry{Index: parseStashIndex(selector)}
		entry.Branch, entry.Description = splitStashSubject(subject)
		entries = append(entries, entry)
	}
	return entries, nil
}

// parseStashIndex extracts N from "stash@{N}". Malformed selectors fall back
// to -1 rather than aborting the whole listing.
func parseStashIndex(selector string) int {
	open := strings.IndexByte(selector, '{')
	close := strings.IndexByte(selector, '}')
	if open < 0 || close <= open {
		return -1
	}
	n, err := strconv.Atoi(selector[open+1 : close])
	if err != nil {
		return -1
	}
	return n
}

// splitStashSubject pulls the branch name out of a stash subject. Subjects
// normally read "WIP on <branch>: <detail>" or "On <branch>: <detail>";
// anything else keeps an empty branch and the full subject as description.
func splitStashSubject(subject string) (branch, description string) {
	rest := subject
	switch {
	case strings.HasPrefix(rest, "WIP on "):
		rest = rest[len("WIP on "):]
	case strings.HasPrefix(rest, "On "):
		rest = rest[len("On "):]
	default:
		return "", subject
	}
	branch, description, ok := strings.Cut(rest, ": ")
	if !ok {
		return "", subject
	}
	return branch, description
}

// StashSave pushes the working tree onto the stash stack. When nothing is
// stashable git exits zero with a "No local changes to save" notice; the
// second return value reports whether an entry was actually created.
func (s *Service) StashSave(ctx context.Context, dir, message string, includeUntracked bool) (bool, *Error) {
	args := []string{"stash", "push"}
	if includeUntracked {
		args = append(args, "-u")
	}
	if message != "" {
		args = append(args, "-m", message)
	}
	out, gerr := s.exec(ctx, "stash save", dir, args...)
	if gerr != nil {
		return false, gerr
	}
	if strings.Contains(out.Stdout, "No local changes to save") {
		return false, nil
	}
	return true, nil
}

// StashApply applies the entry at index without removing it. The raw outcome
// is returned alongside any error so callers can inspect conflict output.
func (s *Service) StashApply(ctx context.Context, dir string, index int) (exec.Outcome, *Error) {
	return s.exec(ctx, "stash apply", dir, "stash", "apply", stashRef(index))
}

// StashPop applies the entry at index and drops it on success. On conflict
// git leaves the entry in place, which the error outcome reflects.
func (s *Service) StashPop(ctx context.Context, dir string, index int) (exec.Outcome, *Error) {
	return s.exec(ctx, "stash pop", dir, "stash", "pop", stashRef(index))
}

// StashDrop removes the entry at index from the stack.
func (s *Service) StashDrop(ctx context.Context, dir string, index int) *Error {
	_, gerr := s.exec(ctx, "stash drop", dir, "stash", "drop", stashRef(index))
	return gerr
}

// Conflict is one conflicted path reported while applying a stash or merge.
type Conflict struct {
	Path string
	Kind string
}

// conflictKinds maps git's CONFLICT annotations onto stable kind names.
var conflictKinds = map[string]string{
	"content":       "content",
	"add/add":       "add-add",
	"delete/modify": "delete-modify",
	"modify/delete": "delete-modify",
	"rename/rename": "rename",
	"rename/delete": "rename",
	"rename/add":    "rename",
}

// ParseConflicts scans command output for CONFLICT lines of the form
// "CONFLICT (<kind>): Merge conflict in <path>" and similar, returning one
// entry per conflicted path.
func ParseConflicts(output string) []Conflict {
	var conflicts []Conflict
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "CONFLICT (") {
			continue
		}
		rest := line[len("CONFLICT ("):]
		rawKind, rest, ok := strings.Cut(rest, "):")
		if !ok {
			continue
		}
		kind, known := conflictKinds[rawKind]
		if !known {
			kind = "content"
		}
		path := conflictPath(rest)
		if path == "" {
			continue
		}
		conflicts = append(conflicts, Conflict{Path: path, Kind: kind})
	}
	return conflicts
}

// conflictPath extracts the pathname from the free-text tail of a CONFLICT
// line. Content-style forms end with "conflict in <path>"; delete/modify
// forms lead with the path before a "deleted in" clause.
func conflictPath(detail string) string {
	detail = strings.TrimSpace(detail)
	lower := strings.ToLower(detail)
	if i := strings.LastIndex(lower, " conflict in "); i >= 0 {
		return strings.TrimSpace(detail[i+len(" conflict in "):])
	}
	if fields := strings.Fields(detail); len(fields) > 0 {
		return strings.Trim(fields[0], `".`)
	}
	return ""
}

// ConflictedFiles lists paths currently in an unmerged state. It backs up
// ParseConflicts when the apply output did not include CONFLICT lines.
func (s *Service) ConflictedFiles(ctx context.Context, dir string) ([]string, *Error) {
	out, gerr := s.exec(ctx, "list conflicts", dir, "diff", "--name-only", "--diff-filter=U")
	if gerr != nil {
		return nil, gerr
	}
	var paths []string
	for _, line := range strings.Split(out.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}
	return paths, nil
}
