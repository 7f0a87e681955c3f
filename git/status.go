package git

import (
	"context"
	"strings"
)

// StatusEntry is one changed path from porcelain status output. Staged and
// Unstaged carry the two status columns; untracked files show "??" across
// both.
type StatusEntry struct {
	Path     string
	Staged   string
	Unstaged string
}

// Status is a snapshot of a working tree.
type Status struct {
	Branch  string
	Clean   bool
	Entries []StatusEntry
}

// Status reads the working tree state via porcelain v1 output with the
// branch header. The leading columns of each entry line are significant, so
// only trailing whitespace gets trimmed before parsing.
func (s *Service) Status(ctx context.Context, dir string) (Status, *Error) {
	out, gerr := s.exec(ctx, "status", dir, "status", "--porcelain", "--branch")
	if gerr != nil {
		return Status{}, gerr
	}

	status := Status{Clean: true}
	for _, line := range strings.Split(strings.TrimRight(out.Stdout, "\n\r\t "), "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			status.Branch = parseBranchHeader(line[3:])
			continue
		}
		if len(line) < 4 {
			continue
		}
		status.Clean = false
		status.Entries = append(status.Entries, StatusEntry{
			Path:     parseStatusPath(line[3:]),
			Staged:   line[0:1],
			Unstaged: line[1:2],
		})
	}
	return status, nil
}

// parseBranchHeader extracts the local branch name from a "## ..." header.
// Headers look like "main...origin/main [ahead 1]" or just "main"; a
// detached head reads "HEAD (no branch)".
func parseBranchHeader(header string) string {
	if strings.HasPrefix(header, "HEAD (no branch)") {
		return "HEAD"
	}
	if i := strings.Index(header, "..."); i >= 0 {
		return header[:i]
	}
	if i := strings.IndexByte(header, ' '); i >= 0 {
		return header[:i]
	}
	return header
}

// parseStatusPath strips rename arrows and quoting from a porcelain path
// field. Renames read "old -> new"; only the new path matters here.
func parseStatusPath(field string) string {
	if i := strings.Index(field, " -> "); i >= 0 {
		field = field[i+len(" -> "):]
	}
	return strings.Trim(strings.TrimSpace(field), `"`)
}
