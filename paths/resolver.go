package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned when a requested path fails validation, either
// because it contains forbidden bytes or because it escapes the configured
// allowed roots.
var ErrInvalidPath = errors.New("invalid path")

// ResolvedTarget is the repository directory a request will operate on.
// IsGitRepo stays false until a git command confirms it; resolution only
// validates the filesystem path.
type ResolvedTarget struct {
	Path      string
	Exists    bool
	IsGitRepo bool
}

// Resolver turns a request's optional path plus session state into the
// absolute directory git commands run against. When AllowedRoots is
// non-empty, every resolved path must sit under one of them.
type Resolver struct {
	AllowedRoots []string
}

func NewResolver(allowedRoots []string) *Resolver {
	r := &Resolver{}
	for _, root := range allowedRoots {
		if abs, err := filepath.Abs(root); err == nil {
			r.AllowedRoots = append(r.AllowedRoots, abs)
		}
	}
	return r
}

// Resolve picks the target directory with fixed precedence: the request's
// own path wins, then the session's remembered directory, then the process
// working directory. The result is always absolute.
func (r *Resolver) Resolve(requested, sessionDir string) (ResolvedTarget, error) {
	candidate := requested
	if candidate == "" {
		candidate = sessionDir
	}
	if candidate == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ResolvedTarget{}, fmt.Errorf("%w: cannot determine working directory: %v", ErrInvalidPath, err)
		}
		candidate = cwd
	}

	if strings.ContainsRune(candidate, 0) {
		return ResolvedTarget{}, fmt.Errorf("%w: path contains a null byte", ErrInvalidPath)
	}

	abs, err := filepath.Abs(candidate)
	if err != nil {
		return ResolvedTarget{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	abs = filepath.Clean(abs)

	if err := r.checkRoots(abs); err != nil {
		return ResolvedTarget{}, err
	}

	target := ResolvedTarget{Path: abs}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		target.Exists = true
	}
	return target, nil
}

// checkRoots enforces the allow-list. An empty list permits everything.
func (r *Resolver) checkRoots(abs string) error {
	if len(r.AllowedRoots) == 0 {
		return nil
	}
	for _, root := range r.AllowedRoots {
		if abs == root || strings.HasPrefix(abs, root+string(filepath.Separator)) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is outside the allowed roots", ErrInvalidPath, abs)
}
