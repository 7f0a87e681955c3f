package git

import (
	"context"
	"strings"
)

// IsWorkTree reports whether dir sits inside a git working tree.
func (s *Service) IsWorkTree(ctx context.Context, dir string) bool {
	out, err := s.run(ctx, dir, nil, "rev-parse", "--is-inside-work-tree")
	if err != nil || out.ExitCode != 0 {
		return false
	}
	return strings.TrimSpace(out.Stdout) == "true"
}

// ResolveRef resolves ref to a full commit hash. The ^{commit} suffix peels
// annotated tags so the result always names a commit object.
func (s *Service) ResolveRef(ctx context.Context, dir, ref string) (string, *Error) {
	out, gerr := s.exec(ctx, "resolve ref", dir, "rev-parse", "--verify", ref+"^{commit}")
	if gerr != nil {
		// rev-parse --verify reports bad refs with the terse "Needed a
		// single revision", which no classification rule recognizes.
		// A resolve failure that isn't something more specific is a
		// bad reference.
		if gerr.Kind == KindUnknown {
			gerr.Kind = KindInvalidReference
		}
		return "", gerr
	}
	return strings.TrimSpace(out.Stdout), nil
}

// HeadHash returns the full hash of the current HEAD commit.
func (s *Service) HeadHash(ctx context.Context, dir string) (string, *Error) {
	return s.ResolveRef(ctx, dir, "HEAD")
}

// ParentHash resolves the first parent of ref.
func (s *Service) ParentHash(ctx context.Context, dir, ref string) (string, *Error) {
	return s.ResolveRef(ctx, dir, ref+"^")
}

// IsRootCommit reports whether ref is a parentless commit. rev-list with
// --parents prints the hash followed by its parents; a single field means
// there are none.
func (s *Service) IsRootCommit(ctx context.Context, dir, ref string) (bool, *Error) {
	out, gerr := s.exec(ctx, "inspect parents", dir, "rev-list", "--parents", "-n", "1", ref)
	if gerr != nil {
		return false, gerr
	}
	return len(strings.Fields(out.Stdout)) == 1, nil
}

// CommitInfo is a single commit's hash and full message body.
type CommitInfo struct {
	Hash    string
	Message string
}

// CommitMessage reads the hash and full message of ref in one invocation.
// The %H%n%B format puts the hash on the first line and the raw body after
// it, so a single split recovers both.
func (s *Service) CommitMessage(ctx context.Context, dir, ref string) (CommitInfo, *Error) {
	out, gerr := s.exec(ctx, "read commit", dir, "log", "-1", "--format=%H%n%B", ref)
	if gerr != nil {
		return CommitInfo{}, gerr
	}
	hash, body, _ := strings.Cut(out.Stdout, "\n")
	return CommitInfo{
		Hash:    strings.TrimSpace(hash),
		Message: strings.TrimRight(body, "\n"),
	}, nil
}

// AmendHead rewrites the message of the HEAD commit without touching its
// tree, then re-reads the result so callers get the post-amend hash.
func (s *Service) AmendHead(ctx context.Context, dir, message string) (CommitInfo, *Error) {
	if _, gerr := s.exec(ctx, "amend commit", dir, "commit", "--amend", "-m", message); gerr != nil {
		return CommitInfo{}, gerr
	}
	return s.CommitMessage(ctx, dir, "HEAD")
}
