package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type rewordInput struct {
	Path       string `mapstructure:"path"`
	CommitHash string `mapstructure:"commitHash"`
	NewMessage string `mapstructure:"newMessage"`
}

func (in rewordInput) Validate() error {
	if strings.TrimSpace(in.NewMessage) == "" {
		return errors.New("newMessage is required and must not be empty")
	}
	return nil
}

// NewRewordTool builds git_reword. Rewording the tip commit is done in place
// with an amend. Any other commit cannot be rewritten atomically without an
// interactive rebase, so the tool answers with an advisory procedure instead
// of mutating history behind the caller's back.
func NewRewordTool(deps Deps) Tool {
	def := Definition{
		Name:        "git_reword",
		Description: "Change a commit message. The tip commit is amended directly; older commits get a step-by-step interactive rebase procedure.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"path":       {Type: "string", Description: "Repository path. Falls back to the session working directory."},
				"commitHash": {Type: "string", Description: "Commit to reword. Defaults to HEAD."},
				"newMessage": {Type: "string", Description: "The replacement commit message."},
			},
			Required: []string{"newMessage"},
		},
	}

	return newTool(def, func(ctx context.Context, req Request, in rewordInput) OperationResult {
		dir, fail := resolveDir(deps, req, in.Path)
		if fail != nil {
			return *fail
		}

		ref := strings.TrimSpace(in.CommitHash)
		isHead := ref == "" || ref == "HEAD"

		var target string
		if !isHead {
			hash, gerr := deps.Git.ResolveRef(ctx, dir, ref)
			if gerr != nil {
				return FromGitError(gerr)
			}
			target = hash

			head, gerr := deps.Git.HeadHash(ctx, dir)
			if gerr != nil {
				return FromGitError(gerr)
			}
			// A hash that names the tip is still the tip.
			isHead = hash == head
		}

		if isHead {
			return rewordHead(ctx, deps, req, dir, in.NewMessage)
		}
		return rewordHistoric(ctx, deps, req, dir, ref, target, in.NewMessage)
	})
}

// rewordHead amends the tip in place. The pre-amend message read is
// cosmetic: a failure is logged and an empty original substituted, and the
// amend itself stays authoritative.
func rewordHead(ctx context.Context, deps Deps, req Request, dir, newMessage string) OperationResult {
	original := ""
	if info, gerr := deps.Git.CommitMessage(ctx, dir, "HEAD"); gerr != nil {
		req.Log.Warn("could not read original message before amend", "error", gerr)
	} else {
		original = info.Message
	}

	info, gerr := deps.Git.AmendHead(ctx, dir, newMessage)
	if gerr != nil {
		return FromGitError(gerr)
	}

	req.Log.Info("reworded tip commit", "hash", info.Hash)
	return Ok("Commit message updated", map[string]any{
		"hash":            info.Hash,
		"originalMessage": original,
		"newMessage":      info.Message,
	})
}

// rewordHistoric answers a non-tip reword with an advisory procedure. A root
// commit has no parent to rebase onto, so the procedure uses --root there;
// the original message read is best-effort only.
func rewordHistoric(ctx context.Context, deps Deps, req Request, dir, ref, target, newMessage string) OperationResult {
	base := ""
	parent, gerr := deps.Git.ParentHash(ctx, dir, ref)
	switch {
	case gerr == nil:
		base = parent
	default:
		root, rerr := deps.Git.IsRootCommit(ctx, dir, ref)
		if rerr != nil || !root {
			return FromGitError(gerr)
		}
		base = "--root"
	}

	original := ""
	if info, rerr := deps.Git.CommitMessage(ctx, dir, ref); rerr != nil {
		req.Log.Warn("could not read original message", "ref", ref, "error", rerr)
	} else {
		original = info.Message
	}

	procedure := fmt.Sprintf(
		"1. Run: git rebase -i %s\n"+
			"2. In the todo list, change 'pick' to 'reword' on the line for %s\n"+
			"3. Save and close the todo list\n"+
			"4. When the editor reopens with the old message, replace it with:\n%s\n"+
			"5. Save and close to let the rebase finish",
		base, ref, newMessage)

	req.Log.Info("historic reword requires manual rebase", "ref", ref, "commit", target)
	return Advisory(
		fmt.Sprintf("Commit %s is not the tip; rewording it requires an interactive rebase", ref),
		map[string]any{
			"commit":          target,
			"originalMessage": original,
			"newMessage":      newMessage,
			"procedure":       procedure,
		})
}
