package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomhartley/gitbridge/exec"
	"github.com/tomhartley/gitbridge/git"
)

type stashInput struct {
	Path             string `mapstructure:"path"`
	Mode             string `mapstructure:"mode"`
	Message          string `mapstructure:"message"`
	Index            *int   `mapstructure:"index"`
	IncludeUntracked bool   `mapstructure:"includeUntracked"`
}

// stashOp is the closed set of stash operations. Each variant carries only
// the fields its mode needs, so handlers cannot read a field the request
// never validated.
type stashOp interface {
	isStashOp()
}

type stashList struct{}
type stashSave struct {
	message          string
	includeUntracked bool
}
type stashApply struct{ index int }
type stashPop struct{ index int }
type stashDrop struct{ index int }

func (stashList) isStashOp()  {}
func (stashSave) isStashOp()  {}
func (stashApply) isStashOp() {}
func (stashPop) isStashOp()   {}
func (stashDrop) isStashOp()  {}

// parseStashOp validates the mode exhaustively and narrows the input to the
// matching variant. An absent index selects the most recent entry.
func parseStashOp(in stashInput) (stashOp, error) {
	index := 0
	if in.Index != nil {
		if *in.Index < 0 {
			return nil, fmt.Errorf("index must not be negative, got %d", *in.Index)
		}
		index = *in.Index
	}

	switch in.Mode {
	case "list":
		return stashList{}, nil
	case "save":
		return stashSave{message: in.Message, includeUntracked: in.IncludeUntracked}, nil
	case "apply":
		return stashApply{index: index}, nil
	case "pop":
		return stashPop{index: index}, nil
	case "drop":
		return stashDrop{index: index}, nil
	default:
		return nil, fmt.Errorf("mode must be one of list, save, apply, pop, drop; got %q", in.Mode)
	}
}

// NewStashTool builds git_stash.
func NewStashTool(deps Deps) Tool {
	def := Definition{
		Name:        "git_stash",
		Description: "Manage the stash stack: list, save, apply, pop, or drop entries.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"path":             {Type: "string", Description: "Repository path. Falls back to the session working directory."},
				"mode":             {Type: "string", Description: "One of: list, save, apply, pop, drop."},
				"message":          {Type: "string", Description: "Stash message (save mode)."},
				"index":            {Type: "number", Description: "Stash index (apply, pop, drop modes). Defaults to the most recent entry."},
				"includeUntracked": {Type: "boolean", Description: "Also stash untracked files (save mode)."},
			},
			Required: []string{"mode"},
		},
	}

	return newTool(def, func(ctx context.Context, req Request, in stashInput) OperationResult {
		op, err := parseStashOp(in)
		if err != nil {
			return Fail(git.KindUnknown, err.Error())
		}

		dir, fail := resolveDir(deps, req, in.Path)
		if fail != nil {
			return *fail
		}

		switch op := op.(type) {
		case stashList:
			return stashListResult(ctx, deps, dir)
		case stashSave:
			return stashSaveResult(ctx, deps, req, dir, op)
		case stashApply:
			out, gerr := deps.Git.StashApply(ctx, dir, op.index)
			return stashApplyResult(ctx, deps, dir, "applied", op.index, out, gerr)
		case stashPop:
			out, gerr := deps.Git.StashPop(ctx, dir, op.index)
			return stashApplyResult(ctx, deps, dir, "popped", op.index, out, gerr)
		case stashDrop:
			if gerr := deps.Git.StashDrop(ctx, dir, op.index); gerr != nil {
				return FromGitError(overrideStashRefError(gerr))
			}
			return Ok(fmt.Sprintf("Dropped stash@{%d}", op.index), nil)
		default:
			return Fail(git.KindUnknown, fmt.Sprintf("unhandled stash mode %T", op))
		}
	})
}

func stashListResult(ctx context.Context, deps Deps, dir string) OperationResult {
	entries, gerr := deps.Git.StashList(ctx, dir)
	if gerr != nil {
		return FromGitError(gerr)
	}
	listed := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		listed = append(listed, map[string]any{
			"index":       e.Index,
			"branch":      e.Branch,
			"description": e.Description,
		})
	}
	return Ok(fmt.Sprintf("%d stash entries", len(listed)), map[string]any{
		"stashes": listed,
	})
}

func stashSaveResult(ctx context.Context, deps Deps, req Request, dir string, op stashSave) OperationResult {
	created, gerr := deps.Git.StashSave(ctx, dir, op.message, op.includeUntracked)
	if gerr != nil {
		return FromGitError(gerr)
	}
	if !created {
		return Ok("No local changes to save", map[string]any{"created": false})
	}
	req.Log.Info("stash created", "dir", dir)
	return Ok("Changes stashed", map[string]any{
		"created": true,
		"ref":     "stash@{0}",
	})
}

// stashApplyResult folds an apply or pop outcome into a result. Conflicts
// are an expected, recoverable state of the working tree, so they come back
// as an advisory with the conflicted paths rather than a hard failure.
func stashApplyResult(ctx context.Context, deps Deps, dir, verb string, index int, out exec.Outcome, gerr *git.Error) OperationResult {
	if gerr == nil {
		return Ok(fmt.Sprintf("Stash entry %s", verb), map[string]any{"ref": stashRefString(index)})
	}

	conflicts := git.ParseConflicts(out.Stdout + "\n" + out.Stderr)
	if len(conflicts) == 0 && gerr.Kind == git.KindMergeConflict {
		// Output had no CONFLICT markers; ask the index instead.
		if paths, cerr := deps.Git.ConflictedFiles(ctx, dir); cerr == nil {
			for _, p := range paths {
				conflicts = append(conflicts, git.Conflict{Path: p, Kind: "content"})
			}
		}
	}
	if len(conflicts) > 0 {
		descriptors := make([]ConflictDescriptor, 0, len(conflicts))
		for _, c := range conflicts {
			descriptors = append(descriptors, ConflictDescriptor{FilePath: c.Path, Kind: c.Kind})
		}
		res := Advisory(
			fmt.Sprintf("Stash entry could not be cleanly %s; resolve the conflicts and continue", verb),
			map[string]any{"ref": stashRefString(index)},
		)
		res.Conflicts = descriptors
		return res
	}

	return FromGitError(overrideStashRefError(gerr))
}

// overrideStashRefError maps the stash-specific "that entry does not exist"
// diagnostics onto InvalidReference before the generic classification is
// trusted. An empty stack and an out-of-range index both land here.
func overrideStashRefError(gerr *git.Error) *git.Error {
	text := strings.ToLower(gerr.Message + " " + gerr.Detail())
	if strings.Contains(text, "is not a valid reference") ||
		strings.Contains(text, "no stash entries") ||
		strings.Contains(text, "log for 'stash' only has") {
		gerr.Kind = git.KindInvalidReference
	}
	return gerr
}

func stashRefString(index int) string {
	return fmt.Sprintf("stash@{%d}", index)
}
