package tools

import (
	"context"
	"fmt"
)

type logInput struct {
	Path     string `mapstructure:"path"`
	Ref      string `mapstructure:"ref"`
	MaxCount int    `mapstructure:"maxCount"`
}

func (in logInput) Validate() error {
	if in.MaxCount < 0 {
		return fmt.Errorf("maxCount must not be negative, got %d", in.MaxCount)
	}
	return nil
}

// NewLogTool builds git_log.
func NewLogTool(deps Deps) Tool {
	def := Definition{
		Name:        "git_log",
		Description: "Show recent commit history as structured entries.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"path":     {Type: "string", Description: "Repository path. Falls back to the session working directory."},
				"ref":      {Type: "string", Description: "Start point. Defaults to HEAD."},
				"maxCount": {Type: "number", Description: "Maximum number of commits to return. Defaults to 20."},
			},
		},
	}

	return newTool(def, func(ctx context.Context, req Request, in logInput) OperationResult {
		dir, fail := resolveDir(deps, req, in.Path)
		if fail != nil {
			return *fail
		}

		records, gerr := deps.Git.Log(ctx, dir, in.Ref, in.MaxCount)
		if gerr != nil {
			return FromGitError(gerr)
		}

		commits := make([]map[string]any, 0, len(records))
		for _, r := range records {
			commits = append(commits, map[string]any{
				"hash":    r.Hash,
				"author":  r.Author,
				"date":    r.Date,
				"subject": r.Subject,
			})
		}
		return Ok(fmt.Sprintf("%d commits", len(commits)), map[string]any{
			"commits": commits,
		})
	})
}
