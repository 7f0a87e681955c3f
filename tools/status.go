package tools

import "context"

type statusInput struct {
	Path string `mapstructure:"path"`
}

// NewStatusTool builds git_status.
func NewStatusTool(deps Deps) Tool {
	def := Definition{
		Name:        "git_status",
		Description: "Show the working tree status: current branch, clean flag, and per-file change entries.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"path": {Type: "string", Description: "Repository path. Falls back to the session working directory."},
			},
		},
	}

	return newTool(def, func(ctx context.Context, req Request, in statusInput) OperationResult {
		dir, fail := resolveDir(deps, req, in.Path)
		if fail != nil {
			return *fail
		}

		status, gerr := deps.Git.Status(ctx, dir)
		if gerr != nil {
			return FromGitError(gerr)
		}

		files := make([]map[string]any, 0, len(status.Entries))
		for _, e := range status.Entries {
			files = append(files, map[string]any{
				"path":     e.Path,
				"staged":   e.Staged,
				"unstaged": e.Unstaged,
			})
		}

		message := "Working tree clean"
		if !status.Clean {
			message = "Working tree has changes"
		}
		return Ok(message, map[string]any{
			"branch": status.Branch,
			"clean":  status.Clean,
			"files":  files,
		})
	})
}
