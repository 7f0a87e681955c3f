package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tomhartley/gitbridge/git"
)

type setWorkingDirInput struct {
	Path string `mapstructure:"path"`
}

func (in setWorkingDirInput) Validate() error {
	if strings.TrimSpace(in.Path) == "" {
		return errors.New("path is required")
	}
	return nil
}

// NewSetWorkingDirTool builds git_set_working_dir. The remembered directory
// must exist and be a working tree before it is stored; a session never
// remembers a path that later requests would immediately fail on.
func NewSetWorkingDirTool(deps Deps) Tool {
	def := Definition{
		Name:        "git_set_working_dir",
		Description: "Remember a repository path for this session; later calls may omit their path argument.",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"path": {Type: "string", Description: "Repository path to remember."},
			},
			Required: []string{"path"},
		},
	}

	return newTool(def, func(ctx context.Context, req Request, in setWorkingDirInput) OperationResult {
		target, err := deps.Resolver.Resolve(in.Path, "")
		if err != nil {
			return Fail(git.KindUnknown, err.Error())
		}
		if !target.Exists {
			return Fail(git.KindUnknown, fmt.Sprintf("%s does not exist or is not a directory", target.Path))
		}
		if !deps.Git.IsWorkTree(ctx, target.Path) {
			return Fail(git.KindNotAGitRepository, fmt.Sprintf("%s is not a git repository", target.Path))
		}

		deps.Sessions.SetWorkingDir(req.SessionID, target.Path)
		req.Log.Info("session working directory set", "dir", target.Path)
		return Ok("Working directory set", map[string]any{"path": target.Path})
	})
}

type clearWorkingDirInput struct{}

// NewClearWorkingDirTool builds git_clear_working_dir.
func NewClearWorkingDirTool(deps Deps) Tool {
	def := Definition{
		Name:        "git_clear_working_dir",
		Description: "Forget the repository path remembered for this session.",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
		},
	}

	return newTool(def, func(ctx context.Context, req Request, in clearWorkingDirInput) OperationResult {
		deps.Sessions.ClearWorkingDir(req.SessionID)
		req.Log.Info("session working directory cleared")
		return Ok("Working directory cleared", nil)
	})
}
