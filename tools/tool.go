// Package tools implements the git operations exposed over the wire. Each
// tool decodes loosely-typed arguments into a typed input, validates it, and
// dispatches to git plumbing, folding every outcome into an OperationResult.
package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/tomhartley/gitbridge/git"
	"github.com/tomhartley/gitbridge/paths"
	"github.com/tomhartley/gitbridge/session"
)

// Property describes one input field in a tool's schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the JSON schema for a tool's arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Definition is the advertised shape of a tool.
type Definition struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// Request carries the per-call context every tool receives: who is asking
// (session), the correlation id for log grep-ability, and the session's
// remembered working directory when one is set.
type Request struct {
	CorrelationID string
	SessionID     string
	SessionDir    string
	Log           *slog.Logger
}

// Validator is implemented by input types that check their own fields after
// decoding.
type Validator interface {
	Validate() error
}

// Handler executes a tool against raw arguments.
type Handler func(ctx context.Context, req Request, args map[string]any) OperationResult

// Tool pairs an advertised definition with its handler.
type Tool struct {
	Definition Definition
	Handler    Handler
}

// Deps are the collaborators every tool composes.
type Deps struct {
	Git      *git.Service
	Resolver *paths.Resolver
	Sessions *session.Store
}

// newTool wraps a typed handler in the decode/validate plumbing shared by
// every tool. Decode failures and validation failures surface as hard
// failures, never as panics.
func newTool[In any](def Definition, run func(ctx context.Context, req Request, in In) OperationResult) Tool {
	return Tool{
		Definition: def,
		Handler: func(ctx context.Context, req Request, args map[string]any) OperationResult {
			var in In
			if err := mapstructure.Decode(args, &in); err != nil {
				return Fail(git.KindUnknown, fmt.Sprintf("invalid arguments: %v", err))
			}
			if v, ok := any(in).(Validator); ok {
				if err := v.Validate(); err != nil {
					return Fail(git.KindUnknown, err.Error())
				}
			}
			return run(ctx, req, in)
		},
	}
}

// resolveDir applies path precedence (request > session > cwd) and converts
// resolver rejections into results. Repository-ness is not checked here; the
// first git command classifies NotAGitRepository on its own.
func resolveDir(deps Deps, req Request, requested string) (string, *OperationResult) {
	target, err := deps.Resolver.Resolve(requested, req.SessionDir)
	if err != nil {
		res := Fail(git.KindUnknown, err.Error())
		return "", &res
	}
	return target.Path, nil
}

// Registry holds the registered tools in a stable advertised order.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Re-registering a name replaces the handler but keeps
// its position.
func (r *Registry) Register(t Tool) {
	name := t.Definition.Name
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
}

// Definitions returns the advertised tool definitions in registration order.
func (r *Registry) Definitions() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].Definition)
	}
	return defs
}

// Dispatch runs the named tool. Unknown names report ok=false so the
// transport can answer with a protocol-level error.
func (r *Registry) Dispatch(ctx context.Context, name string, req Request, args map[string]any) (OperationResult, bool) {
	t, ok := r.tools[name]
	if !ok {
		return OperationResult{}, false
	}
	return t.Handler(ctx, req, args), true
}

// NewRegistryWithDefaults registers the full tool set.
func NewRegistryWithDefaults(deps Deps) *Registry {
	r := NewRegistry()
	r.Register(NewRewordTool(deps))
	r.Register(NewStashTool(deps))
	r.Register(NewStatusTool(deps))
	r.Register(NewLogTool(deps))
	r.Register(NewSetWorkingDirTool(deps))
	r.Register(NewClearWorkingDirTool(deps))
	return r
}
