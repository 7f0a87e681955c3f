package tools

import "github.com/tomhartley/gitbridge/git"

// ConflictDescriptor names one conflicted file surfaced by a stash apply.
type ConflictDescriptor struct {
	FilePath string `json:"filePath"`
	Kind     string `json:"kind"`
}

// OperationResult is the uniform outcome of every tool call. Success=false
// with no ErrorKind marks an advisory outcome: an expected, recoverable
// condition such as a reword that needs a manual procedure or a stash apply
// that hit conflicts. Hard failures always carry an ErrorKind.
type OperationResult struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Data      map[string]any       `json:"data,omitempty"`
	ErrorKind string               `json:"errorKind,omitempty"`
	Conflicts []ConflictDescriptor `json:"conflicts,omitempty"`
	Detail    string               `json:"detail,omitempty"`
}

// Ok builds a success result.
func Ok(message string, data map[string]any) OperationResult {
	return OperationResult{Success: true, Message: message, Data: data}
}

// Advisory builds a non-fatal failure with no error kind.
func Advisory(message string, data map[string]any) OperationResult {
	return OperationResult{Success: false, Message: message, Data: data}
}

// Fail builds a hard failure with an explicit kind.
func Fail(kind git.ErrorKind, message string) OperationResult {
	return OperationResult{Success: false, Message: message, ErrorKind: string(kind)}
}

// FromGitError converts a classified git failure into a result, carrying the
// raw diagnostic text as auxiliary detail.
func FromGitError(gerr *git.Error) OperationResult {
	return OperationResult{
		Success:   false,
		Message:   gerr.Message,
		ErrorKind: string(gerr.Kind),
		Detail:    gerr.Detail(),
	}
}
