// Package git shells out to the git binary and normalizes its textual output.
//
// The package is organized into focused modules:
//   - service.go: Service struct, constructors, command construction
//   - classify.go: the closed error taxonomy and the classification rules
//   - repo.go: ref and commit plumbing (resolve, messages, amend)
//   - stash.go: stash stack operations and conflict parsing
//   - status.go: working tree status (porcelain parse)
//   - log.go: structured commit history
package git
