package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/tomhartley/gitbridge/exec"
	"github.com/tomhartley/gitbridge/git"
)

func stashCall(t *testing.T, deps Deps, args map[string]any) OperationResult {
	t.Helper()
	return NewStashTool(deps).Handler(context.Background(), testRequest(), args)
}

func TestStashInvalidMode(t *testing.T) {
	deps, _ := testDeps()
	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "squash"})
	if res.Success {
		t.Fatal("expected failure for unknown mode")
	}
	for _, mode := range []string{"list", "save", "apply", "pop", "drop"} {
		if !strings.Contains(res.Message, mode) {
			t.Errorf("message should name valid mode %q: %s", mode, res.Message)
		}
	}
}

func TestStashNegativeIndex(t *testing.T) {
	deps, _ := testDeps()
	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "drop", "index": -1})
	if res.Success {
		t.Fatal("expected failure for negative index")
	}
}

func TestStashListEntries(t *testing.T) {
	deps, mock := testDeps()
	mock.AddExactMatch("git", gitArgs("/repo", "stash", "list", "--format=%gd%x00%s"), exec.MockResponse{
		Stdout: []byte("stash@{0}\x00WIP on main: 1a2b work\nstash@{1}\x00On dev: other\n"),
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "list"})
	if !res.Success {
		t.Fatalf("list failed: %+v", res)
	}
	stashes, ok := res.Data["stashes"].([]map[string]any)
	if !ok || len(stashes) != 2 {
		t.Fatalf("stashes = %#v", res.Data["stashes"])
	}
	if stashes[0]["index"] != 0 || stashes[0]["branch"] != "main" {
		t.Errorf("first entry = %+v", stashes[0])
	}
	if stashes[1]["description"] != "other" {
		t.Errorf("second entry = %+v", stashes[1])
	}
}

func TestStashListEmptyStack(t *testing.T) {
	deps, _ := testDeps()
	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "list"})
	if !res.Success {
		t.Fatalf("empty list must succeed: %+v", res)
	}
	if stashes := res.Data["stashes"].([]map[string]any); len(stashes) != 0 {
		t.Errorf("stashes = %+v, want empty", stashes)
	}
}

func TestStashSave(t *testing.T) {
	deps, mock := testDeps()
	mock.AddExactMatch("git", gitArgs("/repo", "stash", "push", "-u", "-m", "wip"), exec.MockResponse{
		Stdout: []byte("Saved working directory and index state On main: wip\n"),
	})

	res := stashCall(t, deps, map[string]any{
		"path": "/repo", "mode": "save", "message": "wip", "includeUntracked": true,
	})
	if !res.Success {
		t.Fatalf("save failed: %+v", res)
	}
	if res.Data["ref"] != "stash@{0}" {
		t.Errorf("ref = %v", res.Data["ref"])
	}
}

func TestStashSaveNothingToSave(t *testing.T) {
	deps, mock := testDeps()
	mock.AddPrefixMatch("git", gitArgs("/repo", "stash", "push"), exec.MockResponse{
		Stdout: []byte("No local changes to save\n"),
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "save"})
	if !res.Success {
		t.Fatalf("save on clean tree should succeed: %+v", res)
	}
	if res.Data["created"] != false {
		t.Errorf("created = %v", res.Data["created"])
	}
}

func TestStashApplyConflictIsAdvisory(t *testing.T) {
	deps, mock := testDeps()
	mock.AddExactMatch("git", gitArgs("/repo", "stash", "apply", "stash@{0}"), exec.MockResponse{
		Stdout:   []byte("Auto-merging main.go\nCONFLICT (content): Merge conflict in main.go\n"),
		ExitCode: 1,
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "apply"})
	if res.Success {
		t.Fatal("conflicting apply must not succeed")
	}
	if res.ErrorKind != "" {
		t.Errorf("conflict outcome must carry no ErrorKind, got %q", res.ErrorKind)
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %+v", res.Conflicts)
	}
	if res.Conflicts[0].FilePath != "main.go" || res.Conflicts[0].Kind != "content" {
		t.Errorf("conflict = %+v", res.Conflicts[0])
	}
}

func TestStashPopConflictFallsBackToIndex(t *testing.T) {
	deps, mock := testDeps()
	mock.AddExactMatch("git", gitArgs("/repo", "stash", "pop", "stash@{1}"), exec.MockResponse{
		Stderr:   []byte("error: could not restore untracked files from stash\nmerge conflict\n"),
		ExitCode: 1,
	})
	mock.AddExactMatch("git", gitArgs("/repo", "diff", "--name-only", "--diff-filter=U"), exec.MockResponse{
		Stdout: []byte("a.go\nb.go\n"),
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "pop", "index": 1})
	if res.Success || res.ErrorKind != "" {
		t.Fatalf("expected advisory, got %+v", res)
	}
	if len(res.Conflicts) != 2 {
		t.Fatalf("Conflicts = %+v", res.Conflicts)
	}
	if res.Conflicts[0].FilePath != "a.go" {
		t.Errorf("conflict = %+v", res.Conflicts[0])
	}
}

func TestStashPopSuccess(t *testing.T) {
	deps, mock := testDeps()
	svcCalls := gitArgs("/repo", "stash", "pop", "stash@{0}")
	mock.AddExactMatch("git", svcCalls, exec.MockResponse{
		Stdout: []byte("Dropped refs/stash@{0}\n"),
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "pop"})
	if !res.Success {
		t.Fatalf("pop failed: %+v", res)
	}
}

func TestStashDropMissingEntry(t *testing.T) {
	deps, mock := testDeps()
	mock.AddExactMatch("git", gitArgs("/repo", "stash", "drop", "stash@{5}"), exec.MockResponse{
		Stderr:   []byte("error: stash@{5} is not a valid reference\n"),
		ExitCode: 1,
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "drop", "index": 5})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ErrorKind != string(git.KindInvalidReference) {
		t.Errorf("ErrorKind = %q, want InvalidReference", res.ErrorKind)
	}
}

func TestStashApplyEmptyStack(t *testing.T) {
	deps, mock := testDeps()
	mock.AddExactMatch("git", gitArgs("/repo", "stash", "apply", "stash@{0}"), exec.MockResponse{
		Stderr:   []byte("fatal: No stash entries found.\n"),
		ExitCode: 128,
	})

	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "apply"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.ErrorKind != string(git.KindInvalidReference) {
		t.Errorf("ErrorKind = %q, want InvalidReference", res.ErrorKind)
	}
}

func TestStashDropSuccess(t *testing.T) {
	deps, mock := testDeps()
	res := stashCall(t, deps, map[string]any{"path": "/repo", "mode": "drop"})
	if !res.Success {
		t.Fatalf("drop failed: %+v", res)
	}
	calls := mock.GetCalls()
	if calls[0].Args[len(calls[0].Args)-1] != "stash@{0}" {
		t.Errorf("drop should default to the most recent entry: %v", calls[0].Args)
	}
}
