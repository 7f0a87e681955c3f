package git

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomhartley/gitbridge/exec"
)

func TestIsWorkTree(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.AddExactMatch("git", gitArgs("/repo", "rev-parse", "--is-inside-work-tree"), exec.MockResponse{
		Stdout: []byte("true\n"),
	})
	mock.AddExactMatch("git", gitArgs("/tmp", "rev-parse", "--is-inside-work-tree"), exec.MockResponse{
		Stderr:   []byte("fatal: not a git repository\n"),
		ExitCode: 128,
	})
	svc := NewServiceWithExecutor(mock)

	if !svc.IsWorkTree(context.Background(), "/repo") {
		t.Error("expected /repo to be a work tree")
	}
	if svc.IsWorkTree(context.Background(), "/tmp") {
		t.Error("expected /tmp to not be a work tree")
	}
}

func TestResolveRef(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.AddExactMatch("git", gitArgs("/repo", "rev-parse", "--verify", "v1.0^{commit}"), exec.MockResponse{
		Stdout: []byte("abc123def456\n"),
	})
	svc := NewServiceWithExecutor(mock)

	hash, gerr := svc.ResolveRef(context.Background(), "/repo", "v1.0")
	if gerr != nil {
		t.Fatalf("ResolveRef failed: %v", gerr)
	}
	if hash != "abc123def456" {
		t.Errorf("hash = %q", hash)
	}
}

func TestResolveRefInvalid(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.AddPrefixMatch("git", gitArgs("/repo", "rev-parse", "--verify"), exec.MockResponse{
		Stderr:   []byte("fatal: Needed a single revision\nerror: unknown revision 'nope'\n"),
		ExitCode: 128,
	})
	svc := NewServiceWithExecutor(mock)

	_, gerr := svc.ResolveRef(context.Background(), "/repo", "nope")
	if gerr == nil {
		t.Fatal("expected error for bad ref")
	}
	if gerr.Kind != KindInvalidReference {
		t.Errorf("Kind = %q, want %q", gerr.Kind, KindInvalidReference)
	}
}

func TestCommitMessage(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.AddExactMatch("git", gitArgs("/repo", "log", "-1", "--format=%H%n%B", "HEAD"), exec.MockResponse{
		Stdout: []byte("abc123\nfix: subject line\n\nbody paragraph\n"),
	})
	svc := NewServiceWithExecutor(mock)

	info, gerr := svc.CommitMessage(context.Background(), "/repo", "HEAD")
	if gerr != nil {
		t.Fatalf("CommitMessage failed: %v", gerr)
	}
	if info.Hash != "abc123" {
		t.Errorf("Hash = %q", info.Hash)
	}
	if info.Message != "fix: subject line\n\nbody paragraph" {
		t.Errorf("Message = %q", info.Message)
	}
}

func TestAmendHead(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.AddPrefixMatch("git", gitArgs("/repo", "commit", "--amend"), exec.MockResponse{
		Stdout: []byte("[main def789] new message\n"),
	})
	mock.AddExactMatch("git", gitArgs("/repo", "log", "-1", "--format=%H%n%B", "HEAD"), exec.MockResponse{
		Stdout: []byte("def789\nnew message\n"),
	})
	svc := NewServiceWithExecutor(mock)

	info, gerr := svc.AmendHead(context.Background(), "/repo", "new message")
	if gerr != nil {
		t.Fatalf("AmendHead failed: %v", gerr)
	}
	if info.Hash != "def789" || info.Message != "new message" {
		t.Errorf("info = %+v", info)
	}

	// The amend must pass the message as a discrete argument.
	calls := mock.GetCalls()
	want := gitArgs("/repo", "commit", "--amend", "-m", "new message")
	if !reflect.DeepEqual(calls[0].Args, want) {
		t.Errorf("amend args = %v, want %v", calls[0].Args, want)
	}
}

func TestLog(t *testing.T) {
	mock := exec.NewMockExecutor()
	mock.AddPrefixMatch("git", gitArgs("/repo", "log"), exec.MockResponse{
		Stdout: []byte("a1\x00Ann Author\x002026-01-02T03:04:05Z\x00first subject\n" +
			"b2\x00Bob Builder\x002026-01-01T00:00:00Z\x00second: with colon\n"),
	})
	svc := NewServiceWithExecutor(mock)

	records, gerr := svc.Log(context.Background(), "/repo", "", 2)
	if gerr != nil {
		t.Fatalf("Log failed: %v", gerr)
	}
	want := []CommitRecord{
		{Hash: "a1", Author: "Ann Author", Date: "2026-01-02T03:04:05Z", Subject: "first subject"},
		{Hash: "b2", Author: "Bob Builder", Date: "2026-01-01T00:00:00Z", Subject: "second: with colon"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("Log() = %+v, want %+v", records, want)
	}
}
