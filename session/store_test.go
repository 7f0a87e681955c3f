package session

import (
	"fmt"
	"sync"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore()

	if _, ok := s.WorkingDir("a"); ok {
		t.Error("fresh store should remember nothing")
	}

	s.SetWorkingDir("a", "/repo/a")
	dir, ok := s.WorkingDir("a")
	if !ok || dir != "/repo/a" {
		t.Errorf("WorkingDir = %q, %v", dir, ok)
	}

	s.SetWorkingDir("a", "/repo/b")
	if dir, _ := s.WorkingDir("a"); dir != "/repo/b" {
		t.Errorf("overwrite failed, got %q", dir)
	}

	s.ClearWorkingDir("a")
	if _, ok := s.WorkingDir("a"); ok {
		t.Error("cleared session should remember nothing")
	}

	// Clearing again is a no-op.
	s.ClearWorkingDir("a")
}

func TestStoreSessionIsolation(t *testing.T) {
	s := NewStore()
	s.SetWorkingDir("a", "/repo/a")
	s.SetWorkingDir("b", "/repo/b")

	if dir, _ := s.WorkingDir("a"); dir != "/repo/a" {
		t.Errorf("session a = %q", dir)
	}
	if dir, _ := s.WorkingDir("b"); dir != "/repo/b" {
		t.Errorf("session b = %q", dir)
	}

	s.ClearWorkingDir("a")
	if _, ok := s.WorkingDir("b"); !ok {
		t.Error("clearing a must not affect b")
	}
}

func TestStoreResolver(t *testing.T) {
	s := NewStore()
	s.SetWorkingDir("a", "/repo/a")

	var resolve WorkingDirResolver = s.Resolver()
	dir, ok := resolve("a")
	if !ok || dir != "/repo/a" {
		t.Errorf("resolver returned %q, %v", dir, ok)
	}
	if _, ok := resolve("missing"); ok {
		t.Error("resolver should miss unknown sessions")
	}
}

func TestStoreConcurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n)
			s.SetWorkingDir(id, "/repo")
			s.WorkingDir(id)
			s.ClearWorkingDir(id)
		}(i)
	}
	wg.Wait()
}
