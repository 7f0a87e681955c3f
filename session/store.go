// Package session tracks per-session state. Each connected client gets a
// session id, and the only state a session carries is an optional remembered
// working directory that fills in when a request names no path of its own.
package session

import "sync"

// WorkingDirResolver looks up the remembered working directory for a
// session. Dispatch code depends on this function type rather than on the
// Store so tests can substitute a closure.
type WorkingDirResolver func(sessionID string) (dir string, ok bool)

// Store maps session ids to remembered working directories. Safe for
// concurrent use; sessions never observe each other's state.
type Store struct {
	mu   sync.RWMutex
	dirs map[string]string
}

func NewStore() *Store {
	return &Store{dirs: make(map[string]string)}
}

// WorkingDir returns the remembered directory for sessionID, if any.
func (s *Store) WorkingDir(sessionID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir, ok := s.dirs[sessionID]
	return dir, ok
}

// SetWorkingDir remembers dir for sessionID, replacing any prior value.
func (s *Store) SetWorkingDir(sessionID, dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirs[sessionID] = dir
}

// ClearWorkingDir forgets the remembered directory for sessionID. Clearing
// a session that remembers nothing is a no-op.
func (s *Store) ClearWorkingDir(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirs, sessionID)
}

// Resolver adapts the store to the WorkingDirResolver function type.
func (s *Store) Resolver() WorkingDirResolver {
	return s.WorkingDir
}
