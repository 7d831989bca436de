package session

import (
	"log"
	"sync"
)

// Table is the process-wide map of live sessions keyed by transport handle
// (§3, §4.3's sibling catalogue for peers rather than recordings).
type Table struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewTable constructs an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

// Insert adds s to the table under s.ID and arms the table's cleanup hook
// so the entry is dropped automatically once s.Hangup runs.
func (t *Table) Insert(s *Session) {
	t.mu.Lock()
	t.sessions[s.ID] = s
	t.mu.Unlock()

	s.SetOnDestroyed(func(done *Session) {
		t.mu.Lock()
		delete(t.sessions, done.ID)
		t.mu.Unlock()
		log.Println("session.Table: removed", done.ID)
	})
}

// Get returns the session for handle, or ok=false if none is live.
func (t *Table) Get(handle string) (s *Session, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s, ok = t.sessions[handle]
	return s, ok
}

// Remove drops handle from the table directly, used when a session is
// discarded before it ever reaches Hangup (e.g. setup failed).
func (t *Table) Remove(handle string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, handle)
}

// Count returns the number of live sessions, used by diagnostics.
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.sessions)
}

// Snapshot returns a shallow copy of the live session list.
func (t *Table) Snapshot() []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}

	return out
}
