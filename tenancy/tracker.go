package tenancy

import (
	"sync"

	"delliapp/models"
)

// Resolution is the current-tenant state of a session.
type Resolution struct {
	Team    *models.Team
	Loading bool
	Err     error
}

// Tracker holds a session's current tenant. Each resolution takes a sequence number
// from Begin; only the latest issued number may Commit, so a slow stale lookup can
// never overwrite a fresher one.
type Tracker struct {
	mu      sync.Mutex
	seq     uint64
	current Resolution
}

// Begin starts a resolution and returns its sequence number.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current.Loading = true
	return t.seq
}

// Commit stores the outcome of resolution seq. It reports false, leaving the state
// untouched, when seq is not the latest issued.
func (t *Tracker) Commit(seq uint64, team *models.Team, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.seq {
		return false
	}
	t.current = Resolution{Team: team, Err: err}
	return true
}

// Clear drops the current tenant and invalidates any resolution in flight.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.current = Resolution{}
}

func (t *Tracker) Current() Resolution {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// TeamID returns the resolved team id, or "" when none.
func (t *Tracker) TeamID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current.Team == nil {
		return ""
	}
	return t.current.Team.ID
}
