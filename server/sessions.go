package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lrnselfreliance/wrolpi-sub001/pkg/solver"
)

// calculator is one live ratio calculator session.
type calculator struct {
	ID       string
	State    solver.State
	lastSeen time.Time
}

// sessionManager holds live calculators keyed by id. Sessions expire after
// ttl of inactivity; when the map grows past max, the stalest session is
// evicted to make room.
type sessionManager struct {
	mu    sync.Mutex
	calcs map[string]*calculator
	ttl   time.Duration
	max   int
}

func newSessionManager(ttl time.Duration, max int) *sessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if max <= 0 {
		max = 256
	}
	return &sessionManager{
		calcs: make(map[string]*calculator),
		ttl:   ttl,
		max:   max,
	}
}

// Create registers a fresh calculator and returns its id.
func (m *sessionManager) Create(st solver.State) string {
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.calcs) >= m.max {
		m.evictStalest()
	}
	m.calcs[id] = &calculator{ID: id, State: st, lastSeen: time.Now()}
	return id
}

// Get returns the state of a live calculator and refreshes its ttl.
func (m *sessionManager) Get(id string) (solver.State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.live(id)
	if !ok {
		return solver.State{}, false
	}
	c.lastSeen = time.Now()
	return c.State, true
}

// Apply runs one event against a calculator under the manager lock, so
// events on the same calculator are always serialized. It returns the state
// before and after the event; the caller diffs them for persistence.
func (m *sessionManager) Apply(id string, ev solver.Event) (prev, next solver.State, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, live := m.live(id)
	if !live {
		return solver.State{}, solver.State{}, false
	}
	prev = c.State
	c.State = solver.Apply(c.State, ev)
	c.lastSeen = time.Now()
	return prev, c.State, true
}

// Delete discards a calculator. Returns false when it was not live.
func (m *sessionManager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(id); !ok {
		return false
	}
	delete(m.calcs, id)
	return true
}

// live looks up a calculator, lazily dropping it when expired.
// Caller holds the lock.
func (m *sessionManager) live(id string) (*calculator, bool) {
	c, ok := m.calcs[id]
	if !ok {
		return nil, false
	}
	if time.Since(c.lastSeen) > m.ttl {
		delete(m.calcs, id)
		return nil, false
	}
	return c, true
}

// Len returns the number of live calculators.
func (m *sessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calcs)
}

// Prune removes sessions idle past their ttl. Returns the number removed.
func (m *sessionManager) Prune() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, c := range m.calcs {
		if time.Since(c.lastSeen) > m.ttl {
			delete(m.calcs, id)
			pruned++
		}
	}
	return pruned
}

// evictStalest removes the least recently used session. Caller holds the lock.
func (m *sessionManager) evictStalest() {
	var oldestID string
	var oldest time.Time
	for id, c := range m.calcs {
		if oldestID == "" || c.lastSeen.Before(oldest) {
			oldestID = id
			oldest = c.lastSeen
		}
	}
	if oldestID != "" {
		delete(m.calcs, oldestID)
	}
}

// run prunes expired sessions periodically until the context is cancelled.
func (m *sessionManager) run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}
