package server

import (
	"testing"
	"time"

	"github.com/lrnselfreliance/wrolpi-sub001/pkg/solver"
	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
)

func TestSessionManager_CreateAndGet(t *testing.T) {
	m := newSessionManager(time.Minute, 8)

	id := m.Create(solver.New(nil))
	if id == "" {
		t.Fatal("expected non-empty calculator id")
	}

	st, ok := m.Get(id)
	if !ok {
		t.Fatal("expected calculator to be live")
	}
	if st.Base != units.None {
		t.Errorf("expected dimensionless base, got %q", st.Base)
	}

	if _, ok := m.Get("no-such-id"); ok {
		t.Error("expected lookup of unknown id to fail")
	}
}

func TestSessionManager_Apply(t *testing.T) {
	m := newSessionManager(time.Minute, 8)
	id := m.Create(solver.New(nil))

	prev, next, ok := m.Apply(id, solver.EditValue{Slot: solver.B, Raw: "2"})
	if !ok {
		t.Fatal("expected apply on a live calculator to succeed")
	}
	if prev.Recent.Len() != 0 {
		t.Errorf("expected empty recency before the first edit, got %d", prev.Recent.Len())
	}
	if next.Recent.Len() != 1 || !next.Recent.Contains(solver.B) {
		t.Error("expected b to be tracked after the edit")
	}
	if got := next.Quantity(solver.B).Value; got != 2 {
		t.Errorf("expected b=2, got %v", got)
	}

	// The stored state must advance too, not just the returned copy.
	st, _ := m.Get(id)
	if got := st.Quantity(solver.B).Value; got != 2 {
		t.Errorf("expected stored state to hold b=2, got %v", got)
	}

	if _, _, ok := m.Apply("no-such-id", solver.EditValue{Slot: solver.A, Raw: "1"}); ok {
		t.Error("expected apply on an unknown id to fail")
	}
}

func TestSessionManager_ApplySolves(t *testing.T) {
	m := newSessionManager(time.Minute, 8)
	id := m.Create(solver.New(nil))

	m.Apply(id, solver.EditValue{Slot: solver.B, Raw: "2"})
	m.Apply(id, solver.EditValue{Slot: solver.C, Raw: "6"})
	m.Apply(id, solver.EditValue{Slot: solver.D, Raw: "3"})

	st, ok := m.Get(id)
	if !ok {
		t.Fatal("expected calculator to be live")
	}
	solved, has := st.Solved()
	if !has || solved != solver.A {
		t.Fatalf("expected a to be the solved slot, got %v (%v)", solved, has)
	}
	if got := st.Quantity(solver.A).Value; got != 4 {
		t.Errorf("expected a = 2*6/3 = 4, got %v", got)
	}
}

func TestSessionManager_Delete(t *testing.T) {
	m := newSessionManager(time.Minute, 8)
	id := m.Create(solver.New(nil))

	if !m.Delete(id) {
		t.Error("expected delete of a live calculator to succeed")
	}
	if _, ok := m.Get(id); ok {
		t.Error("expected calculator to be gone after delete")
	}
	if m.Delete(id) {
		t.Error("expected second delete to report missing")
	}
}

func TestSessionManager_Expiry(t *testing.T) {
	m := newSessionManager(50*time.Millisecond, 8)
	id := m.Create(solver.New(nil))

	if _, ok := m.Get(id); !ok {
		t.Fatal("expected calculator to be live immediately after create")
	}

	time.Sleep(80 * time.Millisecond)

	if _, ok := m.Get(id); ok {
		t.Error("expected calculator to expire after its ttl")
	}
	if n := m.Len(); n != 0 {
		t.Errorf("expected expired calculator to be dropped, have %d live", n)
	}
}

func TestSessionManager_GetRefreshesTTL(t *testing.T) {
	m := newSessionManager(60*time.Millisecond, 8)
	id := m.Create(solver.New(nil))

	// Keep touching the session; it must stay alive past the original ttl.
	for range 3 {
		time.Sleep(40 * time.Millisecond)
		if _, ok := m.Get(id); !ok {
			t.Fatal("expected an active calculator to stay live")
		}
	}
}

func TestSessionManager_MaxEviction(t *testing.T) {
	m := newSessionManager(time.Minute, 2)

	id1 := m.Create(solver.New(nil))
	time.Sleep(5 * time.Millisecond)
	id2 := m.Create(solver.New(nil))
	time.Sleep(5 * time.Millisecond)
	id3 := m.Create(solver.New(nil))

	if n := m.Len(); n != 2 {
		t.Fatalf("expected the map to stay at its cap of 2, have %d", n)
	}
	if _, ok := m.Get(id1); ok {
		t.Error("expected the stalest calculator to be evicted")
	}
	if _, ok := m.Get(id2); !ok {
		t.Error("expected the second calculator to survive")
	}
	if _, ok := m.Get(id3); !ok {
		t.Error("expected the newest calculator to survive")
	}
}

func TestSessionManager_Prune(t *testing.T) {
	m := newSessionManager(30*time.Millisecond, 8)

	m.Create(solver.New(nil))
	m.Create(solver.New(nil))
	time.Sleep(50 * time.Millisecond)
	fresh := m.Create(solver.New(nil))

	if pruned := m.Prune(); pruned != 2 {
		t.Errorf("expected 2 pruned calculators, got %d", pruned)
	}
	if n := m.Len(); n != 1 {
		t.Errorf("expected 1 live calculator after prune, have %d", n)
	}
	if _, ok := m.Get(fresh); !ok {
		t.Error("expected the fresh calculator to survive the prune")
	}
}

func TestSessionManager_Defaults(t *testing.T) {
	m := newSessionManager(0, 0)
	if m.ttl != 30*time.Minute {
		t.Errorf("expected default ttl of 30m, got %v", m.ttl)
	}
	if m.max != 256 {
		t.Errorf("expected default cap of 256, got %d", m.max)
	}
}
