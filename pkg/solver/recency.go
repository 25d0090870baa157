package solver

// recencyCap is how many distinct slots the window tracks. The one slot left
// outside a full window is the slot the solver derives.
const recencyCap = 3

// Recency is a bounded window of the most recently edited slots, newest
// first, with no duplicates. It is a value: Touch returns a new window and
// never mutates the receiver.
type Recency struct {
	slots [recencyCap]Slot
	n     int
}

// Touch returns the window with s moved to the front. When s is new and the
// window is full, the oldest entry falls off the end.
func (r Recency) Touch(s Slot) Recency {
	var out Recency
	out.slots[0] = s
	out.n = 1
	for i := 0; i < r.n && out.n < recencyCap; i++ {
		if r.slots[i] == s {
			continue
		}
		out.slots[out.n] = r.slots[i]
		out.n++
	}
	return out
}

// Len returns how many distinct slots are tracked.
func (r Recency) Len() int {
	return r.n
}

// Contains reports whether s is in the window.
func (r Recency) Contains(s Slot) bool {
	for i := 0; i < r.n; i++ {
		if r.slots[i] == s {
			return true
		}
	}
	return false
}

// Slots returns the tracked slots, most recent first.
func (r Recency) Slots() []Slot {
	out := make([]Slot, r.n)
	copy(out, r.slots[:r.n])
	return out
}

// Missing returns the one slot outside the window. It only exists once the
// window is full; before that no slot is considered derivable.
func (r Recency) Missing() (Slot, bool) {
	if r.n != recencyCap {
		return A, false
	}
	var seen [slotCount]bool
	for i := 0; i < r.n; i++ {
		seen[r.slots[i]] = true
	}
	for s := Slot(0); s < slotCount; s++ {
		if !seen[s] {
			return s, true
		}
	}
	return A, false
}
