package solver

import (
	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
)

// State is the complete calculator state between events. It is copied on
// Apply; the slot array copies with it and the remembered-units map is
// replaced rather than written through, so old states stay valid.
type State struct {
	Base       units.Dimension
	Quantities [slotCount]units.Quantity
	Recent     Recency

	// RecentUnits remembers the last unit picked per dimension, so switching
	// back to a dimension restores the unit the user was working in.
	RecentUnits map[units.Dimension]string
}

// New returns a fresh dimensionless state. seed preloads the remembered
// units, typically from the persisted cache; entries whose symbol is not a
// unit of their dimension are dropped.
func New(seed map[units.Dimension]string) State {
	ru := make(map[units.Dimension]string, len(seed))
	for dim, sym := range seed {
		if _, ok := units.LookupIn(dim, sym); ok && dim != units.None {
			ru[dim] = sym
		}
	}

	st := State{Base: units.None, RecentUnits: ru}
	for i := range st.Quantities {
		st.Quantities[i] = units.Zero(units.Unitless)
	}
	return st
}

// Quantity returns the quantity held in a slot.
func (s State) Quantity(sl Slot) units.Quantity {
	return s.Quantities[sl]
}

// Solved returns the slot the calculator is currently deriving. It exists
// only once three distinct slots have been edited.
func (s State) Solved() (Slot, bool) {
	return s.Recent.Missing()
}

// Apply processes one edit event and returns the next state. It is total:
// unknown units and dimensions leave the state unchanged, unparseable values
// read as zero, and arithmetic follows float64 to the end.
func Apply(s State, ev Event) State {
	switch e := ev.(type) {
	case EditValue:
		if int(e.Slot) >= slotCount {
			return s
		}
		s.Recent = s.Recent.Touch(e.Slot)
		q := s.Quantities[e.Slot]
		s.Quantities[e.Slot] = units.Quantity{Value: units.ParseValue(e.Raw), Unit: q.Unit}
		s = s.rememberUnit(q.Unit)

	case EditUnit:
		if int(e.Slot) >= slotCount {
			return s
		}
		target, ok := units.LookupIn(s.Base, e.Symbol)
		if !ok {
			return s
		}
		conv, err := units.Convert(s.Quantities[e.Slot], target)
		if err != nil {
			return s
		}
		s.Quantities[e.Slot] = conv
		s = s.rememberUnit(target)

	case SwitchBase:
		return s.switchBase(e.Dim)
	}

	return s.recompute()
}

// switchBase resets the calculator onto a new dimension: all slots zero, the
// recency window empty, every slot in the dimension's remembered or default
// unit.
func (s State) switchBase(dim units.Dimension) State {
	if !units.Known(dim) {
		dim = units.None
	}

	u := units.Unitless
	if dim != units.None {
		u = units.Default(dim)
		if sym, ok := s.RecentUnits[dim]; ok {
			if remembered, ok := units.LookupIn(dim, sym); ok {
				u = remembered
			}
		}
	}

	s.Base = dim
	s.Recent = Recency{}
	for i := range s.Quantities {
		s.Quantities[i] = units.Zero(u)
	}
	return s
}

// rememberUnit records u as the preferred unit for the active dimension.
// The map is copied, never written through, to keep states independent.
func (s State) rememberUnit(u units.Unit) State {
	if s.Base == units.None || u.Dim != s.Base {
		return s
	}
	if s.RecentUnits[s.Base] == u.Symbol {
		return s
	}

	ru := make(map[units.Dimension]string, len(s.RecentUnits)+1)
	for dim, sym := range s.RecentUnits {
		ru[dim] = sym
	}
	ru[s.Base] = u.Symbol
	s.RecentUnits = ru
	return s
}

// recompute derives the slot outside the recency window from the other
// three, expressed in that slot's own display unit. With fewer than three
// slots edited there is nothing to derive yet.
//
// Cross-multiplication gives one rearrangement per slot:
//
//	a = (b x c) / d    b = (a x d) / c
//	c = (a x d) / b    d = (b x c) / a
func (s State) recompute() State {
	missing, ok := s.Recent.Missing()
	if !ok {
		return s
	}

	var left, right, denom units.Quantity
	switch missing {
	case A:
		left, right, denom = s.Quantities[B], s.Quantities[C], s.Quantities[D]
	case B:
		left, right, denom = s.Quantities[A], s.Quantities[D], s.Quantities[C]
	case C:
		left, right, denom = s.Quantities[A], s.Quantities[D], s.Quantities[B]
	case D:
		left, right, denom = s.Quantities[B], s.Quantities[C], s.Quantities[A]
	}

	// All four slots share the base dimension, so the term algebra cannot
	// hit a dimension mismatch here.
	prod, err := units.Mul(left, right)
	if err != nil {
		return s
	}
	quot, err := prod.Div(denom)
	if err != nil {
		return s
	}
	result, err := quot.In(s.Quantities[missing].Unit)
	if err != nil {
		return s
	}

	s.Quantities[missing] = result
	return s
}
