// Package solver implements the four-slot ratio calculator: it keeps the
// proportion a:b = c:d balanced by deriving whichever slot the user has not
// recently touched from the other three.
//
// State is a value; Apply never mutates its argument and always returns a
// usable next state, whatever the input.
package solver

import (
	"github.com/lrnselfreliance/wrolpi-sub001/pkg/units"
)

// Slot identifies one of the four positions of the proportion a:b = c:d.
type Slot uint8

// The four slots, in display order.
const (
	A Slot = iota
	B
	C
	D
)

// slotCount is the number of slots in the proportion.
const slotCount = 4

var slotNames = [slotCount]string{"a", "b", "c", "d"}

// String returns the slot's lowercase letter.
func (s Slot) String() string {
	if int(s) >= slotCount {
		return "?"
	}
	return slotNames[s]
}

// ParseSlot maps a slot letter to its Slot. Case-insensitive.
func ParseSlot(s string) (Slot, bool) {
	switch s {
	case "a", "A":
		return A, true
	case "b", "B":
		return B, true
	case "c", "C":
		return C, true
	case "d", "D":
		return D, true
	}
	return A, false
}

// Event is one discrete edit applied to a State. The three variants cover
// everything the calculator's inputs can produce.
type Event interface {
	isEvent()
}

// EditValue records the user typing a new magnitude into a slot. Raw is the
// text as typed; parsing happens inside Apply so that edits are total.
type EditValue struct {
	Slot Slot
	Raw  string
}

// EditUnit records the user picking a different display unit for a slot.
type EditUnit struct {
	Slot   Slot
	Symbol string
}

// SwitchBase records the user changing the calculator's active dimension.
type SwitchBase struct {
	Dim units.Dimension
}

func (EditValue) isEvent()  {}
func (EditUnit) isEvent()   {}
func (SwitchBase) isEvent() {}
