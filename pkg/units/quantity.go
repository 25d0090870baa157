package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Quantity pairs a magnitude with the unit it is expressed in.
// The magnitude is kept in the display unit, not the canonical one, so the
// number the user typed is the number stored.
type Quantity struct {
	Value float64
	Unit  Unit
}

// Zero returns an empty quantity in the given unit.
func Zero(u Unit) Quantity {
	return Quantity{Value: 0, Unit: u}
}

// Canonical returns the magnitude expressed in the dimension's canonical unit.
func (q Quantity) Canonical() float64 {
	return q.Value * q.Unit.Factor
}

// Convert re-expresses q in the target unit, preserving the physical
// magnitude. Both units must belong to the same dimension.
func Convert(q Quantity, target Unit) (Quantity, error) {
	if q.Unit.Dim != target.Dim {
		return q, fmt.Errorf("cannot convert %s to %s", q.Unit.Dim, target.Dim)
	}
	if q.Unit.Symbol == target.Symbol {
		return q, nil
	}
	return Quantity{Value: q.Canonical() / target.Factor, Unit: target}, nil
}

// Term is the intermediate result of unit-aware multiplication and division:
// a canonical-unit magnitude carrying a dimension exponent. Multiplying two
// lengths yields a pow-2 length term; dividing it by a length brings it back
// to pow 1, where it can be expressed as a Quantity again.
type Term struct {
	Value float64
	Dim   Dimension
	Pow   int
}

// Mul multiplies two quantities into a term. Dimensionless factors scale the
// other operand without changing its exponent; mixing two different
// dimensions is an error.
func Mul(a, b Quantity) (Term, error) {
	switch {
	case a.Unit.Dim == None && b.Unit.Dim == None:
		return Term{Value: a.Value * b.Value, Dim: None, Pow: 0}, nil
	case a.Unit.Dim == None:
		return Term{Value: a.Value * b.Canonical(), Dim: b.Unit.Dim, Pow: 1}, nil
	case b.Unit.Dim == None:
		return Term{Value: a.Canonical() * b.Value, Dim: a.Unit.Dim, Pow: 1}, nil
	case a.Unit.Dim != b.Unit.Dim:
		return Term{}, fmt.Errorf("cannot multiply %s by %s", a.Unit.Dim, b.Unit.Dim)
	}
	return Term{Value: a.Canonical() * b.Canonical(), Dim: a.Unit.Dim, Pow: 2}, nil
}

// Div divides the term by a quantity, reducing the exponent when the
// dimensions match. Division by a zero magnitude follows float64 semantics
// and produces an infinity or NaN rather than an error.
func (t Term) Div(q Quantity) (Term, error) {
	switch {
	case q.Unit.Dim == None:
		return Term{Value: t.Value / q.Value, Dim: t.Dim, Pow: t.Pow}, nil
	case t.Dim == None:
		return Term{Value: t.Value / q.Canonical(), Dim: q.Unit.Dim, Pow: -1}, nil
	case q.Unit.Dim != t.Dim:
		return Term{}, fmt.Errorf("cannot divide %s by %s", t.Dim, q.Unit.Dim)
	}
	return Term{Value: t.Value / q.Canonical(), Dim: t.Dim, Pow: t.Pow - 1}, nil
}

// In expresses the term in a target display unit. Terms that cancelled down
// to exponent zero are plain numbers and only fit Unitless; first-power terms
// fit any unit of their dimension.
func (t Term) In(target Unit) (Quantity, error) {
	if t.Pow == 0 {
		if target.Dim != None {
			return Quantity{}, fmt.Errorf("cannot express a plain number in %s", target.Symbol)
		}
		return Quantity{Value: t.Value, Unit: Unitless}, nil
	}
	if t.Pow != 1 || t.Dim != target.Dim {
		return Quantity{}, fmt.Errorf("cannot express %s^%d in %s", t.Dim, t.Pow, target.Symbol)
	}
	return Quantity{Value: t.Value / target.Factor, Unit: target}, nil
}

// ParseValue converts user input to a magnitude. Whitespace is trimmed and
// separators are tolerated; anything that still fails to parse is zero.
// Parsing never fails.
func ParseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
