package units

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders magnitudes with locale-aware digit grouping and decimal
// separators. The zero value is not usable; construct with NewFormatter.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a Formatter for a BCP 47 locale tag such as "en" or
// "de-DE". Unparseable tags fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Value formats a bare magnitude with at most the given fraction digits.
// Non-finite values render as the symbols users expect from dividing by
// zero on a calculator.
func (f *Formatter) Value(v float64, decimals int) string {
	switch {
	case math.IsInf(v, 1):
		return "∞"
	case math.IsInf(v, -1):
		return "-∞"
	case math.IsNaN(v):
		return "NaN"
	}
	if decimals < 0 {
		decimals = 0
	}
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(decimals)))
}

// Quantity formats a quantity with its unit's precision and display symbol.
// Unitless quantities are just the number.
func (f *Formatter) Quantity(q Quantity) string {
	s := f.Value(q.Value, q.Unit.Decimals)
	if q.Unit.Symbol == "" {
		return s
	}
	return s + " " + q.Unit.Pretty()
}
