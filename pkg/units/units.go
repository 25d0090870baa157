// Package units defines the measurement dimensions and unit tables used by
// the ratio calculator, plus the quantity arithmetic the solver is built on.
//
// Every dimension stores magnitudes against one canonical unit (metres for
// length, litres for volume, and so on). A Unit's Factor is the number of
// canonical units that one display unit represents, so converting between
// units of the same dimension is a single multiply and divide.
package units

import (
	"math"
	"sort"
	"strings"
)

// Dimension identifies a family of units that can be converted between.
// The zero value None is the dimensionless family used for plain numbers.
type Dimension string

// Supported dimensions.
const (
	None   Dimension = ""
	Length Dimension = "length"
	Area   Dimension = "area"
	Volume Dimension = "volume"
	Mass   Dimension = "mass"
	Energy Dimension = "energy"
)

// String returns the dimension name, with "none" for the dimensionless family.
func (d Dimension) String() string {
	if d == None {
		return "none"
	}
	return string(d)
}

// ParseDimension maps a dimension name to its Dimension.
// "none", "null", and the empty string all mean dimensionless.
func ParseDimension(s string) (Dimension, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "null":
		return None, true
	case "length":
		return Length, true
	case "area":
		return Area, true
	case "volume":
		return Volume, true
	case "mass":
		return Mass, true
	case "energy":
		return Energy, true
	}
	return None, false
}

// Known reports whether d is a dimension this package has units for.
func Known(d Dimension) bool {
	if d == None {
		return true
	}
	_, ok := unitTable[d]
	return ok
}

// Unit describes one entry in a dimension's unit set.
type Unit struct {
	Symbol   string    // short form used in storage and on the wire (e.g. "km")
	Name     string    // long form shown in pickers (e.g. "kilometre")
	Dim      Dimension // family the unit belongs to
	Factor   float64   // canonical units per one display unit
	Decimals int       // fraction digits shown when formatting
}

// Unitless is the unit of plain numbers. It is the only unit of None.
var Unitless = Unit{Symbol: "", Name: "number", Dim: None, Factor: 1, Decimals: 6}

// unitTable lists each dimension's units in picker order.
// Factors are canonical units per display unit; the canonical unit of each
// dimension carries factor 1 (metre, square metre, litre, kilogram, joule).
// Fields: symbol, name, dimension, factor, display decimals.
var unitTable = map[Dimension][]Unit{
	Length: {
		{"mm", "millimetre", Length, 0.001, 2},
		{"cm", "centimetre", Length, 0.01, 3},
		{"m", "metre", Length, 1, 5},
		{"km", "kilometre", Length, 1000, 6},
		{"in", "inch", Length, 0.0254, 4},
		{"ft", "foot", Length, 0.3048, 5},
		{"yd", "yard", Length, 0.9144, 5},
		{"mi", "mile", Length, 1609.344, 6},
	},
	Area: {
		{"cm2", "square centimetre", Area, 0.0001, 2},
		{"m2", "square metre", Area, 1, 4},
		{"ha", "hectare", Area, 10_000, 5},
		{"km2", "square kilometre", Area, 1_000_000, 6},
		{"in2", "square inch", Area, 0.00064516, 3},
		{"ft2", "square foot", Area, 0.09290304, 4},
		{"acre", "acre", Area, 4046.8564224, 5},
		{"mi2", "square mile", Area, 2_589_988.110336, 6},
	},
	Volume: {
		{"ml", "millilitre", Volume, 0.001, 2},
		{"l", "litre", Volume, 1, 4},
		{"m3", "cubic metre", Volume, 1000, 6},
		{"tsp", "teaspoon", Volume, 0.00492892159375, 2},
		{"tbsp", "tablespoon", Volume, 0.01478676478125, 2},
		{"floz", "fluid ounce", Volume, 0.0295735295625, 3},
		{"cup", "cup", Volume, 0.2365882365, 3},
		{"pt", "pint", Volume, 0.473176473, 4},
		{"qt", "quart", Volume, 0.946352946, 4},
		{"gal", "gallon", Volume, 3.785411784, 5},
	},
	Mass: {
		{"mg", "milligram", Mass, 0.000001, 1},
		{"g", "gram", Mass, 0.001, 2},
		{"kg", "kilogram", Mass, 1, 4},
		{"t", "tonne", Mass, 1000, 6},
		{"oz", "ounce", Mass, 0.028349523125, 3},
		{"lb", "pound", Mass, 0.45359237, 4},
		{"ton", "US ton", Mass, 907.18474, 6},
	},
	Energy: {
		{"J", "joule", Energy, 1, 2},
		{"kJ", "kilojoule", Energy, 1000, 4},
		{"MJ", "megajoule", Energy, 1_000_000, 6},
		{"Wh", "watt hour", Energy, 3600, 4},
		{"kWh", "kilowatt hour", Energy, 3_600_000, 6},
		{"cal", "calorie", Energy, 4.184, 2},
		{"kcal", "kilocalorie", Energy, 4184, 4},
		{"BTU", "British thermal unit", Energy, 1055.05585262, 4},
	},
}

// dimensionOrder lists the dimensions that carry units, in picker order.
var dimensionOrder = []Dimension{Length, Area, Volume, Mass, Energy}

// unitAliases maps long unit names (with common spelling and plural
// variants) to canonical symbols. Keys are lowercase.
var unitAliases = map[string]string{
	// Length
	"millimetre": "mm", "millimetres": "mm", "millimeter": "mm", "millimeters": "mm",
	"centimetre": "cm", "centimetres": "cm", "centimeter": "cm", "centimeters": "cm",
	"metre": "m", "metres": "m", "meter": "m", "meters": "m",
	"kilometre": "km", "kilometres": "km", "kilometer": "km", "kilometers": "km",
	"inch": "in", "inches": "in",
	"foot": "ft", "feet": "ft",
	"yard": "yd", "yards": "yd",
	"mile": "mi", "miles": "mi",
	// Area
	"hectare": "ha", "hectares": "ha",
	"acres": "acre",
	// Volume
	"millilitre": "ml", "millilitres": "ml", "milliliter": "ml", "milliliters": "ml",
	"litre": "l", "litres": "l", "liter": "l", "liters": "l",
	"teaspoon": "tsp", "teaspoons": "tsp",
	"tablespoon": "tbsp", "tablespoons": "tbsp",
	"fluid ounce": "floz", "fluid ounces": "floz", "fl oz": "floz",
	"cups": "cup",
	"pint": "pt", "pints": "pt",
	"quart": "qt", "quarts": "qt",
	"gallon": "gal", "gallons": "gal",
	// Mass
	"milligram": "mg", "milligrams": "mg",
	"gram": "g", "grams": "g",
	"kilogram": "kg", "kilograms": "kg", "kilo": "kg", "kilos": "kg",
	"tonne": "t", "tonnes": "t",
	"ounce": "oz", "ounces": "oz",
	"pound": "lb", "pounds": "lb", "lbs": "lb",
	"tons": "ton",
	// Energy
	"joule": "J", "joules": "J",
	"kilojoule": "kJ", "kilojoules": "kJ",
	"megajoule": "MJ", "megajoules": "MJ",
	"watt hour": "Wh", "watt hours": "Wh",
	"kilowatt hour": "kWh", "kilowatt hours": "kWh",
	"calorie": "cal", "calories": "cal",
	"kilocalorie": "kcal", "kilocalories": "kcal", "btu": "BTU",
}

// symbolIndex maps symbols to units for O(1) lookup across all dimensions.
var symbolIndex = buildSymbolIndex()

// suggestCandidates holds every symbol and alias in deterministic order for
// typo suggestions.
var suggestCandidates = buildSuggestCandidates()

func buildSymbolIndex() map[string]Unit {
	idx := make(map[string]Unit)
	for _, dim := range dimensionOrder {
		for _, u := range unitTable[dim] {
			idx[u.Symbol] = u
		}
	}
	return idx
}

func buildSuggestCandidates() []string {
	out := make([]string, 0, len(symbolIndex)+len(unitAliases))
	for _, dim := range dimensionOrder {
		for _, u := range unitTable[dim] {
			out = append(out, u.Symbol)
		}
	}
	aliases := make([]string, 0, len(unitAliases))
	for name := range unitAliases {
		aliases = append(aliases, name)
	}
	sort.Strings(aliases)
	return append(out, aliases...)
}

// Lookup finds a unit by its exact symbol. The empty symbol is Unitless.
func Lookup(symbol string) (Unit, bool) {
	if symbol == "" {
		return Unitless, true
	}
	u, ok := symbolIndex[symbol]
	return u, ok
}

// LookupIn finds a unit by symbol within one dimension.
// For None only the empty symbol matches.
func LookupIn(dim Dimension, symbol string) (Unit, bool) {
	u, ok := Lookup(symbol)
	if !ok || u.Dim != dim {
		return Unit{}, false
	}
	return u, true
}

// Resolve finds a unit by symbol or by long name ("metre", "feet", ...).
// Name matching is case-insensitive.
func Resolve(name string) (Unit, bool) {
	if u, ok := Lookup(name); ok {
		return u, true
	}
	if sym, ok := unitAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return Lookup(sym)
	}
	return Unit{}, false
}

// UnitsOf returns dim's unit set in picker order. The slice is a copy.
func UnitsOf(dim Dimension) []Unit {
	src := unitTable[dim]
	out := make([]Unit, len(src))
	copy(out, src)
	return out
}

// Dimensions returns the dimensions that carry units, in picker order.
// None is not included; it has no picker.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder)
	return out
}

// Default returns the canonical unit of a dimension, the one stored values
// are expressed in. Unknown dimensions and None map to Unitless.
func Default(dim Dimension) Unit {
	for _, u := range unitTable[dim] {
		if u.Factor == 1 {
			return u
		}
	}
	return Unitless
}

// Pretty returns the symbol to show on screen. A few symbols swap their
// ASCII storage form for the typographic one.
func (u Unit) Pretty() string {
	switch u.Symbol {
	case "cm2":
		return "cm²"
	case "m2":
		return "m²"
	case "km2":
		return "km²"
	case "in2":
		return "in²"
	case "ft2":
		return "ft²"
	case "mi2":
		return "mi²"
	case "m3":
		return "m³"
	case "floz":
		return "fl oz"
	default:
		return u.Symbol
	}
}

// Suggest returns the closest known symbol or name for a misspelled unit,
// or "" when nothing is within editing distance 3.
func Suggest(input string) string {
	in := strings.ToLower(strings.TrimSpace(input))
	if in == "" {
		return ""
	}
	bestMatch := ""
	bestDist := math.MaxInt32
	for _, c := range suggestCandidates {
		d := levenshtein(in, strings.ToLower(c))
		if d < bestDist && d <= 3 {
			bestDist = d
			bestMatch = c
		}
	}
	if bestMatch == "" {
		return ""
	}
	// Report the canonical symbol, not the alias that happened to match.
	if sym, ok := unitAliases[bestMatch]; ok {
		return sym
	}
	return bestMatch
}

// levenshtein computes the edit distance between two strings.
func levenshtein(a, b string) int {
	la := len(a)
	lb := len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	matrix := make([][]int, la+1)
	for i := range matrix {
		matrix[i] = make([]int, lb+1)
		matrix[i][0] = i
	}
	for j := range lb + 1 {
		matrix[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			matrix[i][j] = min3(
				matrix[i-1][j]+1,
				matrix[i][j-1]+1,
				matrix[i-1][j-1]+cost,
			)
		}
	}
	return matrix[la][lb]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
