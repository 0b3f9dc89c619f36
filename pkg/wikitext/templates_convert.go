package wikitext

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// UnitDimension groups units that convert into each other.
type UnitDimension int

const (
	Length UnitDimension = iota
	Mass
	Temperature
	Area
	Speed
	Volume
)

// Unit describes one measurement unit for {{convert}}. A value v in this
// unit is v*Factor+Offset in the dimension's base unit.
type Unit struct {
	Symbol    string
	Dimension UnitDimension
	Factor    float64
	Offset    float64
	Default   string // code of the unit converted to when none is given
}

// Units is keyed by unit code.
// Adding a unit = adding one entry here and its aliases below.
var Units = map[string]Unit{
	"m":   {Symbol: "m", Dimension: Length, Factor: 1, Default: "ft"},
	"km":  {Symbol: "km", Dimension: Length, Factor: 1000, Default: "mi"},
	"cm":  {Symbol: "cm", Dimension: Length, Factor: 0.01, Default: "in"},
	"mm":  {Symbol: "mm", Dimension: Length, Factor: 0.001, Default: "in"},
	"mi":  {Symbol: "mi", Dimension: Length, Factor: 1609.344, Default: "km"},
	"yd":  {Symbol: "yd", Dimension: Length, Factor: 0.9144, Default: "m"},
	"ft":  {Symbol: "ft", Dimension: Length, Factor: 0.3048, Default: "m"},
	"in":  {Symbol: "in", Dimension: Length, Factor: 0.0254, Default: "cm"},
	"nmi": {Symbol: "nmi", Dimension: Length, Factor: 1852, Default: "km"},

	"kg": {Symbol: "kg", Dimension: Mass, Factor: 1, Default: "lb"},
	"g":  {Symbol: "g", Dimension: Mass, Factor: 0.001, Default: "oz"},
	"t":  {Symbol: "t", Dimension: Mass, Factor: 1000, Default: "lb"},
	"lb": {Symbol: "lb", Dimension: Mass, Factor: 0.45359237, Default: "kg"},
	"oz": {Symbol: "oz", Dimension: Mass, Factor: 0.028349523125, Default: "g"},
	"st": {Symbol: "st", Dimension: Mass, Factor: 6.35029318, Default: "kg"},

	"C": {Symbol: "°C", Dimension: Temperature, Factor: 1, Offset: 273.15, Default: "F"},
	"F": {Symbol: "°F", Dimension: Temperature, Factor: 5.0 / 9.0, Offset: 273.15 - 32*5.0/9.0, Default: "C"},
	"K": {Symbol: "K", Dimension: Temperature, Factor: 1, Default: "C"},

	"m2":   {Symbol: "m²", Dimension: Area, Factor: 1, Default: "sqft"},
	"km2":  {Symbol: "km²", Dimension: Area, Factor: 1e6, Default: "sqmi"},
	"ha":   {Symbol: "ha", Dimension: Area, Factor: 1e4, Default: "acre"},
	"acre": {Symbol: "acres", Dimension: Area, Factor: 4046.8564224, Default: "ha"},
	"sqmi": {Symbol: "sq mi", Dimension: Area, Factor: 2589988.110336, Default: "km2"},
	"sqft": {Symbol: "sq ft", Dimension: Area, Factor: 0.09290304, Default: "m2"},

	"km/h": {Symbol: "km/h", Dimension: Speed, Factor: 1 / 3.6, Default: "mph"},
	"mph":  {Symbol: "mph", Dimension: Speed, Factor: 0.44704, Default: "km/h"},
	"m/s":  {Symbol: "m/s", Dimension: Speed, Factor: 1, Default: "ft/s"},
	"ft/s": {Symbol: "ft/s", Dimension: Speed, Factor: 0.3048, Default: "m/s"},
	"kn":   {Symbol: "kn", Dimension: Speed, Factor: 1852.0 / 3600.0, Default: "km/h"},

	"L":      {Symbol: "L", Dimension: Volume, Factor: 0.001, Default: "USgal"},
	"ml":     {Symbol: "ml", Dimension: Volume, Factor: 1e-6, Default: "USfloz"},
	"m3":     {Symbol: "m³", Dimension: Volume, Factor: 1, Default: "cuft"},
	"cuft":   {Symbol: "cu ft", Dimension: Volume, Factor: 0.028316846592, Default: "m3"},
	"USgal":  {Symbol: "US gal", Dimension: Volume, Factor: 0.003785411784, Default: "L"},
	"impgal": {Symbol: "imp gal", Dimension: Volume, Factor: 0.00454609, Default: "L"},
	"USfloz": {Symbol: "US fl oz", Dimension: Volume, Factor: 2.95735295625e-5, Default: "ml"},
}

// unitAliases maps lowercased spellings to unit codes.
var unitAliases = map[string]string{
	"metre":         "m", "metres": "m", "meter": "m", "meters": "m",
	"kilometre":     "km", "kilometres": "km", "kilometer": "km", "kilometers": "km",
	"centimetre":    "cm", "centimetres": "cm", "centimeter": "cm", "centimeters": "cm",
	"millimetre":    "mm", "millimetres": "mm", "millimeter": "mm", "millimeters": "mm",
	"mile":          "mi", "miles": "mi",
	"yard":          "yd", "yards": "yd",
	"foot":          "ft", "feet": "ft",
	"inch":          "in", "inches": "in",
	"nautical mile": "nmi", "nautical miles": "nmi",
	"kilogram":      "kg", "kilograms": "kg",
	"gram":          "g", "grams": "g",
	"tonne":         "t", "tonnes": "t",
	"pound":         "lb", "pounds": "lb", "lbs": "lb",
	"ounce":         "oz", "ounces": "oz",
	"stone":         "st",
	"c":             "C", "°c": "C", "degc": "C", "celsius": "C",
	"f":             "F", "°f": "F", "degf": "F", "fahrenheit": "F",
	"k":             "K", "kelvin": "K",
	"m²":            "m2", "sqm": "m2",
	"km²":           "km2", "sqkm": "km2",
	"hectare":       "ha", "hectares": "ha",
	"acres":         "acre",
	"mi2":           "sqmi", "mi²": "sqmi", "sq mi": "sqmi",
	"ft2":           "sqft", "ft²": "sqft", "sq ft": "sqft",
	"kph":           "km/h", "kmh": "km/h", "km/hr": "km/h",
	"knot":          "kn", "knots": "kn", "kt": "kn",
	"l":             "L", "litre": "L", "litres": "L", "liter": "L", "liters": "L",
	"ml":            "ml", "millilitre": "ml", "milliliter": "ml",
	"m³":            "m3", "cum": "m3",
	"cu ft":         "cuft", "ft3": "cuft",
	"usgal":         "USgal", "gal": "USgal", "us gal": "USgal",
	"impgal":        "impgal", "imp gal": "impgal",
	"usfloz":        "USfloz", "us fl oz": "USfloz",
}

var rangeSeparators = map[string]string{
	"-":   "–",
	"–":   "–",
	"to":  " to ",
	"and": " and ",
	"or":  " or ",
	"x":   " × ",
	"by":  " by ",
	"+/-": " ± ",
}

func registerConvertTemplates() {
	registerTemplate(convertTemplate, "convert", "cvt")
}

// LookupUnit resolves a unit code or alias.
func LookupUnit(s string) (string, Unit, bool) {
	s = strings.TrimSpace(s)
	if u, ok := Units[s]; ok {
		return s, u, true
	}
	if code, ok := unitAliases[strings.ToLower(s)]; ok {
		return code, Units[code], true
	}
	return "", Unit{}, false
}

// Convert converts v between two units of the same dimension.
func Convert(v float64, from, to Unit) float64 {
	base := v*from.Factor + from.Offset
	return (base - to.Offset) / to.Factor
}

func parseQuantity(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.ReplaceAll(s, "−", "-")
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// maxDecimals bounds the precision argument; float64 carries no more.
const maxDecimals = 15

// roundForDisplay rounds v to decimals places (negative rounds to tens,
// hundreds, ...) and groups thousands.
func roundForDisplay(v float64, decimals int) string {
	decimals = min(max(decimals, -maxDecimals), maxDecimals)
	p := math.Pow(10, float64(decimals))
	r := v
	if scaled := v * p; !math.IsInf(scaled, 0) {
		r = math.Round(scaled) / p
	}
	if r == 0 {
		return "0"
	}
	return humanize.Commaf(r)
}

// defaultDecimals keeps three significant figures but never rounds away
// integer digits.
func defaultDecimals(v float64) int {
	if v == 0 {
		return 0
	}
	return max(0, 2-int(math.Floor(math.Log10(math.Abs(v)))))
}

func sigfigDecimals(v float64, sig int) int {
	if v == 0 {
		return 0
	}
	return sig - 1 - int(math.Floor(math.Log10(math.Abs(v))))
}

// convertTemplate renders {{convert|value|from|to|precision}} and ranges
// such as {{convert|5|to|10|km}}, always with unit symbols.
func convertTemplate(t *Templates, inv Invocation) string {
	args := inv.Positional
	values := []string{arg(args, 0)}
	sep := ""
	unitIdx := 1
	if s, ok := rangeSeparators[strings.ToLower(arg(args, 1))]; ok {
		if _, isNum := parseQuantity(arg(args, 2)); isNum {
			values = append(values, arg(args, 2))
			sep = s
			unitIdx = 3
		}
	}

	nums := make([]float64, len(values))
	for i, v := range values {
		n, ok := parseQuantity(v)
		if !ok {
			return strings.TrimSpace(strings.Join(values, sep) + " " + arg(args, unitIdx))
		}
		nums[i] = n
	}
	input := strings.Join(values, sep)

	fromCode, from, ok := LookupUnit(arg(args, unitIdx))
	if !ok {
		return strings.TrimSpace(input + " " + arg(args, unitIdx))
	}
	inText := input + " " + from.Symbol

	targets, precisionIdx := convertTargets(arg(args, unitIdx+1), from, fromCode)
	if len(targets) == 0 {
		return inText
	}
	precisionIdx += unitIdx

	var outs []string
	for _, to := range targets {
		parts := make([]string, len(nums))
		for i, n := range nums {
			c := Convert(n, from, to)
			decimals := defaultDecimals(c)
			if p, err := strconv.Atoi(arg(args, precisionIdx)); err == nil {
				decimals = p
			}
			if sig, err := strconv.Atoi(inv.Param("sigfig")); err == nil && sig > 0 {
				decimals = sigfigDecimals(c, sig)
			}
			parts[i] = roundForDisplay(c, decimals)
		}
		outs = append(outs, strings.Join(parts, sep)+" "+to.Symbol)
	}
	outText := strings.Join(outs, "; ")

	switch strings.ToLower(inv.Param("disp")) {
	case "or":
		return inText + " or " + outText
	case "flip":
		return outText + " (" + inText + ")"
	case "out", "output only":
		return outText
	}
	return inText + " (" + outText + ")"
}

// convertTargets resolves the target argument into units. When the
// argument is not a unit the default target is used and the argument is
// the precision; the returned offset tells where the precision lives
// relative to the source unit.
func convertTargets(raw string, from Unit, fromCode string) ([]Unit, int) {
	raw = strings.TrimSpace(raw)
	if code, u, ok := LookupUnit(raw); ok && u.Dimension == from.Dimension && code != fromCode {
		return []Unit{u}, 2
	}
	var units []Unit
	for _, f := range strings.Fields(raw) {
		code, u, ok := LookupUnit(f)
		if !ok || u.Dimension != from.Dimension || code == fromCode {
			units = nil
			break
		}
		units = append(units, u)
	}
	if len(units) > 0 {
		return units, 2
	}
	if def, ok := Units[from.Default]; ok {
		return []Unit{def}, 1
	}
	return nil, 1
}
