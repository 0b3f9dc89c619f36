package wikitext

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var coordRE, nowikiRE, commentRE *regexp.Regexp

var ErrNoCoord = errors.New("no coord data found")

var errNotSexagesimal = errors.New("not a sexagesimal value")

func init() {
	coordRE = regexp.MustCompile(`(?i)\{\{\s*coord\s*\|`)
	nowikiRE = regexp.MustCompile(`(?is)<nowiki>.*?</nowiki>`)
	commentRE = regexp.MustCompile(`(?s)<!--.*?-->`)
}

// Coord is a position parsed from {{coord}} arguments. Lat and Lon are
// signed decimal degrees; the text fields keep the parts as written so
// rendering does not introduce float noise.
type Coord struct {
	Lat float64
	Lon float64

	latParts []string
	lonParts []string
	latHemi  string
	lonHemi  string
}

func dms(parts []string, hemi string) (float64, error) {
	var rv float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		rv += f / math.Pow(60, float64(i))
	}
	if hemi == "S" || hemi == "W" {
		rv = -rv
	}
	return rv, nil
}

func isHemisphere(s string, lat bool) bool {
	if lat {
		return s == "N" || s == "S"
	}
	return s == "E" || s == "W"
}

// parseSexagesimal reads d[/m[/s]] groups each terminated by a hemisphere
// letter: 51|30|26|N|0|7|39|W.
func parseSexagesimal(parts []string) (Coord, error) {
	latEnd := -1
	for i := 1; i < len(parts) && i <= 3; i++ {
		if isHemisphere(parts[i], true) {
			latEnd = i
			break
		}
	}
	if latEnd < 0 {
		return Coord{}, errNotSexagesimal
	}
	lonEnd := -1
	for i := latEnd + 2; i < len(parts) && i <= latEnd+4; i++ {
		if isHemisphere(parts[i], false) {
			lonEnd = i
			break
		}
	}
	if lonEnd < 0 {
		return Coord{}, errNotSexagesimal
	}

	rv := Coord{
		latParts: parts[:latEnd],
		latHemi:  parts[latEnd],
		lonParts: parts[latEnd+1 : lonEnd],
		lonHemi:  parts[lonEnd],
	}
	var err error
	if rv.Lat, err = dms(rv.latParts, rv.latHemi); err != nil {
		return Coord{}, err
	}
	if rv.Lon, err = dms(rv.lonParts, rv.lonHemi); err != nil {
		return Coord{}, err
	}
	return rv, nil
}

// parseDecimal reads signed decimal degrees: 51.5074|-0.1278.
func parseDecimal(parts []string) (Coord, error) {
	if len(parts) < 2 {
		return Coord{}, ErrNoCoord
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Coord{}, err
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Coord{}, err
	}
	rv := Coord{
		Lat:      lat,
		Lon:      lon,
		latParts: []string{strings.TrimPrefix(parts[0], "-")},
		lonParts: []string{strings.TrimPrefix(parts[1], "-")},
		latHemi:  "N",
		lonHemi:  "E",
	}
	if lat < 0 {
		rv.latHemi = "S"
	}
	if lon < 0 {
		rv.lonHemi = "W"
	}
	return rv, nil
}

// ParseCoord parses the positional arguments of a {{coord}} call, either
// signed decimal degrees or degree/minute/second groups with hemispheres.
// Leading non-numeric arguments and trailing parameters are ignored.
func ParseCoord(args []string) (Coord, error) {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, strings.TrimSpace(a))
	}

	first := -1
	for i, p := range parts {
		if _, err := strconv.ParseFloat(p, 64); err == nil {
			first = i
			break
		}
	}
	if first < 0 {
		return Coord{}, ErrNoCoord
	}
	parts = parts[first:]

	rv, err := parseSexagesimal(parts)
	if err != nil {
		rv, err = parseDecimal(parts)
	}
	if err != nil {
		return Coord{}, err
	}
	if math.Abs(rv.Lat) > 90 {
		return Coord{}, fmt.Errorf("invalid latitude: %v", rv.Lat)
	}
	if math.Abs(rv.Lon) > 180 {
		return Coord{}, fmt.Errorf("invalid longitude: %v", rv.Lon)
	}
	return rv, nil
}

var dmsSymbols = []string{"°", "′", "″"}

func formatAxis(parts []string, hemi string) string {
	var sb strings.Builder
	for i, p := range parts {
		sb.WriteString(p)
		sb.WriteString(dmsSymbols[min(i, len(dmsSymbols)-1)])
	}
	sb.WriteString(hemi)
	return sb.String()
}

// String renders the coordinate the way it was written: "51.5074°N
// 0.1278°W" for decimal input, "51°30′26″N 0°7′39″W" for DMS input.
func (c Coord) String() string {
	if len(c.latParts) == 0 {
		return fmt.Sprintf("%.4f°%s %.4f°%s", math.Abs(c.Lat), hemi(c.Lat, "N", "S"), math.Abs(c.Lon), hemi(c.Lon, "E", "W"))
	}
	return formatAxis(c.latParts, c.latHemi) + " " + formatAxis(c.lonParts, c.lonHemi)
}

// Decimal renders the coordinate as decimal degrees with hemispheres.
func (c Coord) Decimal() string {
	return FormatNumber(math.Abs(c.Lat)) + "°" + hemi(c.Lat, "N", "S") + " " +
		FormatNumber(math.Abs(c.Lon)) + "°" + hemi(c.Lon, "E", "W")
}

func hemi(v float64, pos, neg string) string {
	if v < 0 {
		return neg
	}
	return pos
}

// FindCoord returns the first {{coord}} in text that parses. Comments and
// nowiki sections are ignored.
func FindCoord(text string) (Coord, error) {
	cleaned := nowikiRE.ReplaceAllString(commentRE.ReplaceAllString(text, ""), "")
	for _, m := range coordRE.FindAllStringIndex(cleaned, -1) {
		end := FindClosing(cleaned, m[0], "{{", "}}")
		if end < 0 {
			continue
		}
		inv := ParseInvocation(cleaned[m[0]+2 : end-2])
		if c, err := ParseCoord(inv.Positional); err == nil {
			return c, nil
		}
	}
	return Coord{}, ErrNoCoord
}
