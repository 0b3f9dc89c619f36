package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTemplates(opts TemplateOptions) *Templates {
	return NewTemplates(testRef, nil, nil, opts)
}

func TestTemplates_Dates(t *testing.T) {
	tpl := newTestTemplates(TemplateOptions{})
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"birth date", "{{birth date|1990|5|15}}", "May 15, 1990"},
		{"birth date day first", "{{birth date|1990|5|15|df=y}}", "15 May 1990"},
		{"birth date and age", "{{birth date and age|1990|5|15}}", "May 15, 1990 (age 34)"},
		{"birthday not yet reached", "{{birth date and age|1990|7|1}}", "July 1, 1990 (age 33)"},
		{"birthday today", "{{birth date and age|1990|6|15}}", "June 15, 1990 (age 34)"},
		{"case and underscores", "{{Birth_Date|1990|5|15}}", "May 15, 1990"},
		{"month name", "{{birth date|1990|May|15}}", "May 15, 1990"},
		{"year and month", "{{start date|1990|5}}", "May 1990"},
		{"full date argument", "{{start date|1990-05-15}}", "May 15, 1990"},
		{"start date and age", "{{start date and age|2020|1|1}}", "January 1, 2020 (4 years ago)"},
		{"death date and age", "{{death date and age|2000|1|10|1950|3|5}}", "January 10, 2000 (aged 49)"},
		{"birth year and age", "{{birth year and age|1990}}", "1990 (age 33–34)"},
		{"death year and age", "{{death year and age|2000|1950}}", "2000 (aged 49–50)"},
		{"age", "{{age|1990|5|15}}", "34"},
		{"age between dates", "{{age|1990|5|15|2000|5|14}}", "9"},
		{"age in days", "{{age in days|2024|6|1}}", "14"},
		{"age in years and days", "{{age in years and days|2000|6|10}}", "24 years, 5 days"},
		{"age in years and months", "{{age in years and months|2000|1|15}}", "24 years, 5 months"},
		{"circa", "{{circa|1500}}", "c. 1500"},
		{"floruit range", "{{floruit|1500|1550}}", "fl. 1500–1550"},
		{"reign", "{{reign|1558|1603}}", "r. 1558–1603"},
		{"marriage", "{{marriage|Jane Doe|1990|2000|end=div}}", "Jane Doe (m. 1990; div. 2000)"},
		{"marriage ongoing", "{{marriage|Jane Doe|1990}}", "Jane Doe (m. 1990)"},
		{"played years", "{{played years|1990|1995}}", "1990–1995"},
		{"time ago", "{{time ago|2022-06-15}}", "2 years ago"},
		{"time ago future", "{{time ago|2024-06-20}}", "in 5 days"},
		{"bad date", "{{birth date|someday}}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tpl.Expand(tt.input))
		})
	}
}

func TestTemplates_Convert(t *testing.T) {
	tpl := newTestTemplates(TemplateOptions{})
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"temperature", "{{convert|0|°C|°F}}", "0 °C (32 °F)"},
		{"temperature codes", "{{convert|100|C|F}}", "100 °C (212 °F)"},
		{"default target", "{{convert|10|km}}", "10 km (6.21 mi)"},
		{"explicit precision", "{{convert|10|km|mi|1}}", "10 km (6.2 mi)"},
		{"default target with precision", "{{convert|10|km|0}}", "10 km (6 mi)"},
		{"range", "{{convert|5|to|10|km|mi}}", "5 to 10 km (3.11 to 6.21 mi)"},
		{"dash range", "{{convert|5|-|10|kg|lb}}", "5–10 kg (11–22 lb)"},
		{"flip", "{{convert|1|mi|km|disp=flip}}", "1.61 km (1 mi)"},
		{"or", "{{convert|1|mi|km|disp=or}}", "1 mi or 1.61 km"},
		{"output only", "{{convert|1|mi|km|disp=out}}", "1.61 km"},
		{"thousands", "{{convert|1000|mi|km}}", "1000 mi (1,609 km)"},
		{"unknown unit", "{{convert|5|furlongs}}", "5 furlongs"},
		{"not a number", "{{convert|many|km}}", "many km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tpl.Expand(tt.input))
		})
	}
}

func TestTemplates_ConvertPrecisionBounds(t *testing.T) {
	tpl := newTestTemplates(TemplateOptions{})

	got := tpl.Expand("{{convert|1|m|ft|400}}")
	assert.NotContains(t, got, "NaN")
	assert.Contains(t, got, "1 m (3.28")

	assert.Equal(t, "1 m (0 ft)", tpl.Expand("{{convert|1|m|ft|-400}}"))
	assert.Equal(t, "1 m (3.28 ft)", tpl.Expand("{{convert|1|m|ft|2}}"))
}

func TestRoundForDisplay(t *testing.T) {
	assert.Equal(t, "1,235", roundForDisplay(1234.567, 0))
	assert.Equal(t, "1,200", roundForDisplay(1234.567, -2))
	assert.Equal(t, "0", roundForDisplay(1234.567, -400))
	assert.NotContains(t, roundForDisplay(1e300, 15), "NaN")
}

func TestTemplates_Text(t *testing.T) {
	tpl := newTestTemplates(TemplateOptions{})
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"nowrap", "{{nowrap|New York}}", "New York"},
		{"small", "{{small|fine print}}", "fine print"},
		{"lang", "{{lang|fr|bonjour}}", "bonjour"},
		{"lang prefixed", "{{lang-fr|bonjour}}", "French: bonjour"},
		{"lang literal", "{{lang-de|Autobahn|lit=car track}}", `German: Autobahn, lit. "car track"`},
		{"transl", "{{transl|ar|al-Qahira}}", "al-Qahira"},
		{"nihongo", "{{nihongo|Tokyo|東京|Tōkyō}}", "Tokyo (東京, Tōkyō)"},
		{"abbr", "{{abbr|UN|United Nations}}", "UN"},
		{"hatnote", "{{main|Other article}}", ""},
		{"ndash", "1990{{ndash}}2000", "1990–2000"},
		{"hlist", "{{hlist|a|b|c}}", "a · b · c"},
		{"frac", "{{frac|1|2}}", "1/2"},
		{"mixed frac", "{{frac|3|1|2}}", "3 1/2"},
		{"val", "{{val|1234.5|u=m}}", "1,234.5 m"},
		{"currency", "{{US$|1000000}}", "US$1,000,000"},
		{"coord dms", "{{coord|51|30|26|N|0|7|39|W}}", "51°30′26″N 0°7′39″W"},
		{"coord decimal", "{{coord|51.5074|-0.1278}}", "51.5074°N 0.1278°W"},
		{"coord dec format", "{{coord|51|30|N|0|7|W|format=dec}}", "51.5°N 0.1167°W"},
		{"quote", "{{quote|To be|Hamlet}}", "To be"},
		{"quote named", "{{cquote|text=Brevity|author=Anon}}", "Brevity"},
		{"citation dropped", "{{cite web|title=Home|url=http://example.com}}", ""},
		{"unknown dropped", "{{no such template|x}}", ""},
		{"nested", "{{nowrap|{{lang-fr|oui}}}}", "French: oui"},
		{"parser function inside", "{{nowrap|{{#expr:2*21}}}}", "42"},
		{"params use defaults", "{{{1|fallback}}} and {{{2}}}", "fallback and "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tpl.Expand(tt.input))
		})
	}
}

func TestTemplates_Options(t *testing.T) {
	t.Run("preserve unknown", func(t *testing.T) {
		tpl := newTestTemplates(TemplateOptions{PreserveUnknown: true})
		assert.Equal(t, "{{no such template|x}}", tpl.Expand("{{no such template|x}}"))
	})

	t.Run("extract citations", func(t *testing.T) {
		tpl := newTestTemplates(TemplateOptions{ExtractCitations: true})
		got := tpl.Expand("{{cite web|last=Doe|first=Jane|title=Home|website=Example|year=2020}}")
		assert.Equal(t, `Doe, Jane. "Home". Example. 2020`, got)
	})

	t.Run("protected families stay", func(t *testing.T) {
		tpl := newTestTemplates(TemplateOptions{})
		got := tpl.Expand("{{Infobox person|name={{nowrap|Jane}}}}")
		assert.Equal(t, "{{Infobox person|name=Jane}}", got)
	})

	t.Run("magic words when attached", func(t *testing.T) {
		tpl := NewTemplates(testRef, nil, NewMagicWords("Foo/Bar", "", testRef), TemplateOptions{})
		assert.Equal(t, "Bar", tpl.Expand("{{SUBPAGENAME}}"))
	})
}

func TestTemplates_ExpandLimit(t *testing.T) {
	tpl := newTestTemplates(TemplateOptions{})

	out, exhausted := tpl.ExpandLimit("{{nowrap|a}}{{nowrap|b}}{{nowrap|c}}", 2)
	assert.True(t, exhausted)
	assert.Equal(t, "ab{{nowrap|c}}", out)

	out, exhausted = tpl.ExpandLimit("{{nowrap|a}}", MaxNestingIterations)
	assert.False(t, exhausted)
	assert.Equal(t, "a", out)
}

func TestLookupTemplate(t *testing.T) {
	for _, name := range []string{"birth date", "Birth_date", "Template:Convert", "cite book", "lang-ja"} {
		t.Run(name, func(t *testing.T) {
			_, ok := LookupTemplate(name)
			assert.True(t, ok)
		})
	}
	_, ok := LookupTemplate("definitely not registered")
	assert.False(t, ok)
}

func TestIsProtectedTemplate(t *testing.T) {
	assert.True(t, IsProtectedTemplate("Infobox settlement"))
	assert.True(t, IsProtectedTemplate("navbox"))
	assert.True(t, IsProtectedTemplate("IPAc-en"))
	assert.True(t, IsProtectedTemplate("chem2"))
	assert.False(t, IsProtectedTemplate("infoboxer"))
	assert.False(t, IsProtectedTemplate("convert"))
}

func TestParseCoord(t *testing.T) {
	c, err := ParseCoord([]string{"51", "30", "N", "0", "7", "W"})
	require.NoError(t, err)
	assert.InDelta(t, 51.5, c.Lat, 1e-9)
	assert.InDelta(t, -0.11666, c.Lon, 1e-4)

	_, err = ParseCoord([]string{"display=inline"})
	assert.ErrorIs(t, err, ErrNoCoord)

	_, err = ParseCoord([]string{"95", "10"})
	assert.Error(t, err)
}

func TestFindCoord(t *testing.T) {
	text := "<!-- {{coord|1|2}} -->Some text {{coord|10|20|display=title}} more"
	c, err := FindCoord(text)
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.Lat)
	assert.Equal(t, 20.0, c.Lon)
}
