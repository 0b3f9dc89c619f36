package parse

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

const testPage = `'''Paris''' is a city.
== History ==
* Founded
{| class="wikitable"
| a
|}
[[Category:Capitals]]`

func testOptions(output string) *parseOptions {
	opts := wikitext.DefaultOptions()
	opts.DumpDate = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	return &parseOptions{engine: opts, output: output, width: 60, noColor: true}
}

func TestRunParse_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runParse(testOptions("table"), testPage, &buf))

	output := buf.String()
	assert.Contains(t, output, "KIND")
	assert.Contains(t, output, "heading")
	assert.Contains(t, output, "unordered_item")
	assert.Contains(t, output, "{| class=\"wikitable\" ↵")
	assert.Contains(t, output, "Categories: Capitals")
	assert.NotContains(t, output, "Links:")
}

func TestRunParse_LinksAndFiles(t *testing.T) {
	page := "The [[Seine]] flows through [[Paris]].\n[[File:Paris_night.jpg|thumb|The [[Seine]] at night]]"

	var buf bytes.Buffer
	require.NoError(t, runParse(testOptions("table"), page, &buf))
	assert.Contains(t, buf.String(), "Links: Seine, Paris")
	assert.Contains(t, buf.String(), "Files: Paris night.jpg")

	buf.Reset()
	require.NoError(t, runParse(testOptions("json"), page, &buf))
	var art wikitext.Article
	require.NoError(t, json.Unmarshal(buf.Bytes(), &art))
	assert.Equal(t, []string{"Seine", "Paris"}, art.Links)
	assert.Equal(t, []string{"Paris night.jpg"}, art.Files)
}

func TestRunParse_Plain(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions("plain")
	opts.kind = "heading"
	require.NoError(t, runParse(opts, testPage, &buf))

	assert.Equal(t, "1\theading\t2\tHistory\n", buf.String())
}

func TestRunParse_CleanedText(t *testing.T) {
	var buf bytes.Buffer
	opts := testOptions("plain")
	opts.kind = "paragraph"
	opts.cleaned = true
	require.NoError(t, runParse(opts, "'''Paris''' is a city.", &buf))

	assert.Equal(t, "1\tparagraph\t\tParis is a city.\n", buf.String())
}

func TestRunParse_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runParse(testOptions("json"), testPage, &buf))

	var art wikitext.Article
	require.NoError(t, json.Unmarshal(buf.Bytes(), &art))
	assert.Equal(t, []string{"Capitals"}, art.Categories)
	require.NotEmpty(t, art.Elements)
	assert.Equal(t, wikitext.Paragraph, art.Elements[0].Kind)
	assert.Equal(t, wikitext.Heading, art.Elements[1].Kind)
}

func TestRunParse_Redirect(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runParse(testOptions("table"), "#REDIRECT [[Paris]]", &buf))
	assert.True(t, strings.HasPrefix(buf.String(), "Redirect: Paris\n"))
}

func TestRunParse_Errors(t *testing.T) {
	opts := testOptions("xml")
	err := runParse(opts, testPage, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")

	opts = testOptions("table")
	opts.kind = "chapter"
	err = runParse(opts, testPage, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown element kind "chapter"`)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "one", firstLine("one"))
	assert.Equal(t, "one ↵", firstLine("one\ntwo"))
	assert.Equal(t, "one", firstLine("one\n  "))
}
