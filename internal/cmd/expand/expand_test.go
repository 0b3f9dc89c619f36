package expand

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/wtx/pkg/wikitext"
)

func TestRunExpand(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		input    string
		expected string
	}{
		{"expression", "", "{{#expr: 2 * (3 + 4)}}", "14\n"},
		{"age", "", "{{birth date and age|1990|5|15}}", "May 15, 1990 (age 34)\n"},
		{"page context", "Help:Editing/Tables", "{{SUBPAGENAME}}", "Tables\n"},
		{"page words need a title", "", "{{PAGENAME}}", "\n"},
		{"markup untouched", "", "'''{{nowrap|a}}'''\n", "'''a'''\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := wikitext.DefaultOptions()
			opts.DumpDate = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

			var buf bytes.Buffer
			err := runExpand(&expandOptions{title: tt.title, engine: opts, noColor: true}, tt.input, &buf)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestNewCmdExpand_Args(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewCmdExpand()
	cmd.Flags().String("config", "", "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"{{#if:", "yes|a|b}}"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "a\n", buf.String())
}

func TestNewCmdExpand_Stdin(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := NewCmdExpand()
	cmd.Flags().String("config", "", "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetIn(bytes.NewBufferString("{{uc:abc}}\n"))
	cmd.SetArgs([]string{"--title", "Sandbox"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "ABC\n", buf.String())
}
