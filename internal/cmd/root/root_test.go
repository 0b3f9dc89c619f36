package root

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdRoot_Subcommands(t *testing.T) {
	cmd := NewCmdRoot()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "clean", "parse", "expand", "fetch", "search", "dump", "config", "completion"} {
		assert.Contains(t, names, want)
	}
}

func TestNewCmdRoot_PersistentFlags(t *testing.T) {
	cmd := NewCmdRoot()
	for _, name := range []string{"config", "output", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "table", cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestNewCmdRoot_Version(t *testing.T) {
	cmd := NewCmdRoot()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "wtx version dev")
}

func TestNewCmdRoot_CleanEndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("WTX_MARKERS", "")

	cmd := NewCmdRoot()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(bytes.NewBufferString("'''Bold''' and [[Paris|the capital]].\n"))
	cmd.SetArgs([]string{"clean"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Bold and the capital.")
	assert.NotContains(t, buf.String(), "[[")
}
