package completion

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestRootCmd creates a minimal root command for testing.
func createTestRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wtx",
		Short: "Test CLI",
	}
}

func TestNewCmdCompletion(t *testing.T) {
	cmd := NewCmdCompletion()

	assert.Equal(t, "completion", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Len(t, cmd.Commands(), len(shells))
}

func TestCompletionScripts(t *testing.T) {
	tests := []struct {
		shell  string
		marker string
	}{
		{"bash", "bash completion"},
		{"zsh", "compdef"},
		{"fish", "complete -c"},
		{"powershell", "Register-ArgumentCompleter"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			root := createTestRootCmd()
			root.AddCommand(NewCmdCompletion())

			buf := new(bytes.Buffer)
			root.SetOut(buf)
			root.SetArgs([]string{"completion", tt.shell})

			err := root.Execute()
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.marker)
		})
	}
}

func TestCompletionHelp(t *testing.T) {
	root := createTestRootCmd()
	root.AddCommand(NewCmdCompletion())

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetArgs([]string{"completion", "fish", "--help"})

	require.NoError(t, root.Execute())
	assert.Contains(t, buf.String(), "wtx completion fish | source")
	assert.Contains(t, buf.String(), "~/.config/fish/completions/wtx.fish")
}

func TestCompletionRejectsExtraArgs(t *testing.T) {
	for _, s := range shells {
		t.Run(s.name, func(t *testing.T) {
			root := createTestRootCmd()
			root.AddCommand(NewCmdCompletion())

			root.SetArgs([]string{"completion", s.name, "unexpected-arg"})

			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "unknown command")
		})
	}
}

func TestValues(t *testing.T) {
	got, directive := Values("json", "text")(nil, nil, "")
	assert.Equal(t, []string{"json", "text"}, got)
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestListValues(t *testing.T) {
	complete := ListValues("code", "math", "table")

	tests := []struct {
		name       string
		toComplete string
		expected   []string
	}{
		{"first entry", "", []string{"code", "math", "table"}},
		{"after comma", "math,", []string{"math,code", "math,table"}},
		{"partial entry", "math,ta", []string{"math,code", "math,table"}},
		{"all typed", "code,math,table,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, directive := complete(nil, nil, tt.toComplete)
			assert.Equal(t, tt.expected, got)
			assert.NotZero(t, directive&cobra.ShellCompDirectiveNoSpace)
		})
	}
}
