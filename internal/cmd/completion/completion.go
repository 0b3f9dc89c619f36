// Package completion provides shell completion generation commands and
// value completions for flags.
package completion

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
)

type shell struct {
	name    string
	load    string
	install string
	gen     func(root *cobra.Command, w io.Writer) error
}

// shells lists the supported shells.
// Adding a shell = adding one entry here.
var shells = []shell{
	{
		name:    "bash",
		load:    "source <(wtx completion bash)",
		install: "wtx completion bash > /etc/bash_completion.d/wtx",
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenBashCompletionV2(w, true)
		},
	},
	{
		name:    "zsh",
		load:    "source <(wtx completion zsh)",
		install: `wtx completion zsh > "${fpath[1]}/_wtx"`,
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenZshCompletion(w)
		},
	},
	{
		name:    "fish",
		load:    "wtx completion fish | source",
		install: "wtx completion fish > ~/.config/fish/completions/wtx.fish",
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenFishCompletion(w, true)
		},
	},
	{
		name:    "powershell",
		load:    "wtx completion powershell | Out-String | Invoke-Expression",
		install: "wtx completion powershell >> $PROFILE",
		gen: func(root *cobra.Command, w io.Writer) error {
			return root.GenPowerShellCompletionWithDesc(w)
		},
	},
}

// NewCmdCompletion creates the completion command.
func NewCmdCompletion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wtx.

These scripts enable tab-completion for commands, flags, and flag values
such as output formats and marker names. See each sub-command's help for
installation instructions.`,
	}

	for _, s := range shells {
		cmd.AddCommand(newShellCmd(s))
	}

	return cmd
}

func newShellCmd(s shell) *cobra.Command {
	return &cobra.Command{
		Use:   s.name,
		Short: "Generate " + s.name + " completion script",
		Long: `Generate ` + s.name + ` completion script for wtx.

To load completions in your current shell session:

  ` + s.load + `

To load completions for every new session:

  ` + s.install,
		Example:               "  " + s.load,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.gen(cmd.Root(), cmd.OutOrStdout())
		},
	}
}

// Func is the signature cobra expects from flag value completions.
type Func func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective)

// Values completes a flag from a fixed list.
func Values(values ...string) Func {
	return func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// ListValues completes a comma-separated list flag: the already typed
// entries are kept and the last one is completed from values.
func ListValues(values ...string) Func {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		prefix := ""
		if i := strings.LastIndex(toComplete, ","); i >= 0 {
			prefix = toComplete[:i+1]
		}
		typed := map[string]bool{}
		for _, v := range strings.Split(prefix, ",") {
			typed[v] = true
		}

		var out []string
		for _, v := range values {
			if !typed[v] {
				out = append(out, prefix+v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
