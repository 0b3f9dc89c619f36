// Package configcmd provides config management commands.
package configcmd

import (
	"github.com/spf13/cobra"
)

// NewCmdConfig creates the config command.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wtx configuration",
		Long:  `Commands for viewing, testing, and clearing wtx configuration.`,
	}

	cmd.AddCommand(NewCmdShow())
	cmd.AddCommand(NewCmdTest())
	cmd.AddCommand(NewCmdClear())

	return cmd
}

// envVars lists every environment variable the config layer reads.
var envVars = []string{
	"WTX_API_URL", "WTX_USER_AGENT", "WTX_USERNAME", "WTX_PASSWORD",
	"WTX_MARKERS", "WTX_DUMP_DATE", "WTX_WORKERS",
	"MEDIAWIKI_API_URL", "MEDIAWIKI_USER_AGENT",
}
