// Package mnemocmder
package mnemocmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/mnemoware/mnemo/cmd/mnemo/config"
	deletecmder "github.com/mnemoware/mnemo/cmd/mnemo/delete"
	initcmder "github.com/mnemoware/mnemo/cmd/mnemo/init"
	listcmder "github.com/mnemoware/mnemo/cmd/mnemo/list"
	querycmder "github.com/mnemoware/mnemo/cmd/mnemo/query"
	servecmder "github.com/mnemoware/mnemo/cmd/mnemo/serve"
	statscmder "github.com/mnemoware/mnemo/cmd/mnemo/stats"
	storecmder "github.com/mnemoware/mnemo/cmd/mnemo/store"
	updatecmder "github.com/mnemoware/mnemo/cmd/mnemo/update"
	versioncmder "github.com/mnemoware/mnemo/cmd/version"
)

const mnemoLongDesc string = `Mnemo is persistent long-term memory for AI agents.

Every invocation prints one JSON object to stdout; progress and diagnostics
go to stderr. Commands auto-bootstrap: the embedding provider is started and
the store initialized transparently on first use.

  mnemo store --content "User prefers dark mode" --category preference
  mnemo query --text "user theme preference" --topk 5
  mnemo list --category fact --limit 10
  mnemo stats`

const mnemoShortDesc string = "Mnemo - Agent Memory"

func NewMnemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mnemo",
		Short: mnemoShortDesc,
		Long:  mnemoLongDesc,

		// Errors surface as JSON envelopes on stdout; cobra must not
		// add its own reporting on top.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Global flags
	cmd.PersistentFlags().StringP("path", "p", "", "Memory store path (default: auto-detect)")
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(storecmder.NewStoreCmd())
	cmd.AddCommand(querycmder.NewQueryCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(updatecmder.NewUpdateCmd())
	cmd.AddCommand(deletecmder.NewDeleteCmd())
	cmd.AddCommand(statscmder.NewStatsCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
