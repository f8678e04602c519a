// Package configcmder provides the config command for managing persistent
// mnemo configuration stored alongside the memory store.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent mnemo configuration.

Configuration is stored as config.toml in the store directory and provides
default values for new stores and the serve command. CLI flags and MNEMO_*
environment variables always take precedence over config file values. A
store's pinned memory_config.json is separate and never changed here.

Keys use dotted notation matching the TOML section structure:
  store.engine,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  serve.listen

Use subcommands to get, set, or list configuration values:
  mnemo config set <key> <value>    Set a configuration value
  mnemo config get <key>            Get a configuration value
  mnemo config list                 List all configuration values

Examples:
  mnemo config set embedding.provider openai
  mnemo config set embedding.model nomic-embed-text
  mnemo config get store.engine
  mnemo config list`

const configShortDesc string = "Manage persistent mnemo configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
