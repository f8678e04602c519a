package configcmder

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
)

const getLongDesc string = `Get a configuration value.

Reads the value for the given key from the config.toml file in the store
directory. Keys use dotted notation matching the TOML section structure.

Examples:
  mnemo config get store.engine
  mnemo config get embedding.model`

const getShortDesc string = "Get a configuration value"

// getResult is the get subcommand's success payload.
type getResult struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	File  string `json:"file,omitempty"`
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: getShortDesc,
		Long:  getLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if err := runGet(args[0], path); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	return cmd
}

func runGet(key, path string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q (valid keys: %s)",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	value, err := cfger.GetConfigValue(key)
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, getResult{
		Key:   key,
		Value: value,
		File:  cfger.GetTarget(),
	})
}
