package configcmder

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
)

const setLongDesc string = `Set a configuration value.

Sets the given key to the provided value in the config.toml file in the
store directory. Keys use dotted notation matching the TOML section
structure.

Valid keys:
  store.engine,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  serve.listen

Examples:
  mnemo config set embedding.provider openai
  mnemo config set embedding.dimensions 768`

const setShortDesc string = "Set a configuration value"

// setResult is the set subcommand's success payload.
type setResult struct {
	Key     string `json:"key"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: setShortDesc,
		Long:  setLongDesc,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			if err := runSet(args[0], args[1], path); err != nil {
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

func runSet(key, value, path string) error {
	if !config.IsValidConfigKey(key) {
		return fmt.Errorf("unknown config key: %q (valid keys: %s)",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}

	cfger, err := config.NewConfiger(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SetConfigValue(key, value); err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, setResult{
		Key:     key,
		Value:   value,
		Message: fmt.Sprintf("Set %s = %s", key, value),
	})
}
