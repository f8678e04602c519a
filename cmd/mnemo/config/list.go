package configcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
)

const listLongDesc string = `List all configuration values.

Prints all configuration keys and their current values from the config.toml
file in the store directory as a single JSON object.

Examples:
  mnemo config list`

const listShortDesc string = "List all configuration values"

// listResult is the list subcommand's success payload.
type listResult struct {
	File   string            `json:"file,omitempty"`
	Config map[string]string `json:"config"`
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("path")
			if err := runList(path); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
	}

	return cmd
}

func runList(path string) error {
	cfger, err := config.NewConfiger(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	values := make(map[string]string)
	for _, key := range config.ValidConfigKeys() {
		value, err := cfger.GetConfigValue(key)
		if err != nil {
			return err
		}
		values[key] = value
	}

	return envelope.WriteOK(os.Stdout, listResult{
		File:   cfger.GetTarget(),
		Config: values,
	})
}
