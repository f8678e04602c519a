// Package statscmder provides the stats command for store statistics.
package statscmder

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemoware/mnemo/pkg/bootstrap"
	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
	"github.com/mnemoware/mnemo/pkg/logger"
	"github.com/mnemoware/mnemo/pkg/storepath"
)

type statsCommander struct {
	path  string
	debug bool
}

const statsLongDesc string = `Show memory store statistics.

Reports the total memory count, on-disk size, a per-category breakdown, and
the store's pinned embedding configuration.

Example:
  mnemo stats`

const statsShortDesc string = "Show memory store statistics"

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.path, _ = cmd.Flags().GetString("path")
			cmder.debug, _ = cmd.Flags().GetBool("debug")

			if err := cmder.run(cmd.Context()); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
	}

	return cmd
}

func (c *statsCommander) run(ctx context.Context) error {
	log := logger.New(logger.WithDebug(c.debug))

	storePath, err := storepath.Resolve(c.path)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(c.path)
	if err != nil {
		return err
	}
	cfg, err := cfger.LoadConfig()
	if err != nil {
		return err
	}

	svc, closer, err := bootstrap.OpenService(ctx, bootstrap.OptionsFrom(cfg, storePath, log))
	if err != nil {
		return err
	}
	defer closer()

	res, err := svc.Stats(ctx)
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, res)
}
