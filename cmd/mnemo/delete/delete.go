// Package deletecmder provides the delete command for removing a memory.
package deletecmder

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

type deleteCommander struct {
	id string

	path  string
	debug bool
}

const deleteLongDesc string = `Delete a memory by id.

Example:
  mnemo delete --id mem_abc123def456`

const deleteShortDesc string = "Delete a memory"

func NewDeleteCmd() *cobra.Command {
	cmder := &deleteCommander{}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: deleteShortDesc,
		Long:  deleteLongDesc,
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

	cmd.Flags().StringVar(&cmder.id, "id", "", "Memory id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func (c *deleteCommander) run(ctx context.Context) error {
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

	res, err := svc.Delete(ctx, c.id)
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, res)
}
