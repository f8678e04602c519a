// Package updatecmder provides the update command for changing fields of an
// existing memory.
package updatecmder

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemoware/mnemo/pkg/bootstrap"
	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
	"github.com/mnemoware/mnemo/pkg/logger"
	"github.com/mnemoware/mnemo/pkg/memory"
	"github.com/mnemoware/mnemo/pkg/storepath"
)

type updateCommander struct {
	id         string
	content    string
	category   string
	tags       []string
	importance float64

	hasContent    bool
	hasCategory   bool
	hasTags       bool
	hasImportance bool

	path  string
	debug bool
}

const updateLongDesc string = `Update an existing memory.

Only the supplied fields change; updated_at always refreshes. Changing the
content re-embeds it.

Example:
  mnemo update --id mem_abc123def456 --importance 0.9
  mnemo update --id mem_abc123def456 --content "User prefers light mode now"`

const updateShortDesc string = "Update an existing memory"

func NewUpdateCmd() *cobra.Command {
	cmder := &updateCommander{}

	cmd := &cobra.Command{
		Use:   "update",
		Short: updateShortDesc,
		Long:  updateLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.path, _ = cmd.Flags().GetString("path")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.hasContent = cmd.Flags().Changed("content")
			cmder.hasCategory = cmd.Flags().Changed("category")
			cmder.hasTags = cmd.Flags().Changed("tags")
			cmder.hasImportance = cmd.Flags().Changed("importance")

			if err := cmder.run(cmd.Context()); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cmder.id, "id", "", "Memory id (required)")
	cmd.Flags().StringVar(&cmder.content, "content", "", "Replacement content")
	cmd.Flags().StringVar(&cmder.category, "category", "", "Replacement category")
	cmd.Flags().StringSliceVar(&cmder.tags, "tags", nil, "Replacement tags")
	cmd.Flags().Float64Var(&cmder.importance, "importance", 0, "Replacement importance")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}

func (c *updateCommander) run(ctx context.Context) error {
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

	in := memory.UpdateInput{ID: c.id}
	if c.hasContent {
		in.Content = &c.content
	}
	if c.hasCategory {
		in.Category = &c.category
	}
	if c.hasTags {
		in.Tags = &c.tags
	}
	if c.hasImportance {
		in.Importance = &c.importance
	}

	res, err := svc.Update(ctx, in)
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, res)
}
