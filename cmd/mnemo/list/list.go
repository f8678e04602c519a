// Package listcmder provides the list command for browsing stored memories.
package listcmder

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

type listCommander struct {
	category string
	tags     []string
	limit    int
	sortBy   string

	path  string
	debug bool
}

const listLongDesc string = `List stored memories.

Returns memories as JSON, sorted most-recent-first by default. Sorting by
updated_at, importance, or access_count is also most-first; category sorts
lexically.

Example:
  mnemo list --category fact --limit 10
  mnemo list --sort-by importance`

const listShortDesc string = "List stored memories"

func NewListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
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

	cmd.Flags().StringVar(&cmder.category, "category", "", "Restrict results to one category")
	cmd.Flags().StringSliceVar(&cmder.tags, "tags", nil, "Require all of these tags")
	cmd.Flags().IntVar(&cmder.limit, "limit", memory.DefaultListLimit, "Maximum number of results")
	cmd.Flags().StringVar(&cmder.sortBy, "sort-by", "created_at", "Sort key: created_at, updated_at, importance, access_count, category")

	return cmd
}

func (c *listCommander) run(ctx context.Context) error {
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

	res, err := svc.List(ctx, memory.ListInput{
		Category: c.category,
		Tags:     c.tags,
		Limit:    c.limit,
		SortBy:   c.sortBy,
	})
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, res)
}
