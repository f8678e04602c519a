// Package querycmder provides the query command for semantic search over
// stored memories.
package querycmder

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

type queryCommander struct {
	text          string
	topK          int
	category      string
	tags          []string
	minImportance float64

	hasMinImportance bool

	path  string
	debug bool
}

const queryLongDesc string = `Search memories semantically.

The query text is embedded and matched against stored memories; the most
similar ones come back as JSON with similarity scores. Optional filters
narrow by category, tags (all must be present), and minimum importance.

Example:
  mnemo query --text "user theme preference"
  mnemo query --text "deploy policy" --category fact --tags infra --topk 3`

const queryShortDesc string = "Search memories semantically"

func NewQueryCmd() *cobra.Command {
	cmder := &queryCommander{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: queryShortDesc,
		Long:  queryLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.path, _ = cmd.Flags().GetString("path")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.hasMinImportance = cmd.Flags().Changed("min-importance")

			if err := cmder.run(cmd.Context()); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cmder.text, "text", "", "Query text (required)")
	cmd.Flags().IntVarP(&cmder.topK, "topk", "k", memory.DefaultTopK, "Number of results to return")
	cmd.Flags().StringVar(&cmder.category, "category", "", "Restrict results to one category")
	cmd.Flags().StringSliceVar(&cmder.tags, "tags", nil, "Require all of these tags")
	cmd.Flags().Float64Var(&cmder.minImportance, "min-importance", 0, "Minimum importance threshold")

	return cmd
}

func (c *queryCommander) run(ctx context.Context) error {
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

	in := memory.QueryInput{
		Text:     c.text,
		TopK:     c.topK,
		Category: c.category,
		Tags:     c.tags,
	}
	if c.hasMinImportance {
		in.MinImportance = &c.minImportance
	}

	res, err := svc.Query(ctx, in)
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, res)
}
