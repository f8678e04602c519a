// Package storecmder provides the store command for persisting a new memory.
package storecmder

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

type storeCommander struct {
	content    string
	category   string
	tags       []string
	importance float64
	source     string
	id         string

	hasImportance bool

	path  string
	debug bool
}

const storeLongDesc string = `Store a new memory.

The content is embedded and written to the memory store with its metadata.
Prints the stored memory as JSON.

Example:
  mnemo store --content "User prefers dark mode" --category preference
  mnemo store --content "Deploys run from CI only" --tags infra,policy --importance 0.8`

const storeShortDesc string = "Store a new memory"

func NewStoreCmd() *cobra.Command {
	cmder := &storeCommander{}

	cmd := &cobra.Command{
		Use:   "store",
		Short: storeShortDesc,
		Long:  storeLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.path, _ = cmd.Flags().GetString("path")
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.hasImportance = cmd.Flags().Changed("importance")

			if err := cmder.run(cmd.Context()); err != nil {
				_ = envelope.WriteFailure(os.Stdout, err)
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cmder.content, "content", "", "Text to remember (required)")
	cmd.Flags().StringVar(&cmder.category, "category", "", "Memory category (default: fact)")
	cmd.Flags().StringSliceVar(&cmder.tags, "tags", nil, "Tags for later filtering")
	cmd.Flags().Float64Var(&cmder.importance, "importance", memory.DefaultImportance, "Importance from 0.0 to 1.0")
	cmd.Flags().StringVar(&cmder.source, "source", "", "Where this memory came from")
	cmd.Flags().StringVar(&cmder.id, "id", "", "Memory id (default: generated)")

	return cmd
}

func (c *storeCommander) run(ctx context.Context) error {
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

	in := memory.StoreInput{
		Content:  c.content,
		Category: c.category,
		Tags:     c.tags,
		Source:   c.source,
		ID:       c.id,
	}
	if c.hasImportance {
		in.Importance = &c.importance
	}

	res, err := svc.Store(ctx, in)
	if err != nil {
		return err
	}

	return envelope.WriteOK(os.Stdout, res)
}
