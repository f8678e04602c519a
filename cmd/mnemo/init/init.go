// Package initcmder provides the init command for explicit store
// initialization.
package initcmder

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mnemoware/mnemo/pkg/bootstrap"
	"github.com/mnemoware/mnemo/pkg/cliui"
	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/envelope"
	"github.com/mnemoware/mnemo/pkg/logger"
	"github.com/mnemoware/mnemo/pkg/storecfg"
	"github.com/mnemoware/mnemo/pkg/storepath"
)

type initCommander struct {
	provider  string
	model     string
	dimension int
	engine    string
	force     bool

	path  string
	debug bool
}

// initResult is the init command's success payload.
type initResult struct {
	Message   string `json:"message"`
	Path      string `json:"path"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

const initLongDesc string = `Initialize the memory store.

Runs the same bootstrap every command runs: verifies the storage engine,
brings up the embedding provider (starting Ollama and pulling the model as
needed), and creates the store. Initialization is idempotent: an existing
store's pinned configuration wins over any flags here. Use --force to wipe
the store and re-initialize.

A connectivity-test embedding runs at the end and the measured dimension is
reported.

Example:
  mnemo init
  mnemo init --provider openai
  mnemo init --force --dimension 768`

const initShortDesc string = "Initialize the memory store"

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
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

	cmd.Flags().StringVar(&cmder.provider, "provider", "", "Embedding provider: ollama or openai (default: ollama)")
	cmd.Flags().StringVar(&cmder.model, "model", "", "Embedding model name (default: per provider)")
	cmd.Flags().IntVar(&cmder.dimension, "dimension", 0, "Embedding dimension (default: per provider)")
	cmd.Flags().StringVar(&cmder.engine, "engine", "", "Storage engine: sqlite or chromem (default: sqlite)")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Remove any existing store before initializing")

	return cmd
}

func (c *initCommander) run(ctx context.Context) error {
	log := logger.New(logger.WithDebug(c.debug))

	storePath, err := storepath.Resolve(c.path)
	if err != nil {
		return err
	}

	if c.force {
		if err := cliui.Step(os.Stderr, fmt.Sprintf("Removing existing store at %s", storePath), func() error {
			return os.RemoveAll(storePath)
		}); err != nil {
			return err
		}
	}

	cfger, err := config.NewConfiger(c.path)
	if err != nil {
		return err
	}
	toolCfg, err := cfger.LoadConfig()
	if err != nil {
		return err
	}

	// Explicit flags override the tool config for this initialization.
	o := bootstrap.OptionsFrom(toolCfg, storePath, log)
	if c.provider != "" {
		o.Provider = c.provider
	}
	if c.model != "" {
		o.Model = c.model
	}
	if c.dimension > 0 {
		o.Dimension = c.dimension
	}
	if c.engine != "" {
		o.Engine = c.engine
	}

	var cfg *storecfg.Config
	if err := cliui.Step(os.Stderr, "Bootstrapping memory store", func() error {
		cfg, err = bootstrap.EnsureReady(ctx, o)
		return err
	}); err != nil {
		return err
	}

	// Connectivity test: embed a probe and report the measured dimension.
	var measured int
	if err := cliui.Step(os.Stderr, "Testing embedding connectivity", func() error {
		svc, closer, err := bootstrap.OpenService(ctx, o)
		if err != nil {
			return err
		}
		defer closer()

		measured, err = svc.ProbeEmbedding(ctx)
		return err
	}); err != nil {
		return err
	}

	if measured != cfg.Dimension {
		log.Warn("measured embedding dimension differs from configured",
			"measured", measured,
			"configured", cfg.Dimension,
		)
	}

	return envelope.WriteOK(os.Stdout, initResult{
		Message:   "Memory store initialized",
		Path:      storePath,
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		Dimension: measured,
	})
}
