// Package bootstrap makes every command self-sufficient: each invocation
// verifies the storage engine, ensures an embedding provider is reachable
// (starting Ollama and pulling the model when needed, falling back to
// OpenAI when possible), and initializes the store directory on first use.
// Progress goes to the logger so stdout stays clean for JSON.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mnemoware/mnemo/pkg/config"
	"github.com/mnemoware/mnemo/pkg/embeddings"
	"github.com/mnemoware/mnemo/pkg/embeddings/ollama"
	embeddingutils "github.com/mnemoware/mnemo/pkg/embeddings/utils"
	"github.com/mnemoware/mnemo/pkg/memory"
	"github.com/mnemoware/mnemo/pkg/memstore/sqlitevec"
	storeutils "github.com/mnemoware/mnemo/pkg/memstore/utils"
	"github.com/mnemoware/mnemo/pkg/storecfg"
)

// probeDimension is the vector size used for the throwaway engine check.
const probeDimension = 4

// Options are the caller's requested settings. They only shape a store's
// first initialization; once memory_config.json exists it wins over all of
// them.
type Options struct {
	// StorePath is the resolved store directory.
	StorePath string

	// Provider is the requested embedding provider, ollama or openai.
	Provider string

	// Model and Dimension override the provider's defaults.
	Model     string
	Dimension int

	// Engine is the storage engine for new stores.
	Engine string

	// OllamaURL overrides the local server address.
	OllamaURL string

	Logger *slog.Logger
}

// OptionsFrom builds bootstrap options from the tool configuration. These
// are requested settings only; an existing store's pinned config still wins.
func OptionsFrom(cfg *config.Config, storePath string, logger *slog.Logger) Options {
	return Options{
		StorePath: storePath,
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimensions,
		Engine:    cfg.Store.Engine,
		OllamaURL: cfg.Embedding.Target,
		Logger:    logger,
	}
}

// EnsureReady runs the bootstrap sequence and returns the store's active
// configuration: engine check, read-through of an existing store config,
// provider readiness, model presence, then store initialization.
func EnsureReady(ctx context.Context, o Options) (*storecfg.Config, error) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, existed, err := resolveConfig(o)
	if err != nil {
		return nil, err
	}

	if err := verifyEngine(cfg.Engine, logger); err != nil {
		return nil, err
	}

	cfg, err = ensureProvider(ctx, cfg, existed, o.OllamaURL, logger)
	if err != nil {
		return nil, err
	}

	if existed {
		return cfg, nil
	}

	return initStore(ctx, o.StorePath, cfg, logger)
}

// resolveConfig loads the pinned store config when present, otherwise
// builds one from the requested options and provider defaults.
func resolveConfig(o Options) (*storecfg.Config, bool, error) {
	if storecfg.Exists(o.StorePath) {
		cfg, err := storecfg.Load(o.StorePath)
		if err != nil {
			return nil, false, err
		}
		if cfg.Engine == "" {
			cfg.Engine = storeutils.EngineSqlite
		}
		return cfg, true, nil
	}

	provider := o.Provider
	if provider == "" {
		provider = embeddings.ProviderOllama
	}

	cfg := &storecfg.Config{Provider: provider}
	switch provider {
	case embeddings.ProviderOpenAI:
		cfg.Model = embeddings.DefaultOpenAIModel
		cfg.Dimension = embeddings.DefaultOpenAIDimension
	default:
		cfg.Model = embeddings.DefaultOllamaModel
		cfg.Dimension = embeddings.DefaultOllamaDimension
	}
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.Dimension > 0 {
		cfg.Dimension = o.Dimension
	}

	cfg.Engine = o.Engine
	if cfg.Engine == "" {
		cfg.Engine = storeutils.EngineSqlite
	}

	return cfg, false, nil
}

// verifyEngine probes that the storage engine actually works in this
// binary before anything depends on it. Only the sqlite engine needs a
// probe: the vec extension is compiled in via cgo and its absence should
// surface here, not mid-operation.
func verifyEngine(engine string, logger *slog.Logger) error {
	if engine != storeutils.EngineSqlite {
		return nil
	}

	probe, err := sqlitevec.New(sqlitevec.Config{
		DBPath:    ":memory:",
		Dimension: probeDimension,
	}, logger)
	if err != nil {
		return fmt.Errorf("storage engine check failed: %w", err)
	}
	return probe.Close()
}

// ensureProvider makes the configured embedding provider usable: for
// Ollama that means a reachable server with the model installed, starting
// the server and pulling the model as needed. A fresh store may fall back
// to OpenAI when Ollama cannot be brought up; a store already pinned to
// Ollama may not.
func ensureProvider(ctx context.Context, cfg *storecfg.Config, pinned bool, ollamaURL string, logger *slog.Logger) (*storecfg.Config, error) {
	switch cfg.Provider {
	case embeddings.ProviderOpenAI:
		if os.Getenv(embeddings.OpenAIKeyEnv) == "" {
			return nil, fmt.Errorf("%w: %s not set for OpenAI provider",
				embeddings.ErrMissingCredential, embeddings.OpenAIKeyEnv)
		}
		return cfg, nil

	case embeddings.ProviderOllama:
		server := ollama.NewServer(ollamaURL, logger)

		if !embeddings.PingOllama(ctx, server.BaseURL()) {
			if err := server.Launch(ctx); err != nil {
				// The launch failed; re-run provider detection to find
				// whatever is still usable. A pinned store may not
				// switch providers.
				d, derr := embeddings.Detect(ctx, server.BaseURL())
				switch {
				case derr == nil && d.Provider == embeddings.ProviderOllama:
					// The server answered after all.
				case derr == nil && !pinned:
					logger.Info("ollama unavailable, falling back to OpenAI embeddings")
					return &storecfg.Config{
						Provider:  d.Provider,
						Model:     d.Model,
						Dimension: d.Dimension,
						Engine:    cfg.Engine,
					}, nil
				default:
					return nil, fmt.Errorf("%w: cannot start Ollama and %s is not set; "+
						"install Ollama (https://ollama.ai) or set %s",
						embeddings.ErrNoProvider, embeddings.OpenAIKeyEnv, embeddings.OpenAIKeyEnv)
				}
			}
		}

		if err := ensureModel(ctx, server, cfg.Model); err != nil {
			return nil, err
		}
		return cfg, nil

	default:
		return nil, fmt.Errorf("%w: unknown provider %q", embeddings.ErrNoProvider, cfg.Provider)
	}
}

// ensureModel pulls the model when the server does not have it yet.
func ensureModel(ctx context.Context, server *ollama.Server, model string) error {
	has, err := server.HasModel(ctx, model)
	if err != nil {
		return fmt.Errorf("listing installed models: %w", err)
	}
	if has {
		return nil
	}
	return server.Pull(ctx, model)
}

// initStore creates the store directory, the collection, and the pinned
// configuration file, in that order: a crash mid-initialization must not
// leave a config file describing a store that was never created.
func initStore(ctx context.Context, storePath string, cfg *storecfg.Config, logger *slog.Logger) (*storecfg.Config, error) {
	if err := os.MkdirAll(storePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	switch cfg.Engine {
	case storeutils.EngineChromem:
		cfg.DBPath = filepath.Join(storePath, "chromem")
	default:
		cfg.DBPath = filepath.Join(storePath, "memories.db")
	}

	logger.Info("initializing memory store",
		"path", storePath,
		"dimension", cfg.Dimension,
		"engine", cfg.Engine,
	)

	col, err := storeutils.NewCollection(&storeutils.NewCollectionOpts{
		Engine:    cfg.Engine,
		DBPath:    cfg.DBPath,
		Dimension: cfg.Dimension,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	if err := col.Flush(ctx); err != nil {
		col.Close()
		return nil, err
	}
	if err := col.Close(); err != nil {
		return nil, err
	}

	if err := storecfg.Save(storePath, cfg); err != nil {
		return nil, err
	}

	logger.Info("memory store initialized")

	return cfg, nil
}

// OpenService bootstraps and wires a ready-to-use memory service. The
// returned closer releases the collection and embedder.
func OpenService(ctx context.Context, o Options) (*memory.Service, func() error, error) {
	cfg, err := EnsureReady(ctx, o)
	if err != nil {
		return nil, nil, err
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}

	col, err := storeutils.NewCollection(&storeutils.NewCollectionOpts{
		Engine:    cfg.Engine,
		DBPath:    cfg.DBPath,
		Dimension: cfg.Dimension,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}

	target := ""
	if cfg.Provider == embeddings.ProviderOllama {
		target = o.OllamaURL
	}
	emb, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Provider,
		TargetURL:    target,
		Model:        cfg.Model,
	})
	if err != nil {
		col.Close()
		return nil, nil, err
	}

	svc := memory.NewService(cfg, o.StorePath, col, emb, logger)
	closer := func() error {
		embErr := emb.Close()
		if err := col.Close(); err != nil {
			return err
		}
		return embErr
	}
	return svc, closer, nil
}
