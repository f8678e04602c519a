package config

import "github.com/mnemoware/mnemo/pkg/embeddings"

const (
	defaultEngine          = "sqlite"
	defaultProvider        = embeddings.ProviderOllama
	defaultEmbeddingTarget = "http://localhost:11434"
	defaultServeListen     = ":8090"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Store: StoreConfig{
			Engine: defaultEngine,
		},
		// Model and Dimensions stay zero here: they default per
		// provider at bootstrap, so switching provider does not drag
		// the other provider's model along.
		Embedding: EmbeddingConfig{
			Provider: defaultProvider,
			Target:   defaultEmbeddingTarget,
		},
		Serve: ServeConfig{
			Listen: defaultServeListen,
		},
	}
}
