// Package embeddings provides the text embedding capability used by every
// memory write and query, polymorphic over a local Ollama server and the
// OpenAI API.
package embeddings

import "context"

// Provider names recognized across configuration, detection, and the factory.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Default models and dimensions per provider.
const (
	DefaultOllamaModel     = "nomic-embed-text"
	DefaultOllamaDimension = 768

	DefaultOpenAIModel     = "text-embedding-3-small"
	DefaultOpenAIDimension = 1536
)

// Embedder converts text into vector embeddings.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Defaults describes a provider's default settings, as seeded by detection.
type Defaults struct {
	Provider  string
	Model     string
	Dimension int
}
