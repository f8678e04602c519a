// Package embeddingutils is the embeddings utility package
package embeddingutils

import (
	"fmt"

	"github.com/mnemoware/mnemo/pkg/embeddings"
	"github.com/mnemoware/mnemo/pkg/embeddings/ollama"
	"github.com/mnemoware/mnemo/pkg/embeddings/openai"
)

type NewEmbedderOpts struct {
	ProviderType string
	TargetURL    string
	Model        string
}

func NewEmbedder(o *NewEmbedderOpts) (embeddings.Embedder, error) {
	switch o.ProviderType {
	case embeddings.ProviderOllama:
		return ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	case embeddings.ProviderOpenAI:
		return openai.NewEmbedder(openai.EmbedderConfig{
			BaseURL: o.TargetURL,
			Model:   o.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", o.ProviderType)
	}
}
