package embeddings

import (
	"context"
	"net/http"
	"os"
	"time"
)

// OpenAIKeyEnv is the environment variable holding the cloud credential.
const OpenAIKeyEnv = "OPENAI_API_KEY"

// DetectTimeout bounds the local liveness probe during detection.
const DetectTimeout = 3 * time.Second

// Detect probes the local Ollama server at ollamaURL and returns its default
// settings if it answers. Otherwise, if OPENAI_API_KEY is set, it returns the
// OpenAI defaults. The result seeds store initialization only — once a store
// has a persisted configuration, that configuration wins and Detect is never
// consulted again for that store.
func Detect(ctx context.Context, ollamaURL string) (Defaults, error) {
	if PingOllama(ctx, ollamaURL) {
		return Defaults{
			Provider:  ProviderOllama,
			Model:     DefaultOllamaModel,
			Dimension: DefaultOllamaDimension,
		}, nil
	}

	if os.Getenv(OpenAIKeyEnv) != "" {
		return Defaults{
			Provider:  ProviderOpenAI,
			Model:     DefaultOpenAIModel,
			Dimension: DefaultOpenAIDimension,
		}, nil
	}

	return Defaults{}, ErrNoProvider
}

// PingOllama reports whether an Ollama server answers its model-list endpoint
// within DetectTimeout.
func PingOllama(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
