package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/embeddings"
	"github.com/mnemoware/mnemo/pkg/embeddings/openai"
)

var _ = Describe("Embedder", func() {
	var savedKey string

	BeforeEach(func() {
		savedKey = os.Getenv(embeddings.OpenAIKeyEnv)
	})

	AfterEach(func() {
		if savedKey != "" {
			Expect(os.Setenv(embeddings.OpenAIKeyEnv, savedKey)).To(Succeed())
		} else {
			Expect(os.Unsetenv(embeddings.OpenAIKeyEnv)).To(Succeed())
		}
	})

	It("fails fast when the credential is absent", func() {
		Expect(os.Unsetenv(embeddings.OpenAIKeyEnv)).To(Succeed())

		_, err := openai.NewEmbedder(openai.EmbedderConfig{})
		Expect(err).To(MatchError(embeddings.ErrMissingCredential))
		Expect(err.Error()).To(ContainSubstring("OPENAI_API_KEY"))
	})

	It("sends an authenticated request and returns the embedding", func() {
		Expect(os.Setenv(embeddings.OpenAIKeyEnv, "sk-test")).To(Succeed())

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/v1/embeddings"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-test"))

			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]any{{"embedding": []float32{0.5, 0.6}}},
			})
		}))
		defer server.Close()

		emb, err := openai.NewEmbedder(openai.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		vec, err := emb.Embed(context.Background(), "hello")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.5, 0.6}))
	})

	It("attaches the response body to provider errors", func() {
		Expect(os.Setenv(embeddings.OpenAIKeyEnv, "sk-test")).To(Succeed())

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		emb, err := openai.NewEmbedder(openai.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = emb.Embed(context.Background(), "hello")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("rate limited"))
	})
})
