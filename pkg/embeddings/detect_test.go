package embeddings_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/embeddings"
)

var _ = Describe("Detect", func() {
	var savedKey string

	BeforeEach(func() {
		savedKey = os.Getenv(embeddings.OpenAIKeyEnv)
		Expect(os.Unsetenv(embeddings.OpenAIKeyEnv)).To(Succeed())
	})

	AfterEach(func() {
		if savedKey != "" {
			Expect(os.Setenv(embeddings.OpenAIKeyEnv, savedKey)).To(Succeed())
		}
	})

	It("prefers a reachable local server", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		defaults, err := embeddings.Detect(context.Background(), server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(defaults.Provider).To(Equal(embeddings.ProviderOllama))
		Expect(defaults.Model).To(Equal(embeddings.DefaultOllamaModel))
		Expect(defaults.Dimension).To(Equal(768))
	})

	It("falls back to the cloud provider when the credential is set", func() {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		Expect(os.Setenv(embeddings.OpenAIKeyEnv, "sk-test")).To(Succeed())
		defer os.Unsetenv(embeddings.OpenAIKeyEnv)

		defaults, err := embeddings.Detect(context.Background(), server.URL)
		Expect(err).NotTo(HaveOccurred())
		Expect(defaults.Provider).To(Equal(embeddings.ProviderOpenAI))
		Expect(defaults.Dimension).To(Equal(1536))
	})

	It("returns ErrNoProvider when nothing is available", func() {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		_, err := embeddings.Detect(context.Background(), server.URL)
		Expect(err).To(MatchError(embeddings.ErrNoProvider))
	})
})
