package ollama_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/embeddings/ollama"
	"github.com/mnemoware/mnemo/pkg/logger"
)

var _ = Describe("Server", func() {
	Describe("ListModels", func() {
		It("strips tag suffixes from model names", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/tags"))
				fmt.Fprint(w, `{"models":[{"name":"nomic-embed-text:latest"},{"name":"llama3:8b"}]}`)
			}))
			defer server.Close()

			client := ollama.NewServer(server.URL, logger.Nop())
			names, err := client.ListModels(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"nomic-embed-text", "llama3"}))
		})
	})

	Describe("HasModel", func() {
		It("matches regardless of tag", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"models":[{"name":"nomic-embed-text:latest"}]}`)
			}))
			defer server.Close()

			client := ollama.NewServer(server.URL, logger.Nop())

			has, err := client.HasModel(context.Background(), "nomic-embed-text")
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeTrue())

			has, err = client.HasModel(context.Background(), "nomic-embed-text:latest")
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeTrue())

			has, err = client.HasModel(context.Background(), "all-minilm")
			Expect(err).NotTo(HaveOccurred())
			Expect(has).To(BeFalse())
		})
	})

	Describe("Pull", func() {
		It("streams progress and tolerates malformed lines", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/pull"))
				fmt.Fprintln(w, `{"status":"pulling manifest"}`)
				fmt.Fprintln(w, `this is not json at all`)
				fmt.Fprintln(w, `{"status":"downloading layer","total":100,"completed":50}`)
				fmt.Fprintln(w, `{"status":"success"}`)
			}))
			defer server.Close()

			client := ollama.NewServer(server.URL, logger.Nop())
			Expect(client.Pull(context.Background(), "nomic-embed-text")).To(Succeed())
		})

		It("fails on an HTTP error status", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "no such model", http.StatusNotFound)
			}))
			defer server.Close()

			client := ollama.NewServer(server.URL, logger.Nop())
			err := client.Pull(context.Background(), "does-not-exist")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("no such model"))
		})
	})
})
