package mcp_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/api/mcp"
	"github.com/mnemoware/mnemo/pkg/logger"
	"github.com/mnemoware/mnemo/pkg/memory"
	"github.com/mnemoware/mnemo/pkg/memstore"
	"github.com/mnemoware/mnemo/pkg/memstore/sqlitevec"
	"github.com/mnemoware/mnemo/pkg/storecfg"
)

// constantEmbedder embeds every text to the same vector; similarity is
// irrelevant to these tests.
type constantEmbedder struct{}

func (constantEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (constantEmbedder) Close() error { return nil }

var _ = Describe("MCP Server", func() {
	var (
		server *mcp.Server
		col    memstore.Collection
		svc    *memory.Service
	)

	BeforeEach(func() {
		var err error
		col, err = sqlitevec.New(sqlitevec.Config{DBPath: ":memory:", Dimension: 4}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(col.Close)

		cfg := &storecfg.Config{Provider: "ollama", Model: "nomic-embed-text", Dimension: 4}
		svc = memory.NewService(cfg, "/tmp/store", col, constantEmbedder{}, logger.Nop())

		server, err = mcp.NewServer(mcp.Config{
			Service: svc,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when the service is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Logger: logger.Nop()})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("memory service is required"))
		})

		It("returns an error when the logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{Service: svc})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("exposes an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})
	})
})
