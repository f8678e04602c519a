package storecfg_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/storecfg"
)

var _ = Describe("Storecfg", func() {
	var storePath string

	BeforeEach(func() {
		storePath = GinkgoT().TempDir()
	})

	It("round-trips a configuration", func() {
		cfg := &storecfg.Config{
			Provider:  "ollama",
			Model:     "nomic-embed-text",
			Dimension: 768,
			DBPath:    filepath.Join(storePath, "memories.db"),
			Engine:    "sqlite",
		}
		Expect(storecfg.Save(storePath, cfg)).To(Succeed())
		Expect(cfg.CreatedAt).NotTo(BeZero())

		loaded, err := storecfg.Load(storePath)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
	})

	It("reports existence only after a save", func() {
		Expect(storecfg.Exists(storePath)).To(BeFalse())

		Expect(storecfg.Save(storePath, &storecfg.Config{
			Provider: "openai", Model: "text-embedding-3-small", Dimension: 1536,
		})).To(Succeed())

		Expect(storecfg.Exists(storePath)).To(BeTrue())
	})

	It("never overwrites an existing configuration", func() {
		original := &storecfg.Config{Provider: "ollama", Model: "nomic-embed-text", Dimension: 768}
		Expect(storecfg.Save(storePath, original)).To(Succeed())

		err := storecfg.Save(storePath, &storecfg.Config{
			Provider: "openai", Model: "text-embedding-3-small", Dimension: 1536,
		})
		Expect(err).To(HaveOccurred())

		loaded, err := storecfg.Load(storePath)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Provider).To(Equal("ollama"))
		Expect(loaded.Dimension).To(Equal(768))
	})

	It("fails to load from a directory without a configuration", func() {
		_, err := storecfg.Load(storePath)
		Expect(err).To(HaveOccurred())
	})
})
