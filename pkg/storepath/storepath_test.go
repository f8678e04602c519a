package storepath_test

import (
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/storepath"
)

var _ = Describe("Resolve", func() {
	It("prefers an explicit override", func() {
		path, err := storepath.Resolve("/tmp/custom-store")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal("/tmp/custom-store"))
	})

	It("resolves to a .agent/memory directory", func() {
		path, err := storepath.Resolve("")
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.HasSuffix(path, filepath.Join(".agent", "memory"))).To(BeTrue())
	})
})
