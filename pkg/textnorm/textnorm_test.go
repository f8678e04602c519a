package textnorm_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/textnorm"
)

var _ = Describe("Normalize", func() {
	It("trims leading and trailing whitespace", func() {
		Expect(textnorm.Normalize("  hello  ")).To(Equal("hello"))
	})

	It("collapses internal whitespace runs to a single space", func() {
		Expect(textnorm.Normalize("a \t b\n\nc")).To(Equal("a b c"))
	})

	It("returns empty string for whitespace-only input", func() {
		Expect(textnorm.Normalize(" \n\t ")).To(Equal(""))
	})

	It("leaves already-normalized text unchanged", func() {
		Expect(textnorm.Normalize("user prefers dark mode")).To(Equal("user prefers dark mode"))
	})

	It("is idempotent", func() {
		inputs := []string{
			"  spaced   out  text ",
			"tabs\tand\nnewlines",
			strings.Repeat("x ", 10000),
			"",
		}
		for _, in := range inputs {
			once := textnorm.Normalize(in)
			Expect(textnorm.Normalize(once)).To(Equal(once))
		}
	})

	It("caps output at MaxLength runes", func() {
		long := strings.Repeat("a", textnorm.MaxLength+500)
		Expect(textnorm.Normalize(long)).To(HaveLen(textnorm.MaxLength))
	})

	It("counts the cap in runes, not bytes", func() {
		long := strings.Repeat("é", textnorm.MaxLength+10)
		out := textnorm.Normalize(long)
		Expect([]rune(out)).To(HaveLen(textnorm.MaxLength))
	})

	It("does not truncate text at exactly the cap", func() {
		exact := strings.Repeat("b", textnorm.MaxLength)
		Expect(textnorm.Normalize(exact)).To(Equal(exact))
	})
})
