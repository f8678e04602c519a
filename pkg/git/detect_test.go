package git_test

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/git"
)

var _ = Describe("TopLevel", func() {
	It("returns an absolute path or empty", func() {
		top := git.TopLevel()
		if top != "" {
			Expect(filepath.IsAbs(top)).To(BeTrue())
		}
	})
})
