package utils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mnemoware/mnemo/pkg/utils"
)

var _ = Describe("HumanBytes", func() {
	It("formats small counts as bytes", func() {
		Expect(utils.HumanBytes(0)).To(Equal("0.0 B"))
		Expect(utils.HumanBytes(512)).To(Equal("512.0 B"))
	})

	It("steps through units at 1024", func() {
		Expect(utils.HumanBytes(2048)).To(Equal("2.0 KB"))
		Expect(utils.HumanBytes(5 * 1024 * 1024)).To(Equal("5.0 MB"))
		Expect(utils.HumanBytes(3 * 1024 * 1024 * 1024)).To(Equal("3.0 GB"))
	})

	It("tops out at terabytes", func() {
		Expect(utils.HumanBytes(2 * 1024 * 1024 * 1024 * 1024)).To(Equal("2.0 TB"))
	})
})
