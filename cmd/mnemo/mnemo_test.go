package mnemocmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	mnemocmder "github.com/mnemoware/mnemo/cmd/mnemo"
)

var _ = Describe("NewMnemoCmd", func() {
	var cmd *cobra.Command

	BeforeEach(func() {
		cmd = mnemocmder.NewMnemoCmd()
	})

	It("creates the root command", func() {
		Expect(cmd.Use).To(Equal("mnemo"))
		Expect(cmd.Short).NotTo(BeEmpty())
	})

	It("silences cobra's own error reporting", func() {
		Expect(cmd.SilenceErrors).To(BeTrue())
		Expect(cmd.SilenceUsage).To(BeTrue())
	})

	It("has the global path and debug flags", func() {
		Expect(cmd.PersistentFlags().Lookup("path")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
	})

	It("registers all subcommands", func() {
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements(
			"init", "store", "query", "list", "update", "delete", "stats", "config", "serve", "version",
		))
	})

	subFlag := func(name, flag string) *cobra.Command {
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				Expect(sub.Flags().Lookup(flag)).NotTo(BeNil(), "%s should have --%s", name, flag)
				return sub
			}
		}
		Fail("missing subcommand " + name)
		return nil
	}

	It("wires the store flags", func() {
		subFlag("store", "content")
		subFlag("store", "category")
		subFlag("store", "tags")
		subFlag("store", "importance")
		subFlag("store", "source")
	})

	It("wires the query flags", func() {
		sub := subFlag("query", "text")
		subFlag("query", "topk")
		subFlag("query", "min-importance")
		Expect(sub.Flags().ShorthandLookup("k")).NotTo(BeNil())
	})

	It("wires the init flags", func() {
		subFlag("init", "provider")
		subFlag("init", "model")
		subFlag("init", "dimension")
		subFlag("init", "engine")
		subFlag("init", "force")
	})

	It("wires the serve listen flag", func() {
		subFlag("serve", "listen")
	})

	It("requires an id for update and delete", func() {
		for _, name := range []string{"update", "delete"} {
			sub := subFlag(name, "id")
			annotations := sub.Flags().Lookup("id").Annotations
			Expect(annotations[cobra.BashCompOneRequiredFlag]).To(ContainElement("true"))
		}
	})
})
