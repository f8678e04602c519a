package configcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	configcmder "github.com/mnemoware/mnemo/cmd/mnemo/config"
	"github.com/mnemoware/mnemo/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var (
		tmpDir string
		cmd    *cobra.Command
	)

	newCmd := func(args ...string) *cobra.Command {
		c := configcmder.NewConfigCmd()
		// The path flag normally comes from the root command.
		c.PersistentFlags().String("path", "", "")
		c.SetArgs(append(args, "--path", tmpDir))
		return c
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	It("sets and persists a value", func() {
		cmd = newCmd("set", "embedding.model", "all-minilm")
		Expect(cmd.Execute()).To(Succeed())

		Expect(filepath.Join(tmpDir, "config.toml")).To(BeAnExistingFile())

		cfger, err := config.NewConfiger(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		value, err := cfger.GetConfigValue("embedding.model")
		Expect(err).NotTo(HaveOccurred())
		Expect(value).To(Equal("all-minilm"))
	})

	It("gets a value without error when no config file exists", func() {
		cmd = newCmd("get", "store.engine")
		Expect(cmd.Execute()).To(Succeed())
	})

	It("lists all keys without error", func() {
		cmd = newCmd("list")
		Expect(cmd.Execute()).To(Succeed())
	})

	It("rejects an unknown key", func() {
		cmd = newCmd("get", "nope.nothing")
		cmd.SetErr(os.Stderr)
		Expect(cmd.Execute()).NotTo(Succeed())
	})
})
