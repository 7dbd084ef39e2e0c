package main

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/campi/campi/internal/config"
)

// newTestCommand mirrors the run command without starting anything.
func newTestCommand(cfg *config.Configuration) *cobra.Command {
	root := &cobra.Command{Use: "campi", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().String("config", "", "")

	cmd := &cobra.Command{
		Use:     "run",
		PreRunE: preRunE(),
		RunE:    func(*cobra.Command, []string) error { return nil },
	}
	RegisterRunFlags(cmd.Flags(), cfg)
	root.AddCommand(cmd)

	return root
}

var _ = Describe("CLI", func() {
	var cfg *config.Configuration

	BeforeEach(func() {
		cfg = config.NewConfigurationWithOptionsAndDefaults()
	})

	It("should print the version", func() {
		var out bytes.Buffer
		root := NewRootCommand()
		root.SetOut(&out)
		root.SetArgs([]string{"version"})

		Expect(root.Execute()).To(Succeed())
		Expect(out.String()).To(HavePrefix("campi dev"))
	})

	It("should keep defaults without flags", func() {
		root := newTestCommand(cfg)
		root.SetArgs([]string{"run"})

		Expect(root.Execute()).To(Succeed())
		Expect(cfg.Server.Address).To(Equal("0.0.0.0:49000"))
		Expect(cfg.Pool.NumWorkers).To(Equal(4))
	})

	It("should apply command line flags", func() {
		root := newTestCommand(cfg)
		root.SetArgs([]string{"run", "--pool-workers", "12", "--capture-timeout", "2s"})

		Expect(root.Execute()).To(Succeed())
		Expect(cfg.Pool.NumWorkers).To(Equal(12))
		Expect(cfg.Capture.Timeout).To(Equal(2 * time.Second))
	})

	Context("config file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "campi.yaml")
			content := []byte(`
server:
  address: 127.0.0.1:5000
  read-timeout: 3s
pool-workers: 7
log-format: json
`)
			Expect(os.WriteFile(path, content, 0o600)).To(Succeed())
		})

		It("should read nested and flat keys", func() {
			root := newTestCommand(cfg)
			root.SetArgs([]string{"run", "--config", path})

			Expect(root.Execute()).To(Succeed())
			Expect(cfg.Server.Address).To(Equal("127.0.0.1:5000"))
			Expect(cfg.Server.ReadTimeout).To(Equal(3 * time.Second))
			Expect(cfg.Pool.NumWorkers).To(Equal(7))
			Expect(cfg.LogFormat).To(Equal(config.LogFormatJSON))
		})

		It("should let flags win over the file", func() {
			root := newTestCommand(cfg)
			root.SetArgs([]string{"run", "--config", path, "--pool-workers", "2"})

			Expect(root.Execute()).To(Succeed())
			Expect(cfg.Pool.NumWorkers).To(Equal(2))
		})

		It("should let the environment win over the file", func() {
			GinkgoT().Setenv("CAMPI_POOL_WORKERS", "9")
			root := newTestCommand(cfg)
			root.SetArgs([]string{"run", "--config", path})

			Expect(root.Execute()).To(Succeed())
			Expect(cfg.Pool.NumWorkers).To(Equal(9))
		})

		It("should fail on a missing file", func() {
			root := newTestCommand(cfg)
			root.SetArgs([]string{"run", "--config", path + ".missing"})

			Expect(root.Execute()).To(MatchError(ContainSubstring("failed to read config file")))
		})
	})
})
