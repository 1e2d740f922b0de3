// Package cli provides the command-line interface for cca.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/cca/internal/sampler/imagefile"
	"github.com/jmylchreest/cca/internal/sampler/remote"
	"github.com/jmylchreest/cca/internal/version"
	"github.com/jmylchreest/cca/pkg/sampler"
)

var (
	// Global flags
	flagVerbose bool
	flagQuiet   bool

	// Backend selection, shared by every command that samples
	flagSamplerPath string
	flagImagePath   string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "cca",
		Short: "A colour contrast analyser",
		Long: `cca samples two on-screen colours (foreground and background), computes
their WCAG contrast ratio and reports pass/fail status against the WCAG 2.x
conformance levels.

Colours are sampled through a backend: either an external sampler plugin
binary (--sampler) hosting a native screen picker, or an image file
(--image) holding a screen capture.`,
		Version:      version.Short(),
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-error output")

	// Set version template
	rootCmd.SetVersionTemplate(version.String() + "\n")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(iccCmd)
}

// registerBackendFlags adds the backend selection flags to a command.
func registerBackendFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagSamplerPath, "sampler", "", "path to a sampler plugin binary")
	fs.StringVar(&flagImagePath, "image", "", "path to an image file to sample from")
}

// newLogger builds the hclog logger all components share.
func newLogger() hclog.Logger {
	if flagQuiet {
		return hclog.New(&hclog.LoggerOptions{
			Name:   "cca",
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}
	level := hclog.Warn
	if flagVerbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "cca",
		Output: os.Stderr,
		Level:  level,
	})
}

// newBackend builds the sampler backend selected by the flags. The close
// function kills a plugin backend's process; it is a no-op otherwise.
func newBackend(logger hclog.Logger) (sampler.Sampler, func(), error) {
	switch {
	case flagSamplerPath != "" && flagImagePath != "":
		return nil, nil, fmt.Errorf("--sampler and --image are mutually exclusive")
	case flagSamplerPath != "":
		b := remote.Open(flagSamplerPath, logger)
		return b, b.Close, nil
	case flagImagePath != "":
		return imagefile.New(flagImagePath, logger), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("no sampler backend: use --sampler <binary> or --image <file>")
	}
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print detailed version information including build date, commit hash, and Go version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.String())
	},
}
