package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cca/internal/controller"
)

var (
	// Watch command flags
	watchPreview bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow continuous sampling and report every update",
	Long: `Subscribe to the backend's continuous sampling mode and print an
updated contrast report whenever new colours arrive. Runs until
interrupted.

Examples:
  # Follow a native sampler plugin in continuous mode
  cca watch --sampler ./cca-native-sampler

  # Re-report whenever a screen capture file is overwritten
  cca watch --image capture.png`,
	RunE: runWatch,
}

func init() {
	registerBackendFlags(watchCmd.Flags())
	watchCmd.Flags().BoolVar(&watchPreview, "preview", false, "show colour previews in terminal")
}

// runWatch executes the watch command.
func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	backend, closeBackend, err := newBackend(logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := controller.New(backend, logger)

	updates, cancel := c.Subscribe()
	defer cancel()

	go func() {
		for ui := range updates {
			if !ui.ResultVisible {
				continue
			}
			printUIState(os.Stdout, ui, watchPreview)
			fmt.Println()
		}
	}()

	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
