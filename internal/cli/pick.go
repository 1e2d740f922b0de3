package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cca/internal/controller"
	"github.com/jmylchreest/cca/pkg/sampler"
)

var (
	// Pick command flags
	pickRole    string
	pickCopy    bool
	pickPreview bool
)

// pickCmd represents the pick command
var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Sample colours through the backend and report the contrast",
	Long: `Sample the foreground and/or background colour through the selected
backend and print the resulting contrast report.

With a plugin backend (--sampler) this opens the native screen picker;
dismissing the picker leaves the previous colour in place. With an image
backend (--image) the configured pixels of the file are sampled.

Examples:
  # Pick both colours with a native sampler plugin
  cca pick --sampler ./cca-native-sampler

  # Re-pick only the foreground
  cca pick --sampler ./cca-native-sampler --role foreground

  # Sample from a screen capture and copy the foreground hex
  cca pick --image capture.png --copy`,
	RunE: runPick,
}

func init() {
	registerBackendFlags(pickCmd.Flags())
	pickCmd.Flags().StringVarP(&pickRole, "role", "r", "both", "which colour to pick (foreground, background, both)")
	pickCmd.Flags().BoolVar(&pickCopy, "copy", false, "copy the picked foreground hex to the clipboard")
	pickCmd.Flags().BoolVar(&pickPreview, "preview", false, "show colour previews in terminal")
}

// rolesFromFlag resolves the --role flag into pick order.
func rolesFromFlag(flag string) ([]sampler.Role, error) {
	switch flag {
	case "foreground", "fg":
		return []sampler.Role{sampler.Foreground}, nil
	case "background", "bg":
		return []sampler.Role{sampler.Background}, nil
	case "both":
		return []sampler.Role{sampler.Foreground, sampler.Background}, nil
	default:
		return nil, fmt.Errorf("unknown role: %q (supported: foreground, background, both)", flag)
	}
}

// runPick executes the pick command.
func runPick(cmd *cobra.Command, args []string) error {
	roles, err := rolesFromFlag(pickRole)
	if err != nil {
		return err
	}

	logger := newLogger()
	backend, closeBackend, err := newBackend(logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	ctx := cmd.Context()
	c := controller.New(backend, logger)

	// Seed the mirror from whatever the backend already holds.
	if snap, err := backend.State(ctx); err == nil {
		c.UpdateFromBackendState(snap)
	} else {
		logger.Warn("could not fetch initial backend state", "error", err)
	}
	if err := c.RefreshICCProfile(ctx); err != nil {
		logger.Debug("no colour profile available")
	}

	for _, role := range roles {
		if err := c.PickColor(ctx, role); err != nil {
			return err
		}
	}

	printUIState(os.Stdout, c.Snapshot(), pickPreview)

	if pickCopy {
		if err := c.CopyToClipboard(sampler.Foreground); err != nil {
			return err
		}
		fmt.Println("Foreground hex copied to clipboard.")
	}
	return nil
}
