package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cca/internal/controller"
)

// iccCmd represents the icc command group
var iccCmd = &cobra.Command{
	Use:   "icc",
	Short: "Manage the backend's colour profiles",
	Long: `List, query and switch the ICC colour profiles the sampling backend
knows about. Profiles only affect how the backend captures colours; the
contrast math is profile independent.`,
}

// iccListCmd represents the icc list command
var iccListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available colour profiles",
	RunE:  runICCList,
}

// iccCurrentCmd represents the icc current command
var iccCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Print the selected colour profile",
	RunE:  runICCCurrent,
}

// iccSelectCmd represents the icc select command
var iccSelectCmd = &cobra.Command{
	Use:   "select <name>",
	Short: "Select a colour profile by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runICCSelect,
}

func init() {
	registerBackendFlags(iccCmd.PersistentFlags())
	iccCmd.AddCommand(iccListCmd)
	iccCmd.AddCommand(iccCurrentCmd)
	iccCmd.AddCommand(iccSelectCmd)
}

// newICCController builds a controller for the icc subcommands.
func newICCController() (*controller.Controller, func(), error) {
	logger := newLogger()
	backend, closeBackend, err := newBackend(logger)
	if err != nil {
		return nil, nil, err
	}
	return controller.New(backend, logger), closeBackend, nil
}

// runICCList executes the icc list command.
func runICCList(cmd *cobra.Command, args []string) error {
	c, closeBackend, err := newICCController()
	if err != nil {
		return err
	}
	defer closeBackend()

	profiles, err := c.ListICCProfiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list colour profiles: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range profiles {
		marker := " "
		if p.IsCurrent {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", marker, p.Name, p.Description)
	}
	return w.Flush()
}

// runICCCurrent executes the icc current command.
func runICCCurrent(cmd *cobra.Command, args []string) error {
	c, closeBackend, err := newICCController()
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := c.RefreshICCProfile(cmd.Context()); err != nil {
		return fmt.Errorf("failed to read selected colour profile: %w", err)
	}
	name := c.Snapshot().ICCProfile
	if name == "" {
		fmt.Println("(no profile selected)")
		return nil
	}
	fmt.Println(name)
	return nil
}

// runICCSelect executes the icc select command.
func runICCSelect(cmd *cobra.Command, args []string) error {
	c, closeBackend, err := newICCController()
	if err != nil {
		return err
	}
	defer closeBackend()

	if err := c.SelectICCProfile(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to select colour profile: %w", err)
	}
	fmt.Printf("Selected colour profile: %s\n", args[0])
	return nil
}
