package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/cca/internal/colour"
	"github.com/jmylchreest/cca/internal/contrast"
)

var (
	// Check command flags
	checkFormat  string
	checkPreview bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <foreground> <background>",
	Short: "Check the contrast ratio of two colours",
	Long: `Check the WCAG contrast ratio between two colours given as #RRGGBB hex
strings and report which conformance levels the pair satisfies.

Thresholds follow WCAG 2.x: 4.5:1 for AA normal text (1.4.3), 3:1 for AA
large text (1.4.3) and non-text contrast (1.4.11), 7:1 and 4.5:1 for AAA
normal and large text (1.4.6). Comparisons use the unrounded ratio; only
the displayed value is rounded.

Examples:
  # Black text on a white background
  cca check "#000000" "#FFFFFF"

  # JSON output for scripting
  cca check --format json "#767676" "#FFFFFF"

  # Show colour swatches in the terminal
  cca check --preview "#FF8000" "#003366"`,
	Args: cobra.ExactArgs(2),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "output format (text, json)")
	checkCmd.Flags().BoolVar(&checkPreview, "preview", false, "show colour previews in terminal")
}

// checkJSON is the JSON output shape of the check command.
type checkJSON struct {
	Foreground sideJSON       `json:"foreground"`
	Background sideJSON       `json:"background"`
	Ratio      float64        `json:"ratio"`
	Display    string         `json:"ratio_display"`
	Flags      contrast.Flags `json:"flags"`
}

type sideJSON struct {
	Hex    string     `json:"hex"`
	RGB    colour.RGB `json:"rgb"`
	IsDark bool       `json:"is_dark"`
}

// runCheck executes the check command.
func runCheck(cmd *cobra.Command, args []string) error {
	fg, err := colour.ParseHex(args[0])
	if err != nil {
		return fmt.Errorf("invalid foreground colour: %w", err)
	}
	bg, err := colour.ParseHex(args[1])
	if err != nil {
		return fmt.Errorf("invalid background colour: %w", err)
	}

	res := contrast.Evaluate(fg, bg)

	switch checkFormat {
	case "json":
		out := checkJSON{
			Foreground: sideJSON{Hex: fg.Hex(), RGB: fg, IsDark: fg.IsDark()},
			Background: sideJSON{Hex: bg.Hex(), RGB: bg, IsDark: bg.IsDark()},
			Ratio:      res.Ratio,
			Display:    res.Display(),
			Flags:      res.Flags,
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	case "text":
		printSide(os.Stdout, "Foreground", fg, checkPreview)
		printSide(os.Stdout, "Background", bg, checkPreview)
		printResult(os.Stdout, res)
		return nil
	default:
		return fmt.Errorf("unknown format: %q (supported: text, json)", checkFormat)
	}
}
