package cli

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/jmylchreest/cca/internal/colour"
	"github.com/jmylchreest/cca/internal/contrast"
	"github.com/jmylchreest/cca/internal/controller"
)

// swatch returns a terminal colour block for a colour, or "" when stdout
// is not a terminal (piped output stays clean).
func swatch(c colour.RGB) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m ", c.R, c.G, c.B)
}

// printSide writes one colour role line.
func printSide(w io.Writer, label string, c colour.RGB, preview bool) {
	shade := "light"
	if c.IsDark() {
		shade = "dark"
	}
	prefix := ""
	if preview {
		prefix = swatch(c)
	}
	fmt.Fprintf(w, "%s%s: %s (%s) %s\n", prefix, label, c.Hex(), c.Triplet(), shade)
}

// printResult writes the ratio and the conformance table.
func printResult(w io.Writer, res contrast.Result) {
	fmt.Fprintf(w, "Contrast ratio: %s\n", res.Display())
	fmt.Fprintf(w, "  1.4.3 AA  normal text:      %s\n", passFail(res.Flags.AARegular))
	fmt.Fprintf(w, "  1.4.3 AA  large text:       %s\n", passFail(res.Flags.AALarge))
	fmt.Fprintf(w, "  1.4.6 AAA normal text:      %s\n", passFail(res.Flags.AAARegular))
	fmt.Fprintf(w, "  1.4.6 AAA large text:       %s\n", passFail(res.Flags.AAALarge))
	fmt.Fprintf(w, "  1.4.11    non-text:         %s\n", passFail(res.Flags.Graphics))
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "fail"
}

// printUIState renders a controller snapshot.
func printUIState(w io.Writer, ui controller.UIState, preview bool) {
	if !ui.ResultVisible {
		fmt.Fprintln(w, "No colours sampled yet.")
		return
	}

	if ui.HasForeground {
		c, err := colour.ParseHex(ui.ForegroundHex)
		if err == nil {
			printSide(w, "Foreground", c, preview)
		}
	}
	if ui.HasBackground {
		c, err := colour.ParseHex(ui.BackgroundHex)
		if err == nil {
			printSide(w, "Background", c, preview)
		}
	}

	if ui.RatioDisplay != "" {
		printResult(w, resultFromUI(ui))
	}
	if ui.ContinueMode {
		fmt.Fprintln(w, "Continuous mode active.")
	}
	if ui.ICCProfile != "" {
		fmt.Fprintf(w, "Colour profile: %s\n", ui.ICCProfile)
	}
}

// resultFromUI rebuilds a display result from the mirror's fields.
func resultFromUI(ui controller.UIState) contrast.Result {
	fg, errF := colour.ParseHex(ui.ForegroundHex)
	bg, errB := colour.ParseHex(ui.BackgroundHex)
	if errF != nil || errB != nil {
		return contrast.Result{}
	}
	return contrast.Evaluate(fg, bg)
}
