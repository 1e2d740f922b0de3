// Package contrast implements the WCAG 2.x contrast ratio and the
// conformance checks derived from it.
package contrast

import (
	"fmt"

	"github.com/jmylchreest/cca/internal/colour"
)

// WCAG minimum contrast ratios per success criterion.
// https://www.w3.org/TR/WCAG21/#contrast-minimum.
const (
	// ThresholdAARegular is SC 1.4.3 for normal text (AA).
	ThresholdAARegular = 4.5
	// ThresholdAALarge is SC 1.4.3 for large text (AA).
	ThresholdAALarge = 3.0
	// ThresholdAAARegular is SC 1.4.6 for normal text (AAA).
	ThresholdAAARegular = 7.0
	// ThresholdAAALarge is SC 1.4.6 for large text (AAA).
	ThresholdAAALarge = 4.5
	// ThresholdGraphics is SC 1.4.11 for non-text contrast.
	ThresholdGraphics = 3.0
)

// Ratio calculates the contrast ratio between two relative luminances
// according to WCAG 2.0. Returns a value between 1 and 21, where 21 is
// maximum contrast (black vs white).
// https://www.w3.org/TR/WCAG20/#contrast-ratiodef.
func Ratio(l1, l2 float64) float64 {
	// Ensure l1 is the lighter luminance.
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// RatioRGB calculates the contrast ratio between two colours.
func RatioRGB(fg, bg colour.RGB) float64 {
	return Ratio(fg.Luminance(), bg.Luminance())
}

// Flags holds the pass/fail state for each WCAG success criterion.
type Flags struct {
	// AARegular is SC 1.4.3, normal text (>= 4.5:1).
	AARegular bool `json:"aa_regular"`
	// AALarge is SC 1.4.3, large text (>= 3:1).
	AALarge bool `json:"aa_large"`
	// AAARegular is SC 1.4.6, normal text (>= 7:1).
	AAARegular bool `json:"aaa_regular"`
	// AAALarge is SC 1.4.6, large text (>= 4.5:1).
	AAALarge bool `json:"aaa_large"`
	// Graphics is SC 1.4.11, non-text contrast (>= 3:1).
	Graphics bool `json:"graphics"`
}

// EvaluateRatio computes the flags for a contrast ratio. The ratio must be the
// unrounded value: a true ratio of 4.499 displays as "4.5" but still fails
// the 4.5:1 criteria.
func EvaluateRatio(ratio float64) Flags {
	return Flags{
		AARegular:  ratio >= ThresholdAARegular,
		AALarge:    ratio >= ThresholdAALarge,
		AAARegular: ratio >= ThresholdAAARegular,
		AAALarge:   ratio >= ThresholdAAALarge,
		Graphics:   ratio >= ThresholdGraphics,
	}
}

// Result pairs a contrast ratio with its conformance flags. Ratio keeps
// full precision; rounding happens only in Display.
type Result struct {
	Ratio float64 `json:"ratio"`
	Flags Flags   `json:"flags"`
}

// Evaluate computes the contrast result for a foreground/background pair.
func Evaluate(fg, bg colour.RGB) Result {
	ratio := RatioRGB(fg, bg)
	return Result{
		Ratio: ratio,
		Flags: EvaluateRatio(ratio),
	}
}

// Display returns the ratio rounded to one decimal place for presentation.
func (r Result) Display() string {
	return fmt.Sprintf("%.1f", r.Ratio)
}
