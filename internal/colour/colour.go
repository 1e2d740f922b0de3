// Package colour provides the canonical colour representation and
// conversions between RGB and hexadecimal encodings.
package colour

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFormat indicates a malformed hex colour string.
var ErrInvalidFormat = errors.New("invalid hex colour format")

// RGB represents a colour as 8-bit red, green and blue channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ParseHex parses a 7-character "#RRGGBB" string into an RGB colour.
// Input hex digits may be upper or lower case. Returns ErrInvalidFormat
// if the string is not exactly 7 characters, does not start with '#',
// or contains non-hex digits.
func ParseHex(s string) (RGB, error) {
	if len(s) != 7 || s[0] != '#' {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}

	var channels [3]uint8
	for i := 0; i < 3; i++ {
		hi, ok1 := hexDigit(s[1+i*2])
		lo, ok2 := hexDigit(s[2+i*2])
		if !ok1 || !ok2 {
			return RGB{}, fmt.Errorf("%w: %q", ErrInvalidFormat, s)
		}
		channels[i] = hi<<4 | lo
	}

	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}

// hexDigit decodes a single hex digit, accepting both cases.
func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Hex returns the colour as an uppercase "#RRGGBB" string.
// ParseHex(c.Hex()) is the identity for every RGB value.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// String returns the colour as a string in the format "rgb(r, g, b)".
func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Triplet returns the colour channels as a display string "r, g, b".
func (c RGB) Triplet() string {
	return fmt.Sprintf("%d, %d, %d", c.R, c.G, c.B)
}

// Luminance calculates the relative luminance of the colour according to
// WCAG 2.0. Returns a value between 0 (darkest) and 1 (lightest).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func (c RGB) Luminance() float64 {
	r := gammaCorrect(float64(c.R) / 255.0)
	g := gammaCorrect(float64(c.G) / 255.0)
	b := gammaCorrect(float64(c.B) / 255.0)

	return 0.2126*r + 0.7152*g + 0.0722*b
}

// gammaCorrect applies sRGB gamma correction to a colour component.
func gammaCorrect(v float64) float64 {
	if v <= 0.03928 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// IsDark reports whether the colour classifies as dark. The threshold is
// a relative luminance below 0.5 and applies identically to foreground
// and background roles.
func (c RGB) IsDark() bool {
	return c.Luminance() < 0.5
}
