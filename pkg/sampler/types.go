// Package sampler provides the public API for cca sampler backends.
// External sampler plugins should import this package instead of
// internal packages.
package sampler

// Role identifies which side of the contrast pair a sample is for.
type Role string

const (
	// Foreground is the text/foreground colour role.
	Foreground Role = "foreground"

	// Background is the background colour role.
	Background Role = "background"
)

// RGB represents an RGB colour on the wire.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// ColourValue carries a sampled colour. Two encodings were used by sampler
// backends historically: hex strings and RGB triples. Both are accepted;
// hex is the canonical form and wins when both are set.
type ColourValue struct {
	Hex string `json:"hex,omitempty"`
	RGB *RGB   `json:"rgb,omitempty"`
}

// HexValue returns a ColourValue in the canonical hex encoding.
func HexValue(hex string) *ColourValue {
	return &ColourValue{Hex: hex}
}

// RGBValue returns a ColourValue in the legacy RGB-triple encoding.
func RGBValue(r, g, b uint8) *ColourValue {
	return &ColourValue{RGB: &RGB{R: r, G: g, B: b}}
}

// Snapshot is the full sampler-side colour state. A nil side means that
// side has no sample: in a Pick result it means the user cancelled the
// picker for that role; in a push it means "leave the current value".
type Snapshot struct {
	Foreground   *ColourValue `json:"foreground"`
	Background   *ColourValue `json:"background"`
	ContinueMode bool         `json:"continue_mode"`
}

// ICCProfile describes a display colour profile known to the backend.
// Profiles are orthogonal to contrast math; the core only displays them.
type ICCProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsCurrent   bool   `json:"is_current"`
}
