// Package store holds the canonical colour state: the foreground and
// background samples the backend has reported so far.
package store

import (
	"fmt"

	"github.com/jmylchreest/cca/internal/colour"
	"github.com/jmylchreest/cca/pkg/sampler"
)

// State is the canonical colour record. A nil side means no sample has
// been taken for that role yet. State values are immutable; mutation
// happens by deriving a successor through Apply.
type State struct {
	Foreground   *colour.RGB
	Background   *colour.RGB
	ContinueMode bool
}

// Apply derives the successor state from a backend snapshot. Each side
// present in the snapshot replaces the corresponding side wholesale; absent
// sides keep their prior value, so a cancelled pick or a partial push never
// clears a stored colour. A side that fails to decode is rejected and the
// prior value kept; the first decode error is returned after both sides
// have been considered.
func (s State) Apply(snap sampler.Snapshot) (State, error) {
	next := State{
		Foreground:   s.Foreground,
		Background:   s.Background,
		ContinueMode: snap.ContinueMode,
	}

	var firstErr error

	if snap.Foreground != nil {
		c, err := decode(snap.Foreground)
		if err != nil {
			firstErr = fmt.Errorf("foreground: %w", err)
		} else {
			next.Foreground = &c
		}
	}

	if snap.Background != nil {
		c, err := decode(snap.Background)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("background: %w", err)
		} else if err == nil {
			next.Background = &c
		}
	}

	return next, firstErr
}

// decode normalizes a wire colour value into the canonical representation.
// Hex is the canonical encoding and wins when both encodings are set.
func decode(v *sampler.ColourValue) (colour.RGB, error) {
	if v.Hex != "" {
		return colour.ParseHex(v.Hex)
	}
	if v.RGB != nil {
		return colour.RGB{R: v.RGB.R, G: v.RGB.G, B: v.RGB.B}, nil
	}
	return colour.RGB{}, fmt.Errorf("%w: empty colour value", colour.ErrInvalidFormat)
}

// Equal reports whether two states carry the same colours and mode.
func (s State) Equal(o State) bool {
	return rgbEqual(s.Foreground, o.Foreground) &&
		rgbEqual(s.Background, o.Background) &&
		s.ContinueMode == o.ContinueMode
}

func rgbEqual(a, b *colour.RGB) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
