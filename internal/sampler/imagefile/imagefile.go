// Package imagefile implements a sampler backend that reads colours from
// an image file, typically a screen capture dropped by an external tool.
// It stands in for the native screen picker on hosts without one.
package imagefile

import (
	"context"
	"fmt"
	stdimage "image"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cca/internal/colour"
	"github.com/jmylchreest/cca/internal/image"
	"github.com/jmylchreest/cca/pkg/sampler"
)

// defaultPollInterval is how often Watch checks the file for changes.
const defaultPollInterval = 500 * time.Millisecond

// autoProfile is the synthetic colour profile this backend reports; it
// has no profile machinery of its own.
var autoProfile = sampler.ICCProfile{
	Name:        "Auto",
	Description: "Automatic color space detection",
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithPoint sets the pixel sampled for a role. Coordinates are relative
// to the image origin. Defaults: foreground at the centre of the top-left
// quadrant, background at the image centre.
func WithPoint(role sampler.Role, x, y int) Option {
	return func(s *Sampler) {
		s.points[role] = stdimage.Pt(x, y)
	}
}

// WithPollInterval sets the Watch polling cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Sampler) { s.interval = d }
}

// Sampler reads colours from an image file.
type Sampler struct {
	path     string
	logger   hclog.Logger
	points   map[sampler.Role]stdimage.Point
	interval time.Duration

	mu           sync.Mutex
	foreground   *colour.RGB
	background   *colour.RGB
	continueMode bool
	profile      string
}

var _ sampler.Sampler = (*Sampler)(nil)
var _ sampler.Watcher = (*Sampler)(nil)

// New creates an image-file sampler. The file does not need to exist
// until the first Pick.
func New(path string, logger hclog.Logger, opts ...Option) *Sampler {
	s := &Sampler{
		path:     path,
		logger:   logger,
		points:   make(map[sampler.Role]stdimage.Point),
		interval: defaultPollInterval,
		profile:  autoProfile.Name,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pick samples the pixel configured for the role and returns a snapshot
// with only that side set.
func (s *Sampler) Pick(_ context.Context, role sampler.Role) (sampler.Snapshot, error) {
	c, err := s.sample(role)
	if err != nil {
		return sampler.Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if role == sampler.Background {
		s.background = &c
	} else {
		s.foreground = &c
	}

	snap := sampler.Snapshot{ContinueMode: s.continueMode}
	if role == sampler.Background {
		snap.Background = sampler.HexValue(c.Hex())
	} else {
		snap.Foreground = sampler.HexValue(c.Hex())
	}
	return snap, nil
}

// State returns everything sampled so far.
func (s *Sampler) State(_ context.Context) (sampler.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// snapshotLocked builds a wire snapshot from the stored colours.
// Caller holds s.mu.
func (s *Sampler) snapshotLocked() sampler.Snapshot {
	snap := sampler.Snapshot{ContinueMode: s.continueMode}
	if s.foreground != nil {
		snap.Foreground = sampler.HexValue(s.foreground.Hex())
	}
	if s.background != nil {
		snap.Background = sampler.HexValue(s.background.Hex())
	}
	return snap
}

// Watch re-samples both roles whenever the image file changes and pushes
// the resulting state. Continuous mode is reported active while the
// subscription lives.
func (s *Sampler) Watch(ctx context.Context) (<-chan sampler.Snapshot, error) {
	s.mu.Lock()
	s.continueMode = true
	s.mu.Unlock()

	ch := make(chan sampler.Snapshot, 1)
	go func() {
		defer close(ch)
		defer func() {
			s.mu.Lock()
			s.continueMode = false
			s.mu.Unlock()
		}()

		var lastMod time.Time
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			info, err := os.Stat(s.path)
			if err != nil {
				continue // file may not exist yet
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()

			snap, err := s.resampleAll()
			if err != nil {
				s.logger.Warn("re-sampling after file change failed", "path", s.path, "error", err)
				continue
			}

			select {
			case ch <- snap:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

// resampleAll samples both roles from the current file contents.
func (s *Sampler) resampleAll() (sampler.Snapshot, error) {
	img, err := image.Load(s.path)
	if err != nil {
		return sampler.Snapshot{}, err
	}

	fg := s.sampleAt(img, sampler.Foreground)
	bg := s.sampleAt(img, sampler.Background)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.foreground = &fg
	s.background = &bg
	return s.snapshotLocked(), nil
}

// sample loads the file and samples one role's pixel.
func (s *Sampler) sample(role sampler.Role) (colour.RGB, error) {
	img, err := image.Load(s.path)
	if err != nil {
		return colour.RGB{}, fmt.Errorf("sampling %s: %w", role, err)
	}
	return s.sampleAt(img, role), nil
}

// sampleAt reads the configured pixel for a role, clamped to the image
// bounds.
func (s *Sampler) sampleAt(img stdimage.Image, role sampler.Role) colour.RGB {
	bounds := img.Bounds()

	pt, ok := s.points[role]
	if !ok {
		// Foreground defaults to the top-left quadrant centre, background
		// to the image centre, so the two roles differ on typical captures.
		if role == sampler.Background {
			pt = stdimage.Pt(bounds.Dx()/2, bounds.Dy()/2)
		} else {
			pt = stdimage.Pt(bounds.Dx()/4, bounds.Dy()/4)
		}
	}

	x := clamp(bounds.Min.X+pt.X, bounds.Min.X, bounds.Max.X-1)
	y := clamp(bounds.Min.Y+pt.Y, bounds.Min.Y, bounds.Max.Y-1)

	r, g, b, _ := img.At(x, y).RGBA()
	// RGBA returns values in the range [0, 65535], convert to [0, 255].
	return colour.RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ListICCProfiles reports the single synthetic profile.
func (s *Sampler) ListICCProfiles(_ context.Context) ([]sampler.ICCProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := autoProfile
	p.IsCurrent = s.profile == p.Name
	return []sampler.ICCProfile{p}, nil
}

// SelectICCProfile accepts only the synthetic profile.
func (s *Sampler) SelectICCProfile(_ context.Context, name string) error {
	if name != autoProfile.Name {
		return fmt.Errorf("unknown colour profile: %q", name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = name
	return nil
}

// SelectedICCProfile returns the active profile name.
func (s *Sampler) SelectedICCProfile(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, nil
}
