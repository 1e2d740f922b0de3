// static - Fixed-colour sampler (cca Sampler Plugin)
//
// Serves a fixed foreground/background pair over the go-plugin RPC
// protocol. Useful for exercising the plugin transport end to end and as
// a starting point for real sampler plugins.
//
// Build:
//   go build -o static
//
// Usage:
//   cca pick --sampler ./static
//   CCA_STATIC_FOREGROUND="#222222" CCA_STATIC_BACKGROUND="#FAFAFA" cca pick --sampler ./static
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jmylchreest/cca/pkg/sampler"
)

// StaticSampler implements the sampler.Sampler interface with fixed
// colours taken from the environment.
type StaticSampler struct {
	foreground string
	background string

	mu     sync.Mutex
	picked map[sampler.Role]bool
}

// Pick returns the configured colour for the role.
func (s *StaticSampler) Pick(_ context.Context, role sampler.Role) (sampler.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picked[role] = true

	snap := sampler.Snapshot{}
	if role == sampler.Background {
		snap.Background = sampler.HexValue(s.background)
	} else {
		snap.Foreground = sampler.HexValue(s.foreground)
	}
	return snap, nil
}

// State returns the colours picked so far.
func (s *StaticSampler) State(_ context.Context) (sampler.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := sampler.Snapshot{}
	if s.picked[sampler.Foreground] {
		snap.Foreground = sampler.HexValue(s.foreground)
	}
	if s.picked[sampler.Background] {
		snap.Background = sampler.HexValue(s.background)
	}
	return snap, nil
}

// ListICCProfiles reports a single synthetic profile.
func (s *StaticSampler) ListICCProfiles(_ context.Context) ([]sampler.ICCProfile, error) {
	return []sampler.ICCProfile{
		{Name: "Auto", Description: "Automatic color space detection", IsCurrent: true},
	}, nil
}

// SelectICCProfile accepts only the synthetic profile.
func (s *StaticSampler) SelectICCProfile(_ context.Context, name string) error {
	if name != "Auto" {
		return fmt.Errorf("unknown colour profile: %q", name)
	}
	return nil
}

// SelectedICCProfile returns the active profile name.
func (s *StaticSampler) SelectedICCProfile(_ context.Context) (string, error) {
	return "Auto", nil
}

// envOr reads an environment variable with a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	sampler.Serve(&StaticSampler{
		foreground: envOr("CCA_STATIC_FOREGROUND", "#000000"),
		background: envOr("CCA_STATIC_BACKGROUND", "#FFFFFF"),
		picked:     make(map[sampler.Role]bool),
	})
}
