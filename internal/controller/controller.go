// Package controller reconciles the authoritative sampler-side colour
// state into a UI-facing mirror and owns the asynchronous pick lifecycle.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cca/internal/contrast"
	"github.com/jmylchreest/cca/internal/store"
	"github.com/jmylchreest/cca/pkg/sampler"
)

var (
	// ErrPickInFlight is returned when a pick is requested for a role
	// that already has one outstanding. Picks for the other role are
	// unaffected.
	ErrPickInFlight = errors.New("pick already in flight for role")

	// ErrNoColour is returned when an operation needs a colour that has
	// not been sampled yet.
	ErrNoColour = errors.New("no colour sampled for role")
)

// copiedNoticeTTL is how long the copied-to-clipboard notice stays
// visible before it auto-clears.
const copiedNoticeTTL = 1500 * time.Millisecond

// UIState is the immutable snapshot published to subscribers. All fields
// are plain values; subscribers never share memory with the controller.
type UIState struct {
	ForegroundHex     string
	ForegroundTriplet string
	ForegroundDark    bool
	HasForeground     bool

	BackgroundHex     string
	BackgroundTriplet string
	BackgroundDark    bool
	HasBackground     bool

	// RatioDisplay is the one-decimal ratio; empty until both sides have
	// a value. Flags are derived from the unrounded ratio.
	RatioDisplay string
	Flags        contrast.Flags

	ContinueMode      bool
	PickingForeground bool
	PickingBackground bool
	ResultVisible     bool
	CopiedVisible     bool
	ICCProfile        string
}

// Picking reports whether any pick is in flight.
func (u UIState) Picking() bool {
	return u.PickingForeground || u.PickingBackground
}

// Option configures a Controller.
type Option func(*Controller)

// WithClipboard replaces the clipboard write function. Used by tests and
// by hosts that provide their own clipboard integration.
func WithClipboard(fn func(string) error) Option {
	return func(c *Controller) { c.copyFn = fn }
}

// WithCopiedTTL overrides how long the copied notice stays visible.
func WithCopiedTTL(d time.Duration) Option {
	return func(c *Controller) { c.copiedTTL = d }
}

// Controller owns the colour state mirror. All mutation goes through its
// methods; subscribers are read-only consumers of UIState snapshots.
type Controller struct {
	backend sampler.Sampler
	logger  hclog.Logger

	copyFn    func(string) error
	copiedTTL time.Duration

	mu            sync.Mutex
	state         store.State
	pickingFg     bool
	pickingBg     bool
	resultVisible bool
	copiedVisible bool
	iccProfile    string
	copiedTimer   *time.Timer
	ui            UIState
	subs          map[int]chan UIState
	nextSubID     int
}

// New creates a controller for the given backend. The logger receives all
// recovered errors; pass hclog.NewNullLogger() to discard them.
func New(backend sampler.Sampler, logger hclog.Logger, opts ...Option) *Controller {
	c := &Controller{
		backend:   backend,
		logger:    logger,
		copyFn:    clipboard.WriteAll,
		copiedTTL: copiedNoticeTTL,
		subs:      make(map[int]chan UIState),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ui = c.buildUIState()
	return c
}

// Snapshot returns the current UI state.
func (c *Controller) Snapshot() UIState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ui
}

// Subscribe registers a subscriber. The channel holds the latest snapshot
// only: a slow reader sees the newest state, not every intermediate one.
// The cancel function releases the subscription.
func (c *Controller) Subscribe() (<-chan UIState, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	ch := make(chan UIState, 1)
	ch <- c.ui
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// PickColor runs one sampling operation for the given role. A second pick
// for the same role while one is outstanding is rejected; a pick for the
// other role may proceed concurrently. Cancellation in the native picker
// (a nil side in the result) leaves the stored colour untouched.
func (c *Controller) PickColor(ctx context.Context, role sampler.Role) error {
	c.mu.Lock()
	busy := c.pickingFg
	if role == sampler.Background {
		busy = c.pickingBg
	}
	if busy {
		c.mu.Unlock()
		c.logger.Warn("ignoring pick request, previous pick still in flight", "role", role)
		return fmt.Errorf("%w: %s", ErrPickInFlight, role)
	}
	c.setPicking(role, true)
	c.refreshLocked()
	c.mu.Unlock()

	snap, err := c.backend.Pick(ctx, role)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPicking(role, false)

	if err != nil {
		// Sampling failure: busy flag cleared, state untouched.
		c.logger.Error("colour sampling failed", "role", role, "error", err)
		c.refreshLocked()
		return fmt.Errorf("sampling failed: %w", err)
	}

	c.applyLocked(snap)
	return nil
}

// UpdateFromBackendState applies a pushed backend state to the mirror.
// Idempotent: re-applying the same snapshot changes nothing. Only sides
// present in the snapshot are touched; a partial push never clears an
// already-displayed value.
func (c *Controller) UpdateFromBackendState(snap sampler.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocked(snap)
}

// applyLocked folds a snapshot into the canonical state and republishes.
// Caller holds c.mu.
func (c *Controller) applyLocked(snap sampler.Snapshot) {
	next, err := c.state.Apply(snap)
	if err != nil {
		// Malformed side rejected, prior value kept; valid sides in the
		// same snapshot still land.
		c.logger.Error("rejecting malformed colour update", "error", err)
	}
	c.state = next
	if c.state.Foreground != nil || c.state.Background != nil {
		// Monotonic within a session; only Reset clears it.
		c.resultVisible = true
	}
	c.refreshLocked()
}

// setPicking flips the busy flag for a role. Caller holds c.mu.
func (c *Controller) setPicking(role sampler.Role, v bool) {
	if role == sampler.Background {
		c.pickingBg = v
		return
	}
	c.pickingFg = v
}

// CopyToClipboard copies the hex string of the given role's colour. On
// success the copied notice becomes visible and auto-clears after the
// configured window; a newer copy restarts the window. On failure the
// notice simply never appears.
func (c *Controller) CopyToClipboard(role sampler.Role) error {
	c.mu.Lock()
	side := c.state.Foreground
	if role == sampler.Background {
		side = c.state.Background
	}
	if side == nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoColour, role)
	}
	hex := side.Hex()
	c.mu.Unlock()

	if err := c.copyFn(hex); err != nil {
		c.logger.Error("clipboard write failed", "role", role, "error", err)
		return fmt.Errorf("clipboard write failed: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.copiedVisible = true
	if c.copiedTimer != nil {
		c.copiedTimer.Stop()
	}
	c.copiedTimer = time.AfterFunc(c.copiedTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.copiedVisible = false
		c.refreshLocked()
	})
	c.refreshLocked()
	return nil
}

// Reset restores the zero state. This is the only path that clears
// ResultVisible; the colour profile keeps its own lifecycle and survives.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = store.State{}
	c.resultVisible = false
	c.refreshLocked()
}

// RefreshICCProfile re-reads the active colour profile from the backend.
func (c *Controller) RefreshICCProfile(ctx context.Context) error {
	name, err := c.backend.SelectedICCProfile(ctx)
	if err != nil {
		c.logger.Warn("failed to read selected colour profile", "error", err)
		return err
	}
	c.setICCProfile(name)
	return nil
}

// SelectICCProfile switches the backend's active colour profile.
func (c *Controller) SelectICCProfile(ctx context.Context, name string) error {
	if err := c.backend.SelectICCProfile(ctx, name); err != nil {
		c.logger.Error("failed to select colour profile", "profile", name, "error", err)
		return err
	}
	c.setICCProfile(name)
	return nil
}

// ListICCProfiles passes through the backend's profile list.
func (c *Controller) ListICCProfiles(ctx context.Context) ([]sampler.ICCProfile, error) {
	return c.backend.ListICCProfiles(ctx)
}

func (c *Controller) setICCProfile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.iccProfile = name
	c.refreshLocked()
}

// Run seeds the mirror from the backend's current state and then consumes
// push updates until ctx is cancelled or the backend stops. Backends
// without a push channel return after the initial seed.
func (c *Controller) Run(ctx context.Context) error {
	snap, err := c.backend.State(ctx)
	if err != nil {
		// Non-fatal: the mirror starts empty and catches up on pushes.
		c.logger.Error("failed to fetch initial state", "error", err)
	} else {
		c.UpdateFromBackendState(snap)
	}

	if err := c.RefreshICCProfile(ctx); err != nil {
		c.logger.Warn("continuing without colour profile", "error", err)
	}

	var profileCh <-chan string
	if pw, ok := c.backend.(sampler.ProfileWatcher); ok {
		profileCh, err = pw.WatchICCProfile(ctx)
		if err != nil {
			c.logger.Warn("colour profile watch unavailable", "error", err)
			profileCh = nil
		}
	}

	w, ok := c.backend.(sampler.Watcher)
	if !ok {
		return c.drainProfileWatch(ctx, profileCh)
	}

	updates, err := w.Watch(ctx)
	if err != nil {
		if errors.Is(err, sampler.ErrWatchUnsupported) {
			return c.drainProfileWatch(ctx, profileCh)
		}
		return fmt.Errorf("backend watch failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name, open := <-profileCh:
			if !open {
				profileCh = nil
				continue
			}
			c.setICCProfile(name)
		case snap, open := <-updates:
			if !open {
				return nil
			}
			c.UpdateFromBackendState(snap)
		}
	}
}

// drainProfileWatch keeps serving profile pushes when the backend has no
// colour state push channel.
func (c *Controller) drainProfileWatch(ctx context.Context, profileCh <-chan string) error {
	if profileCh == nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case name, open := <-profileCh:
			if !open {
				return nil
			}
			c.setICCProfile(name)
		}
	}
}

// refreshLocked rebuilds the published UIState and notifies subscribers
// when it changed. Caller holds c.mu.
func (c *Controller) refreshLocked() {
	next := c.buildUIState()
	if next == c.ui {
		return
	}
	c.ui = next
	for _, sub := range c.subs {
		// Coalesce: drop the stale snapshot if the subscriber is behind.
		select {
		case <-sub:
		default:
		}
		select {
		case sub <- next:
		default:
		}
	}
}

// buildUIState derives the UI mirror from the canonical state and the
// transient flags. The hex, triplet and dark flag for a side always come
// from the same stored colour. Caller holds c.mu.
func (c *Controller) buildUIState() UIState {
	ui := UIState{
		ContinueMode:      c.state.ContinueMode,
		PickingForeground: c.pickingFg,
		PickingBackground: c.pickingBg,
		ResultVisible:     c.resultVisible,
		CopiedVisible:     c.copiedVisible,
		ICCProfile:        c.iccProfile,
	}

	if fg := c.state.Foreground; fg != nil {
		ui.HasForeground = true
		ui.ForegroundHex = fg.Hex()
		ui.ForegroundTriplet = fg.Triplet()
		ui.ForegroundDark = fg.IsDark()
	}
	if bg := c.state.Background; bg != nil {
		ui.HasBackground = true
		ui.BackgroundHex = bg.Hex()
		ui.BackgroundTriplet = bg.Triplet()
		ui.BackgroundDark = bg.IsDark()
	}
	if c.state.Foreground != nil && c.state.Background != nil {
		res := contrast.Evaluate(*c.state.Foreground, *c.state.Background)
		ui.RatioDisplay = res.Display()
		ui.Flags = res.Flags
	}

	return ui
}
