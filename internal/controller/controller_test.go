package controller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/cca/pkg/sampler"
)

// fakeBackend is an in-memory sampler backend for controller tests.
type fakeBackend struct {
	mu sync.Mutex

	pickResult sampler.Snapshot
	pickErr    error
	pickBlock  chan struct{} // when non-nil, Pick blocks until closed
	pickCalls  []sampler.Role

	state    sampler.Snapshot
	stateErr error

	profiles []sampler.ICCProfile
	selected string

	updates        chan sampler.Snapshot
	profileUpdates chan string
}

func (f *fakeBackend) Pick(_ context.Context, role sampler.Role) (sampler.Snapshot, error) {
	f.mu.Lock()
	f.pickCalls = append(f.pickCalls, role)
	block := f.pickBlock
	res, err := f.pickResult, f.pickErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	return res, err
}

func (f *fakeBackend) State(_ context.Context) (sampler.Snapshot, error) {
	return f.state, f.stateErr
}

func (f *fakeBackend) ListICCProfiles(_ context.Context) ([]sampler.ICCProfile, error) {
	return f.profiles, nil
}

func (f *fakeBackend) SelectICCProfile(_ context.Context, name string) error {
	f.selected = name
	return nil
}

func (f *fakeBackend) SelectedICCProfile(_ context.Context) (string, error) {
	return f.selected, nil
}

func (f *fakeBackend) Watch(_ context.Context) (<-chan sampler.Snapshot, error) {
	if f.updates == nil {
		return nil, sampler.ErrWatchUnsupported
	}
	return f.updates, nil
}

func (f *fakeBackend) WatchICCProfile(_ context.Context) (<-chan string, error) {
	return f.profileUpdates, nil
}

func newTestController(backend *fakeBackend, opts ...Option) *Controller {
	base := []Option{WithClipboard(func(string) error { return nil })}
	return New(backend, hclog.NewNullLogger(), append(base, opts...)...)
}

func TestUpdateFromBackendStateFresh(t *testing.T) {
	c := newTestController(&fakeBackend{})

	c.UpdateFromBackendState(sampler.Snapshot{
		Foreground: sampler.HexValue("#FFFFFF"),
	})

	ui := c.Snapshot()
	if !ui.HasForeground {
		t.Fatal("HasForeground = false")
	}
	if ui.ForegroundHex != "#FFFFFF" {
		t.Errorf("ForegroundHex = %q, want %q", ui.ForegroundHex, "#FFFFFF")
	}
	if ui.ForegroundTriplet != "255, 255, 255" {
		t.Errorf("ForegroundTriplet = %q, want %q", ui.ForegroundTriplet, "255, 255, 255")
	}
	if ui.ForegroundDark {
		t.Error("ForegroundDark = true for white")
	}
	if ui.HasBackground {
		t.Error("background touched by foreground-only update")
	}
	if !ui.ResultVisible {
		t.Error("ResultVisible = false after first value")
	}
	if ui.RatioDisplay != "" {
		t.Errorf("RatioDisplay = %q before both sides present", ui.RatioDisplay)
	}
}

func TestUpdateFromBackendStateIdempotent(t *testing.T) {
	c := newTestController(&fakeBackend{})
	snap := sampler.Snapshot{
		Foreground:   sampler.HexValue("#FFFFFF"),
		Background:   sampler.HexValue("#000000"),
		ContinueMode: true,
	}

	c.UpdateFromBackendState(snap)
	first := c.Snapshot()
	c.UpdateFromBackendState(snap)
	second := c.Snapshot()

	if first != second {
		t.Errorf("second application changed UI state:\n first=%+v\nsecond=%+v", first, second)
	}
}

func TestUpdateDerivesRatioAndFlags(t *testing.T) {
	c := newTestController(&fakeBackend{})

	c.UpdateFromBackendState(sampler.Snapshot{
		Foreground: sampler.HexValue("#000000"),
		Background: sampler.HexValue("#FFFFFF"),
	})

	ui := c.Snapshot()
	if ui.RatioDisplay != "21.0" {
		t.Errorf("RatioDisplay = %q, want %q", ui.RatioDisplay, "21.0")
	}
	if !ui.Flags.AAARegular || !ui.Flags.AARegular || !ui.Flags.Graphics {
		t.Errorf("Flags = %+v, want all passing", ui.Flags)
	}
	if !ui.ForegroundDark || ui.BackgroundDark {
		t.Errorf("dark flags wrong: fg=%v bg=%v", ui.ForegroundDark, ui.BackgroundDark)
	}
}

func TestPartialPushNeverClears(t *testing.T) {
	c := newTestController(&fakeBackend{})

	c.UpdateFromBackendState(sampler.Snapshot{
		Foreground: sampler.HexValue("#FFFFFF"),
		Background: sampler.HexValue("#000000"),
	})
	c.UpdateFromBackendState(sampler.Snapshot{
		Background: sampler.HexValue("#333333"),
	})

	ui := c.Snapshot()
	if ui.ForegroundHex != "#FFFFFF" {
		t.Errorf("ForegroundHex = %q, want untouched #FFFFFF", ui.ForegroundHex)
	}
	if ui.BackgroundHex != "#333333" {
		t.Errorf("BackgroundHex = %q, want #333333", ui.BackgroundHex)
	}
	if !ui.ResultVisible {
		t.Error("ResultVisible dropped by partial push")
	}
}

func TestPickSuccess(t *testing.T) {
	backend := &fakeBackend{
		pickResult: sampler.Snapshot{Foreground: sampler.HexValue("#FF8000")},
	}
	c := newTestController(backend)

	if err := c.PickColor(context.Background(), sampler.Foreground); err != nil {
		t.Fatalf("PickColor: %v", err)
	}

	ui := c.Snapshot()
	if ui.ForegroundHex != "#FF8000" {
		t.Errorf("ForegroundHex = %q, want %q", ui.ForegroundHex, "#FF8000")
	}
	if ui.Picking() {
		t.Error("busy flag still set after pick completed")
	}
}

func TestPickCancelledIsNoOp(t *testing.T) {
	backend := &fakeBackend{}
	c := newTestController(backend)

	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FFFFFF")})
	before := c.Snapshot()

	// Backend returns a snapshot with no colour for the requested role:
	// the user dismissed the native picker.
	if err := c.PickColor(context.Background(), sampler.Foreground); err != nil {
		t.Fatalf("PickColor: %v", err)
	}

	after := c.Snapshot()
	if after.ForegroundHex != before.ForegroundHex {
		t.Errorf("ForegroundHex changed by cancelled pick: %q -> %q", before.ForegroundHex, after.ForegroundHex)
	}
	if after.ResultVisible != before.ResultVisible {
		t.Error("ResultVisible changed by cancelled pick")
	}
	if after.Picking() {
		t.Error("busy flag not cleared after cancelled pick")
	}
}

func TestPickError(t *testing.T) {
	backend := &fakeBackend{pickErr: errors.New("screen capture denied")}
	c := newTestController(backend)

	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FFFFFF")})

	err := c.PickColor(context.Background(), sampler.Foreground)
	if err == nil {
		t.Fatal("PickColor expected error")
	}

	ui := c.Snapshot()
	if ui.ForegroundHex != "#FFFFFF" {
		t.Errorf("state changed by failed pick: %q", ui.ForegroundHex)
	}
	if ui.Picking() {
		t.Error("busy flag not cleared after failed pick")
	}
}

func TestPickOverlapSameRoleRejected(t *testing.T) {
	block := make(chan struct{})
	backend := &fakeBackend{pickBlock: block}
	c := newTestController(backend)

	done := make(chan error, 1)
	go func() { done <- c.PickColor(context.Background(), sampler.Foreground) }()

	// Wait until the first pick has marked itself busy.
	waitFor(t, func() bool { return c.Snapshot().PickingForeground })

	if err := c.PickColor(context.Background(), sampler.Foreground); !errors.Is(err, ErrPickInFlight) {
		t.Errorf("second pick error = %v, want ErrPickInFlight", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first pick failed: %v", err)
	}
}

func TestPickOtherRoleIndependent(t *testing.T) {
	block := make(chan struct{})
	backend := &fakeBackend{pickBlock: block}
	c := newTestController(backend)

	done := make(chan error, 1)
	go func() { done <- c.PickColor(context.Background(), sampler.Foreground) }()
	waitFor(t, func() bool { return c.Snapshot().PickingForeground })

	// A background pick must not be blocked by the in-flight foreground
	// pick. It will block on the same backend gate, so run it async and
	// check its busy flag comes up alongside.
	done2 := make(chan error, 1)
	go func() { done2 <- c.PickColor(context.Background(), sampler.Background) }()
	waitFor(t, func() bool { return c.Snapshot().PickingBackground })

	ui := c.Snapshot()
	if !ui.PickingForeground || !ui.PickingBackground {
		t.Errorf("busy flags = %+v, want both set", ui)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("foreground pick failed: %v", err)
	}
	if err := <-done2; err != nil {
		t.Fatalf("background pick failed: %v", err)
	}
}

func TestCopyToClipboard(t *testing.T) {
	var copied []string
	c := newTestController(&fakeBackend{},
		WithClipboard(func(s string) error {
			copied = append(copied, s)
			return nil
		}),
		WithCopiedTTL(30*time.Millisecond),
	)

	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FF8000")})

	if err := c.CopyToClipboard(sampler.Foreground); err != nil {
		t.Fatalf("CopyToClipboard: %v", err)
	}
	if len(copied) != 1 || copied[0] != "#FF8000" {
		t.Errorf("copied = %v, want [#FF8000]", copied)
	}
	if !c.Snapshot().CopiedVisible {
		t.Error("CopiedVisible = false immediately after copy")
	}

	waitFor(t, func() bool { return !c.Snapshot().CopiedVisible })
}

func TestCopyToClipboardRestartsWindow(t *testing.T) {
	c := newTestController(&fakeBackend{},
		WithClipboard(func(string) error { return nil }),
		WithCopiedTTL(50*time.Millisecond),
	)
	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FF8000")})

	if err := c.CopyToClipboard(sampler.Foreground); err != nil {
		t.Fatalf("CopyToClipboard: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := c.CopyToClipboard(sampler.Foreground); err != nil {
		t.Fatalf("CopyToClipboard: %v", err)
	}

	// The first window would have expired by now; the second copy
	// superseded it.
	time.Sleep(30 * time.Millisecond)
	if !c.Snapshot().CopiedVisible {
		t.Error("CopiedVisible cleared by the superseded timer")
	}

	waitFor(t, func() bool { return !c.Snapshot().CopiedVisible })
}

func TestCopyToClipboardFailure(t *testing.T) {
	c := newTestController(&fakeBackend{},
		WithClipboard(func(string) error { return errors.New("no display") }),
	)
	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FF8000")})

	if err := c.CopyToClipboard(sampler.Foreground); err == nil {
		t.Fatal("CopyToClipboard expected error")
	}
	if c.Snapshot().CopiedVisible {
		t.Error("CopiedVisible = true after failed copy")
	}
}

func TestCopyToClipboardNoColour(t *testing.T) {
	c := newTestController(&fakeBackend{})
	if err := c.CopyToClipboard(sampler.Background); !errors.Is(err, ErrNoColour) {
		t.Errorf("error = %v, want ErrNoColour", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	c := newTestController(&fakeBackend{})
	ch, cancel := c.Subscribe()
	defer cancel()

	// Initial snapshot is delivered on subscription.
	select {
	case ui := <-ch:
		if ui.HasForeground {
			t.Errorf("initial snapshot = %+v, want empty", ui)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FFFFFF")})

	select {
	case ui := <-ch:
		if ui.ForegroundHex != "#FFFFFF" {
			t.Errorf("ForegroundHex = %q, want #FFFFFF", ui.ForegroundHex)
		}
	case <-time.After(time.Second):
		t.Fatal("no update snapshot")
	}
}

func TestSubscribeCoalesces(t *testing.T) {
	c := newTestController(&fakeBackend{})
	ch, cancel := c.Subscribe()
	defer cancel()

	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#111111")})
	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#222222")})
	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#333333")})

	// A reader that was away sees only the newest state.
	var last UIState
	for {
		select {
		case ui := <-ch:
			last = ui
			continue
		default:
		}
		break
	}
	if last.ForegroundHex != "#333333" {
		t.Errorf("coalesced snapshot = %q, want #333333", last.ForegroundHex)
	}
}

func TestRunSeedsAndWatches(t *testing.T) {
	updates := make(chan sampler.Snapshot)
	backend := &fakeBackend{
		state:    sampler.Snapshot{Foreground: sampler.HexValue("#FFFFFF")},
		selected: "sRGB",
		updates:  updates,
	}
	c := newTestController(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitFor(t, func() bool { return c.Snapshot().ForegroundHex == "#FFFFFF" })
	if got := c.Snapshot().ICCProfile; got != "sRGB" {
		t.Errorf("ICCProfile = %q, want %q", got, "sRGB")
	}

	updates <- sampler.Snapshot{
		Foreground: sampler.HexValue("#FFFFFF"),
		Background: sampler.HexValue("#000000"),
	}
	waitFor(t, func() bool { return c.Snapshot().RatioDisplay == "21.0" })

	close(updates)
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v after channel close", err)
	}
}

func TestRunWithoutWatchSupport(t *testing.T) {
	backend := &fakeBackend{
		state: sampler.Snapshot{Background: sampler.HexValue("#000000")},
	}
	c := newTestController(backend)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := c.Snapshot().BackgroundHex; got != "#000000" {
		t.Errorf("BackgroundHex = %q, want seeded #000000", got)
	}
}

func TestReset(t *testing.T) {
	c := newTestController(&fakeBackend{selected: "sRGB"})
	c.setICCProfile("sRGB")
	c.UpdateFromBackendState(sampler.Snapshot{
		Foreground: sampler.HexValue("#FFFFFF"),
		Background: sampler.HexValue("#000000"),
	})

	c.Reset()

	ui := c.Snapshot()
	if ui.HasForeground || ui.HasBackground || ui.ResultVisible || ui.RatioDisplay != "" {
		t.Errorf("Reset left state behind: %+v", ui)
	}
	if ui.ICCProfile != "sRGB" {
		t.Errorf("ICCProfile = %q, want preserved across reset", ui.ICCProfile)
	}
}

func TestMalformedPushKeepsPrior(t *testing.T) {
	c := newTestController(&fakeBackend{})
	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("#FFFFFF")})
	c.UpdateFromBackendState(sampler.Snapshot{Foreground: sampler.HexValue("not-a-colour")})

	if got := c.Snapshot().ForegroundHex; got != "#FFFFFF" {
		t.Errorf("ForegroundHex = %q, want prior #FFFFFF", got)
	}
}

func TestRunProfilePush(t *testing.T) {
	updates := make(chan sampler.Snapshot)
	profiles := make(chan string)
	backend := &fakeBackend{
		selected:       "Auto",
		updates:        updates,
		profileUpdates: profiles,
	}
	c := newTestController(backend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	waitFor(t, func() bool { return c.Snapshot().ICCProfile == "Auto" })

	// The user switches profiles from system settings; the backend
	// pushes the new name.
	profiles <- "Display P3"
	waitFor(t, func() bool { return c.Snapshot().ICCProfile == "Display P3" })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
}

// waitFor polls a condition with a deadline; controller mutations from
// other goroutines land quickly but not synchronously.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
