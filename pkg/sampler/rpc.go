package sampler

import (
	"context"
	"errors"
	"fmt"
	"net/rpc"
	"sync"

	"github.com/hashicorp/go-plugin"
)

// ErrWatchUnsupported is returned when a backend has no push channel.
var ErrWatchUnsupported = errors.New("sampler does not support watch")

// SamplerPlugin implements the go-plugin Plugin interface for samplers.
type SamplerPlugin struct {
	plugin.Plugin
	Impl Sampler
}

// Server returns an RPC server for this plugin.
func (p *SamplerPlugin) Server(*plugin.MuxBroker) (any, error) {
	return NewSamplerRPCServer(p.Impl), nil
}

// Client returns an RPC client for this plugin.
func (p *SamplerPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &SamplerRPCClient{client: c}, nil
}

// Update is a sequence-numbered state push. The push channel crosses
// net/rpc as a long poll: clients call NextUpdate with the last sequence
// number they saw and block until a newer snapshot exists.
type Update struct {
	Seq      uint64   `json:"seq"`
	Snapshot Snapshot `json:"snapshot"`
}

// SamplerRPCServer is the RPC server implementation for samplers.
type SamplerRPCServer struct {
	Impl Sampler

	mu      sync.Mutex
	cond    *sync.Cond
	latest  Update
	watchOn sync.Once
	stopped bool
}

// NewSamplerRPCServer wraps a sampler implementation for net/rpc.
func NewSamplerRPCServer(impl Sampler) *SamplerRPCServer {
	s := &SamplerRPCServer{Impl: impl}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Pick implements the RPC method for a single sampling operation.
func (s *SamplerRPCServer) Pick(role Role, resp *Snapshot) error {
	snap, err := s.Impl.Pick(context.Background(), role)
	if err != nil {
		return err
	}
	*resp = snap
	return nil
}

// State implements the RPC method for the startup state fetch.
func (s *SamplerRPCServer) State(_ any, resp *Snapshot) error {
	snap, err := s.Impl.State(context.Background())
	if err != nil {
		return err
	}
	*resp = snap
	return nil
}

// ListICCProfiles implements the RPC method for profile discovery.
func (s *SamplerRPCServer) ListICCProfiles(_ any, resp *[]ICCProfile) error {
	profiles, err := s.Impl.ListICCProfiles(context.Background())
	if err != nil {
		return err
	}
	*resp = profiles
	return nil
}

// SelectICCProfile implements the RPC method for switching profiles.
func (s *SamplerRPCServer) SelectICCProfile(name string, _ *struct{}) error {
	return s.Impl.SelectICCProfile(context.Background(), name)
}

// SelectedICCProfile implements the RPC method for the active profile name.
func (s *SamplerRPCServer) SelectedICCProfile(_ any, resp *string) error {
	name, err := s.Impl.SelectedICCProfile(context.Background())
	if err != nil {
		return err
	}
	*resp = name
	return nil
}

// Watchable implements the RPC method reporting push-channel support.
func (s *SamplerRPCServer) Watchable(_ any, resp *bool) error {
	_, ok := s.Impl.(Watcher)
	*resp = ok
	return nil
}

// NextUpdate implements the long-poll half of the push channel. It blocks
// until an update with a sequence number greater than since exists, or the
// underlying watch ends.
func (s *SamplerRPCServer) NextUpdate(since uint64, resp *Update) error {
	w, ok := s.Impl.(Watcher)
	if !ok {
		return ErrWatchUnsupported
	}

	s.ensureWatching(w)

	s.mu.Lock()
	defer s.mu.Unlock()
	for s.latest.Seq <= since && !s.stopped {
		s.cond.Wait()
	}
	if s.latest.Seq <= since {
		return fmt.Errorf("watch ended")
	}
	*resp = s.latest
	return nil
}

// ensureWatching starts consuming the implementation's watch channel once.
// Intermediate snapshots may be skipped; NextUpdate serves the latest.
func (s *SamplerRPCServer) ensureWatching(w Watcher) {
	s.watchOn.Do(func() {
		ch, err := w.Watch(context.Background())
		if err != nil {
			s.mu.Lock()
			s.stopped = true
			s.cond.Broadcast()
			s.mu.Unlock()
			return
		}
		go func() {
			for snap := range ch {
				s.mu.Lock()
				s.latest = Update{Seq: s.latest.Seq + 1, Snapshot: snap}
				s.cond.Broadcast()
				s.mu.Unlock()
			}
			s.mu.Lock()
			s.stopped = true
			s.cond.Broadcast()
			s.mu.Unlock()
		}()
	})
}

// SamplerRPCClient is the RPC client implementation for samplers.
type SamplerRPCClient struct {
	client *rpc.Client
}

var _ Sampler = (*SamplerRPCClient)(nil)
var _ Watcher = (*SamplerRPCClient)(nil)

// Pick calls the remote Pick method.
func (c *SamplerRPCClient) Pick(_ context.Context, role Role) (Snapshot, error) {
	var snap Snapshot
	if err := c.client.Call("Plugin.Pick", role, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// State calls the remote State method.
func (c *SamplerRPCClient) State(_ context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := c.client.Call("Plugin.State", new(any), &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// ListICCProfiles calls the remote ListICCProfiles method.
func (c *SamplerRPCClient) ListICCProfiles(_ context.Context) ([]ICCProfile, error) {
	var profiles []ICCProfile
	if err := c.client.Call("Plugin.ListICCProfiles", new(any), &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// SelectICCProfile calls the remote SelectICCProfile method.
func (c *SamplerRPCClient) SelectICCProfile(_ context.Context, name string) error {
	return c.client.Call("Plugin.SelectICCProfile", name, &struct{}{})
}

// SelectedICCProfile calls the remote SelectedICCProfile method.
func (c *SamplerRPCClient) SelectedICCProfile(_ context.Context) (string, error) {
	var name string
	if err := c.client.Call("Plugin.SelectedICCProfile", new(any), &name); err != nil {
		return "", err
	}
	return name, nil
}

// Watch bridges the remote long-poll back into a push channel. The
// returned channel closes when ctx is cancelled or the remote watch ends.
func (c *SamplerRPCClient) Watch(ctx context.Context) (<-chan Snapshot, error) {
	var watchable bool
	if err := c.client.Call("Plugin.Watchable", new(any), &watchable); err != nil {
		return nil, err
	}
	if !watchable {
		return nil, ErrWatchUnsupported
	}

	ch := make(chan Snapshot)
	go func() {
		defer close(ch)
		var since uint64
		for {
			var upd Update
			if err := c.client.Call("Plugin.NextUpdate", since, &upd); err != nil {
				return
			}
			since = upd.Seq
			select {
			case ch <- upd.Snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
