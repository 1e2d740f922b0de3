// Package remote connects to an out-of-process sampler plugin over the
// go-plugin RPC protocol. This is how native screen pickers are hosted:
// the platform-specific capture code lives in its own binary.
package remote

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
	"github.com/mitchellh/go-ps"

	"github.com/jmylchreest/cca/pkg/sampler"
)

// Backend is a sampler served by an external plugin binary.
type Backend struct {
	path   string
	logger hclog.Logger

	client *plugin.Client
	rpc    *sampler.SamplerRPCClient
}

var _ sampler.Sampler = (*Backend)(nil)
var _ sampler.Watcher = (*Backend)(nil)

// Open prepares a backend for the plugin binary at path. The process is
// spawned lazily on first use. A warning is logged when another instance
// of the same binary is already running: two native pickers grabbing the
// screen at once confuses the user and the capture APIs.
func Open(path string, logger hclog.Logger) *Backend {
	b := &Backend{path: path, logger: logger}

	name := filepath.Base(path)
	if pids, err := findProcessByName(name); err == nil && len(pids) > 0 {
		logger.Warn("sampler binary appears to be running already",
			"binary", name, "pids", pids)
	}

	return b
}

// findProcessByName finds all processes with the given executable name.
func findProcessByName(name string) ([]int, error) {
	processes, err := ps.Processes()
	if err != nil {
		return nil, fmt.Errorf("failed to get process list: %w", err)
	}

	var pids []int
	for _, p := range processes {
		if p.Executable() == name {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}

// connect spawns the plugin process and dispenses the sampler client.
func (b *Backend) connect() (*sampler.SamplerRPCClient, error) {
	if b.rpc != nil {
		return b.rpc, nil
	}

	b.client = plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: sampler.Handshake,
		Plugins: map[string]plugin.Plugin{
			sampler.PluginName: &sampler.SamplerPlugin{},
		},
		Cmd:              exec.Command(b.path),
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           b.logger,
	})

	rpcClient, err := b.client.Client()
	if err != nil {
		b.client.Kill()
		b.client = nil
		return nil, fmt.Errorf("failed to get RPC client: %w", err)
	}

	raw, err := rpcClient.Dispense(sampler.PluginName)
	if err != nil {
		b.client.Kill()
		b.client = nil
		return nil, fmt.Errorf("failed to dispense sampler plugin: %w", err)
	}

	b.rpc = raw.(*sampler.SamplerRPCClient)
	return b.rpc, nil
}

// Close kills the plugin process.
func (b *Backend) Close() {
	if b.client != nil {
		b.client.Kill()
		b.client = nil
		b.rpc = nil
	}
}

// Pick forwards one sampling operation to the plugin.
func (b *Backend) Pick(ctx context.Context, role sampler.Role) (sampler.Snapshot, error) {
	c, err := b.connect()
	if err != nil {
		return sampler.Snapshot{}, err
	}
	return c.Pick(ctx, role)
}

// State forwards the startup state fetch to the plugin.
func (b *Backend) State(ctx context.Context) (sampler.Snapshot, error) {
	c, err := b.connect()
	if err != nil {
		return sampler.Snapshot{}, err
	}
	return c.State(ctx)
}

// Watch forwards the push channel from the plugin.
func (b *Backend) Watch(ctx context.Context) (<-chan sampler.Snapshot, error) {
	c, err := b.connect()
	if err != nil {
		return nil, err
	}
	return c.Watch(ctx)
}

// ListICCProfiles forwards profile discovery to the plugin.
func (b *Backend) ListICCProfiles(ctx context.Context) ([]sampler.ICCProfile, error) {
	c, err := b.connect()
	if err != nil {
		return nil, err
	}
	return c.ListICCProfiles(ctx)
}

// SelectICCProfile forwards a profile switch to the plugin.
func (b *Backend) SelectICCProfile(ctx context.Context, name string) error {
	c, err := b.connect()
	if err != nil {
		return err
	}
	return c.SelectICCProfile(ctx, name)
}

// SelectedICCProfile forwards the active profile query to the plugin.
func (b *Backend) SelectedICCProfile(ctx context.Context) (string, error) {
	c, err := b.connect()
	if err != nil {
		return "", err
	}
	return c.SelectedICCProfile(ctx)
}
