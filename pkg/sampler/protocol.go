package sampler

import (
	"github.com/hashicorp/go-plugin"
)

// ProtocolVersion is the sampler plugin protocol version. Bump on any
// incompatible change to the RPC surface.
const ProtocolVersion = 1

// Handshake is the handshake configuration for the go-plugin protocol.
// It ensures sampler plugins only connect to compatible hosts.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  ProtocolVersion,
	MagicCookieKey:   "CCA_PLUGIN",
	MagicCookieValue: "cca_colour_sampler",
}

// PluginName is the key under which the sampler plugin is registered.
const PluginName = "sampler"

// Serve runs a sampler implementation as a go-plugin server. Plugin
// binaries call this from main and never return.
func Serve(impl Sampler) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			PluginName: &SamplerPlugin{Impl: impl},
		},
	})
}
