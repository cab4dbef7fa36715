// Package domain defines the core value types of the treasury agent:
// chains, accounts, pool candidates, transfer requests and the bridge
// transfer state machine.
package domain

import "sort"

// Chain identifies a supported blockchain network.
type Chain string

// Supported chains.
const (
	ChainEthereum Chain = "Ethereum"
	ChainArbitrum Chain = "Arbitrum"
	ChainOptimism Chain = "Optimism"
	ChainPolygon  Chain = "Polygon"
	ChainFantom   Chain = "Fantom"
)

// ChainInfo holds per-chain metadata.
type ChainInfo struct {
	Name    Chain
	ChainID uint64
	Active  bool
}

// Registry maps chain identifiers to their metadata. It is immutable after
// construction; both endpoints of a transfer must be registered and active.
type Registry struct {
	chains map[Chain]ChainInfo
}

// NewRegistry creates a registry from the given chain metadata.
func NewRegistry(infos ...ChainInfo) *Registry {
	chains := make(map[Chain]ChainInfo, len(infos))
	for _, info := range infos {
		chains[info.Name] = info
	}
	return &Registry{chains: chains}
}

// DefaultRegistry returns the registry of the five chains the agent bridges
// between by default.
func DefaultRegistry() *Registry {
	return NewRegistry(
		ChainInfo{Name: ChainEthereum, ChainID: 1, Active: true},
		ChainInfo{Name: ChainArbitrum, ChainID: 42161, Active: true},
		ChainInfo{Name: ChainOptimism, ChainID: 10, Active: true},
		ChainInfo{Name: ChainPolygon, ChainID: 137, Active: true},
		ChainInfo{Name: ChainFantom, ChainID: 250, Active: true},
	)
}

// Supported reports whether the chain is registered and active.
func (r *Registry) Supported(chain Chain) bool {
	info, ok := r.chains[chain]
	return ok && info.Active
}

// Info retrieves metadata for a chain.
func (r *Registry) Info(chain Chain) (ChainInfo, bool) {
	info, ok := r.chains[chain]
	return info, ok
}

// List returns all registered chain names in lexical order.
func (r *Registry) List() []Chain {
	chains := make([]Chain, 0, len(r.chains))
	for name := range r.chains {
		chains = append(chains, name)
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i] < chains[j] })
	return chains
}
