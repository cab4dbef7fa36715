package yield

import (
	"context"

	"treasury-agent/internal/domain"
)

// FixtureSource serves a fixed pool set. It backs tests and the offline
// mode of the scanning CLI.
type FixtureSource struct {
	Pools []domain.PoolCandidate
	Err   error
}

// NewFixtureSource returns a source serving the given pools verbatim.
func NewFixtureSource(pools []domain.PoolCandidate) *FixtureSource {
	return &FixtureSource{Pools: pools}
}

// DefaultFixture returns the canonical two-pool data set used when the
// agent runs without network access.
func DefaultFixture() *FixtureSource {
	aave := 5.2
	compound := 4.8
	return NewFixtureSource([]domain.PoolCandidate{
		{Protocol: "Aave", Chain: "Ethereum", APY: &aave, TVL: 1_000_000},
		{Protocol: "Compound", Chain: "Ethereum", APY: &compound, TVL: 800_000},
	})
}

// FetchPools returns the fixture set, or the configured error.
func (s *FixtureSource) FetchPools(_ context.Context) ([]domain.PoolCandidate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.PoolCandidate, len(s.Pools))
	copy(out, s.Pools)
	return out, nil
}

var _ Source = (*FixtureSource)(nil)
