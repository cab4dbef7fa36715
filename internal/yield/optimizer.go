package yield

import (
	"context"

	"github.com/sirupsen/logrus"

	"treasury-agent/internal/domain"
)

// Optimizer fetches candidates from its source and selects the highest
// scoring valid pool.
type Optimizer struct {
	source Source
	log    *logrus.Entry
}

// NewOptimizer creates an optimizer over the given source.
func NewOptimizer(source Source, log *logrus.Logger) *Optimizer {
	return &Optimizer{
		source: source,
		log:    log.WithField("component", "yield"),
	}
}

// BestPool fetches, filters, and ranks pools. It fails with NoPoolsError on
// an empty listing and NoValidPoolsError when filtering removes everything.
func (o *Optimizer) BestPool(ctx context.Context) (domain.PoolCandidate, error) {
	pools, err := o.source.FetchPools(ctx)
	if err != nil {
		return domain.PoolCandidate{}, err
	}
	if len(pools) == 0 {
		return domain.PoolCandidate{}, &domain.NoPoolsError{}
	}

	valid := filterValid(pools)
	if len(valid) == 0 {
		return domain.PoolCandidate{}, &domain.NoValidPoolsError{Total: len(pools)}
	}

	best := selectBest(valid)
	o.log.WithFields(logrus.Fields{
		"protocol": best.Protocol,
		"chain":    best.Chain,
		"apy":      best.APYOrZero(),
		"tvl":      best.TVL,
		"score":    best.Score(),
		"scanned":  len(pools),
		"valid":    len(valid),
	}).Info("selected best pool")
	return best, nil
}

// filterValid drops pools with negative TVL or negative APY. Filtering is
// idempotent: valid pools pass unchanged.
func filterValid(pools []domain.PoolCandidate) []domain.PoolCandidate {
	valid := make([]domain.PoolCandidate, 0, len(pools))
	for _, p := range pools {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	return valid
}

// selectBest returns the highest scoring pool. The strict comparison keeps
// the earliest pool on ties, and NaN scores never displace the incumbent.
func selectBest(pools []domain.PoolCandidate) domain.PoolCandidate {
	best := pools[0]
	bestScore := best.Score()
	for _, p := range pools[1:] {
		if score := p.Score(); score > bestScore {
			best = p
			bestScore = score
		}
	}
	return best
}
