package domain

import "math"

// PoolCandidate is one yield pool observed in a data-source snapshot.
// Candidate lists are fetched fresh every cycle and discarded once the best
// pool has been selected.
type PoolCandidate struct {
	Protocol string
	// Chain is the feed's chain label, free-form. "Unknown" when the feed
	// does not report one.
	Chain string
	// APY is the annualized yield in percent. Nil when the feed does not
	// report one; treated as zero, not as invalid.
	APY *float64
	// TVL is the total value locked in USD.
	TVL float64
}

// APYOrZero returns the annualized yield, defaulting a missing value to 0.
func (p PoolCandidate) APYOrZero() float64 {
	if p.APY == nil {
		return 0
	}
	return *p.APY
}

// Valid reports whether the candidate is eligible for selection:
// non-negative TVL and non-negative (or missing) APY.
func (p PoolCandidate) Valid() bool {
	return p.TVL >= 0 && p.APYOrZero() >= 0
}

// Score ranks the candidate as APY weighted by the order of magnitude of its
// TVL. The logarithm dampens raw pool size so a 10x larger pool does not
// automatically beat a higher-yield smaller one. A pool with zero TVL scores
// 0: it stays eligible but never outranks a pool with a positive score.
func (p PoolCandidate) Score() float64 {
	if p.TVL <= 0 {
		return 0
	}
	return p.APYOrZero() * math.Log10(p.TVL)
}
