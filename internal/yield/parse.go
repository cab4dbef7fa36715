package yield

import (
	"strconv"

	"treasury-agent/internal/domain"
)

// parsePools maps the loose upstream listing onto pool candidates. Entries
// without a usable name are skipped; every other field degrades to a default
// rather than failing the whole listing.
func parsePools(raw []map[string]any) []domain.PoolCandidate {
	pools := make([]domain.PoolCandidate, 0, len(raw))
	for _, entry := range raw {
		name, ok := parseName(entry)
		if !ok {
			continue
		}
		pools = append(pools, domain.PoolCandidate{
			Protocol: name,
			Chain:    parseChain(entry),
			APY:      parseAPY(entry),
			TVL:      parseTVL(entry),
		})
	}
	return pools
}

// parseName prefers "name" and falls back to "slug". Entries carrying
// neither are unusable.
func parseName(entry map[string]any) (string, bool) {
	if name, ok := entry["name"].(string); ok && name != "" {
		return name, true
	}
	if slug, ok := entry["slug"].(string); ok && slug != "" {
		return slug, true
	}
	return "", false
}

// parseTVL reads "tvl" with "totalLiquidityUSD" as the legacy fallback.
func parseTVL(entry map[string]any) float64 {
	if tvl, ok := toFloat(entry["tvl"]); ok {
		return tvl
	}
	if tvl, ok := toFloat(entry["totalLiquidityUSD"]); ok {
		return tvl
	}
	return 0
}

// parseChain reads "chain", then the first element of "chains", then gives
// up with "Unknown".
func parseChain(entry map[string]any) string {
	if chain, ok := entry["chain"].(string); ok && chain != "" {
		return chain
	}
	if chains, ok := entry["chains"].([]any); ok && len(chains) > 0 {
		if chain, ok := chains[0].(string); ok && chain != "" {
			return chain
		}
	}
	return "Unknown"
}

// parseAPY handles the four shapes the listing uses: a plain number, a
// numeric string, an object with "total" or "base", and the sibling
// "apyBase" field. Absent or unreadable values stay nil so callers can tell
// missing from zero.
func parseAPY(entry map[string]any) *float64 {
	switch v := entry["apy"].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	case map[string]any:
		if f, ok := toFloat(v["total"]); ok {
			return &f
		}
		if f, ok := toFloat(v["base"]); ok {
			return &f
		}
	}
	if f, ok := toFloat(entry["apyBase"]); ok {
		return &f
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
