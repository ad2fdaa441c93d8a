// Package classify holds the pure predicates the vetting pipeline is built
// from. None of them touch the network or mutate their inputs, so every
// check is trivially repeatable.
package classify

import (
	"solsniper/internal/blacklist"
	"solsniper/models"
)

// topHolderCount is how many of the leading holders are summed for the
// bundled-supply check.
const topHolderCount = 5

// BlacklistMatch returns the listed address and true when the token mint or
// its developer wallet is on the blacklist view. The mint wins when both are
// listed.
func BlacklistMatch(snap *models.TokenSnapshot, view blacklist.View) (string, bool) {
	if view.HasToken(snap.Address) {
		return snap.Address, true
	}
	if snap.Developer != "" && view.HasDev(snap.Developer) {
		return snap.Developer, true
	}
	return "", false
}

// IsBlacklisted reports whether the token mint or its developer wallet is on
// the blacklist view.
func IsBlacklisted(snap *models.TokenSnapshot, view blacklist.View) bool {
	_, listed := BlacklistMatch(snap, view)
	return listed
}

// PassesNumericFilters reports whether liquidity and 24h volume fall inside
// the configured inclusive bounds. Inverted bounds describe an empty range,
// so they reject every snapshot.
func PassesNumericFilters(snap *models.TokenSnapshot, cfg models.FilterConfig) bool {
	if snap.LiquidityUSD < cfg.MinLiquidity || snap.LiquidityUSD > cfg.MaxLiquidity {
		return false
	}
	if snap.Volume24h < cfg.MinVolume || snap.Volume24h > cfg.MaxVolume {
		return false
	}
	return true
}

// IsBundledSupply reports whether the first topHolderCount holders, in the
// order the data vendor listed them, control strictly more than threshold of
// total supply. Unknown supply or an empty holder list means no finding.
func IsBundledSupply(snap *models.TokenSnapshot, threshold float64) bool {
	if snap.TotalSupply <= 0 || len(snap.Holders) == 0 {
		return false
	}

	n := topHolderCount
	if len(snap.Holders) < n {
		n = len(snap.Holders)
	}

	var top float64
	for _, h := range snap.Holders[:n] {
		top += h.Balance
	}

	return top/snap.TotalSupply > threshold
}
