package classify

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"solsniper/models"
)

func TestNumericFilterProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: inverted liquidity bounds form an empty range, so no snapshot
	// may ever pass, whatever its values.
	properties.Property("inverted liquidity bounds reject everything", prop.ForAll(
		func(liquidity, volume, min, gap float64) bool {
			cfg := models.FilterConfig{
				MinLiquidity: min,
				MaxLiquidity: min - gap, // strictly below min
				MinVolume:    0,
				MaxVolume:    1e18,
			}
			snap := models.TokenSnapshot{LiquidityUSD: liquidity, Volume24h: volume}
			return !PassesNumericFilters(&snap, cfg)
		},
		gen.Float64Range(0, 1e12),
		gen.Float64Range(0, 1e12),
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0.001, 1e9),
	))

	properties.Property("inverted volume bounds reject everything", prop.ForAll(
		func(liquidity, volume, min, gap float64) bool {
			cfg := models.FilterConfig{
				MinLiquidity: 0,
				MaxLiquidity: 1e18,
				MinVolume:    min,
				MaxVolume:    min - gap,
			}
			snap := models.TokenSnapshot{LiquidityUSD: liquidity, Volume24h: volume}
			return !PassesNumericFilters(&snap, cfg)
		},
		gen.Float64Range(0, 1e12),
		gen.Float64Range(0, 1e12),
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0.001, 1e9),
	))

	// Property: values inside well-formed bounds always pass.
	properties.Property("values inside both ranges pass", prop.ForAll(
		func(liquidity, volume, slack float64) bool {
			cfg := models.FilterConfig{
				MinLiquidity: liquidity - slack,
				MaxLiquidity: liquidity + slack,
				MinVolume:    volume - slack,
				MaxVolume:    volume + slack,
			}
			snap := models.TokenSnapshot{LiquidityUSD: liquidity, Volume24h: volume}
			return PassesNumericFilters(&snap, cfg)
		},
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0, 1e6),
	))

	properties.TestingRun(t)
}
