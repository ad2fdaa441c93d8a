package models

import (
	"fmt"
	"time"
)

// ReputationStatus is the vendor-reported trust level of a token.
type ReputationStatus string

const (
	ReputationGood    ReputationStatus = "good"
	ReputationBad     ReputationStatus = "bad"
	ReputationUnknown ReputationStatus = "unknown"
)

// TradeAction is the side of an order sent to the trade executor.
type TradeAction string

const (
	ActionNone TradeAction = "none"
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// Holder is one (address, balance) pair from a token's holder list.
// Order matters: holder lists are kept exactly as the data vendor returned them.
type Holder struct {
	Address string  `json:"address"`
	Balance float64 `json:"balance"`
}

// TokenSnapshot is a single immutable observation of a token's market state.
// Snapshots are never mutated after construction; re-vetting the same snapshot
// must always produce the same verdict.
type TokenSnapshot struct {
	Address      string    `json:"address"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	PriceUSD     float64   `json:"price_usd"`
	LiquidityUSD float64   `json:"liquidity_usd"`
	Volume24h    float64   `json:"volume_24h"`
	MarketCap    float64   `json:"market_cap"`
	Developer    string    `json:"developer"` // token creator address, may be empty
	Holders      []Holder  `json:"holders"`
	TotalSupply  float64   `json:"total_supply"`
	ObservedAt   time.Time `json:"observed_at"`
}

// PricePoint is one sample of a token's historical price series.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // unix milliseconds
	Price     float64 `json:"price"`
}

// FilterConfig holds the numeric bounds and boolean switches applied during
// vetting. It is loaded once at startup and treated as immutable.
type FilterConfig struct {
	MinLiquidity float64 `json:"min_liquidity"`
	MaxLiquidity float64 `json:"max_liquidity"`
	MinVolume    float64 `json:"min_volume"`
	MaxVolume    float64 `json:"max_volume"`

	RequireReputationGood bool `json:"require_reputation_good"`
	SkipFakeVolume        bool `json:"skip_fake_volume"`
	CheckBundledSupply    bool `json:"check_bundled_supply"`

	// BundledSupplyThreshold is the top-holder supply share above which a
	// token is considered bundled. Zero means use DefaultBundledSupplyThreshold.
	BundledSupplyThreshold float64 `json:"bundled_supply_threshold"`
}

// DefaultBundledSupplyThreshold rejects tokens whose top holders control more
// than 90% of total supply.
const DefaultBundledSupplyThreshold = 0.90

// BundledThreshold returns the configured threshold or the default.
func (c FilterConfig) BundledThreshold() float64 {
	if c.BundledSupplyThreshold > 0 {
		return c.BundledSupplyThreshold
	}
	return DefaultBundledSupplyThreshold
}

// Validate reports inverted numeric bounds. The classifier fails closed on
// them regardless; validation only exists so startup can warn loudly.
func (c FilterConfig) Validate() error {
	if c.MinLiquidity > c.MaxLiquidity {
		return fmt.Errorf("liquidity bounds inverted: min %.2f > max %.2f", c.MinLiquidity, c.MaxLiquidity)
	}
	if c.MinVolume > c.MaxVolume {
		return fmt.Errorf("volume bounds inverted: min %.2f > max %.2f", c.MinVolume, c.MaxVolume)
	}
	return nil
}

// TradeResult is the trade executor's report for a single order.
type TradeResult struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature,omitempty"` // transaction signature when successful
	Reason    string `json:"reason,omitempty"`    // vendor-supplied failure detail
}

// TokenRecord is the append-only row persisted for every accepted snapshot.
// Duplicate addresses are expected; each row is one observation.
type TokenRecord struct {
	CycleID          string           `json:"cycle_id"`
	Address          string           `json:"address"`
	Name             string           `json:"name"`
	PriceUSD         float64          `json:"price_usd"`
	LiquidityUSD     float64          `json:"liquidity_usd"`
	Volume24h        float64          `json:"volume_24h"`
	MarketCap        float64          `json:"market_cap"`
	IsFakeVolume     bool             `json:"is_fake_volume"`
	ReputationStatus ReputationStatus `json:"reputation_status"`
	AnomalyDetected  bool             `json:"anomaly_detected"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Blacklist entry kinds.
const (
	BlacklistKindToken = "token"
	BlacklistKindDev   = "dev"
)

// BlacklistEntry is one persisted blacklist row. The blacklist only grows;
// entries are never removed by the pipeline.
type BlacklistEntry struct {
	Address   string    `json:"address"`
	Kind      string    `json:"kind"` // BlacklistKindToken or BlacklistKindDev
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
