// Package market assembles full token snapshots from the per-vendor
// adapters: market state from DexScreener, ownership from the Solana RPC.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/api/dexscreener"
	"solsniper/models"
)

// MarketSource supplies per-token market state.
type MarketSource interface {
	TokenMarket(ctx context.Context, address string) (*dexscreener.Market, error)
}

// ChainSource supplies on-chain ownership data for a mint.
type ChainSource interface {
	LargestHolders(ctx context.Context, mint string) ([]models.Holder, error)
	TokenSupply(ctx context.Context, mint string) (float64, error)
	TokenCreator(ctx context.Context, mint string) (string, error)
}

// Provider implements models.TokenDataProvider on top of the two sources.
type Provider struct {
	market MarketSource
	chain  ChainSource
	logger zerolog.Logger
	now    func() time.Time
}

// NewProvider creates a snapshot provider.
func NewProvider(market MarketSource, chain ChainSource) *Provider {
	return &Provider{
		market: market,
		chain:  chain,
		logger: log.With().Str("component", "market_provider").Logger(),
		now:    time.Now,
	}
}

// TokenSnapshot implements models.TokenDataProvider. Market and holder data
// are mandatory; a missing creator only leaves Developer empty, since new
// mints frequently have no creator metadata yet.
func (p *Provider) TokenSnapshot(ctx context.Context, address string) (*models.TokenSnapshot, error) {
	market, err := p.market.TokenMarket(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetching market data: %w", err)
	}

	holders, err := p.chain.LargestHolders(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetching holders: %w", err)
	}

	supply, err := p.chain.TokenSupply(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("fetching supply: %w", err)
	}

	creator, err := p.chain.TokenCreator(ctx, address)
	if err != nil {
		p.logger.Warn().Err(err).Str("address", address).Msg("Creator lookup failed, leaving developer empty")
		creator = ""
	}

	return &models.TokenSnapshot{
		Address:      address,
		Name:         market.Name,
		Symbol:       market.Symbol,
		PriceUSD:     market.PriceUSD,
		LiquidityUSD: market.LiquidityUSD,
		Volume24h:    market.Volume24h,
		MarketCap:    market.MarketCap,
		Developer:    creator,
		Holders:      holders,
		TotalSupply:  supply,
		ObservedAt:   p.now().UTC(),
	}, nil
}
