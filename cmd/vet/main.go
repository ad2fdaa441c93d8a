package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/anomaly"
	"solsniper/internal/api/birdeye"
	"solsniper/internal/api/dexscreener"
	"solsniper/internal/api/helius"
	"solsniper/internal/api/pocketuniverse"
	"solsniper/internal/api/rugcheck"
	"solsniper/internal/blacklist"
	"solsniper/internal/config"
	"solsniper/internal/decision"
	"solsniper/internal/market"
	"solsniper/internal/reputation"
	"solsniper/internal/solana"
	"solsniper/internal/vetting"
	"solsniper/models"
)

// report is the JSON document printed for a vetted mint.
type report struct {
	Address       string                  `json:"address"`
	Name          string                  `json:"name"`
	Symbol        string                  `json:"symbol"`
	PriceUSD      float64                 `json:"price_usd"`
	LiquidityUSD  float64                 `json:"liquidity_usd"`
	Volume24h     float64                 `json:"volume_24h"`
	MarketCap     float64                 `json:"market_cap"`
	Accepted      bool                    `json:"accepted"`
	Reason        string                  `json:"reason,omitempty"`
	Reputation    models.ReputationStatus `json:"reputation"`
	FakeVolume    bool                    `json:"fake_volume"`
	Action        models.TradeAction      `json:"action"`
	FlaggedPoints int                     `json:"flagged_points"`
	PricePoints   int                     `json:"price_points"`
}

// vet evaluates a single mint against the configured filter and prints the
// verdict as JSON. No order is placed and nothing is persisted. Exit code is
// 0 for accepted, 1 for rejected, 2 for errors.
func main() {
	timeout := flag.Duration("timeout", 2*time.Minute, "overall deadline for vendor calls")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: vet [flags] <mint>")
		os.Exit(2)
	}
	address := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()

	if !solana.IsValidAddress(address) {
		log.Error().Str("address", address).Msg("Not a valid Solana address")
		os.Exit(2)
	}

	filter := cfg.Filter()
	if err := filter.Validate(); err != nil {
		log.Warn().Err(err).Msg("Filter bounds inverted, every candidate will be rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	requestTimeout := time.Duration(cfg.RequestTimeout) * time.Second

	dex := dexscreener.NewClient(dexscreener.ClientOptions{
		RequestTimeout: requestTimeout,
		RequestsPerSec: cfg.RateLimitPerSec,
	})
	chain := helius.NewClient(helius.ClientOptions{
		APIKey:         cfg.HeliusAPIKey,
		BaseURL:        cfg.HeliusRPCURL,
		RequestTimeout: requestTimeout,
		RequestsPerSec: cfg.RateLimitPerSec,
	})
	rug := rugcheck.NewClient(rugcheck.ClientOptions{
		RequestTimeout: requestTimeout,
		RequestsPerSec: cfg.RateLimitPerSec,
	})
	pocket := pocketuniverse.NewClient(pocketuniverse.ClientOptions{
		APIKey:         cfg.PocketUniverseAPIKey,
		RequestTimeout: requestTimeout,
		RequestsPerSec: cfg.RateLimitPerSec,
	})
	bird := birdeye.NewClient(birdeye.ClientOptions{
		APIKey:         cfg.BirdeyeAPIKey,
		RequestTimeout: requestTimeout,
		RequestsPerSec: cfg.RateLimitPerSec,
	})

	provider := market.NewProvider(dex, chain)
	gate := reputation.NewGate(rug, pocket)
	cycle := decision.NewCycle(vetting.NewPipeline(gate), anomaly.New(cfg.AnomalyContamination), decision.NewEngine())
	list := blacklist.New(cfg.BlacklistTokens, cfg.BlacklistDevs)

	snap, err := provider.TokenSnapshot(ctx, address)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			log.Error().Str("address", address).Msg("Token not indexed yet")
		} else {
			log.Error().Err(err).Msg("Fetching token snapshot failed")
		}
		os.Exit(2)
	}

	prices, err := bird.PriceHistory(ctx, address, cfg.PriceHistoryPoints)
	if err != nil {
		log.Warn().Err(err).Msg("Price history unavailable, anomaly check skipped")
		prices = nil
	}

	verdict, dec := cycle.Evaluate(ctx, uuid.New().String(), snap, prices, filter, list.Snapshot())

	flagged := 0
	if verdict.Accepted && dec.Action == models.ActionBuy {
		flagged = anomaly.New(cfg.AnomalyContamination).Detect(prices).Count()
	}

	out, err := json.MarshalIndent(report{
		Address:       snap.Address,
		Name:          snap.Name,
		Symbol:        snap.Symbol,
		PriceUSD:      snap.PriceUSD,
		LiquidityUSD:  snap.LiquidityUSD,
		Volume24h:     snap.Volume24h,
		MarketCap:     snap.MarketCap,
		Accepted:      verdict.Accepted,
		Reason:        string(verdict.Reason),
		Reputation:    verdict.ReputationStatus,
		FakeVolume:    verdict.IsFakeVolume,
		Action:        dec.Action,
		FlaggedPoints: flagged,
		PricePoints:   len(prices),
	}, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Encoding report failed")
	}
	fmt.Println(string(out))

	if !verdict.Accepted {
		os.Exit(1)
	}
}
