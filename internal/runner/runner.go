package runner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/api/dexscreener"
	"solsniper/internal/blacklist"
	"solsniper/internal/decision"
	"solsniper/internal/observability"
	"solsniper/internal/solana"
	"solsniper/models"
)

// DiscoverySource lists fresh candidate tokens across chains.
type DiscoverySource interface {
	LatestProfiles(ctx context.Context) ([]dexscreener.TokenProfile, error)
}

// Runner owns the scan loop. Each tick it pulls the discovery feed, picks
// unseen Solana mints and runs one evaluation cycle per mint. One bad token
// never stops a tick and one bad tick never stops the loop.
type Runner struct {
	discovery DiscoverySource
	provider  models.TokenDataProvider
	prices    models.PriceHistoryProvider
	cycle     *decision.Cycle
	executor  *Executor
	blacklist *blacklist.Blacklist
	filter    models.FilterConfig

	interval      time.Duration
	maxTokens     int
	historyPoints int

	paused atomic.Bool

	mu   sync.Mutex
	seen map[string]struct{}

	logger zerolog.Logger
}

// RunnerOptions holds the loop's dependencies and tuning.
type RunnerOptions struct {
	Discovery DiscoverySource
	Provider  models.TokenDataProvider
	Prices    models.PriceHistoryProvider
	Cycle     *decision.Cycle
	Executor  *Executor
	Blacklist *blacklist.Blacklist
	Filter    models.FilterConfig

	ScanInterval  time.Duration
	MaxTokens     int // evaluation attempts per tick
	HistoryPoints int // price points fed to the anomaly detector
}

// NewRunner creates a scan loop runner.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.ScanInterval <= 0 {
		opts.ScanInterval = 45 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 10
	}
	if opts.HistoryPoints <= 0 {
		opts.HistoryPoints = 60
	}

	return &Runner{
		discovery:     opts.Discovery,
		provider:      opts.Provider,
		prices:        opts.Prices,
		cycle:         opts.Cycle,
		executor:      opts.Executor,
		blacklist:     opts.Blacklist,
		filter:        opts.Filter,
		interval:      opts.ScanInterval,
		maxTokens:     opts.MaxTokens,
		historyPoints: opts.HistoryPoints,
		seen:          make(map[string]struct{}),
		logger:        log.With().Str("component", "runner").Logger(),
	}
}

// Run scans immediately and then on every tick until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info().Dur("interval", r.interval).Msg("scan loop started")
	r.ScanOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("scan loop stopped")
			return
		case <-ticker.C:
			if r.Paused() {
				r.logger.Debug().Msg("scanning paused, skipping tick")
				continue
			}
			r.ScanOnce(ctx)
		}
	}
}

// Pause suspends scan ticks until Resume. In-flight evaluations finish.
func (r *Runner) Pause() { r.paused.Store(true) }

// Resume re-enables scan ticks.
func (r *Runner) Resume() { r.paused.Store(false) }

// Paused reports whether the loop is skipping ticks.
func (r *Runner) Paused() bool { return r.paused.Load() }

// ScanOnce runs a single discovery pass: filter the feed down to unseen
// Solana mints and evaluate up to maxTokens of them.
func (r *Runner) ScanOnce(ctx context.Context) {
	profiles, err := r.discovery.LatestProfiles(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("discovery failed")
		return
	}

	attempts := 0
	for _, profile := range profiles {
		if ctx.Err() != nil {
			return
		}
		if attempts >= r.maxTokens {
			break
		}
		if profile.ChainID != "solana" {
			continue
		}
		address := profile.TokenAddress
		if !solana.IsValidAddress(address) {
			r.logger.Debug().Str("address", address).Msg("skipping malformed address")
			continue
		}
		if r.alreadySeen(address) {
			continue
		}

		attempts++
		if r.processToken(ctx, address) {
			r.markSeen(address)
		}
	}

	tokens, devs := r.blacklist.Size()
	observability.UpdateBlacklistSize(tokens, devs)
	observability.RecordScanCycle()

	r.logger.Info().
		Int("candidates", len(profiles)).
		Int("evaluated", attempts).
		Msg("scan tick complete")
}

// processToken runs one full evaluation cycle for a mint. It reports whether
// the token was actually vetted; tokens the vendors don't know yet are left
// unmarked so a later tick retries them. A panic inside one evaluation is
// contained here.
func (r *Runner) processToken(ctx context.Context, address string) (vetted bool) {
	cycleID := uuid.New().String()
	logger := r.logger.With().Str("cycle_id", cycleID).Str("address", address).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().Interface("panic", rec).Msg("evaluation panicked")
			vetted = false
		}
	}()

	start := time.Now()
	snap, err := r.provider.TokenSnapshot(ctx, address)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			logger.Debug().Msg("token not indexed yet")
			return false
		}
		logger.Error().Err(err).Msg("snapshot failed")
		return false
	}

	prices, err := r.prices.PriceHistory(ctx, address, r.historyPoints)
	if err != nil {
		logger.Warn().Err(err).Msg("price history unavailable, anomaly check will see no data")
		prices = nil
	}

	verdict, dec := r.cycle.Evaluate(ctx, cycleID, snap, prices, r.filter, r.blacklist.Snapshot())

	outcome := "accepted"
	if !verdict.Accepted {
		outcome = "rejected"
		observability.RecordRejection(string(verdict.Reason))
	}
	observability.RecordEvaluation(outcome, time.Since(start).Seconds())
	if dec.Action == models.ActionBuy {
		observability.RecordAnomaly()
	}

	logger.Info().
		Str("outcome", outcome).
		Str("reason", string(verdict.Reason)).
		Str("action", string(dec.Action)).
		Msg("evaluation complete")

	r.executor.Execute(ctx, snap, dec)
	return true
}

// alreadySeen reports whether the mint was vetted in a previous tick.
func (r *Runner) alreadySeen(address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[address]
	return ok
}

func (r *Runner) markSeen(address string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[address] = struct{}{}
}
