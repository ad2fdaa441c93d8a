// Package vetting decides whether a token snapshot is eligible for trading.
// Checks run in a fixed order and the first failure wins; later checks are
// never evaluated, so their vendors are never called and their side effects
// never happen.
package vetting

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/blacklist"
	"solsniper/internal/classify"
	"solsniper/models"
)

// Reason names the check that rejected a token.
type Reason string

const (
	ReasonBlacklisted   Reason = "blacklisted"
	ReasonFilteredOut   Reason = "filtered_out"
	ReasonReputationBad Reason = "reputation_bad"
	ReasonFakeVolume    Reason = "fake_volume"
	ReasonBundledSupply Reason = "bundled_supply"
)

// Verdict is the pipeline's answer for one snapshot. Rejections carry the
// failing check and the address that caused it; acceptances carry whatever
// the reputation checks computed (or their defaults when skipped). Intents
// are the side-effect requests the harness must run regardless of outcome —
// today only the bundled-supply blacklist update produces one.
type Verdict struct {
	Accepted         bool
	Reason           Reason
	OffendingAddress string

	ReputationStatus models.ReputationStatus
	IsFakeVolume     bool

	Intents []models.Intent
}

// Gate is the slice of the reputation gate the pipeline depends on.
type Gate interface {
	Status(ctx context.Context, address string) models.ReputationStatus
	FakeVolume(ctx context.Context, address string) bool
}

// Pipeline runs the vetting checks. It holds no mutable state: the blacklist
// arrives as a frozen view, so vetting the same snapshot against the same
// inputs always yields the same verdict.
type Pipeline struct {
	gate   Gate
	logger zerolog.Logger
}

// NewPipeline builds a pipeline over the given reputation gate.
func NewPipeline(gate Gate) *Pipeline {
	return &Pipeline{
		gate:   gate,
		logger: log.With().Str("component", "vetting").Logger(),
	}
}

// Vet runs the checks in order: blacklist, numeric filters, reputation,
// fake volume, bundled supply.
func (p *Pipeline) Vet(ctx context.Context, snap *models.TokenSnapshot, cfg models.FilterConfig, view blacklist.View) Verdict {
	if offending, listed := classify.BlacklistMatch(snap, view); listed {
		return p.reject(snap, ReasonBlacklisted, offending)
	}

	if !classify.PassesNumericFilters(snap, cfg) {
		return p.reject(snap, ReasonFilteredOut, snap.Address)
	}

	verdict := Verdict{
		Accepted:         true,
		ReputationStatus: models.ReputationUnknown,
	}

	if cfg.RequireReputationGood {
		verdict.ReputationStatus = p.gate.Status(ctx, snap.Address)
		if verdict.ReputationStatus != models.ReputationGood {
			return p.reject(snap, ReasonReputationBad, snap.Address)
		}
	}

	if cfg.SkipFakeVolume {
		verdict.IsFakeVolume = p.gate.FakeVolume(ctx, snap.Address)
		if verdict.IsFakeVolume {
			return p.reject(snap, ReasonFakeVolume, snap.Address)
		}
	}

	if cfg.CheckBundledSupply && classify.IsBundledSupply(snap, cfg.BundledThreshold()) {
		rejected := p.reject(snap, ReasonBundledSupply, snap.Address)
		rejected.Intents = []models.Intent{
			models.UpdateBlacklistIntent{
				TokenAddress: snap.Address,
				DevAddress:   snap.Developer,
				Reason:       string(ReasonBundledSupply),
			},
		}
		return rejected
	}

	p.logger.Debug().
		Str("address", snap.Address).
		Str("reputation", string(verdict.ReputationStatus)).
		Bool("fake_volume", verdict.IsFakeVolume).
		Msg("token accepted")
	return verdict
}

func (p *Pipeline) reject(snap *models.TokenSnapshot, reason Reason, offending string) Verdict {
	p.logger.Debug().
		Str("address", snap.Address).
		Str("reason", string(reason)).
		Str("offending", offending).
		Msg("token rejected")
	return Verdict{
		Reason:           reason,
		OffendingAddress: offending,
		ReputationStatus: models.ReputationUnknown,
	}
}
