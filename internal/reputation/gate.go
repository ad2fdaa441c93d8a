// Package reputation answers the two vendor questions the vetting pipeline
// asks about a token: how trusted it is and whether its volume is synthetic.
package reputation

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/models"
)

// Gate wraps the reputation and fake-volume vendors and maps every failure
// to the safe default: Unknown status and genuine volume. A vendor outage
// must never decide a token's fate by itself; the config switches downstream
// decide what Unknown means.
type Gate struct {
	reputation models.ReputationClient
	fakeVolume models.FakeVolumeClient
	logger     zerolog.Logger
}

// NewGate builds a gate over the given vendor clients. Either client may be
// nil when the vendor is not configured; its checks then always return the
// safe default.
func NewGate(reputation models.ReputationClient, fakeVolume models.FakeVolumeClient) *Gate {
	return &Gate{
		reputation: reputation,
		fakeVolume: fakeVolume,
		logger:     log.With().Str("component", "reputation").Logger(),
	}
}

// Status returns the vendor's trust assessment, or ReputationUnknown when
// the vendor is missing, unreachable or answers nonsense. Unknown is never
// upgraded to Good.
func (g *Gate) Status(ctx context.Context, address string) models.ReputationStatus {
	if g.reputation == nil {
		return models.ReputationUnknown
	}

	status, err := g.reputation.ReputationStatus(ctx, address)
	if err != nil {
		g.logger.Warn().Err(err).Str("address", address).Msg("reputation check failed, treating as unknown")
		return models.ReputationUnknown
	}

	switch status {
	case models.ReputationGood, models.ReputationBad, models.ReputationUnknown:
		return status
	default:
		g.logger.Warn().Str("address", address).Str("status", string(status)).Msg("unexpected reputation value, treating as unknown")
		return models.ReputationUnknown
	}
}

// FakeVolume reports the vendor's volume-authenticity finding. Missing or
// failing vendors yield false: absence of evidence is not a finding.
func (g *Gate) FakeVolume(ctx context.Context, address string) bool {
	if g.fakeVolume == nil {
		return false
	}

	fake, err := g.fakeVolume.FakeVolume(ctx, address)
	if err != nil {
		g.logger.Warn().Err(err).Str("address", address).Msg("fake volume check failed, assuming genuine")
		return false
	}
	return fake
}
