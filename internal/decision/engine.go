// Package decision turns a vetting verdict and an anomaly result into a
// trade decision plus the ordered side effects the harness must run. Nothing
// here talks to storage, vendors or the notifier; the engine only describes
// work.
package decision

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/anomaly"
	"solsniper/internal/vetting"
	"solsniper/models"
)

// Engine builds trade decisions. Intent order is fixed: persist first, then
// the alert, then the trade. The harness executes them in exactly that order.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine returns a ready engine.
func NewEngine() *Engine {
	return &Engine{
		logger: log.With().Str("component", "decision").Logger(),
	}
}

// Decide maps one evaluated snapshot to a decision.
//
// Rejected verdicts produce no action; only the pipeline's own pending
// intents (the bundled-supply blacklist update) are passed through. Accepted
// verdicts always persist a record; a detected anomaly additionally alerts
// and requests a buy.
func (e *Engine) Decide(cycleID string, snap *models.TokenSnapshot, verdict vetting.Verdict, anomalies anomaly.Result) models.TradeDecision {
	decision := models.TradeDecision{
		Action:       models.ActionNone,
		TokenAddress: snap.Address,
	}

	if !verdict.Accepted {
		decision.Intents = verdict.Intents
		return decision
	}

	record := models.TokenRecord{
		CycleID:          cycleID,
		Address:          snap.Address,
		Name:             snap.Name,
		PriceUSD:         snap.PriceUSD,
		LiquidityUSD:     snap.LiquidityUSD,
		Volume24h:        snap.Volume24h,
		MarketCap:        snap.MarketCap,
		IsFakeVolume:     verdict.IsFakeVolume,
		ReputationStatus: verdict.ReputationStatus,
		AnomalyDetected:  anomalies.Any(),
	}
	decision.Intents = append(decision.Intents, models.PersistRecordIntent{Record: record})

	if !anomalies.Any() {
		return decision
	}

	decision.Action = models.ActionBuy
	decision.Intents = append(decision.Intents,
		models.SendAlertIntent{Text: anomalyAlertText(snap, anomalies)},
		models.ExecuteTradeIntent{TokenAddress: snap.Address, Action: models.ActionBuy},
	)

	e.logger.Info().
		Str("cycle_id", cycleID).
		Str("address", snap.Address).
		Int("flagged_points", anomalies.Count()).
		Msg("anomaly detected, requesting buy")
	return decision
}

// OnTradeResult returns the follow-up intents for an executed trade: one
// success alert when the venue confirms, nothing on failure. Failed trades
// are not retried and already-executed intents stay as they are.
func (e *Engine) OnTradeResult(snap *models.TokenSnapshot, result *models.TradeResult) []models.Intent {
	if result == nil || !result.Success {
		return nil
	}
	return []models.Intent{
		models.SendAlertIntent{Text: tradeSuccessText(snap, result)},
	}
}

func anomalyAlertText(snap *models.TokenSnapshot, anomalies anomaly.Result) string {
	return fmt.Sprintf("⚠️ Price anomaly: %s (%s), %d of %d points flagged, placing buy order",
		snap.Name, snap.Address, anomalies.Count(), len(anomalies.Flags))
}

func tradeSuccessText(snap *models.TokenSnapshot, result *models.TradeResult) string {
	if result.Signature != "" {
		return fmt.Sprintf("✅ Bought %s (%s), tx %s", snap.Name, snap.Address, result.Signature)
	}
	return fmt.Sprintf("✅ Bought %s (%s)", snap.Name, snap.Address)
}
