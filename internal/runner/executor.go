// Package runner drives the scan loop: it discovers candidate tokens, runs
// each through one evaluation cycle and executes the side effects the
// decision engine requested.
package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/blacklist"
	"solsniper/internal/decision"
	"solsniper/internal/observability"
	"solsniper/models"
)

// Executor applies a decision's intents in the order the engine emitted
// them. A failed intent is logged and counted, never retried, and never
// stops the intents behind it.
type Executor struct {
	records   models.RecordStore
	blstore   models.BlacklistStore
	notifier  models.Notifier
	trader    models.TradeExecutor
	blacklist *blacklist.Blacklist
	engine    *decision.Engine
	logger    zerolog.Logger
}

// ExecutorOptions holds the executor's dependencies. Records, Notifier and
// Trader may be nil; the matching intents are then skipped, which is how
// dry runs work.
type ExecutorOptions struct {
	Records        models.RecordStore
	BlacklistStore models.BlacklistStore
	Notifier       models.Notifier
	Trader         models.TradeExecutor
	Blacklist      *blacklist.Blacklist
	Engine         *decision.Engine
}

// NewExecutor creates an intent executor.
func NewExecutor(opts ExecutorOptions) *Executor {
	return &Executor{
		records:   opts.Records,
		blstore:   opts.BlacklistStore,
		notifier:  opts.Notifier,
		trader:    opts.Trader,
		blacklist: opts.Blacklist,
		engine:    opts.Engine,
		logger:    log.With().Str("component", "executor").Logger(),
	}
}

// Execute runs the decision's intents front to back. Follow-up intents from
// a trade result are appended behind the remaining queue, which keeps the
// persist-alert-trade order intact.
func (e *Executor) Execute(ctx context.Context, snap *models.TokenSnapshot, dec models.TradeDecision) {
	queue := make([]models.Intent, len(dec.Intents))
	copy(queue, dec.Intents)

	for len(queue) > 0 {
		intent := queue[0]
		queue = queue[1:]

		switch it := intent.(type) {
		case models.PersistRecordIntent:
			e.persistRecord(ctx, it)
		case models.SendAlertIntent:
			e.sendAlert(ctx, it)
		case models.ExecuteTradeIntent:
			queue = append(queue, e.executeTrade(ctx, snap, it)...)
		case models.UpdateBlacklistIntent:
			e.updateBlacklist(ctx, it)
		default:
			e.logger.Error().Str("intent", fmt.Sprintf("%T", intent)).Msg("unknown intent type")
		}
	}
}

func (e *Executor) persistRecord(ctx context.Context, intent models.PersistRecordIntent) {
	if e.records == nil {
		e.logger.Debug().Str("address", intent.Record.Address).Msg("record store disabled, skipping persist")
		return
	}
	record := intent.Record
	if err := e.records.SaveTokenRecord(ctx, &record); err != nil {
		e.logger.Error().Err(err).Str("address", record.Address).Msg("persisting record failed")
		observability.RecordIntentFailure("persist")
	}
}

func (e *Executor) sendAlert(ctx context.Context, intent models.SendAlertIntent) {
	if e.notifier == nil {
		e.logger.Debug().Str("text", intent.Text).Msg("notifier disabled, skipping alert")
		return
	}
	if err := e.notifier.Notify(ctx, intent.Text); err != nil {
		e.logger.Warn().Err(err).Msg("alert delivery failed")
		observability.RecordIntentFailure("alert")
	}
}

func (e *Executor) executeTrade(ctx context.Context, snap *models.TokenSnapshot, intent models.ExecuteTradeIntent) []models.Intent {
	if e.trader == nil {
		e.logger.Info().
			Str("address", intent.TokenAddress).
			Str("action", string(intent.Action)).
			Msg("trade executor disabled, order not placed")
		return nil
	}

	result, err := e.trader.ExecuteTrade(ctx, intent.TokenAddress, intent.Action)
	if err != nil {
		e.logger.Error().Err(err).Str("address", intent.TokenAddress).Msg("trade execution failed")
		observability.RecordIntentFailure("trade")
		observability.RecordTrade("error")
		return nil
	}

	if result.Success {
		observability.RecordTrade("success")
	} else {
		observability.RecordTrade("rejected")
		e.logger.Warn().
			Str("address", intent.TokenAddress).
			Str("reason", result.Reason).
			Msg("trade rejected by venue")
	}
	return e.engine.OnTradeResult(snap, result)
}

func (e *Executor) updateBlacklist(ctx context.Context, intent models.UpdateBlacklistIntent) {
	observability.RecordBlacklistUpdate()

	e.blacklist.AddToken(intent.TokenAddress)
	e.saveEntry(ctx, models.BlacklistEntry{
		Address: intent.TokenAddress,
		Kind:    models.BlacklistKindToken,
		Reason:  intent.Reason,
	})

	if intent.DevAddress != "" {
		e.blacklist.AddDev(intent.DevAddress)
		e.saveEntry(ctx, models.BlacklistEntry{
			Address: intent.DevAddress,
			Kind:    models.BlacklistKindDev,
			Reason:  intent.Reason,
		})
	}

	tokens, devs := e.blacklist.Size()
	observability.UpdateBlacklistSize(tokens, devs)

	e.logger.Info().
		Str("token", intent.TokenAddress).
		Str("dev", intent.DevAddress).
		Str("reason", intent.Reason).
		Msg("blacklist updated")
}

func (e *Executor) saveEntry(ctx context.Context, entry models.BlacklistEntry) {
	if e.blstore == nil {
		return
	}
	if err := e.blstore.SaveBlacklistEntry(ctx, &entry); err != nil {
		e.logger.Error().Err(err).
			Str("address", entry.Address).
			Str("kind", entry.Kind).
			Msg("persisting blacklist entry failed")
		observability.RecordIntentFailure("blacklist")
	}
}
