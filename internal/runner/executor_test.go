package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solsniper/internal/blacklist"
	"solsniper/internal/decision"
	"solsniper/models"
)

func buyDecision(address string) models.TradeDecision {
	return models.TradeDecision{
		Action:       models.ActionBuy,
		TokenAddress: address,
		Intents: []models.Intent{
			models.PersistRecordIntent{Record: models.TokenRecord{Address: address, CycleID: "c1"}},
			models.SendAlertIntent{Text: "anomaly alert"},
			models.ExecuteTradeIntent{TokenAddress: address, Action: models.ActionBuy},
		},
	}
}

func newExecutorFixture() *fixture {
	f := &fixture{
		records:   &recordStoreStub{},
		blstore:   &blacklistStoreStub{},
		notifier:  &notifierStub{},
		trader:    &traderStub{result: &models.TradeResult{Success: true, Signature: "sig123"}},
		blacklist: blacklist.New(nil, nil),
	}
	f.records.order = &f.order
	f.notifier.order = &f.order
	f.trader.order = &f.order
	return f
}

func (f *fixture) executor() *Executor {
	return NewExecutor(ExecutorOptions{
		Records:        f.records,
		BlacklistStore: f.blstore,
		Notifier:       f.notifier,
		Trader:         f.trader,
		Blacklist:      f.blacklist,
		Engine:         decision.NewEngine(),
	})
}

func TestExecutePersistFailureDoesNotStopLaterIntents(t *testing.T) {
	f := newExecutorFixture()
	f.records.err = errors.New("db down")

	f.executor().Execute(context.Background(), cleanSnapshot(mintWSOL), buyDecision(mintWSOL))

	assert.Equal(t, []string{"persist", "alert", "trade", "alert"}, f.order)
	require.Len(t, f.notifier.texts, 2)
	assert.Len(t, f.trader.actions, 1)
}

func TestExecuteAlertFailureDoesNotStopTrade(t *testing.T) {
	f := newExecutorFixture()
	f.notifier.err = errors.New("telegram down")

	f.executor().Execute(context.Background(), cleanSnapshot(mintWSOL), buyDecision(mintWSOL))

	assert.Len(t, f.trader.actions, 1)
	assert.Len(t, f.records.records, 1)
}

func TestExecuteFailedTradeSendsNoSuccessAlert(t *testing.T) {
	f := newExecutorFixture()
	f.trader.result = &models.TradeResult{Success: false, Reason: "slippage exceeded"}

	f.executor().Execute(context.Background(), cleanSnapshot(mintWSOL), buyDecision(mintWSOL))

	assert.Equal(t, []string{"persist", "alert", "trade"}, f.order)
	require.Len(t, f.notifier.texts, 1)
	assert.Contains(t, f.notifier.texts[0], "anomaly")
}

func TestExecuteTradeTransportErrorIsContained(t *testing.T) {
	f := newExecutorFixture()
	f.trader.err = errors.New("venue unreachable")

	f.executor().Execute(context.Background(), cleanSnapshot(mintWSOL), buyDecision(mintWSOL))

	assert.Equal(t, []string{"persist", "alert", "trade"}, f.order)
	assert.Len(t, f.notifier.texts, 1)
}

func TestExecuteToleratesDisabledSinks(t *testing.T) {
	f := newExecutorFixture()
	executor := NewExecutor(ExecutorOptions{
		Records:        f.records,
		BlacklistStore: f.blstore,
		Blacklist:      f.blacklist,
		Engine:         decision.NewEngine(),
	})

	executor.Execute(context.Background(), cleanSnapshot(mintWSOL), buyDecision(mintWSOL))

	// No notifier, no trader: the record still lands.
	assert.Len(t, f.records.records, 1)
}

func TestExecuteUpdateBlacklistPersistsBothKinds(t *testing.T) {
	f := newExecutorFixture()
	dec := models.TradeDecision{
		Action:       models.ActionNone,
		TokenAddress: mintWSOL,
		Intents: []models.Intent{
			models.UpdateBlacklistIntent{
				TokenAddress: mintWSOL,
				DevAddress:   "DevWallet",
				Reason:       "bundled_supply",
			},
		},
	}

	f.executor().Execute(context.Background(), cleanSnapshot(mintWSOL), dec)

	view := f.blacklist.Snapshot()
	assert.True(t, view.HasToken(mintWSOL))
	assert.True(t, view.HasDev("DevWallet"))

	require.Len(t, f.blstore.entries, 2)
	assert.Equal(t, "bundled_supply", f.blstore.entries[0].Reason)
}

func TestExecuteUpdateBlacklistWithoutDev(t *testing.T) {
	f := newExecutorFixture()
	dec := models.TradeDecision{
		TokenAddress: mintWSOL,
		Intents: []models.Intent{
			models.UpdateBlacklistIntent{TokenAddress: mintWSOL, Reason: "bundled_supply"},
		},
	}

	f.executor().Execute(context.Background(), cleanSnapshot(mintWSOL), dec)

	require.Len(t, f.blstore.entries, 1)
	assert.Equal(t, models.BlacklistKindToken, f.blstore.entries[0].Kind)
	_, devs := f.blacklist.Size()
	assert.Zero(t, devs)
}
