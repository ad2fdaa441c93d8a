package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solsniper/internal/anomaly"
	"solsniper/internal/api/dexscreener"
	"solsniper/internal/blacklist"
	"solsniper/internal/decision"
	"solsniper/internal/vetting"
	"solsniper/models"
)

// Real mints so address validation passes.
const (
	mintWSOL = "So11111111111111111111111111111111111111112"
	mintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	mintBONK = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

type discoveryStub struct {
	profiles []dexscreener.TokenProfile
	err      error
	calls    int
}

func (d *discoveryStub) LatestProfiles(_ context.Context) ([]dexscreener.TokenProfile, error) {
	d.calls++
	return d.profiles, d.err
}

type providerStub struct {
	snaps   map[string]*models.TokenSnapshot
	errs    map[string]error
	panicOn string
	calls   []string
}

func (p *providerStub) TokenSnapshot(_ context.Context, address string) (*models.TokenSnapshot, error) {
	p.calls = append(p.calls, address)
	if address == p.panicOn {
		panic("provider exploded")
	}
	if err, ok := p.errs[address]; ok {
		return nil, err
	}
	if snap, ok := p.snaps[address]; ok {
		return snap, nil
	}
	return nil, models.ErrTokenNotFound
}

type pricesStub struct {
	points []models.PricePoint
	err    error
}

func (p *pricesStub) PriceHistory(_ context.Context, _ string, _ int) ([]models.PricePoint, error) {
	return p.points, p.err
}

type recordStoreStub struct {
	records []*models.TokenRecord
	err     error
	order   *[]string
}

func (s *recordStoreStub) SaveTokenRecord(_ context.Context, record *models.TokenRecord) error {
	if s.order != nil {
		*s.order = append(*s.order, "persist")
	}
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, record)
	return nil
}

type blacklistStoreStub struct {
	entries []*models.BlacklistEntry
	err     error
}

func (s *blacklistStoreStub) SaveBlacklistEntry(_ context.Context, entry *models.BlacklistEntry) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *blacklistStoreStub) LoadBlacklist(_ context.Context) ([]models.BlacklistEntry, error) {
	return nil, nil
}

type notifierStub struct {
	texts []string
	err   error
	order *[]string
}

func (n *notifierStub) Notify(_ context.Context, text string) error {
	if n.order != nil {
		*n.order = append(*n.order, "alert")
	}
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

type traderStub struct {
	result  *models.TradeResult
	err     error
	actions []models.TradeAction
	order   *[]string
}

func (tr *traderStub) ExecuteTrade(_ context.Context, _ string, action models.TradeAction) (*models.TradeResult, error) {
	if tr.order != nil {
		*tr.order = append(*tr.order, "trade")
	}
	tr.actions = append(tr.actions, action)
	if tr.err != nil {
		return nil, tr.err
	}
	return tr.result, nil
}

type gateStub struct {
	status models.ReputationStatus
	fake   bool
}

func (g *gateStub) Status(_ context.Context, _ string) models.ReputationStatus { return g.status }
func (g *gateStub) FakeVolume(_ context.Context, _ string) bool                { return g.fake }

// fixture bundles one fully wired runner with all its stubs.
type fixture struct {
	runner    *Runner
	discovery *discoveryStub
	provider  *providerStub
	prices    *pricesStub
	records   *recordStoreStub
	blstore   *blacklistStoreStub
	notifier  *notifierStub
	trader    *traderStub
	blacklist *blacklist.Blacklist
	order     []string
}

type fixtureOptions struct {
	filter    models.FilterConfig
	gate      vetting.Gate
	maxTokens int
}

func defaultFilter() models.FilterConfig {
	return models.FilterConfig{
		MinLiquidity:       1000,
		MaxLiquidity:       1e9,
		MinVolume:          1000,
		MaxVolume:          1e9,
		CheckBundledSupply: true,
	}
}

func newFixture(opts fixtureOptions) *fixture {
	if opts.gate == nil {
		opts.gate = &gateStub{status: models.ReputationGood}
	}
	if opts.maxTokens == 0 {
		opts.maxTokens = 10
	}

	f := &fixture{
		discovery: &discoveryStub{},
		provider:  &providerStub{snaps: map[string]*models.TokenSnapshot{}, errs: map[string]error{}},
		prices:    &pricesStub{},
		records:   &recordStoreStub{},
		blstore:   &blacklistStoreStub{},
		notifier:  &notifierStub{},
		trader:    &traderStub{result: &models.TradeResult{Success: true, Signature: "sig123"}},
		blacklist: blacklist.New(nil, nil),
	}
	f.records.order = &f.order
	f.notifier.order = &f.order
	f.trader.order = &f.order

	engine := decision.NewEngine()
	executor := NewExecutor(ExecutorOptions{
		Records:        f.records,
		BlacklistStore: f.blstore,
		Notifier:       f.notifier,
		Trader:         f.trader,
		Blacklist:      f.blacklist,
		Engine:         engine,
	})
	cycle := decision.NewCycle(vetting.NewPipeline(opts.gate), anomaly.New(0.10), engine)

	f.runner = NewRunner(RunnerOptions{
		Discovery: f.discovery,
		Provider:  f.provider,
		Prices:    f.prices,
		Cycle:     cycle,
		Executor:  executor,
		Blacklist: f.blacklist,
		Filter:    opts.filter,
		MaxTokens: opts.maxTokens,
	})
	return f
}

func solanaProfile(address string) dexscreener.TokenProfile {
	return dexscreener.TokenProfile{ChainID: "solana", TokenAddress: address}
}

func cleanSnapshot(address string) *models.TokenSnapshot {
	return &models.TokenSnapshot{
		Address:      address,
		Name:         "Test Token",
		Symbol:       "TEST",
		PriceUSD:     0.002,
		LiquidityUSD: 50000,
		Volume24h:    120000,
		MarketCap:    2000000,
		Developer:    "DevWallet",
		Holders: []models.Holder{
			{Address: "H1", Balance: 100}, {Address: "H2", Balance: 90},
			{Address: "H3", Balance: 80}, {Address: "H4", Balance: 70},
			{Address: "H5", Balance: 60},
		},
		TotalSupply: 10000,
	}
}

func spikyPrices() []models.PricePoint {
	values := []float64{100, 101, 102, 150, 103, 104, 105}
	points := make([]models.PricePoint, len(values))
	for i, v := range values {
		points[i] = models.PricePoint{Timestamp: int64(i) * 60000, Price: v}
	}
	return points
}

func flatPrices() []models.PricePoint {
	points := make([]models.PricePoint, 10)
	for i := range points {
		points[i] = models.PricePoint{Timestamp: int64(i) * 60000, Price: 100}
	}
	return points
}

func TestScanOnceBuysOnAnomaly(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.prices.points = spikyPrices()

	f.runner.ScanOnce(context.Background())

	require.Len(t, f.records.records, 1)
	record := f.records.records[0]
	assert.True(t, record.AnomalyDetected)
	assert.Equal(t, mintWSOL, record.Address)
	_, err := uuid.Parse(record.CycleID)
	assert.NoError(t, err, "cycle id is a uuid")

	require.Len(t, f.trader.actions, 1)
	assert.Equal(t, models.ActionBuy, f.trader.actions[0])

	// Persist first, anomaly alert second, trade third, success alert last.
	assert.Equal(t, []string{"persist", "alert", "trade", "alert"}, f.order)
	require.Len(t, f.notifier.texts, 2)
	assert.Contains(t, f.notifier.texts[0], "anomaly")
	assert.Contains(t, f.notifier.texts[1], "sig123")
}

func TestScanOnceQuietTokenOnlyPersists(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.prices.points = flatPrices()

	f.runner.ScanOnce(context.Background())

	require.Len(t, f.records.records, 1)
	assert.False(t, f.records.records[0].AnomalyDetected)
	assert.Empty(t, f.trader.actions)
	assert.Empty(t, f.notifier.texts)
}

func TestScanOnceRejectedTokenHasNoSideEffects(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	snap := cleanSnapshot(mintWSOL)
	snap.Volume24h = 1 // below the floor
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.provider.snaps[mintWSOL] = snap
	f.prices.points = spikyPrices()

	f.runner.ScanOnce(context.Background())

	assert.Empty(t, f.records.records)
	assert.Empty(t, f.trader.actions)
	assert.Empty(t, f.notifier.texts)
	assert.Empty(t, f.blstore.entries)
}

func TestScanOnceBundledSupplyGrowsBlacklist(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	snap := cleanSnapshot(mintWSOL)
	snap.Holders = []models.Holder{
		{Address: "H1", Balance: 9500},
		{Address: "H2", Balance: 100},
	}
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.provider.snaps[mintWSOL] = snap

	f.runner.ScanOnce(context.Background())

	view := f.blacklist.Snapshot()
	assert.True(t, view.HasToken(mintWSOL))
	assert.True(t, view.HasDev("DevWallet"))

	require.Len(t, f.blstore.entries, 2)
	assert.Equal(t, models.BlacklistKindToken, f.blstore.entries[0].Kind)
	assert.Equal(t, models.BlacklistKindDev, f.blstore.entries[1].Kind)
	assert.Empty(t, f.records.records, "bundled tokens are never persisted as records")
	assert.Empty(t, f.trader.actions)
}

func TestScanOnceRetriesUnknownTokenNextTick(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.prices.points = flatPrices()

	// Not indexed yet: nothing happens and the mint stays unmarked.
	f.runner.ScanOnce(context.Background())
	assert.Empty(t, f.records.records)
	assert.Len(t, f.provider.calls, 1)

	// The vendor catches up; the next tick vets it.
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.runner.ScanOnce(context.Background())
	assert.Len(t, f.provider.calls, 2)
	assert.Len(t, f.records.records, 1)
}

func TestScanOncePanicDoesNotKillTick(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{
		solanaProfile(mintWSOL),
		solanaProfile(mintUSDC),
	}
	f.provider.panicOn = mintWSOL
	f.provider.snaps[mintUSDC] = cleanSnapshot(mintUSDC)
	f.prices.points = flatPrices()

	f.runner.ScanOnce(context.Background())

	require.Len(t, f.records.records, 1)
	assert.Equal(t, mintUSDC, f.records.records[0].Address)
}

func TestScanOnceFiltersChainAndMalformedAddresses(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{
		{ChainID: "ethereum", TokenAddress: "0xdeadbeef"},
		{ChainID: "solana", TokenAddress: "not-base58-!!"},
		solanaProfile(mintWSOL),
	}
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.prices.points = flatPrices()

	f.runner.ScanOnce(context.Background())

	assert.Equal(t, []string{mintWSOL}, f.provider.calls)
}

func TestScanOnceHonorsMaxTokens(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter(), maxTokens: 1})
	f.discovery.profiles = []dexscreener.TokenProfile{
		solanaProfile(mintWSOL),
		solanaProfile(mintUSDC),
		solanaProfile(mintBONK),
	}
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.prices.points = flatPrices()

	f.runner.ScanOnce(context.Background())

	assert.Len(t, f.provider.calls, 1)
}

func TestScanOnceDeduplicatesAcrossTicks(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.prices.points = flatPrices()

	f.runner.ScanOnce(context.Background())
	f.runner.ScanOnce(context.Background())

	assert.Len(t, f.provider.calls, 1)
	assert.Len(t, f.records.records, 1)
	assert.Equal(t, 2, f.discovery.calls)
}

func TestScanOncePriceFailureSkipsAnomalyCheck(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.profiles = []dexscreener.TokenProfile{solanaProfile(mintWSOL)}
	f.provider.snaps[mintWSOL] = cleanSnapshot(mintWSOL)
	f.prices.err = errors.New("birdeye down")

	f.runner.ScanOnce(context.Background())

	require.Len(t, f.records.records, 1)
	assert.False(t, f.records.records[0].AnomalyDetected)
	assert.Empty(t, f.trader.actions)
}

func TestScanOnceDiscoveryFailureIsContained(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})
	f.discovery.err = errors.New("feed down")

	f.runner.ScanOnce(context.Background())

	assert.Empty(t, f.provider.calls)
}

func TestPauseResume(t *testing.T) {
	f := newFixture(fixtureOptions{filter: defaultFilter()})

	assert.False(t, f.runner.Paused())
	f.runner.Pause()
	assert.True(t, f.runner.Paused())
	f.runner.Resume()
	assert.False(t, f.runner.Paused())
}
