package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"solsniper/internal/anomaly"
	"solsniper/internal/api/birdeye"
	"solsniper/internal/api/dexscreener"
	"solsniper/internal/api/helius"
	"solsniper/internal/api/pocketuniverse"
	"solsniper/internal/api/pumpportal"
	"solsniper/internal/api/rugcheck"
	"solsniper/internal/blacklist"
	"solsniper/internal/config"
	"solsniper/internal/database"
	"solsniper/internal/decision"
	"solsniper/internal/market"
	"solsniper/internal/notify"
	"solsniper/internal/observability"
	"solsniper/internal/reputation"
	"solsniper/internal/runner"
	"solsniper/internal/solana"
	"solsniper/internal/vendorcache"
	"solsniper/internal/vetting"
	"solsniper/models"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
	logger := log.With().Str("component", "main").Logger()

	filter := cfg.Filter()
	if err := filter.Validate(); err != nil {
		logger.Warn().Err(err).Msg("Filter bounds inverted, every candidate will be rejected")
	}

	db, err := database.New(database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	list := seedBlacklist(ctx, cfg, db)

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

	var repClient models.ReputationClient = rug
	var fvClient models.FakeVolumeClient = pocket
	if cfg.RedisAddr != "" {
		rdb, err := vendorcache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn().Err(err).Msg("Redis unavailable, vendor caching disabled")
		} else {
			defer rdb.Close()
			repClient = vendorcache.WrapReputation(rug, rdb, cfg.CacheTTL)
			fvClient = vendorcache.WrapFakeVolume(pocket, rdb, cfg.CacheTTL)
			logger.Info().Str("addr", cfg.RedisAddr).Msg("Vendor cache enabled")
		}
	}

	gate := reputation.NewGate(repClient, fvClient)
	engine := decision.NewEngine()
	cycle := decision.NewCycle(vetting.NewPipeline(gate), anomaly.New(cfg.AnomalyContamination), engine)
	provider := market.NewProvider(dex, chain)

	var trader models.TradeExecutor
	if cfg.DryRun {
		logger.Warn().Msg("Dry run enabled, orders will not be placed")
	} else {
		trader = pumpportal.NewClient(pumpportal.ClientOptions{
			APIKey:         cfg.PumpPortalAPIKey,
			AmountSol:      cfg.BuyAmountSol,
			SlippagePct:    cfg.SlippagePct,
			PriorityFee:    cfg.PriorityFeeSol,
			RequestTimeout: requestTimeout,
			RequestsPerSec: cfg.RateLimitPerSec,
		})
	}

	var bot *tgbotapi.BotAPI
	var notifier models.Notifier
	if cfg.TelegramBotToken != "" {
		bot, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Telegram bot, alerts disabled")
			bot = nil
		} else {
			logger.Info().Str("username", bot.Self.UserName).Msg("Authorized on Telegram")
			if cfg.TelegramChatID != 0 {
				notifier = notify.NewTelegram(bot, cfg.TelegramChatID)
			}
		}
	}

	executor := runner.NewExecutor(runner.ExecutorOptions{
		Records:        db,
		BlacklistStore: db,
		Notifier:       notifier,
		Trader:         trader,
		Blacklist:      list,
		Engine:         engine,
	})

	scanner := runner.NewRunner(runner.RunnerOptions{
		Discovery:     dex,
		Provider:      provider,
		Prices:        bird,
		Cycle:         cycle,
		Executor:      executor,
		Blacklist:     list,
		Filter:        filter,
		ScanInterval:  cfg.ScanInterval,
		MaxTokens:     cfg.MaxTokensPerScan,
		HistoryPoints: cfg.PriceHistoryPoints,
	})

	go serveMetrics(cfg.MetricsAddr)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		scanner.Run(ctx)
	}()

	if bot != nil {
		op := &operator{
			chatID:        cfg.TelegramChatID,
			scanner:       scanner,
			list:          list,
			db:            db,
			provider:      provider,
			prices:        bird,
			cycle:         cycle,
			filter:        filter,
			historyPoints: cfg.PriceHistoryPoints,
			startedAt:     time.Now(),
			logger:        log.With().Str("component", "operator").Logger(),
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			operatorLoop(ctx, bot, op)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("Shutting down")

	cancel()
	if bot != nil {
		bot.StopReceivingUpdates()
	}
	wg.Wait()
}

// seedBlacklist merges the persisted blacklist rows with the configured seed
// addresses.
func seedBlacklist(ctx context.Context, cfg *config.Config, db *database.DB) *blacklist.Blacklist {
	tokens := append([]string{}, cfg.BlacklistTokens...)
	devs := append([]string{}, cfg.BlacklistDevs...)

	entries, err := db.LoadBlacklist(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Loading persisted blacklist failed, starting from seeds only")
	}
	for _, e := range entries {
		switch e.Kind {
		case models.BlacklistKindToken:
			tokens = append(tokens, e.Address)
		case models.BlacklistKindDev:
			devs = append(devs, e.Address)
		}
	}

	list := blacklist.New(tokens, devs)
	t, d := list.Size()
	log.Info().Int("tokens", t).Int("devs", d).Msg("Blacklist loaded")
	return list
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	log.Info().Str("addr", addr).Msg("Metrics listener started")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("Metrics listener failed")
	}
}

// operatorLoop consumes bot updates until StopReceivingUpdates closes the
// channel.
func operatorLoop(ctx context.Context, bot *tgbotapi.BotAPI, op *operator) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := bot.GetUpdatesChan(updateConfig)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		op.handle(ctx, bot, update.Message)
	}
}

// operator answers the owner's control commands.
type operator struct {
	chatID        int64
	scanner       *runner.Runner
	list          *blacklist.Blacklist
	db            *database.DB
	provider      models.TokenDataProvider
	prices        models.PriceHistoryProvider
	cycle         *decision.Cycle
	filter        models.FilterConfig
	historyPoints int
	startedAt     time.Time
	logger        zerolog.Logger
}

func (o *operator) handle(ctx context.Context, bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	if o.chatID != 0 && message.Chat.ID != o.chatID {
		o.logger.Debug().Int64("chat_id", message.Chat.ID).Msg("Ignoring message from unknown chat")
		return
	}

	fields := strings.Fields(message.Text)
	if len(fields) == 0 {
		return
	}

	var reply string
	switch fields[0] {
	case "/status":
		reply = o.status(ctx)
	case "/vet":
		if len(fields) < 2 {
			reply = "Usage: /vet <mint>"
		} else {
			reply = o.vet(ctx, fields[1])
		}
	case "/blacklist":
		if len(fields) < 2 {
			reply = "Usage: /blacklist <address> [dev]"
		} else {
			kind := models.BlacklistKindToken
			if len(fields) > 2 && fields[2] == "dev" {
				kind = models.BlacklistKindDev
			}
			reply = o.addBlacklist(ctx, fields[1], kind)
		}
	case "/pause":
		o.scanner.Pause()
		reply = "⏸ Scanning paused"
	case "/resume":
		o.scanner.Resume()
		reply = "▶️ Scanning resumed"
	default:
		reply = "Commands: /status, /vet <mint>, /blacklist <address> [dev], /pause, /resume"
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, reply)
	if _, err := bot.Send(msg); err != nil {
		o.logger.Warn().Err(err).Msg("Failed to send reply")
	}
}

func (o *operator) status(ctx context.Context) string {
	state := "scanning"
	if o.scanner.Paused() {
		state = "paused"
	}
	count, err := o.db.RecordCount(ctx)
	if err != nil {
		o.logger.Error().Err(err).Msg("Record count failed")
	}
	tokens, devs := o.list.Size()
	return fmt.Sprintf("State: %s\nUptime: %s\nRecords: %d\nBlacklist: %d tokens, %d devs",
		state, time.Since(o.startedAt).Round(time.Second), count, tokens, devs)
}

// vet evaluates one mint without executing any of the resulting intents.
func (o *operator) vet(ctx context.Context, address string) string {
	if !solana.IsValidAddress(address) {
		return "Not a valid Solana address"
	}

	snap, err := o.provider.TokenSnapshot(ctx, address)
	if err != nil {
		if errors.Is(err, models.ErrTokenNotFound) {
			return "Token not indexed yet"
		}
		return fmt.Sprintf("Snapshot failed: %v", err)
	}

	prices, err := o.prices.PriceHistory(ctx, address, o.historyPoints)
	if err != nil {
		prices = nil
	}

	verdict, dec := o.cycle.Evaluate(ctx, uuid.New().String(), snap, prices, o.filter, o.list.Snapshot())
	if !verdict.Accepted {
		return fmt.Sprintf("🚫 REJECT %s (%s)\nReason: %s\nOffending: %s",
			snap.Name, address, verdict.Reason, verdict.OffendingAddress)
	}
	return fmt.Sprintf("✅ ACCEPT %s (%s)\nReputation: %s\nFake volume: %t\nAction: %s",
		snap.Name, address, verdict.ReputationStatus, verdict.IsFakeVolume, dec.Action)
}

func (o *operator) addBlacklist(ctx context.Context, address, kind string) string {
	if !solana.IsValidAddress(address) {
		return "Not a valid Solana address"
	}

	var added bool
	if kind == models.BlacklistKindDev {
		added = o.list.AddDev(address)
	} else {
		added = o.list.AddToken(address)
	}
	if !added {
		return "Already blacklisted"
	}

	entry := &models.BlacklistEntry{Address: address, Kind: kind, Reason: "manual"}
	if err := o.db.SaveBlacklistEntry(ctx, entry); err != nil {
		o.logger.Error().Err(err).Msg("Persisting blacklist entry failed")
		return "Added in memory, but persisting failed"
	}

	tokens, devs := o.list.Size()
	observability.UpdateBlacklistSize(tokens, devs)
	return fmt.Sprintf("Blacklisted %s (%s)", address, kind)
}
