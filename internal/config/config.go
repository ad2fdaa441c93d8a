package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"solsniper/models"
)

// Config holds all application configuration
type Config struct {
	// Vendor credentials. DexScreener and RugCheck are unauthenticated.
	HeliusAPIKey         string `env:"HELIUS_API_KEY" envDefault:"-"`
	BirdeyeAPIKey        string `env:"BIRDEYE_API_KEY" envDefault:"-"`
	PocketUniverseAPIKey string `env:"POCKETUNIVERSE_API_KEY" envDefault:"-"`
	PumpPortalAPIKey     string `env:"PUMPPORTAL_API_KEY" envDefault:"-"`
	HeliusRPCURL         string `env:"HELIUS_RPC_URL" envDefault:"https://mainnet.helius-rpc.com"`

	// Vetting filter.
	MinLiquidity           float64 `env:"MIN_LIQUIDITY" envDefault:"10000"`
	MaxLiquidity           float64 `env:"MAX_LIQUIDITY" envDefault:"1000000"`
	MinVolume              float64 `env:"MIN_VOLUME" envDefault:"25000"`
	MaxVolume              float64 `env:"MAX_VOLUME" envDefault:"5000000"`
	RequireReputationGood  bool    `env:"REQUIRE_REPUTATION_GOOD" envDefault:"true"`
	SkipFakeVolume         bool    `env:"SKIP_FAKE_VOLUME" envDefault:"true"`
	CheckBundledSupply     bool    `env:"CHECK_BUNDLED_SUPPLY" envDefault:"true"`
	BundledSupplyThreshold float64 `env:"BUNDLED_SUPPLY_THRESHOLD" envDefault:"0.90"`

	// Anomaly detection.
	AnomalyContamination float64 `env:"ANOMALY_CONTAMINATION" envDefault:"0.10"`
	PriceHistoryPoints   int     `env:"PRICE_HISTORY_POINTS" envDefault:"60"`

	// Trading.
	BuyAmountSol   float64 `env:"BUY_AMOUNT_SOL" envDefault:"0.01"`
	SlippagePct    float64 `env:"SLIPPAGE_PCT" envDefault:"10"`
	PriorityFeeSol float64 `env:"PRIORITY_FEE_SOL" envDefault:"0.00005"`
	DryRun         bool    `env:"DRY_RUN" envDefault:"false"`

	// Scan loop.
	ScanInterval     time.Duration `env:"SCAN_INTERVAL" envDefault:"45s"`
	MaxTokensPerScan int           `env:"MAX_TOKENS_PER_SCAN" envDefault:"10"`

	// Blacklist seeds, comma separated.
	BlacklistTokens []string `env:"BLACKLIST_TOKENS"`
	BlacklistDevs   []string `env:"BLACKLIST_DEVS"`

	// Database.
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"-"`
	DBName     string `env:"DB_NAME" envDefault:"solsniper"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Redis vendor cache. Empty address disables caching.
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:""`
	RedisPassword string        `env:"REDIS_PASSWORD" envDefault:"-"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// Telegram.
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN" envDefault:"-"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`

	// Observability and HTTP.
	MetricsAddr     string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  int    `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	RateLimitPerSec int    `env:"RATE_LIMIT_PER_SEC" envDefault:"5"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	// Load values from environment variables
	cfg.HeliusAPIKey = os.Getenv("HELIUS_API_KEY")
	cfg.BirdeyeAPIKey = os.Getenv("BIRDEYE_API_KEY")
	cfg.PocketUniverseAPIKey = os.Getenv("POCKETUNIVERSE_API_KEY")
	cfg.PumpPortalAPIKey = os.Getenv("PUMPPORTAL_API_KEY")
	cfg.HeliusRPCURL = getEnvWithDefault("HELIUS_RPC_URL", "https://mainnet.helius-rpc.com")

	cfg.MinLiquidity = getEnvFloatWithDefault("MIN_LIQUIDITY", 10000)
	cfg.MaxLiquidity = getEnvFloatWithDefault("MAX_LIQUIDITY", 1000000)
	cfg.MinVolume = getEnvFloatWithDefault("MIN_VOLUME", 25000)
	cfg.MaxVolume = getEnvFloatWithDefault("MAX_VOLUME", 5000000)
	cfg.RequireReputationGood = getEnvBoolWithDefault("REQUIRE_REPUTATION_GOOD", true)
	cfg.SkipFakeVolume = getEnvBoolWithDefault("SKIP_FAKE_VOLUME", true)
	cfg.CheckBundledSupply = getEnvBoolWithDefault("CHECK_BUNDLED_SUPPLY", true)
	cfg.BundledSupplyThreshold = getEnvFloatWithDefault("BUNDLED_SUPPLY_THRESHOLD", models.DefaultBundledSupplyThreshold)

	cfg.AnomalyContamination = getEnvFloatWithDefault("ANOMALY_CONTAMINATION", 0.10)
	cfg.PriceHistoryPoints = getEnvIntWithDefault("PRICE_HISTORY_POINTS", 60)

	cfg.BuyAmountSol = getEnvFloatWithDefault("BUY_AMOUNT_SOL", 0.01)
	cfg.SlippagePct = getEnvFloatWithDefault("SLIPPAGE_PCT", 10)
	cfg.PriorityFeeSol = getEnvFloatWithDefault("PRIORITY_FEE_SOL", 0.00005)
	cfg.DryRun = getEnvBoolWithDefault("DRY_RUN", false)

	cfg.ScanInterval = getEnvDurationWithDefault("SCAN_INTERVAL", 45*time.Second)
	cfg.MaxTokensPerScan = getEnvIntWithDefault("MAX_TOKENS_PER_SCAN", 10)

	cfg.BlacklistTokens = splitCSV(os.Getenv("BLACKLIST_TOKENS"))
	cfg.BlacklistDevs = splitCSV(os.Getenv("BLACKLIST_DEVS"))

	cfg.DBHost = getEnvWithDefault("DB_HOST", "localhost")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "solsniper")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)
	cfg.CacheTTL = getEnvDurationWithDefault("CACHE_TTL", 10*time.Minute)

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)

	cfg.MetricsAddr = getEnvWithDefault("METRICS_ADDR", ":9090")
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.RateLimitPerSec = getEnvIntWithDefault("RATE_LIMIT_PER_SEC", 5)

	return &cfg, nil
}

// Filter returns the vetting filter assembled from the loaded values.
func (c *Config) Filter() models.FilterConfig {
	return models.FilterConfig{
		MinLiquidity:           c.MinLiquidity,
		MaxLiquidity:           c.MaxLiquidity,
		MinVolume:              c.MinVolume,
		MaxVolume:              c.MaxVolume,
		RequireReputationGood:  c.RequireReputationGood,
		SkipFakeVolume:         c.SkipFakeVolume,
		CheckBundledSupply:     c.CheckBundledSupply,
		BundledSupplyThreshold: c.BundledSupplyThreshold,
	}
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
