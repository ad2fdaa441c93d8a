package models

import "context"

// TokenDataProvider assembles a full market snapshot for one token address.
// Implementations return ErrTokenNotFound when the venue has never seen the
// address.
type TokenDataProvider interface {
	TokenSnapshot(ctx context.Context, address string) (*TokenSnapshot, error)
}

// PriceHistoryProvider returns a token's recent price series, oldest first.
type PriceHistoryProvider interface {
	PriceHistory(ctx context.Context, address string, limit int) ([]PricePoint, error)
}

// ReputationClient reports a vendor's trust assessment of a token.
type ReputationClient interface {
	ReputationStatus(ctx context.Context, address string) (ReputationStatus, error)
}

// FakeVolumeClient reports whether a token's trading volume looks synthetic.
type FakeVolumeClient interface {
	FakeVolume(ctx context.Context, address string) (bool, error)
}

// TradeExecutor places orders with the trading venue.
type TradeExecutor interface {
	ExecuteTrade(ctx context.Context, address string, action TradeAction) (*TradeResult, error)
}

// RecordStore appends accepted-token observations. Duplicates are allowed.
type RecordStore interface {
	SaveTokenRecord(ctx context.Context, record *TokenRecord) error
}

// BlacklistStore persists blacklist growth and loads the seed set at startup.
type BlacklistStore interface {
	SaveBlacklistEntry(ctx context.Context, entry *BlacklistEntry) error
	LoadBlacklist(ctx context.Context) ([]BlacklistEntry, error)
}

// Notifier delivers operator-facing alerts. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
