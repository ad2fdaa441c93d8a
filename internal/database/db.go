package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"solsniper/models"
)

// DB represents a database connection
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	// Create PostgreSQL connection string
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS token_records (
			id BIGSERIAL PRIMARY KEY,
			cycle_id TEXT NOT NULL,
			address TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			price_usd DOUBLE PRECISION NOT NULL,
			liquidity_usd DOUBLE PRECISION NOT NULL,
			volume_24h DOUBLE PRECISION NOT NULL,
			market_cap DOUBLE PRECISION NOT NULL,
			is_fake_volume BOOLEAN NOT NULL,
			reputation_status TEXT NOT NULL,
			anomaly_detected BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_token_records_address
		ON token_records (address)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS blacklist_entries (
			address TEXT NOT NULL,
			kind TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (address, kind)
		)
	`)
	return err
}

// SaveTokenRecord appends one observation row. The history is append-only:
// the same address showing up in later cycles inserts new rows.
func (db *DB) SaveTokenRecord(ctx context.Context, record *models.TokenRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO token_records (
			cycle_id, address, name, price_usd, liquidity_usd, volume_24h,
			market_cap, is_fake_volume, reputation_status, anomaly_detected, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		record.CycleID, record.Address, record.Name, record.PriceUSD,
		record.LiquidityUSD, record.Volume24h, record.MarketCap,
		record.IsFakeVolume, record.ReputationStatus, record.AnomalyDetected,
		record.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert token record: %w", err)
	}
	return nil
}

// SaveBlacklistEntry persists one blacklist address. Re-adding an existing
// entry is a no-op, so blacklist growth stays idempotent.
func (db *DB) SaveBlacklistEntry(ctx context.Context, entry *models.BlacklistEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO blacklist_entries (address, kind, reason, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address, kind) DO NOTHING
	`, entry.Address, entry.Kind, entry.Reason, entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

// LoadBlacklist returns every persisted blacklist entry, oldest first.
func (db *DB) LoadBlacklist(ctx context.Context) ([]models.BlacklistEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT address, kind, reason, created_at
		FROM blacklist_entries
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("load blacklist: %w", err)
	}
	defer rows.Close()

	var entries []models.BlacklistEntry
	for rows.Next() {
		var entry models.BlacklistEntry
		if err := rows.Scan(&entry.Address, &entry.Kind, &entry.Reason, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// RecordCount returns the number of persisted token records.
func (db *DB) RecordCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM token_records`).Scan(&count)
	return count, err
}

// RecentRecords returns the latest persisted observations, newest first.
func (db *DB) RecentRecords(ctx context.Context, limit int) ([]models.TokenRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT cycle_id, address, name, price_usd, liquidity_usd, volume_24h,
			market_cap, is_fake_volume, reputation_status, anomaly_detected, created_at
		FROM token_records
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	var records []models.TokenRecord
	for rows.Next() {
		var r models.TokenRecord
		if err := rows.Scan(
			&r.CycleID, &r.Address, &r.Name, &r.PriceUSD, &r.LiquidityUSD,
			&r.Volume24h, &r.MarketCap, &r.IsFakeVolume, &r.ReputationStatus,
			&r.AnomalyDetected, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan token record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
