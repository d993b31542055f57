// Package repotest opens in-memory SQLite databases carrying the ledger
// schema for repository and usecase tests.
package repotest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB opens an empty shared in-memory database closed on test cleanup
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the shared in-memory database consistent across goroutines
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewLedgerDB opens a database with every ledger table created
func NewLedgerDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := NewDB(t)
	CreateLedgerTables(t, db)
	return db
}

// Exec runs q and fails the test on error
func Exec(t testing.TB, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

// CreateLedgerTables mirrors the Postgres schema with SQLite types. Money
// columns are NUMERIC and the partial unique indexes are kept.
func CreateLedgerTables(t testing.TB, db *gorm.DB) {
	t.Helper()
	Exec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		referrer_id TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	Exec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		balance NUMERIC NOT NULL DEFAULT 0,
		currency TEXT NOT NULL DEFAULT 'USD',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	Exec(t, db, `CREATE UNIQUE INDEX idx_wallets_user_category ON wallets (user_id, category);`)
	Exec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		wallet_id TEXT,
		type TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		currency TEXT NOT NULL,
		reference_id TEXT NOT NULL UNIQUE,
		gateway_payment_id TEXT,
		pay_address TEXT,
		pay_amount NUMERIC,
		pay_currency TEXT,
		status TEXT NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		description TEXT,
		gateway_response TEXT NOT NULL DEFAULT '{}',
		processed_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	Exec(t, db, `CREATE TABLE plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		is_exclusive BOOLEAN NOT NULL DEFAULT 0,
		price NUMERIC NOT NULL,
		currency TEXT NOT NULL DEFAULT 'USD',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	Exec(t, db, `CREATE TABLE user_plans (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		purchase_price NUMERIC NOT NULL,
		purchase_date DATETIME NOT NULL,
		expiry_date DATETIME NOT NULL,
		payment_method TEXT NOT NULL,
		transaction_ref TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		verification_status TEXT NOT NULL DEFAULT 'pending',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	Exec(t, db, `CREATE UNIQUE INDEX idx_user_plans_active ON user_plans (user_id, plan_id) WHERE status = 'active';`)
	Exec(t, db, `CREATE TABLE jackpots (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ticket_price NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		draw_at DATETIME NOT NULL,
		total_tickets_sold INTEGER NOT NULL DEFAULT 0,
		total_revenue NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	Exec(t, db, `CREATE TABLE tickets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		jackpot_id TEXT NOT NULL,
		transaction_id TEXT NOT NULL,
		ticket_number TEXT NOT NULL,
		purchase_amount NUMERIC NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		is_winner BOOLEAN NOT NULL DEFAULT 0,
		winning_amount NUMERIC NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
	Exec(t, db, `CREATE UNIQUE INDEX idx_tickets_active_number ON tickets (jackpot_id, ticket_number) WHERE status = 'active';`)
	Exec(t, db, `CREATE TABLE outbox_events (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		payload TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		sent_at DATETIME,
		created_at DATETIME
	);`)
}

// SeedUser inserts a user, optionally referred by referrerID
func SeedUser(t testing.TB, db *gorm.DB, referrerID *uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	var ref interface{}
	if referrerID != nil {
		ref = referrerID.String()
	}
	Exec(t, db, `INSERT INTO users (id, email, referrer_id, created_at, updated_at) VALUES (?,?,?,?,?)`,
		id.String(), id.String()+"@example.com", ref, time.Now(), time.Now())
	return id
}

// SeedPlan inserts an active plan
func SeedPlan(t testing.TB, db *gorm.DB, name, category string, exclusive bool, price string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	Exec(t, db, `INSERT INTO plans (id, name, category, is_exclusive, price, currency, is_active, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)`,
		id.String(), name, category, exclusive, price, "USD", true, time.Now(), time.Now())
	return id
}

// SeedJackpot inserts an active jackpot drawing at drawAt
func SeedJackpot(t testing.TB, db *gorm.DB, price string, drawAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	Exec(t, db, `INSERT INTO jackpots (id, name, ticket_price, status, draw_at, created_at, updated_at) VALUES (?,?,?,?,?,?,?)`,
		id.String(), "Weekly", price, "active", drawAt, time.Now(), time.Now())
	return id
}
