package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements is applied in order by Migrate. Every statement is idempotent.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL UNIQUE,
		referrer_id UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		category VARCHAR(30) NOT NULL,
		balance DECIMAL(20,8) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_wallets_user_category ON wallets (user_id, category)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		wallet_id UUID REFERENCES wallets(id) ON DELETE SET NULL,
		type VARCHAR(30) NOT NULL,
		amount DECIMAL(20,8) NOT NULL,
		currency VARCHAR(10) NOT NULL,
		reference_id VARCHAR(100) NOT NULL UNIQUE,
		gateway_payment_id VARCHAR(100),
		pay_address VARCHAR(255),
		pay_amount DECIMAL(30,12),
		pay_currency VARCHAR(20),
		status VARCHAR(20) NOT NULL,
		metadata JSONB NOT NULL DEFAULT '{}',
		description TEXT,
		gateway_response JSONB NOT NULL DEFAULT '{}',
		processed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_pending ON transactions (created_at) WHERE status = 'pending'`,
	`CREATE TABLE IF NOT EXISTS plans (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(100) NOT NULL,
		category VARCHAR(50) NOT NULL,
		is_exclusive BOOLEAN NOT NULL DEFAULT false,
		price DECIMAL(20,8) NOT NULL,
		currency VARCHAR(10) NOT NULL DEFAULT 'USD',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_plans (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plan_id UUID NOT NULL REFERENCES plans(id),
		purchase_price DECIMAL(20,8) NOT NULL,
		purchase_date TIMESTAMPTZ NOT NULL,
		expiry_date TIMESTAMPTZ NOT NULL,
		payment_method VARCHAR(20) NOT NULL,
		transaction_ref VARCHAR(100),
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		verification_status VARCHAR(20) NOT NULL DEFAULT 'pending',
		is_active BOOLEAN NOT NULL DEFAULT true,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_user_plans_active ON user_plans (user_id, plan_id) WHERE status = 'active'`,
	`CREATE INDEX IF NOT EXISTS idx_user_plans_expiry ON user_plans (expiry_date) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS jackpots (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(100) NOT NULL,
		ticket_price DECIMAL(20,8) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		draw_at TIMESTAMPTZ NOT NULL,
		total_tickets_sold BIGINT NOT NULL DEFAULT 0,
		total_revenue DECIMAL(20,8) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		jackpot_id UUID NOT NULL REFERENCES jackpots(id),
		transaction_id UUID NOT NULL,
		ticket_number VARCHAR(20) NOT NULL,
		purchase_amount DECIMAL(20,8) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		is_winner BOOLEAN NOT NULL DEFAULT false,
		winning_amount DECIMAL(20,8) NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tickets_active_number ON tickets (jackpot_id, ticket_number) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		topic VARCHAR(50) NOT NULL,
		payload JSONB NOT NULL,
		attempts INT NOT NULL DEFAULT 0,
		last_error TEXT,
		sent_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_unsent ON outbox_events (created_at) WHERE sent_at IS NULL`,
}

var execStmt = func(ctx context.Context, db *sql.DB, stmt string) error {
	_, err := db.ExecContext(ctx, stmt)
	return err
}

// Migrate creates the ledger schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if err := execStmt(ctx, db, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
