package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"lottery-ledger.backend/internal/infrastructure/repositories/repotest"
)

func newTestDB(t *testing.T) *gorm.DB {
	return repotest.NewDB(t)
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	repotest.Exec(t, db, q, args...)
}

func createLedgerTables(t *testing.T, db *gorm.DB) {
	repotest.CreateLedgerTables(t, db)
}

func seedUser(t *testing.T, db *gorm.DB, referrerID *uuid.UUID) uuid.UUID {
	return repotest.SeedUser(t, db, referrerID)
}

func seedPlan(t *testing.T, db *gorm.DB, name, category string, exclusive bool, price string) uuid.UUID {
	return repotest.SeedPlan(t, db, name, category, exclusive, price)
}

func seedJackpot(t *testing.T, db *gorm.DB, price string, drawAt time.Time) uuid.UUID {
	return repotest.SeedJackpot(t, db, price, drawAt)
}
