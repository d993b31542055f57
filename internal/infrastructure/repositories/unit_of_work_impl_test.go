package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Table("users").Count(&count).Error)
	return count
}

func TestUnitOfWork_DoCommitAndRollback(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	u := &UnitOfWorkImpl{db: db}

	// commit path
	err := u.Do(context.Background(), func(ctx context.Context) error {
		id := uuid.NewString()
		return GetDB(ctx, db).Exec("INSERT INTO users(id,email) VALUES (?,?)", id, id).Error
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), countUsers(t, db))

	// rollback path
	err = u.Do(context.Background(), func(ctx context.Context) error {
		id := uuid.NewString()
		if err := GetDB(ctx, db).Exec("INSERT INTO users(id,email) VALUES (?,?)", id, id).Error; err != nil {
			return err
		}
		return errors.New("force rollback")
	})
	require.Error(t, err)
	require.Equal(t, int64(1), countUsers(t, db), "second insert must be rolled back")
}

func TestUnitOfWork_NestedDoJoinsOuterTransaction(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	u := &UnitOfWorkImpl{db: db}

	err := u.Do(context.Background(), func(ctx context.Context) error {
		inner := u.Do(ctx, func(ctx context.Context) error {
			id := uuid.NewString()
			return GetDB(ctx, db).Exec("INSERT INTO users(id,email) VALUES (?,?)", id, id).Error
		})
		require.NoError(t, inner)
		return errors.New("outer fails")
	})
	require.Error(t, err)
	require.Equal(t, int64(0), countUsers(t, db), "inner work belongs to the outer transaction")
}

func TestUnitOfWork_WithLockAndGetDB(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	ctx := u.WithLock(context.Background())
	locked, _ := ctx.Value(lockKey).(bool)
	require.True(t, locked)
	require.NotNil(t, lockedDB(ctx, db))

	plainDB := u.GetDB(context.Background())
	require.NotNil(t, plainDB)
	require.Equal(t, db.Statement.ConnPool, plainDB.Statement.ConnPool)

	tx := db.Begin()
	txCtx := context.WithValue(context.Background(), txKey, tx)
	require.Equal(t, tx.Statement.ConnPool, u.GetDB(txCtx).Statement.ConnPool)
	tx.Rollback()
}

func TestUnitOfWork_DoBeginFailure(t *testing.T) {
	db := newTestDB(t)
	u := &UnitOfWorkImpl{db: db}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	err = u.Do(context.Background(), func(ctx context.Context) error {
		_ = ctx
		return nil
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to begin transaction")
}

func TestUnitOfWork_DoCommitFailure_WithHook(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	u := &UnitOfWorkImpl{db: db}

	origCommit := commitTx
	t.Cleanup(func() { commitTx = origCommit })
	commitTx = func(*gorm.DB) error { return errors.New("commit failed") }

	err := u.Do(context.Background(), func(ctx context.Context) error {
		id := uuid.NewString()
		return GetDB(ctx, db).Exec("INSERT INTO users(id,email) VALUES (?,?)", id, id).Error
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to commit transaction")
	require.Equal(t, int64(0), countUsers(t, db))
}
