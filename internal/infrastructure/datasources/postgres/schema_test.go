package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrate_RunsEveryStatementInOrder(t *testing.T) {
	orig := execStmt
	t.Cleanup(func() { execStmt = orig })

	var ran []string
	execStmt = func(_ context.Context, _ *sql.DB, stmt string) error {
		ran = append(ran, stmt)
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil))
	require.Equal(t, schemaStatements, ran)
}

func TestMigrate_StopsAtFirstFailure(t *testing.T) {
	orig := execStmt
	t.Cleanup(func() { execStmt = orig })

	calls := 0
	execStmt = func(context.Context, *sql.DB, string) error {
		calls++
		if calls == 3 {
			return errors.New("boom")
		}
		return nil
	}

	err := Migrate(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "migration step 3 failed")
	require.Equal(t, 3, calls)
}

func TestSchema_DeclaresConcurrencyGuards(t *testing.T) {
	all := strings.Join(schemaStatements, "\n")
	require.Contains(t, all, "ON tickets (jackpot_id, ticket_number) WHERE status = 'active'")
	require.Contains(t, all, "ON user_plans (user_id, plan_id) WHERE status = 'active'")
	require.Contains(t, all, "ON wallets (user_id, category)")
	require.Contains(t, all, "reference_id VARCHAR(100) NOT NULL UNIQUE")
	require.Contains(t, all, "CHECK (balance >= 0)")
}
