package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// tables in truncation order
var tables = []string{
	"password_reset_tokens",
	"registration_codes",
	"payroll_records",
	"overtime_records",
	"leave_requests",
	"attendances",
	"employees",
}

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties every table.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, postgresql.EnsureSchema(ctx, db))
	for _, table := range tables {
		_, err := db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table))
		require.NoError(t, err, "truncate %s", table)
	}
	return db
}
