package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/hris-whatsapp-bot/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to TEST_DATABASE_URL, applies the schema and empties
// every table. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolOptions{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.Migrate(ctx))
	truncateAll(t, db)
	t.Cleanup(func() { truncateAll(t, db) })

	return db
}

func truncateAll(t *testing.T, db *database.DB) {
	t.Helper()
	_, err := db.Exec(context.Background(), "TRUNCATE TABLE tasks, projects, leave_requests, users CASCADE")
	require.NoError(t, err)
}
