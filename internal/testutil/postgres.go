package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ariefcatur/go-custom-goods/internal/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// dbTestLockID serializes tests from different packages that share one
// TEST_POSTGRES_DSN database.
const dbTestLockID int64 = 0x7465737464 // "testd"

// Postgres connects to TEST_POSTGRES_DSN, applies migrations and empties
// every data table. The database is held exclusively until the test ends.
// The test is skipped when the variable is unset.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	lock, err := db.Acquire(ctx)
	require.NoError(t, err)
	_, err = lock.Exec(ctx, `SELECT pg_advisory_lock($1)`, dbTestLockID)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = lock.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, dbTestLockID)
		lock.Release()
	})

	require.NoError(t, postgres.Migrate(ctx, db))
	_, err = db.Exec(ctx, `TRUNCATE customers, customer_pipeline, pre_made_listings, custom_listings, admin_user RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}
