package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/cmlabs-hris/leave-dashboard-go/internal/pkg/database"
	"github.com/cmlabs-hris/leave-dashboard-go/internal/repository/postgresql"
	"github.com/stretchr/testify/require"
)

// newTestDatabase connects to TEST_DATABASE_URL and resets the delivery log.
// Tests are skipped when no database is configured.
func newTestDatabase(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	require.NoError(t, postgresql.EnsureDeliverySchema(ctx, db))
	_, err = db.Exec(ctx, "TRUNCATE TABLE mail_deliveries")
	require.NoError(t, err)

	return db
}
