package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"cricket-analyzer/internal/model"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17",
		postgres.WithDatabase("cricket"),
		postgres.WithUsername("cricket"),
		postgres.WithPassword("cricket"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}
	return dsn
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	store, err := NewPostgresStore(ctx, startPostgres(t), nil)
	require.NoError(t, err)
	defer store.Close()

	// written twice: the second run must replace, not append
	require.NoError(t, store.WriteTables(ctx, testTables()))
	require.NoError(t, store.WriteTables(ctx, testTables()))

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TableCount{
		{Name: model.TableMatches, Count: 2},
		{Name: model.TablePlayers, Count: 2},
		{Name: model.TableInnings, Count: 1},
		{Name: model.TableDeliveries, Count: 6},
	}, sum.Counts)
	assert.Equal(t, []TableCount{{Name: "t20", Count: 1}, {Name: "test", Count: 1}}, sum.Formats)
	require.Len(t, sum.Samples, 2)
	assert.Equal(t, "Eden Gardens", sum.Samples[0].Venue)
	require.NotNil(t, sum.LastRun)
	assert.Equal(t, "test,t20", sum.LastRun.Formats)

	var (
		date    time.Time
		runs    int64
		missing *int64
	)
	require.NoError(t, store.Pool().QueryRow(ctx, `SELECT date FROM matches WHERE match_id = '1'`).Scan(&date))
	assert.Equal(t, "2016-04-03", date.Format(model.DateLayout))

	require.NoError(t, store.Pool().QueryRow(ctx, `SELECT SUM(total_runs) FROM deliveries`).Scan(&runs))
	assert.Equal(t, int64(7), runs)

	require.NoError(t, store.Pool().QueryRow(ctx, `SELECT batter_runs FROM deliveries WHERE delivery_number = 6`).Scan(&missing))
	assert.Nil(t, missing)
}
