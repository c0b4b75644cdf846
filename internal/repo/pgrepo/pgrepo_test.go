package pgrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/repo"
)

func TestDSNFromFields(t *testing.T) {
	dsn := DSN(config.PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "derma"})
	require.Equal(t, "host=db port=5432 user=u password=p dbname=derma sslmode=disable", dsn)
	require.Equal(t, "postgres://x", DSN(config.PostgresConfig{DSN: "postgres://x", Host: "ignored"}))
}

func openTestStore(t *testing.T) *repo.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("derma"),
		postgres.WithUsername("derma"),
		postgres.WithPassword("derma"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	store, err := openStore(ctx, config.StoreConfig{Postgres: config.PostgresConfig{DSN: dsn}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store
}

func TestPostgresStore(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("counter is contiguous under concurrency", func(t *testing.T) {
		const n = 20
		var (
			mu   sync.Mutex
			wg   sync.WaitGroup
			ids  []int64
			errs []error
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := store.Counters.NextID(ctx, "pg_test")
				mu.Lock()
				defer mu.Unlock()
				ids = append(ids, id)
				errs = append(errs, err)
			}()
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for i, id := range ids {
			require.Equal(t, int64(i+1), id)
		}
	})

	t.Run("users", func(t *testing.T) {
		user := &model.User{ID: 1, FullName: "Ada", Email: "ada@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Users.Create(ctx, user))
		dup := *user
		dup.ID = 2
		require.ErrorIs(t, store.Users.Create(ctx, &dup), appErr.ErrConflict)

		got, err := store.Users.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.False(t, got.IsVerified)
		require.Equal(t, "Ada", got.FullName)

		_, err = store.Users.FindByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, appErr.ErrNotFound)

		later := now.Add(time.Hour)
		ok, err := store.Users.MarkVerified(ctx, "ada@example.com", later)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = store.Users.MarkVerified(ctx, "ada@example.com", later.Add(time.Hour))
		require.NoError(t, err)
		require.True(t, ok)
		got, err = store.Users.FindByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.True(t, got.IsVerified)
		require.True(t, later.Equal(got.UpdatedAt))

		ok, err = store.Users.MarkVerified(ctx, "nobody@example.com", later)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("history is owner scoped", func(t *testing.T) {
		other := &model.User{ID: 3, FullName: "Bob", Email: "bob@example.com", PasswordHash: "hash", CreatedAt: now, UpdatedAt: now}
		require.NoError(t, store.Users.Create(ctx, other))
		for i := int64(1); i <= 3; i++ {
			require.NoError(t, store.History.Create(ctx, &model.History{
				ID: i, UserID: 1, Disease: fmt.Sprintf("d%d", i), Confidence: 90, ImageURL: "u", Timestamp: now,
			}))
		}
		items, err := store.History.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 3)
		require.Equal(t, int64(1), items[0].ID)

		require.ErrorIs(t, store.History.Delete(ctx, 3, 1), appErr.ErrNotFound)
		require.NoError(t, store.History.Delete(ctx, 1, 1))
		items, err = store.History.ListByUser(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 2)

		items, err = store.History.ListByUser(ctx, 3)
		require.NoError(t, err)
		require.Empty(t, items)
	})
}
