package memrepo

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

func TestNextIDConcurrent(t *testing.T) {
	counters := NewCounterRepo()
	const n = 200
	ids := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = counters.NextID(context.Background(), model.CounterUserID)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		require.Equal(t, int64(i+1), id)
	}

	other, err := counters.NextID(context.Background(), model.CounterHistoryID)
	require.NoError(t, err)
	require.Equal(t, int64(1), other)
}

func TestUserRepoUniqueEmail(t *testing.T) {
	users := NewUserRepo()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, &model.User{ID: 1, Email: "a@example.com", PasswordHash: "h"}))
	err := users.Create(ctx, &model.User{ID: 2, Email: "a@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, appErr.ErrConflict)
	require.Equal(t, 1, users.Count())
}

func TestMarkVerifiedOnce(t *testing.T) {
	users := NewUserRepo()
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, users.Create(ctx, &model.User{ID: 1, Email: "a@example.com", PasswordHash: "h", CreatedAt: created, UpdatedAt: created}))

	first := created.Add(time.Hour)
	ok, err := users.MarkVerified(ctx, "a@example.com", first)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = users.MarkVerified(ctx, "a@example.com", first.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, ok)

	user, err := users.FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.True(t, user.IsVerified)
	require.Equal(t, first, user.UpdatedAt)

	ok, err = users.MarkVerified(ctx, "missing@example.com", first)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHistoryScopedToOwner(t *testing.T) {
	history := NewHistoryRepo()
	ctx := context.Background()
	require.NoError(t, history.Create(ctx, &model.History{ID: 1, UserID: 10, Disease: "Impetigo"}))
	require.NoError(t, history.Create(ctx, &model.History{ID: 2, UserID: 11, Disease: "Shingles"}))

	items, err := history.ListByUser(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.ErrorIs(t, history.Delete(ctx, 10, 2), appErr.ErrNotFound)
	require.NoError(t, history.Delete(ctx, 11, 2))
	require.ErrorIs(t, history.Delete(ctx, 11, 2), appErr.ErrNotFound)
}
