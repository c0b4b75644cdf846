package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/dermaai/internal/model"
	"github.com/xxxsen/dermaai/internal/repo"
)

func newTestUser(t *testing.T, store *repo.Store) *model.User {
	t.Helper()
	ctx := context.Background()
	id, err := store.Counters.NextID(ctx, model.CounterUserID)
	require.NoError(t, err)
	now := time.Now().UTC()
	user := &model.User{ID: id, FullName: "Ada", Email: "ada@example.com", PasswordHash: "x", IsVerified: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, store.Users.Create(ctx, user))
	return user
}
