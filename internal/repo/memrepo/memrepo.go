// Package memrepo keeps everything in process memory. It backs the "memory"
// store type for local runs and the service tests.
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/repo"
)

func init() {
	repo.Register("memory", func(ctx context.Context, cfg config.StoreConfig) (*repo.Store, error) {
		return New(), nil
	})
}

func New() *repo.Store {
	return repo.NewStore(NewUserRepo(), NewCounterRepo(), NewHistoryRepo(), nil)
}

type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]model.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byEmail: make(map[string]model.User)}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[user.Email]; ok {
		return appErr.ErrConflict
	}
	for _, existing := range r.byEmail {
		if existing.ID == user.ID {
			return appErr.ErrConflict
		}
	}
	r.byEmail[user.Email] = *user
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byEmail[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepo) MarkVerified(ctx context.Context, email string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byEmail[email]
	if !ok {
		return false, nil
	}
	if !user.IsVerified {
		user.IsVerified = true
		user.UpdatedAt = now
		r.byEmail[email] = user
	}
	return true, nil
}

// Count returns the number of stored users.
func (r *UserRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byEmail)
}

type CounterRepo struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewCounterRepo() *CounterRepo {
	return &CounterRepo{values: make(map[string]int64)}
}

func (r *CounterRepo) NextID(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[name]++
	return r.values[name], nil
}

type HistoryRepo struct {
	mu    sync.RWMutex
	items map[int64]model.History
}

func NewHistoryRepo() *HistoryRepo {
	return &HistoryRepo{items: make(map[int64]model.History)}
}

func (r *HistoryRepo) Create(ctx context.Context, item *model.History) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; ok {
		return appErr.ErrConflict
	}
	r.items[item.ID] = *item
	return nil
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID int64) ([]model.History, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]model.History, 0)
	for _, item := range r.items {
		if item.UserID == userID {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *HistoryRepo) Delete(ctx context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return appErr.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
