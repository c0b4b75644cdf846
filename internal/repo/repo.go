// Package repo defines the persistence boundary. Backends live in
// subpackages and register a Factory under the store type they serve.
package repo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xxxsen/dermaai/internal/config"
	"github.com/xxxsen/dermaai/internal/model"
)

type UserRepo interface {
	// Create fails with errors.ErrConflict when the email is already taken.
	Create(ctx context.Context, user *model.User) error
	// FindByEmail fails with errors.ErrNotFound when no user matches.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// MarkVerified sets is_verified and, on the first transition only,
	// updated_at. It reports whether a user with that email exists.
	MarkVerified(ctx context.Context, email string, now time.Time) (bool, error)
}

type CounterRepo interface {
	// NextID atomically increments the named counter and returns the new
	// value. The first call for a name returns 1.
	NextID(ctx context.Context, name string) (int64, error)
}

type HistoryRepo interface {
	Create(ctx context.Context, item *model.History) error
	ListByUser(ctx context.Context, userID int64) ([]model.History, error)
	// Delete fails with errors.ErrNotFound when id does not belong to userID.
	Delete(ctx context.Context, userID, id int64) error
}

type Store struct {
	Users    UserRepo
	Counters CounterRepo
	History  HistoryRepo
	closer   func(ctx context.Context) error
}

func NewStore(users UserRepo, counters CounterRepo, history HistoryRepo, closer func(ctx context.Context) error) *Store {
	return &Store{Users: users, Counters: counters, History: history, closer: closer}
}

func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

type Factory func(ctx context.Context, cfg config.StoreConfig) (*Store, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(name string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

// Open builds the store selected by cfg.Type and bounds every call with cfg's timeout.
func Open(ctx context.Context, cfg config.StoreConfig) (*Store, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Type))
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return WithTimeout(store, cfg.Timeout()), nil
}
