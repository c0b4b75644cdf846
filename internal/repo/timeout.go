package repo

import (
	"context"
	"errors"
	"time"

	"github.com/xxxsen/dermaai/internal/model"
	"github.com/xxxsen/dermaai/internal/pkg/dbutil"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

// WithTimeout wraps every repository of s so each call gets its own deadline.
// A call that runs out of time is reported as transient.
func WithTimeout(s *Store, d time.Duration) *Store {
	if s == nil || d <= 0 {
		return s
	}
	return &Store{
		Users:    &timeoutUsers{next: s.Users, d: d},
		Counters: &timeoutCounters{next: s.Counters, d: d},
		History:  &timeoutHistory{next: s.History, d: d},
		closer:   s.closer,
	}
}

func classify(op string, err error) error {
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !appErr.IsTransient(err) {
		return appErr.Transient(op, err)
	}
	return err
}

type timeoutUsers struct {
	next UserRepo
	d    time.Duration
}

func (t *timeoutUsers) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	return classify("create user", t.next.Create(ctx, user))
}

func (t *timeoutUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	user, err := t.next.FindByEmail(ctx, email)
	return user, classify("find user", err)
}

func (t *timeoutUsers) MarkVerified(ctx context.Context, email string, now time.Time) (bool, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	ok, err := t.next.MarkVerified(ctx, email, now)
	return ok, classify("mark verified", err)
}

type timeoutCounters struct {
	next CounterRepo
	d    time.Duration
}

func (t *timeoutCounters) NextID(ctx context.Context, name string) (int64, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	id, err := t.next.NextID(ctx, name)
	return id, classify("next id", err)
}

type timeoutHistory struct {
	next HistoryRepo
	d    time.Duration
}

func (t *timeoutHistory) Create(ctx context.Context, item *model.History) error {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	return classify("create history", t.next.Create(ctx, item))
}

func (t *timeoutHistory) ListByUser(ctx context.Context, userID int64) ([]model.History, error) {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	items, err := t.next.ListByUser(ctx, userID)
	return items, classify("list history", err)
}

func (t *timeoutHistory) Delete(ctx context.Context, userID, id int64) error {
	ctx, cancel := dbutil.WithTimeout(ctx, t.d)
	defer cancel()
	return classify("delete history", t.next.Delete(ctx, userID, id))
}
