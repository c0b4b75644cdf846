package service

import (
	"context"

	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/repo"
)

type HistoryService struct {
	history repo.HistoryRepo
}

func NewHistoryService(store *repo.Store) *HistoryService {
	return &HistoryService{history: store.History}
}

func (s *HistoryService) List(ctx context.Context, userID int64) ([]model.History, error) {
	return s.history.ListByUser(ctx, userID)
}

func (s *HistoryService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.history.Delete(ctx, userID, id); err != nil {
		if appErr.IsNotFound(err) {
			return appErr.ErrHistoryNotFound
		}
		return err
	}
	return nil
}
