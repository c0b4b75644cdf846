package pgrepo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/dermaai/internal/model"
	"github.com/xxxsen/dermaai/internal/pkg/dbutil"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/repo"
)

type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Create(ctx context.Context, item *model.History) error {
	data := map[string]interface{}{
		"id":         item.ID,
		"user_id":    item.UserID,
		"disease":    item.Disease,
		"confidence": item.Confidence,
		"image_url":  item.ImageURL,
		"timestamp":  item.Timestamp,
	}
	sqlStr, args, err := builder.BuildInsert("history", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *HistoryRepo) ListByUser(ctx context.Context, userID int64) ([]model.History, error) {
	where := map[string]interface{}{"user_id": userID, "_orderby": "id asc"}
	sqlStr, args, err := builder.BuildSelect("history", where, []string{"id", "user_id", "disease", "confidence", "image_url", "timestamp"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	items := make([]model.History, 0)
	for rows.Next() {
		var item model.History
		if err := rows.Scan(&item.ID, &item.UserID, &item.Disease, &item.Confidence, &item.ImageURL, &item.Timestamp); err != nil {
			return nil, err
		}
		if err := repo.CheckHistory(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *HistoryRepo) Delete(ctx context.Context, userID, id int64) error {
	where := map[string]interface{}{"id": id, "user_id": userID}
	sqlStr, args, err := builder.BuildDelete("history", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
