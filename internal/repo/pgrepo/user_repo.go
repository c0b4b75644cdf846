package pgrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/dermaai/internal/model"
	"github.com/xxxsen/dermaai/internal/pkg/dbutil"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/repo"
)

var userColumns = []string{"id", "full_name", "email", "password_hash", "is_verified", "created_at", "updated_at"}

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *model.User) error {
	data := map[string]interface{}{
		"id":            user.ID,
		"full_name":     user.FullName,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_verified":   user.IsVerified,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("users", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	where := map[string]interface{}{"email": email}
	sqlStr, args, err := builder.BuildSelect("users", where, userColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	var user model.User
	if err := rows.Scan(&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.IsVerified, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	if err := repo.CheckUser(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MarkVerified keeps updated_at when the row is already verified so a
// replayed verification leaves the record untouched.
func (r *UserRepo) MarkVerified(ctx context.Context, email string, now time.Time) (bool, error) {
	sqlStr := `
		UPDATE users
		SET updated_at = CASE WHEN is_verified THEN updated_at ELSE ? END,
			is_verified = TRUE
		WHERE email = ?
	`
	sqlStr, args := dbutil.Finalize(sqlStr, []interface{}{now, email})
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
