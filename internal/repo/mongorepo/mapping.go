package mongorepo

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/repo"
)

func userDocument(u *model.User) bson.M {
	return bson.M{
		"_id":         u.ID,
		"full_name":   u.FullName,
		"email":       u.Email,
		"password":    u.PasswordHash,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}

func historyDocument(h *model.History) bson.M {
	return bson.M{
		"_id":        h.ID,
		"user_id":    h.UserID,
		"disease":    h.Disease,
		"confidence": h.Confidence,
		"image_url":  h.ImageURL,
		"timestamp":  h.Timestamp,
	}
}

func userFromDocument(doc bson.M) (*model.User, error) {
	var (
		u   model.User
		err error
	)
	if u.ID, err = intField(doc, "_id"); err != nil {
		return nil, err
	}
	if u.Email, err = stringField(doc, "email"); err != nil {
		return nil, err
	}
	if u.PasswordHash, err = stringField(doc, "password"); err != nil {
		return nil, err
	}
	u.FullName, _ = doc["full_name"].(string)
	u.IsVerified, _ = doc["is_verified"].(bool)
	u.CreatedAt = timeField(doc, "created_at")
	u.UpdatedAt = timeField(doc, "updated_at")
	if err := repo.CheckUser(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

func historyFromDocument(doc bson.M) (*model.History, error) {
	var (
		h   model.History
		err error
	)
	if h.ID, err = intField(doc, "_id"); err != nil {
		return nil, err
	}
	if h.UserID, err = intField(doc, "user_id"); err != nil {
		return nil, err
	}
	if h.Disease, err = stringField(doc, "disease"); err != nil {
		return nil, err
	}
	h.Confidence, _ = floatValue(doc["confidence"])
	h.ImageURL, _ = doc["image_url"].(string)
	h.Timestamp = timeField(doc, "timestamp")
	if err := repo.CheckHistory(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

func intField(doc bson.M, name string) (int64, error) {
	switch v := doc[name].(type) {
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case nil:
		return 0, fmt.Errorf("field %s missing: %w", name, appErr.ErrCorrupt)
	default:
		return 0, fmt.Errorf("field %s has type %T: %w", name, v, appErr.ErrCorrupt)
	}
}

func stringField(doc bson.M, name string) (string, error) {
	v, ok := doc[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("field %s missing: %w", name, appErr.ErrCorrupt)
	}
	return v, nil
}

func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func timeField(doc bson.M, name string) time.Time {
	switch v := doc[name].(type) {
	case primitive.DateTime:
		return v.Time().UTC()
	case time.Time:
		return v.UTC()
	default:
		return time.Time{}
	}
}
