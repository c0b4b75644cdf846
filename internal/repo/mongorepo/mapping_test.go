package mongorepo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

func TestUserDocumentRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	doc := bson.M{
		"_id":         int32(7),
		"full_name":   "Ada",
		"email":       "ada@example.com",
		"password":    "hash",
		"is_verified": true,
		"created_at":  primitive.NewDateTimeFromTime(now),
		"updated_at":  now,
	}
	u, err := userFromDocument(doc)
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.True(t, u.IsVerified)
	require.True(t, now.Equal(u.CreatedAt))
	require.True(t, now.Equal(u.UpdatedAt))

	out := userDocument(u)
	require.Equal(t, "hash", out["password"])
	require.Equal(t, int64(7), out["_id"])
}

func TestUserDocumentMissingFields(t *testing.T) {
	cases := map[string]bson.M{
		"no id":       {"email": "a@b.c", "password": "h"},
		"string id":   {"_id": "7", "email": "a@b.c", "password": "h"},
		"no email":    {"_id": int64(1), "password": "h"},
		"no password": {"_id": int64(1), "email": "a@b.c"},
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := userFromDocument(doc)
			require.ErrorIs(t, err, appErr.ErrCorrupt)
		})
	}
}

func TestHistoryDocument(t *testing.T) {
	h, err := historyFromDocument(bson.M{
		"_id": int64(3), "user_id": int32(1), "disease": "Impetigo",
		"confidence": 87.5, "image_url": "http://img/1.png",
	})
	require.NoError(t, err)
	require.Equal(t, model.History{ID: 3, UserID: 1, Disease: "Impetigo", Confidence: 87.5, ImageURL: "http://img/1.png"}, *h)

	_, err = historyFromDocument(bson.M{"_id": int64(3), "user_id": int64(1)})
	require.ErrorIs(t, err, appErr.ErrCorrupt)
}
