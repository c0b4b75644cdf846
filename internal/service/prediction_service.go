package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/dermaai/internal/filestore"
	"github.com/xxxsen/dermaai/internal/inference"
	"github.com/xxxsen/dermaai/internal/model"
	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
	"github.com/xxxsen/dermaai/internal/pkg/timeutil"
	"github.com/xxxsen/dermaai/internal/repo"
)

type PredictInput struct {
	Filename string
	Data     []byte
}

type PredictResult struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	ImageURL   string  `json:"image_url,omitempty"`
}

type PredictionService struct {
	classifier inference.Classifier
	files      filestore.Store
	history    repo.HistoryRepo
	counters   repo.CounterRepo
	now        timeutil.Clock
}

func NewPredictionService(classifier inference.Classifier, files filestore.Store, store *repo.Store) *PredictionService {
	return &PredictionService{
		classifier: classifier,
		files:      files,
		history:    store.History,
		counters:   store.Counters,
		now:        timeutil.Now,
	}
}

// Predict classifies the image, uploads it and, for a signed-in user, records
// the result. A failed history write is logged and the result still returned.
func (s *PredictionService) Predict(ctx context.Context, user *model.User, in PredictInput) (*PredictResult, error) {
	mimeType, err := detectImage(in.Data)
	if err != nil {
		return nil, err
	}
	pred, err := s.classifier.Classify(ctx, in.Data, mimeType)
	if err != nil {
		return nil, err
	}
	owner := "guest"
	if user != nil {
		owner = strconv.FormatInt(user.ID, 10)
	}
	key := filestore.BuildKey(owner, in.Filename)
	if err := s.files.Save(ctx, key, bytes.NewReader(in.Data), int64(len(in.Data)), mimeType); err != nil {
		return nil, fmt.Errorf("save image %s: %w: %w", key, appErr.ErrUpload, err)
	}
	result := &PredictResult{
		Disease:    pred.Label,
		Confidence: pred.Confidence,
		ImageURL:   s.files.URL(key),
	}
	if user != nil {
		if err := s.saveHistory(ctx, user.ID, result); err != nil {
			logutil.GetLogger(ctx).Error("save history failed",
				zap.Int64("user_id", user.ID), zap.String("disease", result.Disease), zap.Error(err))
		}
	}
	return result, nil
}

// GuestPredict runs a prediction without an account and rounds confidence to two places.
func (s *PredictionService) GuestPredict(ctx context.Context, in PredictInput) (*PredictResult, error) {
	result, err := s.Predict(ctx, nil, in)
	if err != nil {
		return nil, err
	}
	return &PredictResult{
		Disease:    result.Disease,
		Confidence: math.Round(result.Confidence*100) / 100,
	}, nil
}

func (s *PredictionService) saveHistory(ctx context.Context, userID int64, result *PredictResult) error {
	id, err := s.counters.NextID(ctx, model.CounterHistoryID)
	if err != nil {
		return err
	}
	return s.history.Create(ctx, &model.History{
		ID:         id,
		UserID:     userID,
		Disease:    result.Disease,
		Confidence: result.Confidence,
		ImageURL:   result.ImageURL,
		Timestamp:  s.now(),
	})
}

func detectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", appErr.ErrInvalidImage
	}
	mt := mimetype.Detect(data).String()
	if !strings.HasPrefix(mt, "image/") {
		return "", appErr.ErrInvalidImage
	}
	return mt, nil
}
