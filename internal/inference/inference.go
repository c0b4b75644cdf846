// Package inference turns a skin image into one of the known disease labels.
package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

// Labels is the model's output order.
var Labels = []string{
	"Cellulitis",
	"Impetigo",
	"Athlete Foot",
	"Nail Fungus",
	"Ringworm",
	"Cutaneous Larva Migrans",
	"Chickenpox",
	"Shingles",
}

type Prediction struct {
	Label string
	// Confidence in percent, 0..100.
	Confidence float64
}

type Classifier interface {
	Name() string
	Classify(ctx context.Context, image []byte, mimeType string) (Prediction, error)
}

type Factory func(model string, args interface{}) (Classifier, error)

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

func New(provider, model string, args interface{}) (Classifier, error) {
	key := strings.ToLower(strings.TrimSpace(provider))
	if key == "" {
		return nil, fmt.Errorf("inference.provider is required")
	}
	registryMu.RLock()
	factory := registry[key]
	registryMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported inference provider: %s", provider)
	}
	return factory(model, args)
}

// Argmax picks the most likely label from a probability vector in Labels order.
func Argmax(probs []float64) (Prediction, error) {
	if len(probs) != len(Labels) {
		return Prediction{}, fmt.Errorf("got %d scores, want %d: %w", len(probs), len(Labels), appErr.ErrInference)
	}
	best := 0
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return Prediction{}, fmt.Errorf("score %d is not finite: %w", i, appErr.ErrInference)
		}
		if p > probs[best] {
			best = i
		}
	}
	return Prediction{Label: Labels[best], Confidence: probs[best] * 100}, nil
}

// LookupLabel matches a label case-insensitively against Labels.
func LookupLabel(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, l := range Labels {
		if strings.EqualFold(l, name) {
			return l, true
		}
	}
	return "", false
}

type timeoutClassifier struct {
	next Classifier
	d    time.Duration
}

// WithTimeout bounds each Classify call. Deadline and cancellation surface as transient errors.
func WithTimeout(c Classifier, d time.Duration) Classifier {
	if d <= 0 {
		return c
	}
	return &timeoutClassifier{next: c, d: d}
}

func (t *timeoutClassifier) Name() string {
	return t.next.Name()
}

func (t *timeoutClassifier) Classify(ctx context.Context, image []byte, mimeType string) (Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, t.d)
	defer cancel()
	p, err := t.next.Classify(ctx, image, mimeType)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !appErr.IsTransient(err) {
		return Prediction{}, appErr.Transient("classify", err)
	}
	return p, err
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode inference config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode inference config: %w", err)
	}
	return nil
}
