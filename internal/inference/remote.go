package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

type remoteConfig struct {
	Endpoint string `json:"endpoint"`
	APIKey   string `json:"api_key"`
}

// remoteClassifier posts the raw image to a model server that answers with a
// probability vector in Labels order.
type remoteClassifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

type remoteResponse struct {
	Probabilities []float64   `json:"probabilities"`
	Predictions   [][]float64 `json:"predictions"`
}

func init() {
	Register("remote", createRemote)
}

func createRemote(model string, args interface{}) (Classifier, error) {
	_ = model
	cfg := &remoteConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("remote endpoint is required")
	}
	return &remoteClassifier{endpoint: cfg.Endpoint, apiKey: cfg.APIKey, client: http.DefaultClient}, nil
}

func (r *remoteClassifier) Name() string {
	return "remote"
}

func (r *remoteClassifier) Classify(ctx context.Context, image []byte, mimeType string) (Prediction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(image))
	if err != nil {
		return Prediction{}, err
	}
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
			return Prediction{}, appErr.Transient("remote classify", err)
		}
		return Prediction{}, fmt.Errorf("remote classify: %w: %w", appErr.ErrInference, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Prediction{}, appErr.Transient("remote classify", fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body))))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Prediction{}, fmt.Errorf("remote classify %s: %s: %w", resp.Status, strings.TrimSpace(string(body)), appErr.ErrInference)
	}
	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, fmt.Errorf("decode remote answer: %w: %w", appErr.ErrInference, err)
	}
	probs := out.Probabilities
	if len(probs) == 0 && len(out.Predictions) > 0 {
		probs = out.Predictions[0]
	}
	return Argmax(probs)
}
