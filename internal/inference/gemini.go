package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	appErr "github.com/xxxsen/dermaai/internal/pkg/errors"
)

const defaultGeminiModel = "gemini-2.0-flash"

type geminiConfig struct {
	APIKey string `json:"api_key"`
}

type geminiClassifier struct {
	client *genai.Client
	model  string
}

func init() {
	Register("gemini", createGemini)
}

func createGemini(model string, args interface{}) (Classifier, error) {
	cfg := &geminiConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api_key is required")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiClassifier{client: client, model: model}, nil
}

func (g *geminiClassifier) Name() string {
	return "gemini"
}

func (g *geminiClassifier) Classify(ctx context.Context, image []byte, mimeType string) (Prediction, error) {
	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: classifyPrompt()},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return Prediction{}, appErr.Transient("gemini classify", err)
		}
		return Prediction{}, fmt.Errorf("gemini classify: %w: %w", appErr.ErrInference, err)
	}
	return parseGeminiAnswer(resp.Text())
}

func classifyPrompt() string {
	return fmt.Sprintf(`You are a dermatology image classifier.
Classify the skin condition in the image as exactly one of: %s.
Return JSON only: {"label": "<one of the labels>", "confidence": <probability between 0 and 1>}.`,
		strings.Join(Labels, ", "))
}

type geminiAnswer struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

func parseGeminiAnswer(text string) (Prediction, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var ans geminiAnswer
	if err := json.Unmarshal([]byte(clean), &ans); err != nil {
		return Prediction{}, fmt.Errorf("parse gemini answer: %w: %w", appErr.ErrInference, err)
	}
	label, ok := LookupLabel(ans.Label)
	if !ok {
		return Prediction{}, fmt.Errorf("unknown label %q: %w", ans.Label, appErr.ErrInference)
	}
	if ans.Confidence < 0 || ans.Confidence > 1 {
		return Prediction{}, fmt.Errorf("confidence %v out of range: %w", ans.Confidence, appErr.ErrInference)
	}
	return Prediction{Label: label, Confidence: ans.Confidence * 100}, nil
}
