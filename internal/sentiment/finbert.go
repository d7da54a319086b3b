package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/seenimoa/biasfeed/internal/infra"
)

const defaultInferenceURL = "https://api-inference.huggingface.co/models"

// FinBERT classifies text through a hosted FinBERT model behind the
// Hugging Face inference API.
type FinBERT struct {
	model   string
	baseURL string
	apiKey  string
}

// NewFinBERT creates a FinBERT classifier. model is the hub model id,
// e.g. "ProsusAI/finbert". inferenceURL overrides the default API
// endpoint when non-empty (useful for self-hosted inference).
func NewFinBERT(model, inferenceURL, apiKey string) *FinBERT {
	if inferenceURL == "" {
		inferenceURL = defaultInferenceURL
	}
	return &FinBERT{model: model, baseURL: inferenceURL, apiKey: apiKey}
}

type finbertRequest struct {
	Inputs string `json:"inputs"`
}

type finbertScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify sends the text to the inference endpoint and returns the
// highest-scoring label.
func (f *FinBERT) Classify(ctx context.Context, text string) (string, float64, error) {
	payload, err := json.Marshal(finbertRequest{Inputs: text})
	if err != nil {
		return "", 0, err
	}

	headers := map[string]string{"Content-Type": "application/json"}
	if f.apiKey != "" {
		headers["Authorization"] = "Bearer " + f.apiKey
	}

	reqURL := fmt.Sprintf("%s/%s", f.baseURL, f.model)
	body, _, err := infra.DoPost(ctx, reqURL, headers, bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("finbert inference: %w", err)
	}
	defer body.Close()

	// The API returns one row of label scores per input.
	var rows [][]finbertScore
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return "", 0, fmt.Errorf("finbert inference decode: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return "", 0, fmt.Errorf("finbert inference: empty response")
	}

	best := rows[0][0]
	for _, s := range rows[0][1:] {
		if s.Score > best.Score {
			best = s
		}
	}
	return best.Label, best.Score, nil
}
