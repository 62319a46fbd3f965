// Package analysis turns free-text food descriptions into structured
// nutrition estimates using the OpenAI chat completions API. Raw net/http
// keeps the SDK out of the dependency tree.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/perivale/fitquest/internal/model"
)

// ErrUnrecognized is returned when the description is not food at all.
var ErrUnrecognized = errors.New("description not recognized as food")

// Estimate is the structured nutrition data parsed from a description.
// Confidence is 1-5 indicating how accurate the estimate is.
type Estimate struct {
	Name       string  `json:"name"`
	Calories   int     `json:"calories"`
	ProteinG   float64 `json:"protein_g"`
	CarbsG     float64 `json:"carbs_g"`
	FatG       float64 `json:"fat_g"`
	FiberG     float64 `json:"fiber_g"`
	MealType   string  `json:"meal_type"`
	Confidence int     `json:"confidence"`
}

// Config holds analysis service configuration from environment variables.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Service calls the completion API to analyze food descriptions.
type Service struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewService creates an analysis service. An empty API key leaves the service
// unconfigured; callers fall back to the keyword classifier.
func NewService(cfg Config) *Service {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	return &Service{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether an API key is available.
func (s *Service) Configured() bool {
	return s.apiKey != ""
}

const systemPromptTemplate = `You are a nutrition assistant. The user writes in locale %q; food names may be regional. Parse the food description and return a JSON object with:
- "name" (string, cleaned up title case)
- "calories" (integer, total for the described portion)
- "protein_g" (number, grams)
- "carbs_g" (number, grams)
- "fat_g" (number, grams)
- "fiber_g" (number, grams)
- "meal_type" (one of: breakfast, lunch, dinner, snack, drink)
- "confidence" (integer 1-5: 5=exact known nutritional data, 4=very close estimate, 3=reasonable estimate, 2=rough guess, 1=very uncertain)

Always provide your best estimate, even for unfamiliar or vague items. Only return {"error": "unrecognized"} if the input is not food at all.
Return only valid JSON, no explanation.`

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

// Analyze parses a food description into an Estimate. Missing macro fields in
// the model output decode to zero, matching the record defaults.
func (s *Service) Analyze(ctx context.Context, description, locale string) (*Estimate, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("analysis service not configured")
	}
	if locale == "" {
		locale = "en"
	}

	content, err := s.complete(ctx, []chatMessage{
		{Role: "system", Content: fmt.Sprintf(systemPromptTemplate, locale)},
		{Role: "user", Content: description},
	})
	if err != nil {
		return nil, err
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(content), &errResp); err != nil {
		return nil, fmt.Errorf("parse analysis response: %w", err)
	}
	if errResp.Error == "unrecognized" {
		return nil, ErrUnrecognized
	}

	var est Estimate
	if err := json.Unmarshal([]byte(content), &est); err != nil {
		return nil, fmt.Errorf("parse estimate: %w", err)
	}
	if est.Name == "" || est.Calories == 0 {
		return nil, ErrUnrecognized
	}
	if !model.ValidMealType(est.MealType) {
		// Leave the choice to the caller's classifier rather than guessing.
		est.MealType = ""
	}
	return &est, nil
}

// complete sends a chat completions request and returns the raw content
// string from the first choice.
func (s *Service) complete(ctx context.Context, messages []chatMessage) (string, error) {
	reqBody := chatRequest{
		Model:          s.model,
		Messages:       messages,
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return result.Choices[0].Message.Content, nil
}
