package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvitka-shop/flower-bot/models"
)

// ErrMalformedClassification means the oracle answered but its structured
// response could not be parsed. The turn fails with a generic fallback.
var ErrMalformedClassification = errors.New("malformed classification response")

type OracleClient struct {
	APIKey string
	Model  string
	Client *http.Client
}

type gptMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gptResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOracleClient() *OracleClient {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		zap.L().Fatal("OPENAI_API_KEY environment variable not set")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OracleClient{
		APIKey: apiKey,
		Model:  model,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Complete sends a single prompt and returns the raw completion text.
// An empty string with a nil error means the oracle had nothing to say;
// callers must treat that distinctly from text that fails to parse.
func (c *OracleClient) Complete(ctx context.Context, prompt string) (string, error) {
	requestBody := map[string]interface{}{
		"model": c.Model,
		"messages": []gptMessage{
			{Role: "user", Content: prompt},
		},
	}

	requestBodyBytes, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var response gptResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal response JSON: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", nil
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	zap.L().Debug("OpenAI response content", zap.String("content", content))

	return content, nil
}

// ClassifyIntent maps a user message to one of the closed intent codes.
// The oracle must answer with a single JSON object; anything else is a
// hard error for the turn.
func (c *OracleClient) ClassifyIntent(ctx context.Context, userMessage, dialogStage string) (*models.IntentResult, error) {
	prompt := fmt.Sprintf(`Ти — класифікатор повідомлень для бота квіткового магазину.
Етап діалогу: %s.
Повідомлення користувача: "%s"

Класифікуй повідомлення за одним із кодів:
3 — прохання про допомогу
4 — конкретний запит про магазин
8 — питання про наявність певної квітки (в additional_info поверни назву квітки)
9 — запит на асортимент чи каталог
12 — користувач починає оформлення замовлення
13 — прохання підібрати букет
14 — користувач хоче зібрати букет самостійно
0 — інше, загальна розмова

Поверни лише JSON-об'єкт без додаткового тексту:
{"classification": "<код>", "additional_info": "<додаткова інформація або порожній рядок>"}`, dialogStage, userMessage)

	content, err := c.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedClassification)
	}

	var raw struct {
		Classification interface{} `json:"classification"`
		AdditionalInfo string      `json:"additional_info"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedClassification, err)
	}
	if raw.Classification == nil {
		return nil, fmt.Errorf("%w: missing classification field", ErrMalformedClassification)
	}

	// The model answers with either a string or a bare number.
	classification := ""
	switch v := raw.Classification.(type) {
	case string:
		classification = v
	case float64:
		classification = fmt.Sprintf("%.0f", v)
	default:
		return nil, fmt.Errorf("%w: classification is %T", ErrMalformedClassification, v)
	}

	return &models.IntentResult{
		Classification: classification,
		AdditionalInfo: raw.AdditionalInfo,
	}, nil
}

// GenerateReply asks the oracle for a free-form answer on the
// generic-reply path, conditioned on the classification and stage.
func (c *OracleClient) GenerateReply(ctx context.Context, userMessage, classification, dialogStage string) (string, error) {
	prompt := fmt.Sprintf(`Ти — привітний консультант квіткового магазину.
Етап діалогу: %s. Код класифікації повідомлення: %s.
Повідомлення користувача: "%s"

Дай коротку відповідь українською. Уникай форматування зі списками та **, додай кілька емоджі для покращення взаємодії.`, dialogStage, classification, userMessage)

	return c.Complete(ctx, prompt)
}
