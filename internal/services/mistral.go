package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/noirlabs/interrogation-engine/pkg/game"
	"github.com/noirlabs/interrogation-engine/pkg/prompts"
	"github.com/noirlabs/interrogation-engine/pkg/textfilter"
)

const (
	mistralBaseURL = "https://api.mistral.ai/v1"

	DefaultMistralModel       = "mistral-large-latest"
	DefaultMistralTemperature = 0.7
	DefaultMistralMaxTokens   = 1024
)

// MistralService implements LLMService against the Mistral chat
// completions API in JSON mode.
type MistralService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	filter     *textfilter.Filter
	logger     *slog.Logger
}

type mistralChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type mistralResponseFormat struct {
	Type string `json:"type"`
}

type mistralChatRequest struct {
	Model          string                 `json:"model"`
	Messages       []mistralChatMessage   `json:"messages"`
	Temperature    *float64               `json:"temperature,omitempty"`
	MaxTokens      int                    `json:"max_tokens,omitempty"`
	ResponseFormat *mistralResponseFormat `json:"response_format,omitempty"`
}

type mistralChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func NewMistralService(apiKey string, modelName string, logger *slog.Logger) *MistralService {
	if modelName == "" {
		modelName = DefaultMistralModel
	}
	return &MistralService{
		apiKey:    apiKey,
		modelName: modelName,
		baseURL:   mistralBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		filter: textfilter.New(),
		logger: logger,
	}
}

func (m *MistralService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		m.modelName = modelName
	}
	return nil
}

func (m *MistralService) Close() error {
	return nil
}

func (m *MistralService) GenerateTurn(ctx context.Context, req TurnRequest) (*game.Turn, error) {
	player := m.filter.Soften(req.PlayerMessage)
	userPrompt := prompts.BuildUserPrompt(req.State, req.History, player)

	temperature := DefaultMistralTemperature
	chatReq := mistralChatRequest{
		Model: m.modelName,
		Messages: []mistralChatMessage{
			{Role: "system", Content: prompts.SystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    &temperature,
		MaxTokens:      DefaultMistralMaxTokens,
		ResponseFormat: &mistralResponseFormat{Type: "json_object"},
	}

	reqBody, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp mistralChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	content := stripJSONFences(chatResp.Choices[0].Message.Content)
	var turn game.Turn
	if err := json.Unmarshal([]byte(content), &turn); err != nil {
		return nil, fmt.Errorf("failed to parse turn JSON: %w", err)
	}

	m.logger.Debug("Mistral turn generated",
		"model", chatResp.Model,
		"prompt_tokens", chatResp.Usage.PromptTokens,
		"completion_tokens", chatResp.Usage.CompletionTokens)

	return &turn, nil
}
