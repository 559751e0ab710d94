package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/noirlabs/interrogation-engine/pkg/game"
	"github.com/noirlabs/interrogation-engine/pkg/prompts"
	"github.com/noirlabs/interrogation-engine/pkg/textfilter"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiService implements LLMService with the Google generative AI SDK.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	filter *textfilter.Filter
	logger *slog.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiService{
		client: client,
		filter: textfilter.New(),
		logger: logger,
	}, nil
}

func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := g.client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.SystemPrompt)},
	}
	g.model = model
	return nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

func (g *GeminiService) GenerateTurn(ctx context.Context, req TurnRequest) (*game.Turn, error) {
	if g.model == nil {
		return nil, fmt.Errorf("model not initialized")
	}

	player := g.filter.Soften(req.PlayerMessage)
	userPrompt := prompts.BuildUserPrompt(req.State, req.History, player)

	resp, err := g.model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("response contained no candidates")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response part type %T", resp.Candidates[0].Content.Parts[0])
	}

	content := stripJSONFences(string(text))
	var turn game.Turn
	if err := json.Unmarshal([]byte(content), &turn); err != nil {
		return nil, fmt.Errorf("failed to parse turn JSON: %w", err)
	}

	g.logger.Debug("Gemini turn generated", "finish_reason", resp.Candidates[0].FinishReason)

	return &turn, nil
}
