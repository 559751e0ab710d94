package services

import (
	"context"
	"strings"

	"github.com/noirlabs/interrogation-engine/pkg/game"
)

// TurnRequest is the context handed to a provider for one exchange.
type TurnRequest struct {
	PlayerMessage string
	State         *game.State
	History       []game.Message
}

// LLMService defines the interface for the external model gateway.
type LLMService interface {
	// InitModel prepares the provider on startup.
	InitModel(ctx context.Context, modelName string) error

	// GenerateTurn produces a structured turn for one player utterance.
	GenerateTurn(ctx context.Context, req TurnRequest) (*game.Turn, error)

	// Close releases provider resources.
	Close() error
}

// stripJSONFences removes a markdown code fence around a JSON payload.
// Models in JSON mode still occasionally wrap their output.
func stripJSONFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
