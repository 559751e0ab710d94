package services

import (
	"context"
	"sync"

	"github.com/noirlabs/interrogation-engine/pkg/game"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	GenerateTurnFunc func(ctx context.Context, req TurnRequest) (*game.Turn, error)

	// Track calls for testing
	InitModelCalls    []string
	GenerateTurnCalls []TurnRequest

	mu sync.Mutex // protects all fields above
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:    make([]string, 0),
		GenerateTurnCalls: make([]TurnRequest, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// GenerateTurn mocks turn generation
func (m *MockLLMAPI) GenerateTurn(ctx context.Context, req TurnRequest) (*game.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateTurnCalls = append(m.GenerateTurnCalls, req)

	if m.GenerateTurnFunc != nil {
		return m.GenerateTurnFunc(ctx, req)
	}

	// Default behavior - a quiet deflection
	return &game.Turn{
		SuspectResponse: "I already told you everything I know.",
		SuspectMood:     game.MoodCalm,
		DetectiveMood:   game.MoodNeutral,
	}, nil
}

// Close mocks client shutdown
func (m *MockLLMAPI) Close() error {
	return nil
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateTurnCalls = make([]TurnRequest, 0)
}

// SetGenerateTurnError sets up the mock to return an error on GenerateTurn
func (m *MockLLMAPI) SetGenerateTurnError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateTurnFunc = func(ctx context.Context, req TurnRequest) (*game.Turn, error) {
		return nil, err
	}
}

// SetGenerateTurnResponse sets up the mock to return a specific turn
func (m *MockLLMAPI) SetGenerateTurnResponse(turn *game.Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateTurnFunc = func(ctx context.Context, req TurnRequest) (*game.Turn, error) {
		return turn, nil
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []TurnRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	turnCalls := make([]TurnRequest, len(m.GenerateTurnCalls))
	copy(turnCalls, m.GenerateTurnCalls)

	return initCalls, turnCalls
}
