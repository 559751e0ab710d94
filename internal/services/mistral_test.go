package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/noirlabs/interrogation-engine/pkg/game"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewMistralService(t *testing.T) {
	service := NewMistralService("test-api-key", "", discardLogger())

	if service.apiKey != "test-api-key" {
		t.Errorf("Expected API key test-api-key, got %s", service.apiKey)
	}
	if service.modelName != DefaultMistralModel {
		t.Errorf("Expected default model %s, got %s", DefaultMistralModel, service.modelName)
	}
	if service.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
}

func TestMistralService_InitModel(t *testing.T) {
	service := NewMistralService("test-key", DefaultMistralModel, discardLogger())

	if err := service.InitModel(context.Background(), "mistral-small-latest"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if service.modelName != "mistral-small-latest" {
		t.Errorf("Expected model override, got %s", service.modelName)
	}
}

func TestMistralService_GenerateTurn(t *testing.T) {
	turnJSON := `{"suspectResponse":"I was home all night.","suspectMood":"nervous","tensionDelta":1}`

	var captured mistralChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Unexpected Authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		resp := map[string]interface{}{
			"id":    "cmpl-1",
			"model": DefaultMistralModel,
			"choices": []map[string]interface{}{
				{
					"index": 0,
					"message": map[string]string{
						"role":    "assistant",
						"content": "```json\n" + turnJSON + "\n```",
					},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("Failed to encode response: %v", err)
		}
	}))
	defer server.Close()

	service := NewMistralService("test-key", "", discardLogger())
	service.baseURL = server.URL

	st := game.NewState()
	turn, err := service.GenerateTurn(context.Background(), TurnRequest{
		PlayerMessage: "Where were you on the night of the outage?",
		State:         st,
		History:       st.HistoryForPrompt(),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if turn.SuspectResponse != "I was home all night." {
		t.Errorf("Unexpected suspect response %q", turn.SuspectResponse)
	}
	if turn.TensionDelta != 1 {
		t.Errorf("Expected tension delta 1, got %d", turn.TensionDelta)
	}

	if len(captured.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("Expected first message role system, got %s", captured.Messages[0].Role)
	}
	if !strings.Contains(captured.Messages[1].Content, "Where were you on the night of the outage?") {
		t.Error("Expected player message in user prompt")
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Error("Expected JSON response format to be requested")
	}
}

func TestMistralService_GenerateTurn_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer server.Close()

	service := NewMistralService("test-key", "", discardLogger())
	service.baseURL = server.URL

	_, err := service.GenerateTurn(context.Background(), TurnRequest{
		PlayerMessage: "Talk.",
		State:         game.NewState(),
	})
	if err == nil {
		t.Fatal("Expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestMistralService_GenerateTurn_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{
					"message": map[string]string{
						"role":    "assistant",
						"content": "She shrugs and says nothing.",
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	service := NewMistralService("test-key", "", discardLogger())
	service.baseURL = server.URL

	_, err := service.GenerateTurn(context.Background(), TurnRequest{
		PlayerMessage: "Talk.",
		State:         game.NewState(),
	})
	if err == nil {
		t.Fatal("Expected error for non-JSON content")
	}
}

func TestStripJSONFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain JSON", `{"a":1}`, `{"a":1}`},
		{"fenced with language", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced bare", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripJSONFences(tt.input); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
