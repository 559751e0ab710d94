package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/noirlabs/interrogation-engine/pkg/game"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func createSession(client *http.Client, baseURL string) (*game.State, error) {
	resp, err := client.Post(baseURL+"/v1/sessions", "application/json", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to create session: %s", errorResp.Error)
	}

	var sessionResp game.SessionResponse
	if err := json.Unmarshal(body, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	if sessionResp.State == nil {
		return nil, fmt.Errorf("session response had no state")
	}

	return sessionResp.State, nil
}

func getSession(client *http.Client, baseURL string, sessionID uuid.UUID) (*game.State, error) {
	resp, err := client.Get(fmt.Sprintf("%s/v1/sessions/%s", baseURL, sessionID))
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ErrorResponse
		if err := json.Unmarshal(body, &errorResp); err != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("failed to get session: %s", errorResp.Error)
	}

	var sessionResp game.SessionResponse
	if err := json.Unmarshal(body, &sessionResp); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return sessionResp.State, nil
}

// apiProvider satisfies dialogue.TurnProvider by posting each player
// line to the API. The server applies the turn to its stored session;
// the local orchestrator applies the same turn for presentation.
type apiProvider struct {
	client    *http.Client
	baseURL   string
	sessionID uuid.UUID
}

func (p *apiProvider) NextTurn(ctx context.Context, playerMessage string, _ *game.State, _ []game.Message) (*game.Turn, error) {
	reqBody := game.DialogueRequest{
		SessionID: p.sessionID,
		Message:   playerMessage,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/dialogue", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var dialogueResp game.DialogueResponse
		if err := json.Unmarshal(body, &dialogueResp); err != nil || dialogueResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("dialogue request failed: %s", dialogueResp.Error)
	}

	var dialogueResp game.DialogueResponse
	if err := json.Unmarshal(body, &dialogueResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if dialogueResp.Turn == nil {
		return nil, fmt.Errorf("dialogue response had no turn")
	}

	return dialogueResp.Turn, nil
}
