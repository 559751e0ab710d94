package game

import (
	"fmt"

	"github.com/google/uuid"
)

// DialogueRequest is one player utterance posted to the api.
type DialogueRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	Message   string    `json:"message"`
}

func (r *DialogueRequest) Validate() error {
	if r.SessionID == uuid.Nil {
		return fmt.Errorf("session_id is required")
	}
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// DialogueResponse carries the structured turn for the utterance plus
// the updated session state. Callers cannot tell gateway-sourced from
// fallback-sourced turns by shape.
type DialogueResponse struct {
	SessionID uuid.UUID `json:"session_id,omitempty"`
	Turn      *Turn     `json:"turn,omitempty"`
	State     *State    `json:"state,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// SessionResponse is returned by the session endpoints.
type SessionResponse struct {
	State *State `json:"state,omitempty"`
	Error string `json:"error,omitempty"`
}
