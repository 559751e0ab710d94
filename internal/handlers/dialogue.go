package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/noirlabs/interrogation-engine/internal/services"
	"github.com/noirlabs/interrogation-engine/internal/storage"
	"github.com/noirlabs/interrogation-engine/pkg/dialogue"
	"github.com/noirlabs/interrogation-engine/pkg/game"
)

const llmTimeout = 30 * time.Second

// DialogueHandler processes player utterances for a session.
// Route: POST /v1/dialogue
type DialogueHandler struct {
	llmService services.LLMService
	storage    storage.Storage
	logger     *slog.Logger
}

func NewDialogueHandler(llmService services.LLMService, storage storage.Storage, logger *slog.Logger) *DialogueHandler {
	return &DialogueHandler{
		llmService: llmService,
		storage:    storage,
		logger:     logger,
	}
}

// gatewayProvider adapts the LLM service to the orchestrator. A nil
// service or a gateway failure falls through to the keyword generator,
// so the response shape never betrays which source produced the turn.
type gatewayProvider struct {
	llm      services.LLMService
	fallback *game.FallbackGenerator
	logger   *slog.Logger
}

func (p *gatewayProvider) NextTurn(ctx context.Context, playerMessage string, st *game.State, history []game.Message) (*game.Turn, error) {
	if p.llm == nil {
		return p.fallback.GenerateTurn(playerMessage, st), nil
	}

	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	turn, err := p.llm.GenerateTurn(llmCtx, services.TurnRequest{
		PlayerMessage: playerMessage,
		State:         st,
		History:       history,
	})
	if err != nil {
		p.logger.Warn("LLM gateway failed, using fallback turn", "error", err)
		return p.fallback.GenerateTurn(playerMessage, st), nil
	}
	return turn, nil
}

func (h *DialogueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		h.logger.Warn("Method not allowed for dialogue endpoint",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)
		w.WriteHeader(http.StatusMethodNotAllowed)
		h.encode(w, game.DialogueResponse{Error: "Method not allowed. Only POST is supported."})
		return
	}

	var request game.DialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, game.DialogueResponse{Error: "Invalid request body. Expected JSON with 'session_id' and 'message' fields."})
		return
	}

	if err := request.Validate(); err != nil {
		h.logger.Warn("Invalid dialogue request", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		h.encode(w, game.DialogueResponse{Error: err.Error()})
		return
	}

	st, err := h.storage.LoadSession(r.Context(), request.SessionID)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", request.SessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, game.DialogueResponse{Error: "Failed to load session"})
		return
	}
	if st == nil {
		w.WriteHeader(http.StatusNotFound)
		h.encode(w, game.DialogueResponse{Error: "Session not found"})
		return
	}

	if st.CaseEnded {
		w.WriteHeader(http.StatusConflict)
		h.encode(w, game.DialogueResponse{
			SessionID: st.ID,
			State:     st,
			Error:     "The case is closed. No further dialogue is accepted.",
		})
		return
	}

	provider := &gatewayProvider{
		llm:      h.llmService,
		fallback: game.NewFallbackGenerator(),
		logger:   h.logger.With("session_id", request.SessionID.String()),
	}

	orch := dialogue.New(st, provider,
		dialogue.WithTimings(dialogue.InstantTimings()),
		dialogue.WithLogger(h.logger))

	turn, err := orch.SendMessage(r.Context(), request.Message)
	if err != nil {
		h.logger.Error("Failed to apply dialogue turn", "uuid", request.SessionID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, game.DialogueResponse{Error: "Failed to process message. Please try again."})
		return
	}

	if err := h.storage.SaveSession(r.Context(), st.ID, st); err != nil {
		h.logger.Error("Failed to save session", "uuid", st.ID, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		h.encode(w, game.DialogueResponse{Error: "Failed to save session"})
		return
	}

	w.WriteHeader(http.StatusOK)
	h.encode(w, game.DialogueResponse{
		SessionID: st.ID,
		Turn:      turn,
		State:     st,
	})
}

func (h *DialogueHandler) encode(w http.ResponseWriter, resp game.DialogueResponse) {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Error encoding dialogue response", "error", err)
	}
}
