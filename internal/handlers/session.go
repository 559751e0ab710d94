package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/noirlabs/interrogation-engine/internal/storage"
	"github.com/noirlabs/interrogation-engine/pkg/dialogue"
	"github.com/noirlabs/interrogation-engine/pkg/game"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// SessionHandler manages interrogation sessions.
// Routes:
// POST /v1/sessions          - Create new session (plays the opening script)
// GET /v1/sessions/{id}      - Read session state by ID
// DELETE /v1/sessions/{id}   - Delete session by ID
type SessionHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewSessionHandler(storage storage.Storage, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions")
	var sessionID uuid.UUID
	var err error

	if path != "" && path != "/" {
		idStr := strings.Trim(path, "/")
		sessionID, err = uuid.Parse(idStr)
		if err != nil {
			h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
			writeJSONError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
			return
		}
	}

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)

	case http.MethodGet:
		if sessionID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Session ID is required for GET requests")
			return
		}
		h.handleRead(w, r, sessionID)

	case http.MethodDelete:
		if sessionID == uuid.Nil {
			writeJSONError(w, h.logger, http.StatusBadRequest, "Session ID is required for DELETE requests")
			return
		}
		h.handleDelete(w, r, sessionID)

	default:
		h.logger.Warn("Method not allowed for sessions endpoint", "method", r.Method)
		writeJSONError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST, GET, DELETE")
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Creating new session")

	st := game.NewState()

	// Run the opening script without presentation delays. The
	// transcript and phase change land in the stored state; clients
	// replay the pacing themselves.
	orch := dialogue.New(st, dialogue.NewFallbackProvider(),
		dialogue.WithTimings(dialogue.InstantTimings()),
		dialogue.WithLogger(h.logger))
	if err := orch.PlayIntro(r.Context()); err != nil {
		h.logger.Error("Failed to play opening script", "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	if err := h.storage.SaveSession(r.Context(), st.ID, st); err != nil {
		h.logger.Error("Failed to save session", "uuid", st.ID, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}

	h.logger.Info("Session created", "uuid", st.ID)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(game.SessionResponse{State: st}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	st, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if st == nil {
		writeJSONError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(game.SessionResponse{State: st}); err != nil {
		h.logger.Error("Failed to encode session response", "error", err)
	}
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	st, err := h.storage.LoadSession(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "uuid", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	if st == nil {
		writeJSONError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	if err := h.storage.DeleteSession(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "uuid", id, "error", err)
		writeJSONError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	h.logger.Info("Session deleted", "uuid", id)
	w.WriteHeader(http.StatusNoContent)
}

func writeJSONError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		logger.Error("Failed to encode error response", "error", err)
	}
}
