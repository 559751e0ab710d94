package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noirlabs/interrogation-engine/internal/storage"
	"github.com/noirlabs/interrogation-engine/pkg/game"
)

func TestSessionHandler_Create(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewSessionHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp game.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.State)

	// Opening script has played and the case is open for questions
	assert.Equal(t, game.PhaseInvestigation, resp.State.Phase)
	assert.Equal(t, 2, resp.State.Tension)
	assert.False(t, resp.State.CaseEnded)
	require.Len(t, resp.State.Transcript, 5)
	assert.Equal(t, game.SpeakerNarrator, resp.State.Transcript[0].Speaker)

	loaded, err := store.LoadSession(context.Background(), resp.State.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, resp.State.ID, loaded.ID)
}

func TestSessionHandler_Read(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewSessionHandler(store, testLogger())

	st := game.NewState()
	st.Tension = 7
	require.NoError(t, store.SaveSession(context.Background(), st.ID, st))

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions/"+st.ID.String(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp game.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.State)
	assert.Equal(t, st.ID, resp.State.ID)
	assert.Equal(t, 7, resp.State.Tension)
}

func TestSessionHandler_Delete(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewSessionHandler(store, testLogger())

	st := game.NewState()
	require.NoError(t, store.SaveSession(context.Background(), st.ID, st))

	req := httptest.NewRequest(http.MethodDelete, "/v1/sessions/"+st.ID.String(), nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	loaded, err := store.LoadSession(context.Background(), st.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionHandler_Errors(t *testing.T) {
	store := storage.NewMemoryStorage()
	handler := NewSessionHandler(store, testLogger())

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{
			name:           "invalid session ID",
			method:         http.MethodGet,
			path:           "/v1/sessions/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "GET without ID",
			method:         http.MethodGet,
			path:           "/v1/sessions",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "DELETE without ID",
			method:         http.MethodDelete,
			path:           "/v1/sessions",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown session",
			method:         http.MethodGet,
			path:           "/v1/sessions/" + uuid.NewString(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "delete unknown session",
			method:         http.MethodDelete,
			path:           "/v1/sessions/" + uuid.NewString(),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "method not allowed",
			method:         http.MethodPatch,
			path:           "/v1/sessions",
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}
