package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/petdeck/internal/api/shared"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service/session"
)

// SessionHandler handles session requests.
type SessionHandler struct {
	sessions session.Service
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions session.Service, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// Open handles POST /api/sessions.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req OpenSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	view, err := h.sessions.OpenSession(r.Context(), userID, req.Level)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to open session")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("session opened",
		slog.String("session_id", view.Session.ID.String()),
		slog.Int("level", req.Level))
	shared.RespondWithJSON(w, r, http.StatusCreated, view)
}

// Active handles GET /api/sessions/active.
func (h *SessionHandler) Active(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	view, err := h.sessions.ActiveSession(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// SubmitAttempt handles POST /api/sessions/{id}/attempts.
func (h *SessionHandler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req SubmitAttemptRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.sessions.SubmitAttempt(r.Context(), userID, sessionID, req.Submission())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// ResolveCare handles POST /api/sessions/{id}/care.
func (h *SessionHandler) ResolveCare(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req CareRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.sessions.ResolveCare(r.Context(), userID, sessionID, req.Kind)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to care for pet")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Complete handles POST /api/sessions/{id}/complete.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, sessionID, ok := handleUserIDAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	sess, err := h.sessions.CompleteSession(r.Context(), userID, sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sess)
}
