package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/petdeck/internal/api/shared"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service/users"
)

// UserHandler handles the caller's profile.
type UserHandler struct {
	users  users.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService users.UserService, logger *slog.Logger) *UserHandler {
	if userService == nil {
		panic("userService cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  userService,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// UpdateMe handles PUT /api/me. It registers the caller on first use.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.users.Ensure(r.Context(), userID, users.Update{
		Timezone:             req.Timezone,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Debug("profile updated")
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// GetMe handles GET /api/me.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.users.Get(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}
