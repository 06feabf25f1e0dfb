package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/api/shared"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service/pet"
)

// PetService is the part of the pet service the HTTP surface exposes.
type PetService interface {
	Status(ctx context.Context, userID uuid.UUID) (*pet.Status, error)
	RequestReviveToken(ctx context.Context, userID uuid.UUID) (*pet.ReviveToken, error)
	Redeem(ctx context.Context, userID uuid.UUID, token string) (*domain.Pet, error)
}

// PetHandler handles pet requests.
type PetHandler struct {
	pets   PetService
	logger *slog.Logger
}

// NewPetHandler creates a new PetHandler.
func NewPetHandler(pets PetService, logger *slog.Logger) *PetHandler {
	if pets == nil {
		panic("pets cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PetHandler{
		pets:   pets,
		logger: logger.With(slog.String("component", "pet_handler")),
	}
}

// Status handles GET /api/pet.
func (h *PetHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	status, err := h.pets.Status(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load pet")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// RequestReviveToken handles POST /api/pet/revive-token. The plaintext token
// appears only in this response.
func (h *PetHandler) RequestReviveToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	token, err := h.pets.RequestReviveToken(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to issue revival token")
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("revival token issued",
		slog.Time("expires_at", token.ExpiresAt))
	shared.RespondWithJSON(w, r, http.StatusCreated, token)
}

// Redeem handles POST /api/pet/revive.
func (h *PetHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req RedeemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	revived, err := h.pets.Redeem(r.Context(), userID, req.Token)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to revive pet")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, revived)
}
