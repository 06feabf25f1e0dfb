package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/api/shared"
	"github.com/phrazzld/petdeck/internal/domain/plan"
)

// defaultUpcoming is the slot count when the request names none.
const defaultUpcoming = 4

// ScheduleService lists a user's upcoming session slots.
type ScheduleService interface {
	Upcoming(ctx context.Context, userID uuid.UUID, n int) ([]plan.Slot, error)
}

// ScheduleHandler handles the caller's session plan.
type ScheduleHandler struct {
	schedule ScheduleService
	logger   *slog.Logger
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedule ScheduleService, logger *slog.Logger) *ScheduleHandler {
	if schedule == nil {
		panic("schedule cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleHandler{
		schedule: schedule,
		logger:   logger.With(slog.String("component", "schedule_handler")),
	}
}

// Upcoming handles GET /api/schedule?count=N.
func (h *ScheduleHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	count := defaultUpcoming
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = n
	}

	slots, err := h.schedule.Upcoming(r.Context(), userID, count)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load schedule")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ScheduleResponse{Slots: slots})
}
