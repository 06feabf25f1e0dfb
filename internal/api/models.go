package api

import (
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/plan"
	"github.com/phrazzld/petdeck/internal/service/session"
)

// UpdateMeRequest is the payload of PUT /api/me. Absent fields are unchanged.
type UpdateMeRequest struct {
	Timezone             *string `json:"timezone"              validate:"omitempty,timezone"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// OpenSessionRequest is the payload of POST /api/sessions.
type OpenSessionRequest struct {
	Level int `json:"level" validate:"gte=1"`
}

// SubmitAttemptRequest is the payload of POST /api/sessions/{id}/attempts.
// An absent first_try means the answer is a first try.
type SubmitAttemptRequest struct {
	Answer   string `json:"answer"    validate:"max=500"`
	FirstTry *bool  `json:"first_try"`
}

// Submission converts the request for the session service.
func (r SubmitAttemptRequest) Submission() session.Submission {
	first := true
	if r.FirstTry != nil {
		first = *r.FirstTry
	}
	return session.Submission{Answer: r.Answer, FirstTry: first}
}

// CareRequest is the payload of POST /api/sessions/{id}/care.
type CareRequest struct {
	Kind domain.CareKind `json:"kind" validate:"required,oneof=feed water clean rest play"`
}

// RedeemRequest is the payload of POST /api/pet/revive.
type RedeemRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

// ScheduleResponse is the body of GET /api/schedule.
type ScheduleResponse struct {
	Slots []plan.Slot `json:"slots"`
}
