package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Vital bounds.
const (
	MinVital = 0
	MaxVital = 100
)

// Vital names one of the pet's six vitals.
type Vital string

// The six vitals.
const (
	VitalHealth  Vital = "health"
	VitalHunger  Vital = "hunger"
	VitalThirst  Vital = "thirst"
	VitalEnergy  Vital = "energy"
	VitalHygiene Vital = "hygiene"
	VitalMood    Vital = "mood"
)

// NeedOrder is the fixed priority used to break ties between equally low vitals.
var NeedOrder = []Vital{VitalHealth, VitalHunger, VitalThirst, VitalEnergy, VitalHygiene, VitalMood}

// CareKind is a vitality-restoring action.
type CareKind string

// Care kinds.
const (
	CareFeed  CareKind = "feed"
	CareWater CareKind = "water"
	CareClean CareKind = "clean"
	CareRest  CareKind = "rest"
	CarePlay  CareKind = "play"
)

// CareKinds lists every care kind in presentation order.
var CareKinds = []CareKind{CareFeed, CareWater, CareClean, CareRest, CarePlay}

// Valid reports whether k is a known care kind.
func (k CareKind) Valid() bool {
	for _, c := range CareKinds {
		if c == k {
			return true
		}
	}
	return false
}

// ClampVital bounds v to [MinVital, MaxVital].
func ClampVital(v int) int {
	if v < MinVital {
		return MinVital
	}
	if v > MaxVital {
		return MaxVital
	}
	return v
}

// CareRequest describes a pending care interlude. It is persisted as the
// session state's care payload.
type CareRequest struct {
	Need      Vital      `json:"need"`
	Current   int        `json:"value"`
	Suggested CareKind   `json:"suggested"`
	Options   []CareKind `json:"options"`
	Gate      bool       `json:"gate,omitempty"`
}

// Value implements driver.Valuer.
func (c CareRequest) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *CareRequest) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), c)
	case []byte:
		return json.Unmarshal(v, c)
	default:
		return fmt.Errorf("cannot scan %T into CareRequest", src)
	}
}

// Pet is the per-user virtual pet. Vitals are kept in [0, 100].
type Pet struct {
	UserID                 uuid.UUID  `json:"user_id" db:"user_id"`
	Hunger                 int        `json:"hunger" db:"hunger"`
	Thirst                 int        `json:"thirst" db:"thirst"`
	Hygiene                int        `json:"hygiene" db:"hygiene"`
	Energy                 int        `json:"energy" db:"energy"`
	Mood                   int        `json:"mood" db:"mood"`
	Health                 int        `json:"health" db:"health"`
	SessionsToday          int        `json:"sessions_today" db:"sessions_today"`
	MissedSessionsStreak   int        `json:"missed_sessions_streak" db:"missed_sessions_streak"`
	ConsecutiveZeroDays    int        `json:"consecutive_zero_days" db:"consecutive_zero_days"`
	ResurrectStreak        int        `json:"resurrect_streak" db:"resurrect_streak"`
	IsDead                 bool       `json:"is_dead" db:"is_dead"`
	LastCheckedAt          time.Time  `json:"last_checked_at" db:"last_checked_at"`
	LastSessionCompletedAt *time.Time `json:"last_session_completed_at,omitempty" db:"last_session_completed_at"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// NewPet creates a pet with every vital at initial.
func NewPet(userID uuid.UUID, initial int, now time.Time) *Pet {
	p := &Pet{
		UserID:        userID,
		LastCheckedAt: now.UTC(),
		CreatedAt:     now.UTC(),
		UpdatedAt:     now.UTC(),
	}
	for _, v := range NeedOrder {
		p.SetVital(v, initial)
	}
	return p
}

// Vital returns the current value of v.
func (p *Pet) Vital(v Vital) int {
	switch v {
	case VitalHealth:
		return p.Health
	case VitalHunger:
		return p.Hunger
	case VitalThirst:
		return p.Thirst
	case VitalEnergy:
		return p.Energy
	case VitalHygiene:
		return p.Hygiene
	case VitalMood:
		return p.Mood
	}
	return 0
}

// SetVital stores value for v, clamped.
func (p *Pet) SetVital(v Vital, value int) {
	value = ClampVital(value)
	switch v {
	case VitalHealth:
		p.Health = value
	case VitalHunger:
		p.Hunger = value
	case VitalThirst:
		p.Thirst = value
	case VitalEnergy:
		p.Energy = value
	case VitalHygiene:
		p.Hygiene = value
	case VitalMood:
		p.Mood = value
	}
}

// AdjustVital adds delta to v, clamped.
func (p *Pet) AdjustVital(v Vital, delta int) {
	p.SetVital(v, p.Vital(v)+delta)
}

// AllZero reports whether every vital is at the floor.
func (p *Pet) AllZero() bool {
	for _, v := range NeedOrder {
		if p.Vital(v) != MinVital {
			return false
		}
	}
	return true
}

// Lowest returns the lowest vital, ties broken by NeedOrder.
func (p *Pet) Lowest() (Vital, int) {
	lowest, value := NeedOrder[0], p.Vital(NeedOrder[0])
	for _, v := range NeedOrder[1:] {
		if p.Vital(v) < value {
			lowest, value = v, p.Vital(v)
		}
	}
	return lowest, value
}

// Clone returns a deep copy.
func (p *Pet) Clone() *Pet {
	c := *p
	if p.LastSessionCompletedAt != nil {
		t := *p.LastSessionCompletedAt
		c.LastSessionCompletedAt = &t
	}
	return &c
}

// RevivalToken is a single-use capability to resurrect a dead pet. Only a hash
// of the token is stored.
type RevivalToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Usable reports whether the token is unused and unexpired at now.
func (t *RevivalToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
