// Package vitality holds the pure rules of the pet simulation: daily decay and
// recovery, death after the mercy window, care actions, care requests, revival
// and the mood derived from the vitals. It never touches storage; the pet
// service loads a pet, applies these rules and persists the result.
package vitality

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
)

// Mood labels derived from the dominant unmet need.
const (
	MoodHappy   = "happy"
	MoodDead    = "dead"
	MoodSick    = "sick"
	MoodHungry  = "hungry"
	MoodThirsty = "thirsty"
	MoodTired   = "tired"
	MoodDirty   = "dirty"
	MoodSad     = "sad"
)

var moodByNeed = map[domain.Vital]string{
	domain.VitalHealth:  MoodSick,
	domain.VitalHunger:  MoodHungry,
	domain.VitalThirst:  MoodThirsty,
	domain.VitalEnergy:  MoodTired,
	domain.VitalHygiene: MoodDirty,
	domain.VitalMood:    MoodSad,
}

// Engine applies the simulation rules with a fixed parameter set.
type Engine struct {
	params *Params
}

// NewEngine creates an engine. Nil params select the defaults.
func NewEngine(params *Params) (*Engine, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{params: params}, nil
}

// Params exposes the simulation parameters.
func (e *Engine) Params() *Params {
	return e.params
}

// NewPet creates a living pet at the initial vital level.
func (e *Engine) NewPet(userID uuid.UUID, now time.Time) *domain.Pet {
	return domain.NewPet(userID, e.params.InitialVital, now)
}

// Evaluate runs one decay evaluation for one bucket in which completed
// sessions were finished. Dead pets are returned unchanged.
func (e *Engine) Evaluate(pet *domain.Pet, completed int) *domain.Pet {
	next := pet.Clone()
	if next.IsDead {
		return next
	}

	if completed > 0 {
		for _, v := range domain.NeedOrder {
			next.AdjustVital(v, e.params.RecoveryBonus)
		}
		next.MissedSessionsStreak = 0
		next.ConsecutiveZeroDays = 0
		return next
	}

	for _, v := range domain.NeedOrder {
		next.AdjustVital(v, -e.params.DecayPerDay[v])
	}
	next.MissedSessionsStreak++

	if next.AllZero() {
		next.ConsecutiveZeroDays++
	} else {
		next.ConsecutiveZeroDays = 0
	}
	if next.ConsecutiveZeroDays >= e.params.MercyWindow {
		next.IsDead = true
	}
	return next
}

// ApplyCare restores the vitals affected by kind.
func (e *Engine) ApplyCare(pet *domain.Pet, kind domain.CareKind) (*domain.Pet, error) {
	effects, ok := e.params.CareEffects[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCareKind, kind)
	}
	next := pet.Clone()
	for _, v := range domain.NeedOrder {
		if amount, ok := effects[v]; ok {
			next.AdjustVital(v, amount)
		}
	}
	return next, nil
}

// CareDue reports whether the lowest vital is below the low-water mark and, if
// so, describes the care interlude to request.
func (e *Engine) CareDue(pet *domain.Pet) (domain.CareRequest, bool) {
	if pet.IsDead {
		return domain.CareRequest{}, false
	}
	need, value := pet.Lowest()
	if value >= e.params.LowWaterMark {
		return domain.CareRequest{}, false
	}
	return e.CareRequestFor(need, value), true
}

// CareRequestFor builds a care request for need.
func (e *Engine) CareRequestFor(need domain.Vital, value int) domain.CareRequest {
	options := make([]domain.CareKind, len(domain.CareKinds))
	copy(options, domain.CareKinds)
	return domain.CareRequest{
		Need:      need,
		Current:   value,
		Suggested: e.suggest(need),
		Options:   options,
	}
}

// suggest picks the care kind restoring need the most, ties broken by the
// presentation order of care kinds.
func (e *Engine) suggest(need domain.Vital) domain.CareKind {
	best, bestAmount := domain.CareKinds[0], 0
	for _, kind := range domain.CareKinds {
		if amount := e.params.CareEffects[kind][need]; amount > bestAmount {
			best, bestAmount = kind, amount
		}
	}
	return best
}

// Revive resets a pet to the revival baseline and counts the resurrection.
func (e *Engine) Revive(pet *domain.Pet, now time.Time) *domain.Pet {
	next := pet.Clone()
	for _, v := range domain.NeedOrder {
		next.SetVital(v, e.params.RevivalBaseline)
	}
	next.IsDead = false
	next.ConsecutiveZeroDays = 0
	next.MissedSessionsStreak = 0
	next.ResurrectStreak++
	next.LastCheckedAt = now.UTC()
	return next
}

// SessionCompleted records a completed session.
func (e *Engine) SessionCompleted(pet *domain.Pet, at time.Time) *domain.Pet {
	next := pet.Clone()
	at = at.UTC()
	next.LastSessionCompletedAt = &at
	next.SessionsToday++
	next.MissedSessionsStreak = 0
	return next
}

// SessionMissed applies the mood penalty for an expired session.
func (e *Engine) SessionMissed(pet *domain.Pet) *domain.Pet {
	next := pet.Clone()
	if !next.IsDead {
		next.AdjustVital(domain.VitalMood, -e.params.MissedSessionPenalty)
	}
	return next
}

// Reward applies the mood bonus for a reward milestone.
func (e *Engine) Reward(pet *domain.Pet) *domain.Pet {
	next := pet.Clone()
	if !next.IsDead {
		next.AdjustVital(domain.VitalMood, e.params.RewardMoodBonus)
	}
	return next
}

// Mood returns the label of the dominant unmet need.
func (e *Engine) Mood(pet *domain.Pet) string {
	if pet.IsDead {
		return MoodDead
	}
	need, value := pet.Lowest()
	if value >= e.params.LowWaterMark {
		return MoodHappy
	}
	return moodByNeed[need]
}
