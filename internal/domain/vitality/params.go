package vitality

import (
	"errors"
	"fmt"

	"github.com/phrazzld/petdeck/internal/domain"
)

// Parameter validation errors
var (
	ErrInvalidMercyWindow = errors.New("mercy window must be at least 1")
	ErrNegativeRate       = errors.New("rates and amounts cannot be negative")
	ErrOutOfRange         = errors.New("value must be within vital bounds")
)

// Params defines all configurable parameters of the pet simulation.
type Params struct {
	// InitialVital is the value every vital starts at for a new pet.
	InitialVital int

	// DecayPerDay is subtracted from each vital for every day without a
	// completed session.
	DecayPerDay map[domain.Vital]int

	// RecoveryBonus is added to every vital for a day with a completed session.
	RecoveryBonus int

	// MercyWindow is the number of consecutive all-zero evaluations after
	// which the pet dies.
	MercyWindow int

	// LowWaterMark is the vital level below which a care interlude is requested.
	LowWaterMark int

	// CareEffects lists, per care kind, how much each vital is restored.
	CareEffects map[domain.CareKind]map[domain.Vital]int

	// RevivalBaseline is the value every vital is set to on revival.
	RevivalBaseline int

	// RewardMoodBonus is added to mood when a session reaches a reward milestone.
	RewardMoodBonus int

	// MissedSessionPenalty is subtracted from mood when a session expires.
	MissedSessionPenalty int
}

// ParamsConfig allows overriding the default parameters. Zero values and
// missing map entries keep the defaults, except for the pointer fields where
// zero is a meaningful setting and only nil keeps the default.
type ParamsConfig struct {
	InitialVital         int
	DecayPerDay          map[domain.Vital]int
	RecoveryBonus        *int
	MercyWindow          int
	LowWaterMark         *int
	CareAmount           int
	RevivalBaseline      int
	RewardMoodBonus      *int
	MissedSessionPenalty *int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		InitialVital: 100,
		DecayPerDay: map[domain.Vital]int{
			domain.VitalHunger:  10,
			domain.VitalThirst:  10,
			domain.VitalHygiene: 10,
			domain.VitalEnergy:  10,
			domain.VitalMood:    10,
			domain.VitalHealth:  10,
		},
		RecoveryBonus:        10,
		MercyWindow:          3,
		LowWaterMark:         30,
		CareEffects:          careEffects(30, 5),
		RevivalBaseline:      50,
		RewardMoodBonus:      5,
		MissedSessionPenalty: 10,
	}
}

// careEffects builds the care table: each kind restores its primary vital by
// amount, and the hygiene, food and water kinds also restore health by bonus.
func careEffects(amount, bonus int) map[domain.CareKind]map[domain.Vital]int {
	return map[domain.CareKind]map[domain.Vital]int{
		domain.CareFeed:  {domain.VitalHunger: amount, domain.VitalHealth: bonus},
		domain.CareWater: {domain.VitalThirst: amount, domain.VitalHealth: bonus},
		domain.CareClean: {domain.VitalHygiene: amount, domain.VitalHealth: bonus},
		domain.CareRest:  {domain.VitalEnergy: amount},
		domain.CarePlay:  {domain.VitalMood: amount},
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.InitialVital > 0 {
		params.InitialVital = config.InitialVital
	}
	for v, rate := range config.DecayPerDay {
		params.DecayPerDay[v] = rate
	}
	if config.RecoveryBonus != nil {
		params.RecoveryBonus = *config.RecoveryBonus
	}
	if config.MercyWindow > 0 {
		params.MercyWindow = config.MercyWindow
	}
	if config.LowWaterMark != nil {
		params.LowWaterMark = *config.LowWaterMark
	}
	if config.CareAmount > 0 {
		params.CareEffects = careEffects(config.CareAmount, 5)
	}
	if config.RevivalBaseline > 0 {
		params.RevivalBaseline = config.RevivalBaseline
	}
	if config.RewardMoodBonus != nil {
		params.RewardMoodBonus = *config.RewardMoodBonus
	}
	if config.MissedSessionPenalty != nil {
		params.MissedSessionPenalty = *config.MissedSessionPenalty
	}

	return params
}

// Validate checks that the parameters describe a usable simulation.
func (p *Params) Validate() error {
	if p.MercyWindow < 1 {
		return ErrInvalidMercyWindow
	}
	for _, v := range domain.NeedOrder {
		if p.DecayPerDay[v] < 0 {
			return fmt.Errorf("%w: decay for %s", ErrNegativeRate, v)
		}
	}
	if p.RecoveryBonus < 0 || p.RewardMoodBonus < 0 || p.MissedSessionPenalty < 0 {
		return ErrNegativeRate
	}
	for name, v := range map[string]int{
		"initial vital":    p.InitialVital,
		"revival baseline": p.RevivalBaseline,
		"low-water mark":   p.LowWaterMark,
	} {
		if v < domain.MinVital || v > domain.MaxVital {
			return fmt.Errorf("%w: %s is %d", ErrOutOfRange, name, v)
		}
	}
	return nil
}
