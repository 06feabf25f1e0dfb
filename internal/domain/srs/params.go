package srs

import (
	"errors"
	"fmt"
	"time"
)

// Day is the unit of the review interval table.
const Day = 24 * time.Hour

// Parameter validation errors
var (
	ErrNoIntervals            = errors.New("interval table cannot be empty")
	ErrIntervalsNotIncreasing = errors.New("interval table must be strictly increasing")
	ErrInvalidThreshold       = errors.New("graduation threshold must be at least 1")
	ErrInvalidDemotion        = errors.New("demotion step must be at least 1")
)

// Params defines all configurable parameters for the two-phase scheduler.
type Params struct {
	// GraduationThreshold is the number of correct first-try answers in the
	// learning phase before an item moves to review stage 1.
	GraduationThreshold int

	// Intervals is the review interval table. Stage n uses Intervals[n-1].
	Intervals []time.Duration

	// DemoteBy is how many stages an incorrect review answer drops, floored at 1.
	DemoteBy int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero values keep the defaults.
type ParamsConfig struct {
	GraduationThreshold int
	IntervalDays        []int
	DemoteBy            int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		GraduationThreshold: 2,
		Intervals:           []time.Duration{1 * Day, 3 * Day, 7 * Day, 16 * Day, 35 * Day},
		DemoteBy:            2,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.GraduationThreshold > 0 {
		params.GraduationThreshold = config.GraduationThreshold
	}
	if len(config.IntervalDays) > 0 {
		params.Intervals = make([]time.Duration, len(config.IntervalDays))
		for i, days := range config.IntervalDays {
			params.Intervals[i] = time.Duration(days) * Day
		}
	}
	if config.DemoteBy > 0 {
		params.DemoteBy = config.DemoteBy
	}

	return params
}

// Validate checks that the parameters describe a usable policy.
func (p *Params) Validate() error {
	if p.GraduationThreshold < 1 {
		return ErrInvalidThreshold
	}
	if p.DemoteBy < 1 {
		return ErrInvalidDemotion
	}
	if len(p.Intervals) == 0 {
		return ErrNoIntervals
	}
	for i, d := range p.Intervals {
		if d <= 0 {
			return fmt.Errorf("%w: entry %d is %s", ErrIntervalsNotIncreasing, i+1, d)
		}
		if i > 0 && d <= p.Intervals[i-1] {
			return fmt.Errorf("%w: entry %d (%s) <= entry %d (%s)",
				ErrIntervalsNotIncreasing, i+1, d, i, p.Intervals[i-1])
		}
	}
	return nil
}

// MaxStage is the highest reachable review stage.
func (p *Params) MaxStage() int {
	return len(p.Intervals)
}

// Interval returns the interval for a review stage, clamping stage to [1, MaxStage].
func (p *Params) Interval(stage int) time.Duration {
	if stage < 1 {
		stage = 1
	}
	if stage > p.MaxStage() {
		stage = p.MaxStage()
	}
	return p.Intervals[stage-1]
}
