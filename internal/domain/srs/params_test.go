package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultParams(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	require.NoError(t, params.Validate())
	assert.Equal(t, 2, params.GraduationThreshold)
	assert.Equal(t, 2, params.DemoteBy)
	assert.Equal(t, []time.Duration{1 * Day, 3 * Day, 7 * Day, 16 * Day, 35 * Day}, params.Intervals)
	assert.Equal(t, 5, params.MaxStage())
}

func TestNewParams(t *testing.T) {
	t.Parallel()

	t.Run("zero config keeps defaults", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, NewDefaultParams(), NewParams(ParamsConfig{}))
	})

	t.Run("overrides are applied", func(t *testing.T) {
		t.Parallel()
		params := NewParams(ParamsConfig{
			GraduationThreshold: 3,
			IntervalDays:        []int{2, 4},
			DemoteBy:            1,
		})
		assert.Equal(t, 3, params.GraduationThreshold)
		assert.Equal(t, 1, params.DemoteBy)
		assert.Equal(t, []time.Duration{2 * Day, 4 * Day}, params.Intervals)
	})
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		params  Params
		wantErr error
	}{
		{
			name:    "empty table",
			params:  Params{GraduationThreshold: 2, DemoteBy: 2},
			wantErr: ErrNoIntervals,
		},
		{
			name:    "flat table",
			params:  Params{GraduationThreshold: 2, DemoteBy: 2, Intervals: []time.Duration{Day, Day}},
			wantErr: ErrIntervalsNotIncreasing,
		},
		{
			name:    "decreasing table",
			params:  Params{GraduationThreshold: 2, DemoteBy: 2, Intervals: []time.Duration{3 * Day, Day}},
			wantErr: ErrIntervalsNotIncreasing,
		},
		{
			name:    "zero threshold",
			params:  Params{DemoteBy: 2, Intervals: []time.Duration{Day}},
			wantErr: ErrInvalidThreshold,
		},
		{
			name:    "zero demotion",
			params:  Params{GraduationThreshold: 1, Intervals: []time.Duration{Day}},
			wantErr: ErrInvalidDemotion,
		},
		{
			name:   "single entry",
			params: Params{GraduationThreshold: 1, DemoteBy: 1, Intervals: []time.Duration{Day}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.params.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestParamsInterval(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	assert.Equal(t, 1*Day, params.Interval(0), "stage below 1 clamps to the first entry")
	assert.Equal(t, 1*Day, params.Interval(1))
	assert.Equal(t, 7*Day, params.Interval(3))
	assert.Equal(t, 35*Day, params.Interval(5))
	assert.Equal(t, 35*Day, params.Interval(9), "stage above the table clamps to the last entry")
}
