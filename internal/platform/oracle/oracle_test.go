package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinScore(t *testing.T) {
	t.Parallel()
	o := NewLevenshtein()

	testCases := []struct {
		name      string
		submitted string
		expected  string
		min, max  int
	}{
		{name: "exact", submitted: "кіт", expected: "кіт", min: 100, max: 100},
		{name: "case and punctuation", submitted: "  Кіт!! ", expected: "кіт", min: 100, max: 100},
		{name: "inner whitespace", submitted: "добрий   ранок", expected: "Добрий ранок.", min: 100, max: 100},
		{name: "one typo", submitted: "собака", expected: "собаки", min: 80, max: 90},
		{name: "unrelated", submitted: "xyz", expected: "молоко", min: 0, max: 20},
		{name: "empty submission", submitted: "", expected: "молоко", min: 0, max: 0},
		{name: "compatibility forms", submitted: "ｃａｔ", expected: "cat", min: 100, max: 100},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			result, err := o.Score(context.Background(), Answer{Submitted: tc.submitted, Expected: tc.expected, FirstTry: true})
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.Score, tc.min)
			assert.LessOrEqual(t, result.Score, tc.max)
			assert.True(t, result.FirstTry)
		})
	}
}

func TestLevenshteinCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLevenshtein().Score(ctx, Answer{Submitted: "a", Expected: "a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetryingRetriesTransientOnce(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	flaky := Func(func(ctx context.Context, answer Answer) (Result, error) {
		if calls.Add(1) == 1 {
			return Result{}, domain.ErrTransientIO
		}
		return Result{Score: 87, FirstTry: answer.FirstTry}, nil
	})

	r := NewRetrying(flaky, time.Second, 1, logger.NewDiscard())
	result, err := r.Score(context.Background(), Answer{Submitted: "a", Expected: "b", FirstTry: true})

	require.NoError(t, err)
	assert.Equal(t, 87, result.Score)
	assert.True(t, result.FirstTry)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryingGivesUpAfterRetries(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	down := Func(func(ctx context.Context, answer Answer) (Result, error) {
		calls.Add(1)
		return Result{}, domain.ErrTransientIO
	})

	r := NewRetrying(down, time.Second, 1, logger.NewDiscard())
	_, err := r.Score(context.Background(), Answer{Submitted: "a", Expected: "b"})

	assert.ErrorIs(t, err, domain.ErrTransientIO)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryingTimeoutIsTransient(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	slow := Func(func(ctx context.Context, answer Answer) (Result, error) {
		calls.Add(1)
		<-ctx.Done()
		return Result{}, ctx.Err()
	})

	r := NewRetrying(slow, 5*time.Millisecond, 1, logger.NewDiscard())
	_, err := r.Score(context.Background(), Answer{Submitted: "a", Expected: "b"})

	assert.ErrorIs(t, err, domain.ErrTransientIO)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryingDoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	permanent := errors.New("bad input")
	broken := Func(func(ctx context.Context, answer Answer) (Result, error) {
		calls.Add(1)
		return Result{}, permanent
	})

	r := NewRetrying(broken, time.Second, 3, logger.NewDiscard())
	_, err := r.Score(context.Background(), Answer{Submitted: "a", Expected: "b"})

	assert.ErrorIs(t, err, permanent)
	assert.NotErrorIs(t, err, domain.ErrTransientIO)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetryingClampsScore(t *testing.T) {
	t.Parallel()
	over := Func(func(ctx context.Context, answer Answer) (Result, error) {
		return Result{Score: 140}, nil
	})

	result, err := NewRetrying(over, 0, 0, nil).Score(context.Background(), Answer{Submitted: "a", Expected: "b"})
	require.NoError(t, err)
	assert.Equal(t, MaxScore, result.Score)
}

func TestFirstTryFlag(t *testing.T) {
	t.Parallel()

	// A backend that ignores the flag and always claims a first try.
	eager := Func(func(ctx context.Context, answer Answer) (Result, error) {
		return Result{Score: 100, FirstTry: true}, nil
	})
	// A backend that detected a repeated recording.
	repeated := Func(func(ctx context.Context, answer Answer) (Result, error) {
		return Result{Score: 100, FirstTry: false}, nil
	})

	testCases := []struct {
		name     string
		next     Oracle
		claimed  bool
		expected bool
	}{
		{name: "levenshtein keeps first try", next: NewLevenshtein(), claimed: true, expected: true},
		{name: "levenshtein keeps retake", next: NewLevenshtein(), claimed: false, expected: false},
		{name: "backend cannot promote a retake", next: eager, claimed: false, expected: false},
		{name: "backend can demote a first try", next: repeated, claimed: true, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := NewRetrying(tc.next, time.Second, 1, logger.NewDiscard())
			result, err := r.Score(context.Background(), Answer{Submitted: "cat", Expected: "cat", FirstTry: tc.claimed})
			require.NoError(t, err)
			assert.Equal(t, tc.expected, result.FirstTry)
		})
	}
}
