package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/sethvargo/go-retry"
)

const retryBackoff = 50 * time.Millisecond

// Retrying bounds every call to the wrapped oracle by a timeout and retries
// transient failures.
type Retrying struct {
	next    Oracle
	timeout time.Duration
	retries uint64
	logger  *slog.Logger
}

var _ Oracle = (*Retrying)(nil)

// NewRetrying wraps next. A timeout <= 0 disables the per-call deadline.
func NewRetrying(next Oracle, timeout time.Duration, retries int, logger *slog.Logger) *Retrying {
	if next == nil {
		panic("next oracle cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if retries < 0 {
		retries = 0
	}
	return &Retrying{
		next:    next,
		timeout: timeout,
		retries: uint64(retries),
		logger:  logger.With(slog.String("component", "oracle")),
	}
}

// Score implements Oracle. Timeouts and domain.ErrTransientIO are retried;
// when retries run out the result wraps domain.ErrTransientIO.
func (r *Retrying) Score(ctx context.Context, answer Answer) (Result, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	backoff := retry.WithMaxRetries(r.retries, retry.NewConstant(retryBackoff))

	attempt := 0
	result, err := retry.DoValue(ctx, backoff, func(ctx context.Context) (Result, error) {
		attempt++
		callCtx := ctx
		if r.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, r.timeout)
			defer cancel()
		}

		result, err := r.next.Score(callCtx, answer)
		if err == nil {
			return result, nil
		}
		if ctx.Err() == nil && transient(err) {
			log.Warn("oracle call failed, retrying",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return Result{}, retry.RetryableError(err)
		}
		return Result{}, err
	})
	if err != nil {
		if transient(err) && !errors.Is(err, domain.ErrTransientIO) {
			err = fmt.Errorf("%w: oracle: %w", domain.ErrTransientIO, err)
		}
		return Result{}, err
	}

	if result.Score < 0 {
		result.Score = 0
	}
	if result.Score > MaxScore {
		result.Score = MaxScore
	}
	result.FirstTry = result.FirstTry && answer.FirstTry
	return result, nil
}

func transient(err error) bool {
	return errors.Is(err, domain.ErrTransientIO) ||
		errors.Is(err, context.DeadlineExceeded)
}
