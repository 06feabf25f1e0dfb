package srs

import (
	"errors"
	"time"

	"github.com/phrazzld/petdeck/internal/domain"
)

// Common errors
var (
	ErrNilProgress = errors.New("item progress cannot be nil")
)

// Service defines the interface for the item scheduling policy. It is pure:
// it never touches storage.
type Service interface {
	// RecordAttempt computes new progress for an item after a graded answer.
	RecordAttempt(
		progress *domain.ItemProgress,
		correct, firstTry bool,
		now time.Time,
	) (*domain.ItemProgress, error)

	// SortDue returns the items due at now, ordered by due time then content
	// ID, capped at limit (no cap when limit <= 0).
	SortDue(items []*domain.ItemProgress, now time.Time, limit int) []*domain.ItemProgress

	// Params exposes the policy parameters.
	Params() *Params
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
// It returns an error if the parameters are not a usable policy.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		params = NewDefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{
		params: params,
	}, nil
}

// RecordAttempt implements Service.
func (s *defaultService) RecordAttempt(
	progress *domain.ItemProgress,
	correct, firstTry bool,
	now time.Time,
) (*domain.ItemProgress, error) {
	if progress == nil {
		return nil, ErrNilProgress
	}
	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return calculateNextProgress(progress, correct, firstTry, now.UTC(), s.params), nil
}

// SortDue implements Service.
func (s *defaultService) SortDue(items []*domain.ItemProgress, now time.Time, limit int) []*domain.ItemProgress {
	return sortDue(items, now, limit)
}

// Params implements Service.
func (s *defaultService) Params() *Params {
	return s.params
}
