// Package planner drives the periodic work of the engine. Each tick expires
// overdue sessions, plans session reminders and brings pet decay up to date
// for every user.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/plan"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/platform/metrics"
	"github.com/phrazzld/petdeck/internal/service"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/userlock"
	"golang.org/x/sync/errgroup"
)

// SessionExpirer expires overdue sessions.
type SessionExpirer interface {
	ExpireAt(ctx context.Context, sessionID uuid.UUID, now time.Time) (bool, error)
}

// PetDecayer brings pet decay up to date.
type PetDecayer interface {
	ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.Pet, error)
}

// Config holds the planner settings.
type Config struct {
	// Schedule is the daily session plan.
	Schedule plan.Schedule

	// Location is the timezone of users without settings. Nil means UTC.
	Location *time.Location

	// Concurrency bounds how many users are processed at once.
	Concurrency int
}

// Report summarizes one tick.
type Report struct {
	Users     int
	Expired   int
	Reminders int
}

// Planner runs ticks.
type Planner struct {
	gateway  store.Gateway
	locks    *userlock.Arena
	sessions SessionExpirer
	pets     PetDecayer
	clock    clock.Clock
	emitter  events.EventEmitter
	metrics  *metrics.Metrics
	config   Config
	logger   *slog.Logger
}

// New creates a planner. It panics if gateway, locks, sessions, pets or clk
// is nil.
func New(
	gateway store.Gateway,
	locks *userlock.Arena,
	sessions SessionExpirer,
	pets PetDecayer,
	clk clock.Clock,
	emitter events.EventEmitter,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) *Planner {
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	if locks == nil {
		panic("locks cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if pets == nil {
		panic("pets cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Planner{
		gateway:  gateway,
		locks:    locks,
		sessions: sessions,
		pets:     pets,
		clock:    clk,
		emitter:  emitter,
		metrics:  m,
		config:   cfg,
		logger:   logger.With(slog.String("component", "planner")),
	}
}

// MaxUpcoming caps how many slots Upcoming returns.
const MaxUpcoming = 20

// Upcoming returns the user's next n session slots that have not started
// yet, in the user's timezone. n is clamped to [1, MaxUpcoming].
func (p *Planner) Upcoming(ctx context.Context, userID uuid.UUID, n int) ([]plan.Slot, error) {
	n = max(1, min(n, MaxUpcoming))

	stores := p.gateway.Stores()
	if _, err := stores.Users.GetByID(ctx, userID); err != nil {
		return nil, service.Wrap("upcoming", "failed to get user", err)
	}
	loc, _, err := service.UserLocation(ctx, stores, userID, p.config.Location)
	if err != nil {
		return nil, service.Wrap("upcoming", "failed to resolve timezone", err)
	}
	return p.config.Schedule.Upcoming(p.clock.Now(), loc, n), nil
}

// Run ticks at the current time. It is the scheduler's job function.
func (p *Planner) Run(ctx context.Context) {
	if _, err := p.Tick(ctx, p.clock.Now()); err != nil {
		p.logger.Error("tick failed", slog.String("error", err.Error()))
	}
}

// Tick processes every user at now. A failure for one user does not stop
// the others; all failures are returned joined.
func (p *Planner) Tick(ctx context.Context, now time.Time) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	log := logger.FromContextOrDefault(ctx, p.logger)
	started := time.Now()
	defer func() { p.metrics.ObserveTick(time.Since(started)) }()

	userIDs, err := p.gateway.Stores().Users.ListIDs(ctx)
	if err != nil {
		return Report{}, service.Wrap("tick", "failed to list users", err)
	}

	var (
		expired   atomic.Int64
		reminders atomic.Int64
		mu        sync.Mutex
		errs      []error
	)

	var g errgroup.Group
	g.SetLimit(p.config.Concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			e, r, err := p.tickUser(ctx, userID, now)
			expired.Add(int64(e))
			reminders.Add(int64(r))
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Users:     len(userIDs),
		Expired:   int(expired.Load()),
		Reminders: int(reminders.Load()),
	}
	log.Debug("tick finished",
		slog.Time("now", now),
		slog.Int("users", report.Users),
		slog.Int("expired", report.Expired),
		slog.Int("reminders", report.Reminders),
		slog.Int("failures", len(errs)))

	return report, errors.Join(errs...)
}

func (p *Planner) tickUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, int, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	expired, err := p.expireOverdue(ctx, userID, now)
	if err != nil {
		return expired, 0, err
	}

	reminded, err := p.remind(ctx, userID, now)
	if err != nil {
		return expired, reminded, err
	}

	if _, err := p.pets.ApplyDecay(ctx, userID, now); err != nil {
		return expired, reminded, err
	}
	return expired, reminded, nil
}

func (p *Planner) expireOverdue(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	overdue, err := p.gateway.Stores().Sessions.ListOverdue(ctx, userID, now)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, s := range overdue {
		ok, err := p.sessions.ExpireAt(ctx, s.ID, now)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// remind records a reminder and creates a pending session for each slot
// whose reminder window contains now, unless the user is busy, opted out or
// was already reminded.
func (p *Planner) remind(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	unlock, err := p.locks.Lock(ctx, userID)
	if err != nil {
		return 0, err
	}

	var batch []*events.Event
	err = p.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		batch = nil

		loc, settings, err := service.UserLocation(ctx, tx, userID, p.config.Location)
		if err != nil {
			return err
		}
		if settings != nil && !settings.NotificationsEnabled {
			return nil
		}

		if _, err := tx.Sessions.GetActive(ctx, userID); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrSessionNotFound) {
			return err
		}

		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		for _, slot := range p.config.Schedule.DueReminders(now, loc) {
			event, err := p.remindSlot(ctx, tx, user, slot, now)
			if err != nil {
				return err
			}
			if event != nil {
				batch = append(batch, event)
			}
		}
		return nil
	})
	unlock()
	if err != nil {
		return 0, err
	}

	log := logger.FromContextOrDefault(ctx, p.logger)
	for _, event := range batch {
		p.metrics.ReminderSent()
		if err := p.emitter.EmitEvent(ctx, event); err != nil {
			log.Error("failed to emit event",
				slog.String("error", err.Error()),
				slog.String("event_type", event.Type),
				slog.String("user_id", userID.String()))
		}
	}
	return len(batch), nil
}

func (p *Planner) remindSlot(
	ctx context.Context,
	tx *store.Stores,
	user *domain.User,
	slot plan.Slot,
	now time.Time,
) (*events.Event, error) {
	taken, err := tx.Sessions.ExistsForSlot(ctx, user.ID, slot.Key)
	if err != nil || taken {
		return nil, err
	}

	inserted, err := tx.Reminders.Record(ctx, &domain.ReminderLog{
		UserID:     user.ID,
		SlotKey:    slot.Key,
		RemindedAt: now.UTC(),
	})
	if err != nil || !inserted {
		return nil, err
	}

	pending, err := domain.NewSession(user.ID, user.Level, slot.Key, domain.SessionPending, now, slot.DeadlineAt)
	if err != nil {
		return nil, err
	}
	if err := tx.Sessions.Create(ctx, pending); err != nil {
		return nil, err
	}

	logger.FromContextOrDefault(ctx, p.logger).Info("session reminder planned",
		slog.String("user_id", user.ID.String()),
		slog.String("slot", slot.Key),
		slog.String("session_id", pending.ID.String()))

	return events.NewEvent(events.ReminderDue, user.ID, events.ReminderPayload{
		SessionID:  pending.ID,
		SlotKey:    slot.Key,
		StartsAt:   slot.Start.UTC(),
		DeadlineAt: slot.DeadlineAt.UTC(),
	}, now)
}
