package pet

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/vitality"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/platform/metrics"
	"github.com/phrazzld/petdeck/internal/service"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/userlock"
	"golang.org/x/crypto/bcrypt"
)

// tokenBytes is the entropy of a revival token.
const tokenBytes = 32

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	gateway store.Gateway
	locks   *userlock.Arena
	engine  *vitality.Engine
	clock   clock.Clock
	emitter events.EventEmitter
	metrics *metrics.Metrics
	config  Config
	logger  *slog.Logger
}

// NewService creates the pet service. It panics if gateway, locks, engine or
// clk is nil. A nil emitter discards events and nil metrics are not recorded.
func NewService(
	gateway store.Gateway,
	locks *userlock.Arena,
	engine *vitality.Engine,
	clk clock.Clock,
	emitter events.EventEmitter,
	m *metrics.Metrics,
	cfg Config,
	logger *slog.Logger,
) Service {
	if gateway == nil {
		panic("gateway cannot be nil")
	}
	if locks == nil {
		panic("locks cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		gateway: gateway,
		locks:   locks,
		engine:  engine,
		clock:   clk,
		emitter: emitter,
		metrics: m,
		config:  cfg,
		logger:  logger.With(slog.String("component", "pet_service")),
	}
}

// Load implements Service.
func (s *serviceImpl) Load(ctx context.Context, tx *store.Stores, userID uuid.UUID, now time.Time) (*domain.Pet, error) {
	p, err := tx.Pets.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrPetNotFound) {
		return nil, err
	}

	p = s.engine.NewPet(userID, now)
	if err := tx.Pets.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("pet created",
		slog.String("user_id", userID.String()))
	return p, nil
}

// decay brings the pet up to date at now without saving it. It reports
// whether the pet died during the evaluation.
func (s *serviceImpl) decay(ctx context.Context, tx *store.Stores, userID uuid.UUID, now time.Time) (*domain.Pet, bool, error) {
	p, err := s.Load(ctx, tx, userID, now)
	if err != nil {
		return nil, false, err
	}
	loc, _, err := service.UserLocation(ctx, tx, userID, s.config.Location)
	if err != nil {
		return nil, false, err
	}

	wasDead := p.IsDead
	for _, b := range vitality.PendingBuckets(p.LastCheckedAt, now, loc) {
		completed, err := tx.Sessions.CountCompletedBetween(ctx, userID, b.Start, b.End)
		if err != nil {
			return nil, false, err
		}
		p = s.engine.Evaluate(p, completed)
	}

	today := vitality.BucketOf(now, loc)
	completedToday, err := tx.Sessions.CountCompletedBetween(ctx, userID, today.Start, today.End)
	if err != nil {
		return nil, false, err
	}
	p.SessionsToday = completedToday

	if now.After(p.LastCheckedAt) {
		p.LastCheckedAt = now.UTC()
	}
	p.UpdatedAt = now.UTC()
	return p, !wasDead && p.IsDead, nil
}

// ApplyDecay implements Service.
func (s *serviceImpl) ApplyDecay(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.Pet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		result *domain.Pet
		died   bool
	)
	err := s.withUser(ctx, userID, func(ctx context.Context, tx *store.Stores) error {
		p, d, err := s.decay(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if err := tx.Pets.Update(ctx, p); err != nil {
			return err
		}
		result, died = p, d
		return nil
	})
	if err != nil {
		log.Error("failed to apply decay",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.Wrap("apply_decay", "failed to apply decay", err)
	}

	if died {
		s.petDied(ctx, result, now)
	}
	return result, nil
}

// Status implements Service.
func (s *serviceImpl) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	now := s.clock.Now()
	p, err := s.ApplyDecay(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	status := &Status{Pet: p, Mood: s.engine.Mood(p)}
	if req, ok := s.engine.CareDue(p); ok {
		status.Care = &req
	}
	return status, nil
}

// RequestReviveToken implements Service.
func (s *serviceImpl) RequestReviveToken(ctx context.Context, userID uuid.UUID) (*ReviveToken, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	var (
		result *ReviveToken
		died   *domain.Pet
	)
	err := s.withUser(ctx, userID, func(ctx context.Context, tx *store.Stores) error {
		p, justDied, err := s.decay(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if err := tx.Pets.Update(ctx, p); err != nil {
			return err
		}
		if justDied {
			died = p
		}
		if !p.IsDead {
			return domain.ErrAlreadyAlive
		}

		if err := tx.Revivals.InvalidateUnused(ctx, userID); err != nil {
			return err
		}

		plain, hash, err := s.mintToken()
		if err != nil {
			return err
		}
		token := &domain.RevivalToken{
			ID:        uuid.New(),
			UserID:    userID,
			TokenHash: hash,
			ExpiresAt: now.Add(s.config.TokenTTL).UTC(),
			CreatedAt: now.UTC(),
		}
		if err := tx.Revivals.Create(ctx, token); err != nil {
			return err
		}

		result = &ReviveToken{Token: plain, ExpiresAt: token.ExpiresAt}
		return nil
	})
	if died != nil && err == nil {
		s.petDied(ctx, died, now)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadyAlive) {
			log.Error("failed to mint revival token",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
		}
		return nil, service.Wrap("request_revive_token", "failed to mint revival token", err)
	}

	log.Info("revival token issued",
		slog.String("user_id", userID.String()),
		slog.Time("expires_at", result.ExpiresAt))
	return result, nil
}

// mintToken returns a random URL-safe token and its bcrypt hash.
func (s *serviceImpl) mintToken() (string, string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate token: %w", err)
	}
	plain := base64.RawURLEncoding.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), s.config.BcryptCost)
	if err != nil {
		return "", "", fmt.Errorf("failed to hash token: %w", err)
	}
	return plain, string(hash), nil
}

// Redeem implements Service.
func (s *serviceImpl) Redeem(ctx context.Context, userID uuid.UUID, token string) (*domain.Pet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	var revived *domain.Pet
	err := s.withUser(ctx, userID, func(ctx context.Context, tx *store.Stores) error {
		stored, err := tx.Revivals.LatestUnused(ctx, userID)
		if errors.Is(err, store.ErrTokenNotFound) {
			return domain.ErrInvalidToken
		}
		if err != nil {
			return err
		}
		if !stored.Usable(now) {
			return fmt.Errorf("%w: expired", domain.ErrInvalidToken)
		}
		if err := bcrypt.CompareHashAndPassword([]byte(stored.TokenHash), []byte(token)); err != nil {
			return domain.ErrInvalidToken
		}

		p, err := s.Load(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		// Only a dead pet has a redeemable token.
		if !p.IsDead {
			return fmt.Errorf("%w: pet is alive", domain.ErrInvalidToken)
		}

		marked, err := tx.Revivals.MarkUsed(ctx, stored.ID)
		if err != nil {
			return err
		}
		if !marked {
			return domain.ErrInvalidToken
		}

		next := s.engine.Revive(p, now)
		next.UpdatedAt = now.UTC()
		if err := tx.Pets.Update(ctx, next); err != nil {
			return err
		}
		revived = next
		return nil
	})
	if err != nil {
		log.Warn("revival failed",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, service.Wrap("redeem", "failed to revive pet", err)
	}

	s.metrics.PetRevived()
	log.Info("pet revived",
		slog.String("user_id", userID.String()),
		slog.Int("resurrect_streak", revived.ResurrectStreak))
	return revived, nil
}

// CareDue implements Service.
func (s *serviceImpl) CareDue(
	ctx context.Context,
	tx *store.Stores,
	userID uuid.UUID,
	gate bool,
	now time.Time,
) (domain.CareRequest, bool, error) {
	p, err := s.Load(ctx, tx, userID, now)
	if err != nil {
		return domain.CareRequest{}, false, err
	}
	if p.IsDead {
		return domain.CareRequest{}, false, nil
	}
	if req, ok := s.engine.CareDue(p); ok {
		req.Gate = gate
		return req, true, nil
	}
	if !gate {
		return domain.CareRequest{}, false, nil
	}
	req := s.engine.CareRequestFor(p.Lowest())
	req.Gate = true
	return req, true, nil
}

// CareAction implements Service.
func (s *serviceImpl) CareAction(
	ctx context.Context,
	tx *store.Stores,
	userID uuid.UUID,
	kind domain.CareKind,
	now time.Time,
) (*domain.Pet, error) {
	p, err := s.Load(ctx, tx, userID, now)
	if err != nil {
		return nil, err
	}
	if p.IsDead {
		return nil, domain.ErrBlocked
	}

	next, err := s.engine.ApplyCare(p, kind)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = now.UTC()
	if err := tx.Pets.Update(ctx, next); err != nil {
		return nil, err
	}

	s.metrics.CareAction(string(kind))
	return next, nil
}

// Mood implements Service.
func (s *serviceImpl) Mood(p *domain.Pet) string {
	return s.engine.Mood(p)
}

// HandleEvent applies the pet's reaction to session events.
func (s *serviceImpl) HandleEvent(ctx context.Context, event *events.Event) error {
	var apply func(p *domain.Pet) *domain.Pet

	switch event.Type {
	case events.SessionCompleted:
		var payload events.SessionPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			return fmt.Errorf("decode %s payload: %w", event.Type, err)
		}
		apply = func(p *domain.Pet) *domain.Pet { return s.engine.SessionCompleted(p, payload.At) }
	case events.SessionMissed:
		apply = s.engine.SessionMissed
	case events.SessionReward:
		apply = s.engine.Reward
	default:
		return nil
	}

	now := s.clock.Now()
	err := s.withUser(ctx, event.UserID, func(ctx context.Context, tx *store.Stores) error {
		p, err := s.Load(ctx, tx, event.UserID, now)
		if err != nil {
			return err
		}
		next := apply(p)
		next.UpdatedAt = now.UTC()
		return tx.Pets.Update(ctx, next)
	})
	if err != nil {
		return service.Wrap("handle_event", "failed to apply "+event.Type, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("pet reacted to event",
		slog.String("event_type", event.Type),
		slog.String("user_id", event.UserID.String()))
	return nil
}

// withUser runs fn in a transaction while holding the user's lock.
func (s *serviceImpl) withUser(
	ctx context.Context,
	userID uuid.UUID,
	fn func(ctx context.Context, tx *store.Stores) error,
) error {
	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()
	return s.gateway.RunInTx(ctx, fn)
}

// petDied records a death and emits the event. Emission failures are logged.
func (s *serviceImpl) petDied(ctx context.Context, p *domain.Pet, now time.Time) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	s.metrics.PetDied()
	log.Warn("pet died", slog.String("user_id", p.UserID.String()))

	event, err := events.NewEvent(events.PetDied, p.UserID, events.PetPayload{
		At:              now.UTC(),
		ResurrectStreak: p.ResurrectStreak,
	}, now)
	if err != nil {
		log.Error("failed to build event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Error("failed to emit event",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type))
	}
}
