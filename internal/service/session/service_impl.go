package session

import (
	"context"
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
	"github.com/phrazzld/petdeck/internal/platform/oracle"
	"github.com/phrazzld/petdeck/internal/service"
	"github.com/phrazzld/petdeck/internal/service/items"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/userlock"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	gateway store.Gateway
	locks   *userlock.Arena
	items   items.Service
	pets    PetService
	oracle  oracle.Oracle
	catalog Catalog
	clock   clock.Clock
	emitter events.EventEmitter
	metrics *metrics.Metrics
	config  Config
	logger  *slog.Logger
}

// NewService creates the session service. It panics if any dependency other
// than emitter, m or logger is nil.
func NewService(
	gateway store.Gateway,
	locks *userlock.Arena,
	itemService items.Service,
	pets PetService,
	scorer oracle.Oracle,
	catalog Catalog,
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
	if itemService == nil {
		panic("itemService cannot be nil")
	}
	if pets == nil {
		panic("pets cannot be nil")
	}
	if scorer == nil {
		panic("scorer cannot be nil")
	}
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if clk == nil {
		panic("clock cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if cfg.SessionCapacity < 1 {
		cfg.SessionCapacity = 10
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		gateway: gateway,
		locks:   locks,
		items:   itemService,
		pets:    pets,
		oracle:  scorer,
		catalog: catalog,
		clock:   clk,
		emitter: emitter,
		metrics: m,
		config:  cfg,
		logger:  logger.With(slog.String("component", "session_service")),
	}
}

// OpenSession implements Service.
func (s *serviceImpl) OpenSession(ctx context.Context, userID uuid.UUID, level int) (*View, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))
	now := s.clock.Now()

	if _, err := s.gateway.Stores().Users.GetByID(ctx, userID); err != nil {
		return nil, service.Wrap("open_session", "failed to load user", err)
	}
	if _, err := s.pets.ApplyDecay(ctx, userID, now); err != nil {
		return nil, err
	}

	var (
		view    *View
		pending []*events.Event
	)
	err := s.withUser(ctx, userID, func(ctx context.Context, tx *store.Stores) error {
		pending = nil

		user, err := tx.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		p, err := s.pets.Load(ctx, tx, userID, now)
		if err != nil {
			return err
		}
		if p.IsDead {
			return domain.ErrBlocked
		}

		if _, err := tx.Sessions.GetActive(ctx, userID); err == nil {
			return domain.ErrConflict
		} else if !errors.Is(err, store.ErrSessionNotFound) {
			return err
		}

		if err := s.checkDailyLimit(ctx, tx, userID, now); err != nil {
			return err
		}

		if level < 1 || level > user.Level || !s.catalog.Has(level) {
			return fmt.Errorf("%w: %w: level %d", domain.ErrInvalidState, domain.ErrUnknownLevel, level)
		}

		deck, err := s.items.BuildDeck(ctx, tx, userID, level, s.catalog, now, s.config.SessionCapacity)
		if err != nil {
			return err
		}
		if len(deck) == 0 {
			return domain.ErrNothingDue
		}

		session, missed, err := s.promoteOrCreate(ctx, tx, userID, level, now)
		if err != nil {
			return err
		}
		if missed != nil {
			pending = append(pending, missed)
		}

		state := domain.NewSessionState(session, deck, now)
		if err := tx.States.Save(ctx, state); err != nil {
			return err
		}

		view = &View{Session: session, State: state, Prompt: s.prompt(state)}
		return nil
	})
	if err != nil {
		if !service.IsExpected(err) {
			log.Error("failed to open session", slog.String("error", err.Error()))
		}
		return nil, service.Wrap("open_session", "failed to open session", mapConflict(err))
	}

	s.emit(ctx, pending)
	s.metrics.SessionOpened()
	log.Info("session opened",
		slog.String("session_id", view.Session.ID.String()),
		slog.Int("level", level),
		slog.Int("deck_size", len(view.State.Deck)))
	return view, nil
}

// promoteOrCreate activates the user's pending session or creates a new
// active one. An overdue pending session is expired first and its missed
// event returned.
func (s *serviceImpl) promoteOrCreate(
	ctx context.Context,
	tx *store.Stores,
	userID uuid.UUID,
	level int,
	now time.Time,
) (*domain.Session, *events.Event, error) {
	var missed *events.Event

	pending, err := tx.Sessions.GetPending(ctx, userID)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
	case err != nil:
		return nil, nil, err
	case pending.Overdue(now):
		missed, err = s.expireTx(ctx, tx, pending, now)
		if err != nil {
			return nil, nil, err
		}
	default:
		ok, err := tx.Sessions.Activate(ctx, pending.ID, level, now)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			pending.Status = domain.SessionActive
			pending.Level = level
			pending.StartedAt = now.UTC()
			return pending, nil, nil
		}
	}

	slotKey, err := s.freeSlotKey(ctx, tx, userID, now)
	if err != nil {
		return nil, nil, err
	}
	session, err := domain.NewSession(userID, level, slotKey, domain.SessionActive, now, now.Add(s.config.Schedule.DeadlineGrace))
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Sessions.Create(ctx, session); err != nil {
		return nil, nil, err
	}
	return session, missed, nil
}

// freeSlotKey returns the key of the slot whose window contains now, or an
// empty key when there is no such slot or it already has a session.
func (s *serviceImpl) freeSlotKey(ctx context.Context, tx *store.Stores, userID uuid.UUID, now time.Time) (string, error) {
	loc, _, err := service.UserLocation(ctx, tx, userID, s.config.Location)
	if err != nil {
		return "", err
	}
	slot, ok := s.config.Schedule.SlotFor(now, loc)
	if !ok {
		return "", nil
	}
	taken, err := tx.Sessions.ExistsForSlot(ctx, userID, slot.Key)
	if err != nil || taken {
		return "", err
	}
	return slot.Key, nil
}

// checkDailyLimit refuses a new session once the user started
// MaxSessionsPerDay sessions in their local day.
func (s *serviceImpl) checkDailyLimit(ctx context.Context, tx *store.Stores, userID uuid.UUID, now time.Time) error {
	if s.config.MaxSessionsPerDay <= 0 {
		return nil
	}
	loc, _, err := service.UserLocation(ctx, tx, userID, s.config.Location)
	if err != nil {
		return err
	}
	today := vitality.BucketOf(now, loc)
	started, err := tx.Sessions.CountStartedBetween(ctx, userID, today.Start, today.End)
	if err != nil {
		return err
	}
	if started >= s.config.MaxSessionsPerDay {
		return fmt.Errorf("%w: %d sessions started today", domain.ErrDailyLimit, started)
	}
	return nil
}

// SubmitAttempt implements Service.
func (s *serviceImpl) SubmitAttempt(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	submission Submission,
) (*AttemptResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()))
	now := s.clock.Now()

	unlock, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, service.Wrap("submit_attempt", "failed to lock user", err)
	}

	result, emitted, err := s.submitLocked(ctx, userID, sessionID, submission, now)
	unlock()
	if err != nil {
		if !service.IsExpected(err) && !errors.Is(err, domain.ErrTransientIO) {
			log.Error("failed to submit attempt", slog.String("error", err.Error()))
		}
		return nil, service.Wrap("submit_attempt", "failed to submit attempt", err)
	}

	s.emit(ctx, emitted)
	s.metrics.Attempt(result.Attempt.IsCorrect)
	if result.Completed {
		s.metrics.SessionFinished(string(domain.SessionCompleted))
	}
	log.Debug("attempt graded",
		slog.String("content_id", string(result.Attempt.ContentID)),
		slog.Int("score", result.Attempt.Score),
		slog.Bool("correct", result.Attempt.IsCorrect),
		slog.Bool("completed", result.Completed))
	return result, nil
}

func (s *serviceImpl) submitLocked(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	submission Submission,
	now time.Time,
) (*AttemptResult, []*events.Event, error) {
	pool := s.gateway.Stores()

	session, err := s.ownedSession(ctx, pool, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, nil, fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
	}
	state, err := pool.States.Get(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.pets.Load(ctx, pool, userID, now)
	if err != nil {
		return nil, nil, err
	}

	if p.IsDead {
		if state.Mode == domain.ModeBlocked {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrInvalidState, domain.ErrBlocked)
		}
		state.Mode = domain.ModeBlocked
		state.UpdatedAt = now.UTC()
		if err := s.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
			return tx.States.Save(ctx, state)
		}); err != nil {
			return nil, nil, err
		}
		return nil, nil, domain.ErrBlocked
	}

	if state.Mode == domain.ModeBlocked {
		state.Mode = domain.ModeNormal
		if state.AwaitingCare {
			state.Mode = domain.ModeCareInterlude
			state.UpdatedAt = now.UTC()
			if err := s.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
				return tx.States.Save(ctx, state)
			}); err != nil {
				return nil, nil, err
			}
		}
	}
	if state.Mode == domain.ModeCareInterlude {
		return nil, nil, fmt.Errorf("%w: session is awaiting care", domain.ErrInvalidState)
	}

	contentID, ok := state.Current()
	if !ok {
		return nil, nil, fmt.Errorf("%w: deck is exhausted", domain.ErrInvalidState)
	}
	item, ok := s.catalog.Item(state.Level, contentID)
	if !ok {
		return nil, nil, service.NewError("submit_attempt", "content item is missing from the catalog",
			fmt.Errorf("level %d item %q", state.Level, contentID))
	}

	// Scoring happens before any write so a failed oracle call leaves no trace.
	started := time.Now()
	verdict, err := s.oracle.Score(ctx, oracle.Answer{
		Submitted: submission.Answer,
		Expected:  item.Answer,
		FirstTry:  submission.FirstTry,
	})
	s.metrics.ObserveOracle(time.Since(started))
	if err != nil {
		return nil, nil, err
	}

	correct := verdict.Score >= s.config.CorrectnessThreshold
	firstTry := verdict.FirstTry && state.RetriesUsed == 0

	var (
		result  *AttemptResult
		emitted []*events.Event
	)
	err = s.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
		emitted = nil

		attempt := &domain.Attempt{
			ID:         uuid.New(),
			SessionID:  session.ID,
			UserID:     userID,
			Level:      state.Level,
			ContentID:  contentID,
			Submitted:  submission.Answer,
			Expected:   item.Answer,
			Score:      verdict.Score,
			IsFirstTry: firstTry,
			IsCorrect:  correct,
			CreatedAt:  now.UTC(),
		}
		if err := tx.Attempts.Create(ctx, attempt); err != nil {
			return err
		}

		progress, err := s.items.RecordAttempt(ctx, tx, userID, state.Level, contentID, correct, firstTry, now)
		if err != nil {
			return err
		}

		if err := s.recordDaily(ctx, tx, userID, correct, firstTry, now); err != nil {
			return err
		}

		rewards := s.advance(state, correct)
		for _, stage := range rewards {
			event, err := events.NewEvent(events.SessionReward, userID, events.RewardPayload{
				SessionID: session.ID,
				Stage:     stage,
				Streak:    state.Streak,
			}, now)
			if err != nil {
				return err
			}
			emitted = append(emitted, event)
		}
		state.UpdatedAt = now.UTC()

		result = &AttemptResult{Attempt: attempt, Progress: progress, State: state}

		if state.Exhausted() {
			completed, err := s.completeTx(ctx, tx, session, state, now)
			if err != nil {
				return err
			}
			emitted = append(emitted, completed)
			result.Completed = true
			return nil
		}

		if state.LastCareIndex != state.ItemIndex {
			req, due, err := s.pets.CareDue(ctx, tx, userID, s.isCareGate(state.ItemIndex), now)
			if err != nil {
				return err
			}
			if due {
				state.EnterCare(req, now)
				result.Care = &req
			}
		}
		if err := tx.States.Save(ctx, state); err != nil {
			return err
		}
		result.Prompt = s.prompt(state)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return result, emitted, nil
}

// advance moves the cursor after a verdict and returns the reward stages
// reached.
func (s *serviceImpl) advance(state *domain.SessionState, correct bool) []int {
	switch {
	case correct:
		state.CorrectCount++
		state.Streak++
		state.ItemIndex++
		state.RetriesUsed = 0
	case state.RetriesUsed < s.config.MaxRetries:
		state.RetriesUsed++
		state.Streak = 0
	default:
		state.ItemIndex++
		state.RetriesUsed = 0
		state.Streak = 0
	}

	var reached []int
	for state.RewardStage < len(s.config.RewardMilestones) &&
		state.Streak >= s.config.RewardMilestones[state.RewardStage] {
		state.RewardStage++
		reached = append(reached, state.RewardStage)
	}
	return reached
}

func (s *serviceImpl) isCareGate(index int) bool {
	for _, gate := range s.config.CareGates {
		if gate == index {
			return true
		}
	}
	return false
}

func (s *serviceImpl) recordDaily(
	ctx context.Context,
	tx *store.Stores,
	userID uuid.UUID,
	correct, firstTry bool,
	now time.Time,
) error {
	loc, _, err := service.UserLocation(ctx, tx, userID, s.config.Location)
	if err != nil {
		return err
	}
	daily, err := tx.Stats.GetDaily(ctx, userID, now.In(loc).Format(domain.DayFormat))
	if err != nil {
		return err
	}
	daily.Record(correct, firstTry)
	return tx.Stats.UpsertDaily(ctx, daily)
}

// ResolveCare implements Service.
func (s *serviceImpl) ResolveCare(
	ctx context.Context,
	userID, sessionID uuid.UUID,
	kind domain.CareKind,
) (*CareResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.String("session_id", sessionID.String()))
	now := s.clock.Now()

	var result *CareResult
	err := s.withUser(ctx, userID, func(ctx context.Context, tx *store.Stores) error {
		session, err := s.ownedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionActive {
			return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
		}
		state, err := tx.States.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if !state.AwaitingCare {
			return domain.ErrNotAwaitingCare
		}

		p, err := s.pets.CareAction(ctx, tx, userID, kind, now)
		if err != nil {
			return err
		}

		state.LeaveCare(now)
		if err := tx.States.Save(ctx, state); err != nil {
			return err
		}

		result = &CareResult{
			Pet:  p,
			View: &View{Session: session, State: state, Prompt: s.prompt(state)},
		}
		return nil
	})
	if err != nil {
		if !service.IsExpected(err) {
			log.Error("failed to resolve care", slog.String("error", err.Error()))
		}
		return nil, service.Wrap("resolve_care", "failed to resolve care", err)
	}

	log.Info("care interlude resolved", slog.String("kind", string(kind)))
	return result, nil
}

// CompleteSession implements Service.
func (s *serviceImpl) CompleteSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.Session, error) {
	now := s.clock.Now()

	var (
		session *domain.Session
		event   *events.Event
	)
	err := s.withUser(ctx, userID, func(ctx context.Context, tx *store.Stores) error {
		var err error
		session, err = s.ownedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if session.Status != domain.SessionActive {
			return fmt.Errorf("%w: session is %s", domain.ErrInvalidState, session.Status)
		}
		state, err := tx.States.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if !state.Exhausted() {
			return fmt.Errorf("%w: %d of %d items remain", domain.ErrInvalidState,
				len(state.Deck)-state.ItemIndex, len(state.Deck))
		}
		event, err = s.completeTx(ctx, tx, session, state, now)
		return err
	})
	if err != nil {
		return nil, service.Wrap("complete_session", "failed to complete session", err)
	}

	s.emit(ctx, []*events.Event{event})
	s.metrics.SessionFinished(string(domain.SessionCompleted))
	return session, nil
}

// completeTx marks the session completed, records the level result, unlocks
// the next level after a perfect run and drops the live state.
func (s *serviceImpl) completeTx(
	ctx context.Context,
	tx *store.Stores,
	session *domain.Session,
	state *domain.SessionState,
	now time.Time,
) (*events.Event, error) {
	ok, err := tx.Sessions.Transition(ctx, session.ID,
		[]domain.SessionStatus{domain.SessionActive}, domain.SessionCompleted, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: session is no longer active", domain.ErrInvalidState)
	}
	ended := now.UTC()
	session.Status = domain.SessionCompleted
	session.EndedAt = &ended

	progress, err := tx.Stats.GetLevel(ctx, session.UserID, session.Level)
	if err != nil {
		return nil, err
	}
	progress.Record(state.CorrectCount, now)
	if err := tx.Stats.UpsertLevel(ctx, progress); err != nil {
		return nil, err
	}

	if state.Perfect() && s.catalog.Has(session.Level+1) {
		user, err := tx.Users.GetByID(ctx, session.UserID)
		if err != nil {
			return nil, err
		}
		if user.Unlock(session.Level+1, now) {
			if err := tx.Users.UpdateLevel(ctx, user.ID, user.Level, now); err != nil {
				return nil, err
			}
			logger.FromContextOrDefault(ctx, s.logger).Info("level unlocked",
				slog.String("user_id", user.ID.String()),
				slog.Int("level", user.Level))
		}
	}

	if err := tx.States.Delete(ctx, session.ID); err != nil {
		return nil, err
	}

	return events.NewEvent(events.SessionCompleted, session.UserID, events.SessionPayload{
		SessionID: session.ID,
		Level:     session.Level,
		SlotKey:   session.SlotKey,
		At:        ended,
		Correct:   state.CorrectCount,
		DeckSize:  len(state.Deck),
	}, now)
}

// Expire implements Service.
func (s *serviceImpl) Expire(ctx context.Context, sessionID uuid.UUID) (bool, error) {
	return s.ExpireAt(ctx, sessionID, s.clock.Now())
}

// ExpireAt implements Service.
func (s *serviceImpl) ExpireAt(ctx context.Context, sessionID uuid.UUID, now time.Time) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("session_id", sessionID.String()))

	found, err := s.gateway.Stores().Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return false, service.Wrap("expire", "failed to load session", err)
	}

	var event *events.Event
	err = s.withUser(ctx, found.UserID, func(ctx context.Context, tx *store.Stores) error {
		event = nil
		session, err := tx.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !session.Overdue(now) {
			return nil
		}
		event, err = s.expireTx(ctx, tx, session, now)
		return err
	})
	if err != nil {
		log.Error("failed to expire session", slog.String("error", err.Error()))
		return false, service.Wrap("expire", "failed to expire session", err)
	}
	if event == nil {
		return false, nil
	}

	s.emit(ctx, []*events.Event{event})
	s.metrics.SessionFinished(string(domain.SessionExpired))
	log.Info("session expired", slog.String("user_id", found.UserID.String()))
	return true, nil
}

// expireTx moves an open session to expired. It returns a nil event when the
// status had already changed.
func (s *serviceImpl) expireTx(
	ctx context.Context,
	tx *store.Stores,
	session *domain.Session,
	now time.Time,
) (*events.Event, error) {
	ok, err := tx.Sessions.Transition(ctx, session.ID,
		[]domain.SessionStatus{domain.SessionActive, domain.SessionPending}, domain.SessionExpired, now)
	if err != nil || !ok {
		return nil, err
	}
	if err := tx.States.Delete(ctx, session.ID); err != nil {
		return nil, err
	}
	return events.NewEvent(events.SessionMissed, session.UserID, events.SessionPayload{
		SessionID: session.ID,
		Level:     session.Level,
		SlotKey:   session.SlotKey,
		At:        now.UTC(),
	}, now)
}

// ActiveSession implements Service.
func (s *serviceImpl) ActiveSession(ctx context.Context, userID uuid.UUID) (*View, error) {
	stores := s.gateway.Stores()
	session, err := stores.Sessions.GetActive(ctx, userID)
	if err != nil {
		return nil, service.Wrap("active_session", "failed to load active session", err)
	}
	state, err := stores.States.Get(ctx, session.ID)
	if err != nil {
		return nil, service.Wrap("active_session", "failed to load session state", err)
	}
	return &View{Session: session, State: state, Prompt: s.prompt(state)}, nil
}

// ownedSession loads a session, hiding sessions of other users.
func (s *serviceImpl) ownedSession(
	ctx context.Context,
	stores *store.Stores,
	userID, sessionID uuid.UUID,
) (*domain.Session, error) {
	session, err := stores.Sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, store.ErrSessionNotFound
	}
	return session, nil
}

func (s *serviceImpl) prompt(state *domain.SessionState) *Prompt {
	id, ok := state.Current()
	if !ok {
		return nil
	}
	item, ok := s.catalog.Item(state.Level, id)
	if !ok {
		return nil
	}
	return &Prompt{
		ContentID: id,
		Prompt:    item.Prompt,
		Hint:      item.Hint,
		Position:  state.ItemIndex + 1,
		Total:     len(state.Deck),
	}
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

// emit publishes events in order. Failures are logged; the state change has
// already committed.
func (s *serviceImpl) emit(ctx context.Context, batch []*events.Event) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	for _, event := range batch {
		if event == nil {
			continue
		}
		if err := s.emitter.EmitEvent(ctx, event); err != nil {
			log.Error("failed to emit event",
				slog.String("error", err.Error()),
				slog.String("event_type", event.Type),
				slog.String("user_id", event.UserID.String()))
		}
	}
}

// mapConflict reports a second active session as a conflict.
func mapConflict(err error) error {
	if errors.Is(err, store.ErrActiveSessionExists) {
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	}
	return err
}
