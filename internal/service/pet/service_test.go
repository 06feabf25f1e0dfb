package pet_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/vitality"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/service/pet"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/testdb"
	"github.com/phrazzld/petdeck/internal/userlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) EmitEvent(_ context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	svc     pet.Service
	gateway store.Gateway
	clock   *clock.Fake
	events  *recorder
	userID  uuid.UUID
}

func newFixture(t *testing.T, params *vitality.Params, timezone string) *fixture {
	t.Helper()
	ctx := context.Background()
	gateway := testdb.Gateway(t)

	user, err := domain.NewUser(uuid.New(), t0)
	require.NoError(t, err)
	require.NoError(t, gateway.Stores().Users.Create(ctx, user))
	if timezone != "" {
		settings, err := domain.NewUserSettings(user.ID, timezone, t0)
		require.NoError(t, err)
		require.NoError(t, gateway.Stores().Settings.Upsert(ctx, settings))
	}

	engine, err := vitality.NewEngine(params)
	require.NoError(t, err)

	f := &fixture{
		gateway: gateway,
		clock:   clock.NewFake(t0),
		events:  &recorder{},
		userID:  user.ID,
	}
	f.svc = pet.NewService(
		gateway,
		userlock.NewArena(),
		engine,
		f.clock,
		f.events,
		nil,
		pet.Config{TokenTTL: 30 * time.Minute, BcryptCost: bcrypt.MinCost},
		logger.NewDiscard(),
	)
	return f
}

// update loads the pet, creating it at t0, and saves the result of fn.
func (f *fixture) update(t *testing.T, fn func(p *domain.Pet)) {
	t.Helper()
	err := f.gateway.RunInTx(context.Background(), func(ctx context.Context, tx *store.Stores) error {
		p, err := f.svc.Load(ctx, tx, f.userID, t0)
		if err != nil {
			return err
		}
		fn(p)
		return tx.Pets.Update(ctx, p)
	})
	require.NoError(t, err)
}

func (f *fixture) pet(t *testing.T) *domain.Pet {
	t.Helper()
	p, err := f.gateway.Stores().Pets.Get(context.Background(), f.userID)
	require.NoError(t, err)
	return p
}

func (f *fixture) completeSessionAt(t *testing.T, at time.Time) {
	t.Helper()
	ctx := context.Background()
	stores := f.gateway.Stores()
	session, err := domain.NewSession(f.userID, 1, "", domain.SessionActive, at.Add(-time.Minute), at.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, stores.Sessions.Create(ctx, session))
	ok, err := stores.Sessions.Transition(ctx, session.ID,
		[]domain.SessionStatus{domain.SessionActive}, domain.SessionCompleted, at)
	require.NoError(t, err)
	require.True(t, ok)
}

func setAll(value int) func(p *domain.Pet) {
	return func(p *domain.Pet) {
		for _, v := range domain.NeedOrder {
			p.SetVital(v, value)
		}
	}
}

func TestNewServicePanics(t *testing.T) {
	t.Parallel()
	engine, err := vitality.NewEngine(nil)
	require.NoError(t, err)
	gateway := testdb.Gateway(t)

	assert.Panics(t, func() {
		pet.NewService(nil, userlock.NewArena(), engine, clock.System{}, nil, nil, pet.Config{}, nil)
	})
	assert.Panics(t, func() {
		pet.NewService(gateway, nil, engine, clock.System{}, nil, nil, pet.Config{}, nil)
	})
	assert.Panics(t, func() {
		pet.NewService(gateway, userlock.NewArena(), nil, clock.System{}, nil, nil, pet.Config{}, nil)
	})
	assert.Panics(t, func() {
		pet.NewService(gateway, userlock.NewArena(), engine, nil, nil, nil, pet.Config{}, nil)
	})
}

func TestApplyDecayDailySteps(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		rate  int
		start int
		want  []int
	}{
		{name: "ten per day", rate: 10, start: 25, want: []int{15, 5, 0}},
		{name: "five per day", rate: 5, start: 12, want: []int{7, 2, 0}},
		{name: "twenty per day", rate: 20, start: 50, want: []int{30, 10, 0}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params := vitality.NewParams(vitality.ParamsConfig{
				DecayPerDay: map[domain.Vital]int{
					domain.VitalHealth:  tc.rate,
					domain.VitalHunger:  tc.rate,
					domain.VitalThirst:  tc.rate,
					domain.VitalEnergy:  tc.rate,
					domain.VitalHygiene: tc.rate,
					domain.VitalMood:    tc.rate,
				},
			})
			f := newFixture(t, params, "")
			f.update(t, setAll(tc.start))

			for i, want := range tc.want {
				now := t0.Add(time.Duration(i+1) * day)
				p, err := f.svc.ApplyDecay(context.Background(), f.userID, now)
				require.NoError(t, err)
				for _, v := range domain.NeedOrder {
					assert.Equal(t, want, p.Vital(v), "day %d %s", i+1, v)
				}
				assert.Equal(t, i+1, p.MissedSessionsStreak)
				assert.True(t, p.LastCheckedAt.Equal(now))
			}

			stored := f.pet(t)
			assert.Equal(t, 0, stored.Hunger)
			assert.Equal(t, len(tc.want), stored.MissedSessionsStreak)
			assert.False(t, stored.IsDead)
		})
	}
}

func TestApplyDecayIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")
	f.update(t, setAll(60))

	now := t0.Add(2*day + 3*time.Hour)
	first, err := f.svc.ApplyDecay(ctx, f.userID, now)
	require.NoError(t, err)
	second, err := f.svc.ApplyDecay(ctx, f.userID, now)
	require.NoError(t, err)

	assert.Equal(t, 40, first.Hunger)
	assert.Equal(t, first.Hunger, second.Hunger)
	assert.Equal(t, first.MissedSessionsStreak, second.MissedSessionsStreak)
	assert.True(t, first.LastCheckedAt.Equal(second.LastCheckedAt))

	// Later calls on the same day change nothing either.
	third, err := f.svc.ApplyDecay(ctx, f.userID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, first.Hunger, third.Hunger)

	// An earlier now never moves the checkpoint back.
	_, err = f.svc.ApplyDecay(ctx, f.userID, t0)
	require.NoError(t, err)
	assert.True(t, f.pet(t).LastCheckedAt.Equal(now.Add(time.Hour)))
}

func TestApplyDecayUsesLocalDays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	// New York is four hours behind UTC in October; t0 is 05:00 local.
	f := newFixture(t, nil, "America/New_York")
	f.update(t, setAll(50))

	p, err := f.svc.ApplyDecay(ctx, f.userID, time.Date(2026, 10, 17, 3, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 50, p.Mood, "still the same local day")

	p, err = f.svc.ApplyDecay(ctx, f.userID, time.Date(2026, 10, 17, 4, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 40, p.Mood, "local midnight has passed")
}

func TestApplyDecayRecoveryAndClamp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")
	f.update(t, func(p *domain.Pet) {
		setAll(95)(p)
		p.Mood = 3
		p.MissedSessionsStreak = 2
	})

	// Day one has a completed session, day two has none.
	f.completeSessionAt(t, t0.Add(2*time.Hour))
	p, err := f.svc.ApplyDecay(ctx, f.userID, t0.Add(2*day))
	require.NoError(t, err)

	assert.Equal(t, 90, p.Hunger, "recovery clamps at 100 before the next day's decay")
	assert.Equal(t, 3, p.Mood)
	assert.Equal(t, 1, p.MissedSessionsStreak)
	for _, v := range domain.NeedOrder {
		assert.GreaterOrEqual(t, p.Vital(v), domain.MinVital)
		assert.LessOrEqual(t, p.Vital(v), domain.MaxVital)
	}
}

func TestApplyDecayCountsSessionsToday(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")
	f.update(t, setAll(80))

	f.completeSessionAt(t, t0.Add(time.Hour))
	f.completeSessionAt(t, t0.Add(2*time.Hour))

	p, err := f.svc.ApplyDecay(ctx, f.userID, t0.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, p.SessionsToday)

	p, err = f.svc.ApplyDecay(ctx, f.userID, t0.Add(day))
	require.NoError(t, err)
	assert.Equal(t, 0, p.SessionsToday)
	assert.Equal(t, 90, p.Hunger, "the day with sessions recovers")
	assert.Equal(t, 0, p.MissedSessionsStreak)
}

func TestDeathAtMercyWindow(t *testing.T) {
	t.Parallel()

	for _, window := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("window %d", window), func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			params := vitality.NewParams(vitality.ParamsConfig{MercyWindow: window})
			f := newFixture(t, params, "")
			f.update(t, setAll(10))

			for d := 1; d < window; d++ {
				p, err := f.svc.ApplyDecay(ctx, f.userID, t0.Add(time.Duration(d)*day))
				require.NoError(t, err)
				assert.False(t, p.IsDead, "alive after %d of %d zero days", d, window)
			}

			p, err := f.svc.ApplyDecay(ctx, f.userID, t0.Add(time.Duration(window)*day))
			require.NoError(t, err)
			assert.True(t, p.IsDead)
			assert.Equal(t, 1, f.events.count(events.PetDied))

			_, err = f.svc.ApplyDecay(ctx, f.userID, t0.Add(time.Duration(window+2)*day))
			require.NoError(t, err)
			assert.Equal(t, 1, f.events.count(events.PetDied), "death is announced once")
		})
	}
}

func TestRequestReviveTokenAlive(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil, "")

	_, err := f.svc.RequestReviveToken(context.Background(), f.userID)
	assert.ErrorIs(t, err, domain.ErrAlreadyAlive)

	_, err = f.svc.Redeem(context.Background(), f.userID, "anything")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRedeemLivingPet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	testCases := []struct {
		name   string
		redeem func(t *testing.T, f *fixture) error
	}{
		{
			name: "used token after revival",
			redeem: func(t *testing.T, f *fixture) error {
				token, err := f.svc.RequestReviveToken(ctx, f.userID)
				require.NoError(t, err)
				_, err = f.svc.Redeem(ctx, f.userID, token.Token)
				require.NoError(t, err)
				_, err = f.svc.Redeem(ctx, f.userID, token.Token)
				return err
			},
		},
		{
			name: "never issued token after revival",
			redeem: func(t *testing.T, f *fixture) error {
				token, err := f.svc.RequestReviveToken(ctx, f.userID)
				require.NoError(t, err)
				_, err = f.svc.Redeem(ctx, f.userID, token.Token)
				require.NoError(t, err)
				_, err = f.svc.Redeem(ctx, f.userID, "never-issued")
				return err
			},
		},
		{
			name: "unused token on a pet revived out of band",
			redeem: func(t *testing.T, f *fixture) error {
				token, err := f.svc.RequestReviveToken(ctx, f.userID)
				require.NoError(t, err)
				f.update(t, func(p *domain.Pet) {
					setAll(50)(p)
					p.IsDead = false
					p.ConsecutiveZeroDays = 0
				})
				_, err = f.svc.Redeem(ctx, f.userID, token.Token)
				return err
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil, "")
			f.update(t, kill)

			err := tc.redeem(t, f)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
			assert.NotErrorIs(t, err, domain.ErrAlreadyAlive)
			assert.False(t, f.pet(t).IsDead)
		})
	}
}

func kill(p *domain.Pet) {
	setAll(0)(p)
	p.IsDead = true
	p.ConsecutiveZeroDays = 3
}

func TestRedeemSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")
	f.update(t, kill)
	f.clock.Set(t0.Add(time.Hour))

	token, err := f.svc.RequestReviveToken(ctx, f.userID)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.True(t, token.ExpiresAt.Equal(t0.Add(time.Hour+30*time.Minute)))

	now := f.clock.Advance(10 * time.Minute)
	p, err := f.svc.Redeem(ctx, f.userID, token.Token)
	require.NoError(t, err)
	assert.False(t, p.IsDead)
	assert.Equal(t, 1, p.ResurrectStreak)
	assert.Equal(t, 0, p.ConsecutiveZeroDays)
	assert.Equal(t, 0, p.MissedSessionsStreak)
	assert.True(t, p.LastCheckedAt.Equal(now))
	for _, v := range domain.NeedOrder {
		assert.Equal(t, 50, p.Vital(v))
	}

	stored := f.pet(t)
	assert.False(t, stored.IsDead)
	assert.Equal(t, 1, stored.ResurrectStreak)
}

func TestRedeemFailures(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		redeem func(t *testing.T, f *fixture) error
	}{
		{
			name: "no token issued",
			redeem: func(t *testing.T, f *fixture) error {
				_, err := f.svc.Redeem(context.Background(), f.userID, "made-up")
				return err
			},
		},
		{
			name: "wrong token",
			redeem: func(t *testing.T, f *fixture) error {
				_, err := f.svc.RequestReviveToken(context.Background(), f.userID)
				require.NoError(t, err)
				_, err = f.svc.Redeem(context.Background(), f.userID, "made-up")
				return err
			},
		},
		{
			name: "expired token",
			redeem: func(t *testing.T, f *fixture) error {
				token, err := f.svc.RequestReviveToken(context.Background(), f.userID)
				require.NoError(t, err)
				f.clock.Advance(30 * time.Minute)
				_, err = f.svc.Redeem(context.Background(), f.userID, token.Token)
				return err
			},
		},
		{
			name: "superseded token",
			redeem: func(t *testing.T, f *fixture) error {
				first, err := f.svc.RequestReviveToken(context.Background(), f.userID)
				require.NoError(t, err)
				_, err = f.svc.RequestReviveToken(context.Background(), f.userID)
				require.NoError(t, err)
				_, err = f.svc.Redeem(context.Background(), f.userID, first.Token)
				return err
			},
		},
		{
			name: "token already used",
			redeem: func(t *testing.T, f *fixture) error {
				token, err := f.svc.RequestReviveToken(context.Background(), f.userID)
				require.NoError(t, err)
				_, err = f.svc.Redeem(context.Background(), f.userID, token.Token)
				require.NoError(t, err)
				f.update(t, kill)
				_, err = f.svc.Redeem(context.Background(), f.userID, token.Token)
				return err
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, nil, "")
			f.update(t, kill)

			err := tc.redeem(t, f)
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
			assert.True(t, f.pet(t).IsDead, "a failed redeem leaves the pet dead")
		})
	}
}

func TestCareDue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")

	check := func(gate bool) (domain.CareRequest, bool) {
		var (
			req domain.CareRequest
			ok  bool
		)
		err := f.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
			var err error
			req, ok, err = f.svc.CareDue(ctx, tx, f.userID, gate, t0)
			return err
		})
		require.NoError(t, err)
		return req, ok
	}

	_, ok := check(false)
	assert.False(t, ok, "a healthy pet needs nothing")

	req, ok := check(true)
	require.True(t, ok, "a gate always asks for care")
	assert.True(t, req.Gate)
	assert.Equal(t, domain.VitalHealth, req.Need, "ties resolve to health first")

	f.update(t, func(p *domain.Pet) { p.Thirst = 12 })
	req, ok = check(false)
	require.True(t, ok)
	assert.Equal(t, domain.VitalThirst, req.Need)
	assert.Equal(t, 12, req.Current)
	assert.Equal(t, domain.CareWater, req.Suggested)
	assert.ElementsMatch(t, domain.CareKinds, req.Options)

	f.update(t, kill)
	_, ok = check(true)
	assert.False(t, ok, "dead pets are not cared for")
}

func TestCareAction(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")
	f.update(t, setAll(20))

	act := func(kind domain.CareKind) (*domain.Pet, error) {
		var p *domain.Pet
		err := f.gateway.RunInTx(ctx, func(ctx context.Context, tx *store.Stores) error {
			var err error
			p, err = f.svc.CareAction(ctx, tx, f.userID, kind, t0)
			return err
		})
		return p, err
	}

	p, err := act(domain.CareFeed)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Hunger)
	assert.Equal(t, 25, p.Health)
	assert.Equal(t, 20, p.Mood)
	assert.Equal(t, 50, f.pet(t).Hunger)

	_, err = act("pet-the-dog")
	assert.ErrorIs(t, err, domain.ErrInvalidCareKind)

	f.update(t, kill)
	_, err = act(domain.CarePlay)
	assert.ErrorIs(t, err, domain.ErrBlocked)
}

func TestHandleEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, nil, "")
	f.update(t, setAll(50))

	emit := func(eventType string, payload any) {
		event, err := events.NewEvent(eventType, f.userID, payload, t0)
		require.NoError(t, err)
		require.NoError(t, f.svc.HandleEvent(ctx, event))
	}

	emit(events.SessionCompleted, events.SessionPayload{SessionID: uuid.New(), Level: 1, At: t0.Add(time.Hour)})
	p := f.pet(t)
	require.NotNil(t, p.LastSessionCompletedAt)
	assert.True(t, p.LastSessionCompletedAt.Equal(t0.Add(time.Hour)))
	assert.Equal(t, 1, p.SessionsToday)

	emit(events.SessionMissed, events.SessionPayload{SessionID: uuid.New(), Level: 1, At: t0})
	assert.Equal(t, 40, f.pet(t).Mood)

	emit(events.SessionReward, events.RewardPayload{SessionID: uuid.New(), Stage: 1, Streak: 3})
	assert.Equal(t, 45, f.pet(t).Mood)

	emit(events.ReminderDue, events.ReminderPayload{SessionID: uuid.New()})
	assert.Equal(t, 45, f.pet(t).Mood, "unrelated events are ignored")
}

func TestStatus(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil, "")
	f.update(t, func(p *domain.Pet) { p.Energy = 10 })
	f.clock.Set(t0.Add(time.Hour))

	status, err := f.svc.Status(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, vitality.MoodTired, status.Mood)
	require.NotNil(t, status.Care)
	assert.Equal(t, domain.VitalEnergy, status.Care.Need)
	assert.Equal(t, domain.CareRest, status.Care.Suggested)
}
