package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/plan"
	"github.com/phrazzld/petdeck/internal/domain/srs"
	"github.com/phrazzld/petdeck/internal/domain/vitality"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/platform/content"
	"github.com/phrazzld/petdeck/internal/platform/logger"
	"github.com/phrazzld/petdeck/internal/platform/oracle"
	"github.com/phrazzld/petdeck/internal/service/items"
	"github.com/phrazzld/petdeck/internal/service/pet"
	"github.com/phrazzld/petdeck/internal/service/session"
	"github.com/phrazzld/petdeck/internal/store"
	"github.com/phrazzld/petdeck/internal/testdb"
	"github.com/phrazzld/petdeck/internal/userlock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var t0 = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

// answers of level 1 in catalog order.
var answers = map[domain.ContentID]string{
	"1": "apple",
	"2": "banana",
	"3": "cherry",
	"4": "damson",
}

const wrong = "xxxxxxxxxx"

type fixture struct {
	svc      session.Service
	pets     pet.Service
	items    items.Service
	gateway  store.Gateway
	clock    *clock.Fake
	userID   uuid.UUID
	failing  atomic.Bool
	mu       sync.Mutex
	received []*events.Event
}

func newFixture(t *testing.T, configure ...func(cfg *session.Config)) *fixture {
	t.Helper()
	ctx := context.Background()
	log := logger.NewDiscard()

	gateway := testdb.Gateway(t)
	user, err := domain.NewUser(uuid.New(), t0)
	require.NoError(t, err)
	require.NoError(t, gateway.Stores().Users.Create(ctx, user))

	var catalogItems []domain.ContentItem
	for _, id := range []domain.ContentID{"1", "2", "3", "4"} {
		catalogItems = append(catalogItems, domain.ContentItem{
			Level: 1, ID: id, Prompt: "prompt " + string(id), Answer: answers[id],
		})
	}
	catalogItems = append(catalogItems, domain.ContentItem{Level: 2, ID: "1", Prompt: "next", Answer: "level two"})
	catalog, err := content.New(catalogItems)
	require.NoError(t, err)

	times, err := plan.ParseClockTimes([]string{"09:00", "18:00"})
	require.NoError(t, err)
	cfg := session.Config{
		CorrectnessThreshold: 80,
		SessionCapacity:      10,
		MaxRetries:           1,
		RewardMilestones:     []int{3, 5, 10},
		Schedule: plan.Schedule{
			Times:         times,
			ReminderLead:  15 * time.Minute,
			DeadlineGrace: 90 * time.Minute,
		},
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	f := &fixture{
		gateway: gateway,
		clock:   clock.NewFake(t0),
		userID:  user.ID,
	}

	emitter := events.NewInMemoryEventEmitter(log)
	locks := userlock.NewArena()
	engine, err := vitality.NewEngine(nil)
	require.NoError(t, err)
	f.pets = pet.NewService(gateway, locks, engine, f.clock, emitter, nil,
		pet.Config{BcryptCost: bcrypt.MinCost}, log)
	emitter.RegisterHandler(f.pets)
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, event *events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.received = append(f.received, event)
		return nil
	}))

	levenshtein := oracle.NewLevenshtein()
	scorer := oracle.Func(func(ctx context.Context, answer oracle.Answer) (oracle.Result, error) {
		if f.failing.Load() {
			return oracle.Result{}, domain.ErrTransientIO
		}
		return levenshtein.Score(ctx, answer)
	})

	f.items = items.NewService(srs.NewDefaultService(), log)
	f.svc = session.NewService(gateway, locks, f.items, f.pets, scorer, catalog, f.clock, emitter, nil, cfg, log)
	return f
}

func (f *fixture) count(eventType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.received {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// updatePet loads the pet, creating it if needed, and saves the result of fn.
func (f *fixture) updatePet(t *testing.T, fn func(p *domain.Pet)) {
	t.Helper()
	err := f.gateway.RunInTx(context.Background(), func(ctx context.Context, tx *store.Stores) error {
		p, err := f.pets.Load(ctx, tx, f.userID, f.clock.Now())
		if err != nil {
			return err
		}
		fn(p)
		return tx.Pets.Update(ctx, p)
	})
	require.NoError(t, err)
}

func (f *fixture) open(t *testing.T) *session.View {
	t.Helper()
	view, err := f.svc.OpenSession(context.Background(), f.userID, 1)
	require.NoError(t, err)
	return view
}

// answer submits the right answer for the current item, or a wrong one.
func (f *fixture) answer(t *testing.T, sessionID uuid.UUID, correct bool) *session.AttemptResult {
	t.Helper()
	return f.submit(t, sessionID, correct, true)
}

// submit answers the current item, claiming a first try or a retake.
func (f *fixture) submit(t *testing.T, sessionID uuid.UUID, correct, first bool) *session.AttemptResult {
	t.Helper()
	view, err := f.svc.ActiveSession(context.Background(), f.userID)
	require.NoError(t, err)
	require.NotNil(t, view.Prompt)

	submitted := wrong
	if correct {
		submitted = answers[view.Prompt.ContentID]
	}
	result, err := f.svc.SubmitAttempt(context.Background(), f.userID, sessionID,
		session.Submission{Answer: submitted, FirstTry: first})
	require.NoError(t, err)
	return result
}

func firstTry(answer string) session.Submission {
	return session.Submission{Answer: answer, FirstTry: true}
}

func kill(p *domain.Pet) {
	for _, v := range domain.NeedOrder {
		p.SetVital(v, 0)
	}
	p.IsDead = true
}

func revive(p *domain.Pet) {
	for _, v := range domain.NeedOrder {
		p.SetVital(v, 50)
	}
	p.IsDead = false
}
