package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/petdeck/internal/api"
	"github.com/phrazzld/petdeck/internal/api/middleware"
	"github.com/phrazzld/petdeck/internal/config"
	"github.com/phrazzld/petdeck/internal/domain"
	"github.com/phrazzld/petdeck/internal/domain/plan"
	"github.com/phrazzld/petdeck/internal/domain/srs"
	"github.com/phrazzld/petdeck/internal/domain/vitality"
	"github.com/phrazzld/petdeck/internal/events"
	"github.com/phrazzld/petdeck/internal/platform/clock"
	"github.com/phrazzld/petdeck/internal/platform/content"
	"github.com/phrazzld/petdeck/internal/platform/metrics"
	"github.com/phrazzld/petdeck/internal/platform/oracle"
	"github.com/phrazzld/petdeck/internal/platform/sqlstore"
	"github.com/phrazzld/petdeck/internal/service/auth"
	"github.com/phrazzld/petdeck/internal/service/items"
	"github.com/phrazzld/petdeck/internal/service/pet"
	"github.com/phrazzld/petdeck/internal/service/planner"
	"github.com/phrazzld/petdeck/internal/service/session"
	"github.com/phrazzld/petdeck/internal/service/users"
	"github.com/phrazzld/petdeck/internal/task"
	"github.com/phrazzld/petdeck/internal/userlock"
)

// application holds the shared dependencies and owns their shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sqlx.DB
	metrics *metrics.Metrics

	jwtService auth.JWTService
	users      users.UserService
	sessions   session.Service
	pets       pet.Service
	planner    *planner.Planner

	queue     *task.TaskQueue
	workers   *task.WorkerPool
	scheduler *tickScheduler
}

// newApplication connects to the database, migrates it and wires every
// service. The caller must call Run, which releases the resources.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		metrics: metrics.New(),
	}

	db, err := sqlstore.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	app.db = db
	if err := sqlstore.Migrate(ctx, db, logger); err != nil {
		app.cleanup()
		return nil, err
	}

	if err := app.wire(cfg, logger); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("application initialized successfully")
	return app, nil
}

func (app *application) wire(cfg *config.Config, logger *slog.Logger) error {
	clk := clock.System{}

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidTimezone, cfg.Schedule.Timezone)
	}

	times, err := plan.ParseClockTimes(cfg.Schedule.SessionTimes)
	if err != nil {
		return fmt.Errorf("invalid session times: %w", err)
	}
	schedule := plan.Schedule{
		Times:         times,
		ReminderLead:  time.Duration(cfg.Schedule.ReminderLeadMinutes) * time.Minute,
		DeadlineGrace: time.Duration(cfg.Schedule.DeadlineGraceMinutes) * time.Minute,
	}

	catalog, err := content.Load(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	logger.Info("content catalog loaded", slog.Any("levels", catalog.Levels()))

	policy, err := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{
		GraduationThreshold: cfg.Learning.GraduationThreshold,
		IntervalDays:        cfg.Learning.ReviewIntervalDays,
		DemoteBy:            cfg.Learning.DemoteBy,
	}))
	if err != nil {
		return fmt.Errorf("failed to create item scheduler: %w", err)
	}

	engine, err := vitality.NewEngine(vitality.NewParams(vitality.ParamsConfig{
		InitialVital: cfg.Pet.InitialVital,
		DecayPerDay: map[domain.Vital]int{
			domain.VitalHunger:  cfg.Pet.Decay.Hunger,
			domain.VitalThirst:  cfg.Pet.Decay.Thirst,
			domain.VitalHygiene: cfg.Pet.Decay.Hygiene,
			domain.VitalEnergy:  cfg.Pet.Decay.Energy,
			domain.VitalMood:    cfg.Pet.Decay.Mood,
			domain.VitalHealth:  cfg.Pet.Decay.Health,
		},
		RecoveryBonus:        &cfg.Pet.RecoveryBonus,
		MercyWindow:          cfg.Pet.MercyWindow,
		LowWaterMark:         &cfg.Pet.LowWaterMark,
		CareAmount:           cfg.Pet.CareAmount,
		RevivalBaseline:      cfg.Pet.RevivalBaseline,
		RewardMoodBonus:      &cfg.Pet.RewardMoodBonus,
		MissedSessionPenalty: &cfg.Pet.MissedSessionPenalty,
	}))
	if err != nil {
		return fmt.Errorf("failed to create vitality engine: %w", err)
	}

	app.jwtService, err = auth.NewJWTService(cfg.Auth, clk)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	gateway := sqlstore.NewGateway(app.db, logger)
	locks := userlock.NewArena()
	emitter := events.NewInMemoryEventEmitter(logger)

	app.pets = pet.NewService(gateway, locks, engine, clk, emitter, app.metrics, pet.Config{
		TokenTTL: cfg.Pet.RevivalTokenTTL,
		Location: loc,
	}, logger)

	app.sessions = session.NewService(
		gateway,
		locks,
		items.NewService(policy, logger),
		app.pets,
		oracle.NewRetrying(oracle.NewLevenshtein(), cfg.Oracle.Timeout, cfg.Oracle.Retries, logger),
		catalog,
		clk,
		emitter,
		app.metrics,
		session.Config{
			CorrectnessThreshold: cfg.Learning.CorrectnessThreshold,
			SessionCapacity:      cfg.Learning.SessionCapacity,
			MaxSessionsPerDay:    cfg.Learning.MaxSessionsPerDay,
			MaxRetries:           cfg.Learning.MaxRetries,
			RewardMilestones:     cfg.Learning.RewardMilestones,
			CareGates:            cfg.Learning.CareGates,
			Schedule:             schedule,
			Location:             loc,
		},
		logger,
	)

	app.users = users.NewUserService(gateway, locks, clk, cfg.Schedule.Timezone, logger)

	app.planner = planner.New(gateway, locks, app.sessions, app.pets, clk, emitter, app.metrics, planner.Config{
		Schedule:    schedule,
		Location:    loc,
		Concurrency: cfg.Schedule.TickConcurrency,
	}, logger)

	app.queue = task.NewTaskQueue(cfg.Notify.QueueSize, logger)
	app.workers = task.NewWorkerPool(app.queue, task.WorkerPoolConfig{WorkerCount: cfg.Notify.Workers}, logger)

	emitter.RegisterHandler(app.pets)
	emitter.RegisterHandler(task.NewNotificationEventHandler(app.queue, task.NewLogNotifier(logger), logger))

	app.scheduler = newTickScheduler(app.planner, cfg.Schedule.TickInterval, logger)
	return nil
}

// routerDeps collects the HTTP surface collaborators from the wired services.
func (app *application) routerDeps() api.RouterDeps {
	return api.RouterDeps{
		Auth:     middleware.NewAuthMiddleware(app.jwtService),
		Users:    api.NewUserHandler(app.users, app.logger),
		Sessions: api.NewSessionHandler(app.sessions, app.logger),
		Pets:     api.NewPetHandler(app.pets, app.logger),
		Schedule: api.NewScheduleHandler(app.planner, app.logger),
		Metrics:  app.metrics,
		Logger:   app.logger,
	}
}

// Run starts the background workers and serves HTTP until ctx is done.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	app.workers.Start()
	if err := app.scheduler.Start(ctx); err != nil {
		return err
	}

	if err := app.startHTTPServer(ctx, api.NewRouter(app.routerDeps())); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup stops background work and closes the database.
func (app *application) cleanup() {
	if app.scheduler != nil {
		app.scheduler.Stop()
	}
	if app.queue != nil {
		app.queue.Close()
	}
	if app.workers != nil {
		app.workers.Wait()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
