package turn

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hollowmere/warband/internal/announce"
	"github.com/hollowmere/warband/internal/dice"
	"github.com/hollowmere/warband/internal/economy"
	"github.com/hollowmere/warband/internal/game"
	platformerrors "github.com/hollowmere/warband/internal/platform/errors"
	"github.com/hollowmere/warband/internal/random"
	"github.com/hollowmere/warband/internal/storage"
	"github.com/hollowmere/warband/internal/telemetry"
)

// SchedulerConfig carries the collaborators of one game's scheduler. Store,
// Announcer and GameID are required; the rest default.
type SchedulerConfig struct {
	GameID    string
	Store     storage.Store
	Announcer announce.Announcer
	Emitter   *telemetry.Emitter
	Recipes   *economy.RecipeBook
	Dice      *dice.Registry
	Trigger   Trigger

	// Now and Seed are injectable for tests.
	Now  func() time.Time
	Seed func() (int64, error)
}

// Scheduler drives one game instance. It owns the chalkboard lifecycle, the
// wall-clock trigger and the turn resolution body. A per-instance mutex keeps
// at most one turn in flight; a trigger firing during a manual turn waits for
// it rather than interleaving.
type Scheduler struct {
	gameID    string
	store     storage.Store
	announcer announce.Announcer
	emitter   *telemetry.Emitter
	resolver  *economy.Resolver
	recipes   *economy.RecipeBook
	dice      *dice.Registry
	trigger   Trigger
	tracer    trace.Tracer
	now       func() time.Time
	seed      func() (int64, error)

	mu sync.Mutex // serializes turn resolution and lifecycle transitions

	clockMu sync.Mutex
	stop    chan struct{} // non-nil while the trigger clock is armed
}

// NewScheduler validates the config and builds a scheduler. The clock is not
// armed until StartGame succeeds.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.GameID == "" {
		return nil, fmt.Errorf("game id is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Announcer == nil {
		return nil, fmt.Errorf("announcer is required")
	}
	if err := cfg.Trigger.Validate(); err != nil {
		return nil, fmt.Errorf("validate trigger: %w", err)
	}
	if cfg.Recipes == nil {
		cfg.Recipes = economy.DefaultRecipeBook()
	}
	if cfg.Dice == nil {
		cfg.Dice = dice.DefaultRegistry()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Seed == nil {
		cfg.Seed = random.NewSeed
	}

	return &Scheduler{
		gameID:    cfg.GameID,
		store:     cfg.Store,
		announcer: cfg.Announcer,
		emitter:   cfg.Emitter,
		resolver:  economy.NewResolver(cfg.Store),
		recipes:   cfg.Recipes,
		dice:      cfg.Dice,
		trigger:   cfg.Trigger,
		tracer:    otel.Tracer("warband/turn"),
		now:       cfg.Now,
		seed:      cfg.Seed,
	}, nil
}

// StartGame moves the schedule toward ONGOING and arms the trigger clock.
// Rejected transitions come back as the status string, not an error.
func (s *Scheduler) StartGame(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.loadBoard(ctx)
	if err != nil {
		return "", err
	}

	status, started := board.Start(s.now)
	if started {
		if err := s.store.PutChalkboard(ctx, board); err != nil {
			return "", platformerrors.Wrap(platformerrors.CodePersistenceFailure, "persist chalkboard", err)
		}
		s.armClock()
	}
	s.announcer.AnnounceText(ctx, status, announce.Scope{GameID: s.gameID})
	s.emit(ctx, "schedule.start", telemetry.SeverityInfo, status)
	return status, nil
}

// StopGame pauses the schedule and suspends the trigger clock. The chalkboard
// keeps its current turn; a later StartGame resumes from it.
func (s *Scheduler) StopGame(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.loadBoard(ctx)
	if err != nil {
		return "", err
	}

	status, stopped := board.Stop(s.now)
	if stopped {
		if err := s.store.PutChalkboard(ctx, board); err != nil {
			return "", platformerrors.Wrap(platformerrors.CodePersistenceFailure, "persist chalkboard", err)
		}
		s.disarmClock()
	}
	s.announcer.AnnounceText(ctx, status, announce.Scope{GameID: s.gameID})
	s.emit(ctx, "schedule.stop", telemetry.SeverityInfo, status)
	return status, nil
}

// EndGame forces the schedule to ENDED and disarms the clock. Idempotent.
func (s *Scheduler) EndGame(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	board, err := s.loadBoard(ctx)
	if err != nil {
		return err
	}
	if board.State == game.ScheduleStateEnded {
		s.disarmClock()
		return nil
	}

	board.End(s.now)
	if err := s.store.PutChalkboard(ctx, board); err != nil {
		return platformerrors.Wrap(platformerrors.CodePersistenceFailure, "persist chalkboard", err)
	}
	s.disarmClock()
	s.announcer.AnnounceText(ctx, "the game has ended", announce.Scope{GameID: s.gameID})
	s.emit(ctx, "schedule.end", telemetry.SeverityInfo, "game ended")
	return nil
}

// ForceTurn resolves a turn immediately, outside the trigger schedule. It
// shares the scheduler mutex with the clock, so a forced turn and a triggered
// turn never interleave.
func (s *Scheduler) ForceTurn(ctx context.Context) error {
	return s.EndTurn(ctx)
}

// EndTurn resolves one turn. The body runs in two phases around the turn
// increment: production and announcements before, worker availability
// bookkeeping and counter resets after. Resource writes commit per step; a
// failure partway leaves earlier writes applied, does not advance the turn,
// and the next trigger retries.
func (s *Scheduler) EndTurn(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, "turn.end", trace.WithAttributes(
		attribute.String("game.id", s.gameID),
	))
	defer span.End()

	if err := s.store.Backup(ctx); err != nil {
		err = platformerrors.Wrap(platformerrors.CodePersistenceFailure, "backup before turn", err)
		s.reportFailure(ctx, err)
		return err
	}

	board, err := s.loadBoard(ctx)
	if err != nil {
		s.reportFailure(ctx, err)
		return err
	}

	switch board.State {
	case game.ScheduleStateEnded:
		s.disarmClock()
		return platformerrors.New(platformerrors.CodeScheduleEnded, "the game has ended")
	case game.ScheduleStateWaiting:
		// A turn fired against a board that was never started. Coerce it
		// into the running state rather than dropping the turn.
		if _, started := board.Start(s.now); started {
			log.Printf("turn game_id=%s coerced waiting chalkboard to ongoing", s.gameID)
		}
	}

	if board.TurnLimitReached() {
		board.End(s.now)
		if err := s.store.PutChalkboard(ctx, board); err != nil {
			err = platformerrors.Wrap(platformerrors.CodePersistenceFailure, "persist chalkboard", err)
			s.reportFailure(ctx, err)
			return err
		}
		s.disarmClock()
		s.announcer.AnnounceText(ctx, "the game has reached its turn limit and ended", announce.Scope{GameID: s.gameID})
		s.emit(ctx, "schedule.end", telemetry.SeverityInfo, "turn limit reached")
		return nil
	}

	resolvingTurn := board.CurrentTurn + 1
	span.SetAttributes(attribute.Int("turn.number", resolvingTurn))

	if err := s.resolveProduction(ctx, resolvingTurn); err != nil {
		s.reportFailure(ctx, err)
		return err
	}

	board.CurrentTurn = resolvingTurn

	if err := s.refreshWorkers(ctx); err != nil {
		s.reportFailure(ctx, err)
		return err
	}
	if err := s.store.ResetCounters(ctx, s.gameID); err != nil {
		err = platformerrors.Wrap(platformerrors.CodePersistenceFailure, "reset command counters", err)
		s.reportFailure(ctx, err)
		return err
	}

	board.UpdatedAt = s.now().UTC()
	if err := s.store.PutChalkboard(ctx, board); err != nil {
		err = platformerrors.Wrap(platformerrors.CodePersistenceFailure, "persist chalkboard", err)
		s.reportFailure(ctx, err)
		return err
	}

	s.announcer.AnnounceText(ctx, fmt.Sprintf("turn %d has been resolved", resolvingTurn), announce.Scope{GameID: s.gameID})
	s.emit(ctx, "turn.resolved", telemetry.SeverityInfo, fmt.Sprintf("turn %d resolved", resolvingTurn))
	return nil
}

// loadBoard fetches the scheduler's chalkboard. A missing record comes back
// as a not-found coded error rather than the raw storage sentinel.
func (s *Scheduler) loadBoard(ctx context.Context) (game.Chalkboard, error) {
	board, err := s.store.GetChalkboard(ctx, s.gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return game.Chalkboard{}, platformerrors.Wrap(platformerrors.CodeNotFound, "chalkboard "+s.gameID, err)
		}
		return game.Chalkboard{}, fmt.Errorf("load chalkboard: %w", err)
	}
	return board, nil
}

// resolveProduction runs the before-turn-end phase: every building with at
// least one deployed worker resolves its recipe and announces the report.
func (s *Scheduler) resolveProduction(ctx context.Context, turn int) error {
	buildings, err := s.store.ListBuildings(ctx, s.gameID)
	if err != nil {
		return platformerrors.Wrap(platformerrors.CodePersistenceFailure, "list buildings", err)
	}

	for _, building := range buildings {
		workers, err := s.store.ListWorkersByBuilding(ctx, building.ID)
		if err != nil {
			return platformerrors.Wrap(platformerrors.CodePersistenceFailure, "list building workers", err)
		}
		var deployed []game.Worker
		for _, w := range workers {
			if w.Deployed() {
				deployed = append(deployed, w)
			}
		}
		if len(deployed) == 0 {
			continue
		}

		report, err := s.resolver.ResolveBuilding(ctx, building, s.recipes.Recipe(building.Kind), deployed, turn)
		if err != nil {
			return fmt.Errorf("resolve building %s: %w", building.ID, err)
		}
		s.announcer.AnnounceReport(ctx, report, announce.Scope{GameID: s.gameID})
	}
	return nil
}

// refreshWorkers runs the after-turn-end phase of the availability cycle:
// deployed workers go unavailable, unavailable workers move to standby, and
// every standby worker, including the ones that just arrived from
// unavailable, holds a fresh efficiency roll for the new turn.
func (s *Scheduler) refreshWorkers(ctx context.Context) error {
	workers, err := s.store.ListWorkers(ctx, s.gameID)
	if err != nil {
		return platformerrors.Wrap(platformerrors.CodePersistenceFailure, "list workers", err)
	}

	now := s.now().UTC()
	for _, w := range workers {
		switch w.Availability {
		case game.AvailabilityDeployed:
			w.Availability = game.AvailabilityUnavailable
			w.BuildingID = ""
			w.Efficiency = 0
			w.DeployOrder = 0
		case game.AvailabilityUnavailable, game.AvailabilityStandby:
			w.Availability = game.AvailabilityStandby
			roll, err := s.rollEfficiency(w.Kind)
			if err != nil {
				return fmt.Errorf("roll efficiency for worker %s: %w", w.ID, err)
			}
			w.Efficiency = roll
		default:
			continue
		}
		w.UpdatedAt = now
		if err := s.store.PutWorker(ctx, w); err != nil {
			return platformerrors.Wrap(platformerrors.CodePersistenceFailure, "persist worker", err)
		}
	}
	return nil
}

func (s *Scheduler) rollEfficiency(kind game.WorkerKind) (int, error) {
	category := dice.CategoryEfficiency
	if kind == game.WorkerKindLivestock {
		category = dice.CategoryLivestock
	}
	seed, err := s.seed()
	if err != nil {
		return 0, fmt.Errorf("seed efficiency roll: %w", err)
	}
	d, err := s.dice.New(category, seed)
	if err != nil {
		return 0, err
	}
	return d.Roll(0), nil
}

// reportFailure logs and announces a failed turn resolution. The schedule is
// left untouched so the next trigger retries.
func (s *Scheduler) reportFailure(ctx context.Context, err error) {
	log.Printf("turn game_id=%s resolution failed err=%v", s.gameID, err)
	s.announcer.AnnounceText(ctx, "turn resolution failed and will be retried", announce.Scope{GameID: s.gameID})
	s.emit(ctx, "turn.failed", telemetry.SeverityError, err.Error())
}

func (s *Scheduler) emit(ctx context.Context, kind string, severity telemetry.Severity, message string) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, s.gameID, kind, severity, message)
}

// armClock starts the trigger goroutine if it is not already running.
func (s *Scheduler) armClock() {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop
	go s.runClock(stop)
}

// disarmClock signals the trigger goroutine to exit. Safe to call from
// within a triggered turn; the goroutine observes the closed channel on its
// next select.
func (s *Scheduler) disarmClock() {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}

// Shutdown releases the trigger clock at process exit without touching the
// persisted schedule.
func (s *Scheduler) Shutdown() {
	s.disarmClock()
}

func (s *Scheduler) runClock(stop chan struct{}) {
	for {
		next := s.trigger.Next(s.now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-stop:
			timer.Stop()
			return
		case <-timer.C:
			if err := s.EndTurn(context.Background()); err != nil {
				log.Printf("turn game_id=%s scheduled resolution err=%v", s.gameID, err)
			}
		}
	}
}
