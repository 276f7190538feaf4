// Package engine parses engine command flags and starts the game runtime:
// the SQLite store, the announcement hub and the turn scheduler.
package engine

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hollowmere/warband/internal/announce"
	"github.com/hollowmere/warband/internal/announce/hub"
	"github.com/hollowmere/warband/internal/game"
	entrypoint "github.com/hollowmere/warband/internal/platform/cmd"
	"github.com/hollowmere/warband/internal/storage"
	"github.com/hollowmere/warband/internal/storage/sqlite"
	"github.com/hollowmere/warband/internal/telemetry"
	"github.com/hollowmere/warband/internal/turn"
)

// Config holds engine command configuration.
type Config struct {
	DBPath        string `env:"WARBAND_DB_PATH" envDefault:"warband.db"`
	GameID        string `env:"WARBAND_GAME_ID"`
	TurnLimit     int    `env:"WARBAND_TURN_LIMIT" envDefault:"30"`
	TriggerHour   int    `env:"WARBAND_TRIGGER_HOUR" envDefault:"20"`
	TriggerMinute int    `env:"WARBAND_TRIGGER_MINUTE" envDefault:"0"`
	AnnounceAddr  string `env:"WARBAND_ANNOUNCE_ADDR" envDefault:":8080"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the SQLite database")
	fs.StringVar(&cfg.GameID, "game", cfg.GameID, "Game id to run (created when missing)")
	fs.IntVar(&cfg.TurnLimit, "turn-limit", cfg.TurnLimit, "Turn limit for a newly created game")
	fs.IntVar(&cfg.TriggerHour, "trigger-hour", cfg.TriggerHour, "Hour of day of the turn trigger")
	fs.IntVar(&cfg.TriggerMinute, "trigger-minute", cfg.TriggerMinute, "Minute of the turn trigger")
	fs.StringVar(&cfg.AnnounceAddr, "announce-addr", cfg.AnnounceAddr, "Listen address of the announcement websocket")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the engine runtime and blocks until the context is canceled.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceEngine, func(ctx context.Context) error {
		store, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer store.Close()

		board, err := ensureChalkboard(ctx, store, cfg)
		if err != nil {
			return err
		}
		log.Printf("engine game_id=%s state=%s turn=%d/%d", board.GameID, board.State, board.CurrentTurn, board.TurnLimit)

		wsHub := hub.New()
		defer wsHub.Close()

		scheduler, err := turn.NewScheduler(turn.SchedulerConfig{
			GameID:    board.GameID,
			Store:     store,
			Announcer: announce.Multi{announce.LogAnnouncer{}, wsHub},
			Emitter:   telemetry.NewEmitter(store),
			Trigger:   turn.Trigger{Hour: cfg.TriggerHour, Minute: cfg.TriggerMinute},
		})
		if err != nil {
			return fmt.Errorf("build scheduler: %w", err)
		}
		defer scheduler.Shutdown()

		if _, err := scheduler.StartGame(ctx); err != nil {
			return fmt.Errorf("start game: %w", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/ws", wsHub.Handler())
		server := &http.Server{Addr: cfg.AnnounceAddr, Handler: mux}

		group, ctx := errgroup.WithContext(ctx)
		group.Go(func() error {
			log.Printf("engine announce_addr=%s listening", cfg.AnnounceAddr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("announce server: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
		return group.Wait()
	})
}

// ensureChalkboard loads the configured game's schedule record, creating it
// when missing.
func ensureChalkboard(ctx context.Context, store storage.Store, cfg Config) (game.Chalkboard, error) {
	if cfg.GameID != "" {
		board, err := store.GetChalkboard(ctx, cfg.GameID)
		if err == nil {
			return board, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return game.Chalkboard{}, fmt.Errorf("load chalkboard: %w", err)
		}
	}

	board, err := game.CreateChalkboard(game.CreateChalkboardInput{GameID: cfg.GameID, TurnLimit: cfg.TurnLimit}, nil, nil)
	if err != nil {
		return game.Chalkboard{}, fmt.Errorf("create chalkboard: %w", err)
	}
	if err := store.PutChalkboard(ctx, board); err != nil {
		return game.Chalkboard{}, fmt.Errorf("persist chalkboard: %w", err)
	}
	return board, nil
}
