package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/tacticai/internal/ai"
	"github.com/udisondev/tacticai/internal/config"
	"github.com/udisondev/tacticai/internal/journal"
	"github.com/udisondev/tacticai/internal/model"
	"github.com/udisondev/tacticai/internal/skirmish"
)

const SimConfigPath = "config/tacticsim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := SimConfigPath
	if p := os.Getenv("TACTICAI_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSim(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(cfg.Engine.Debug || logLevel == slog.LevelDebug)

	slog.Info("tacticsim starting",
		"battles", cfg.Battles,
		"parallel", cfg.Parallel,
		"seed", cfg.Seed,
		"primary_module", cfg.Engine.PrimaryModule,
		"turn_based", cfg.TurnBased)

	rec := journal.Discard
	if cfg.JournalDSN != "" {
		store, err := journal.Open(ctx, cfg.JournalDSN)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer store.Close()
		version, err := journal.RunMigrations(ctx, cfg.JournalDSN)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("decision journal enabled", "schema", version)
		rec = store
	}

	runner := skirmish.NewRunner(cfg, rec)

	var mu sync.Mutex
	wins := make(map[model.OrgID]int)
	draws := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallel)
	for i := range cfg.Battles {
		seed := cfg.Seed + uint64(i)
		id := fmt.Sprintf("battle-%d-%d", cfg.Seed, i)
		g.Go(func() error {
			res, err := runner.Run(gctx, id, seed)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if res.Over && res.Winner != "" {
				wins[res.Winner]++
			} else {
				draws++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("running battles: %w", err)
	}

	for org, n := range wins {
		slog.Info("faction wins", "org", org, "battles", n)
	}
	slog.Info("tacticsim finished", "battles", cfg.Battles, "undecided", draws)
	return nil
}
