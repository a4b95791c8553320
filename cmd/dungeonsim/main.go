// Command dungeonsim generates a dungeon from a seed, populates it from a
// stage document and runs the agents until the stage is cleared, every
// human is dead or the process is stopped.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/gist-rs/the-rust-of-us/internal/agents"
	"github.com/gist-rs/the-rust-of-us/internal/api"
	"github.com/gist-rs/the-rust-of-us/internal/engine"
	"github.com/gist-rs/the-rust-of-us/internal/entropy"
	"github.com/gist-rs/the-rust-of-us/internal/mapgen"
	"github.com/gist-rs/the-rust-of-us/internal/persistence"
	"github.com/gist-rs/the-rust-of-us/internal/stage"
	"github.com/gist-rs/the-rust-of-us/internal/world"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(envOrDefault("DUNGEON_LOG_LEVEL", "info")),
	}))
	slog.SetDefault(logger)

	// ── Stage ─────────────────────────────────────────────────────────
	doc, err := loadStage(os.Getenv("DUNGEON_STAGE"))
	if err != nil {
		slog.Error("failed to load stage", "error", err)
		os.Exit(1)
	}

	seed := os.Getenv("DUNGEON_SEED")
	if seed == "" {
		seed = doc.Seed
	}
	if seed == "" {
		seed = entropy.NewSeed()
		slog.Info("no seed configured, minted one", "seed", seed)
	}

	// ── Dungeon (deterministic from seed) ─────────────────────────────
	size := envIntOrDefault("DUNGEON_MAP_SIZE", 8)
	cfg := mapgen.DefaultGenConfig()
	if size >= 16 {
		cfg = mapgen.LargeConfig()
	}
	cfg.Size = size
	cfg.Clutter = envFloatOrDefault("DUNGEON_CLUTTER", cfg.Clutter)

	dungeon, err := mapgen.Generate(seed, cfg)
	if err != nil {
		slog.Error("failed to generate dungeon", "seed", seed, "error", err)
		os.Exit(1)
	}
	for t, c := range dungeon.Layout.Counts() {
		slog.Debug("terrain", "type", world.TerrainName(t), "count", c)
	}
	slog.Info("dungeon generated",
		"seed", seed,
		"size", dungeon.Size,
		"treasures", len(dungeon.Treasures),
		"graves", len(dungeon.Graves),
		"carved", len(dungeon.Carved),
	)
	fmt.Println(dungeon.Layout.String())

	// ── Brains ────────────────────────────────────────────────────────
	lib, err := loadLibrary(os.Getenv("DUNGEON_BRAINS"))
	if err != nil {
		slog.Error("failed to load brain table", "error", err)
		os.Exit(1)
	}

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(dungeon, world.DefaultScreenConfig(), lib)
	if err := sim.Populate(doc); err != nil {
		slog.Error("failed to populate stage", "stage", doc.ID, "error", err)
		os.Exit(1)
	}

	// ── Journal ───────────────────────────────────────────────────────
	var db *persistence.DB
	var runID string
	if dbPath := os.Getenv("DUNGEON_DB"); dbPath != "" {
		db, runID, err = openJournal(dbPath, seed, doc.ID, dungeon)
		if err != nil {
			slog.Error("failed to open journal", "path", dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	eng := engine.NewEngine(envIntOrDefault("DUNGEON_TICK_HZ", engine.DefaultTickHz))
	eng.MaxTicks = uint64(envIntOrDefault("DUNGEON_MAX_TICKS", 0))
	eng.Done = sim.Done

	// Events are journaled in batches at every summary and on shutdown.
	var unsaved []engine.Event
	flush := func() {
		if db == nil || len(unsaved) == 0 {
			return
		}
		if err := db.SaveEvents(runID, unsaved); err != nil {
			slog.Error("journal events failed", "error", err, "events", len(unsaved))
			return
		}
		unsaved = unsaved[:0]
	}
	eng.OnTick = func(tick uint64, dt float64) {
		events := sim.Tick(tick, dt)
		if db != nil {
			unsaved = append(unsaved, events...)
		}
	}
	eng.OnSummary = func(tick uint64) {
		sim.LogSummary(tick)
		flush()
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if port := envIntOrDefault("DUNGEON_API_PORT", 0); port > 0 {
		adminKey := os.Getenv("DUNGEON_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("DUNGEON_ADMIN_KEY not set, admin POST endpoints disabled")
		}
		apiServer := &api.Server{
			Sim:      sim,
			Eng:      eng,
			DB:       db,
			RunID:    runID,
			Port:     port,
			AdminKey: adminKey,
		}
		apiServer.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", port)
	}

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("Starting simulation... (Ctrl+C to stop)")
	eng.Run(ctx)

	flush()
	stats := sim.StatsSnapshot()
	outcome := "stopped"
	switch {
	case stats.Cleared:
		outcome = "cleared"
	case stats.Over:
		outcome = "game_over"
	}
	if db != nil {
		if err := db.FinishRun(runID, eng.Tick, outcome); err != nil {
			slog.Error("failed to finish run", "error", err)
		}
	}

	sim.LogSummary(eng.Tick)
	fmt.Printf("Run ended (%s) after %s ticks (%s simulated).\n",
		outcome, humanize.Comma(int64(eng.Tick)), eng.SimTime(eng.Tick))
}

func loadStage(path string) (*stage.Document, error) {
	if path == "" {
		return stage.Default()
	}
	return stage.LoadFile(path)
}

// openJournal opens the database and records the run and its map. The
// database is closed again when the run cannot be recorded.
func openJournal(path, seed, stageID string, d *mapgen.Dungeon) (*persistence.DB, string, error) {
	db, err := persistence.Open(path)
	if err != nil {
		return nil, "", err
	}
	runID, err := db.StartRun(seed, stageID)
	if err != nil {
		db.Close()
		return nil, "", fmt.Errorf("journal run: %w", err)
	}
	if err := db.SaveMap(runID, d); err != nil {
		slog.Error("failed to journal map", "error", err)
	}
	return db, runID, nil
}

func loadLibrary(path string) (*agents.Library, error) {
	if path == "" {
		return agents.DefaultLibrary()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open brain table: %w", err)
	}
	defer f.Close()
	return agents.LoadLibrary(f)
}

func logLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
