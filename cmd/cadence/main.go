// Command cadence scores a single analysed utterance from a JSON input file
// and prints the full report to stdout.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluentia-ai/cadence/internal/analysis"
	"github.com/fluentia-ai/cadence/internal/calibration"
	"github.com/fluentia-ai/cadence/internal/config"
	"github.com/fluentia-ai/cadence/internal/observe"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "", "path to the YAML configuration file (optional)")
	inputPath := flag.String("input", "", "path to a JSON file holding one analysis input")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "cadence: -input is required")
		flag.Usage()
		return 2
	}

	// ── Load configuration ────────────────────────────────────────────────────
	cfg := &config.Config{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(os.Stderr, "cadence: config file %q not found\n", *configPath)
			} else {
				fmt.Fprintf(os.Stderr, "cadence: %v\n", err)
			}
			return 1
		}
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel.Level(),
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "cadence"})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown failed", "err", err)
		}
	}()

	// ── Calibration store ─────────────────────────────────────────────────────
	var store calibration.Store = calibration.NewMemoryStore()
	if dsn := cfg.Calibration.PostgresDSN; dsn != "" {
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to connect to calibration database", "err", err)
			return 1
		}
		defer pool.Close()

		pg := calibration.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to migrate calibration schema", "err", err)
			return 1
		}
		store = pg
	}

	// ── Analyzer ──────────────────────────────────────────────────────────────
	opts := []analysis.Option{
		analysis.WithExtraFillers(cfg.Lexicon.ExtraFillers),
		analysis.WithLabelWords(cfg.Lexicon.LabelWords),
		analysis.WithContextOverrides(cfg.ContextOverrides()),
	}
	if cfg.Calibration.MinHistory > 0 {
		opts = append(opts, analysis.WithMinHistory(cfg.Calibration.MinHistory))
	}
	analyzer := analysis.New(store, opts...)

	// ── Input ─────────────────────────────────────────────────────────────────
	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		slog.Error("failed to read input file", "path", *inputPath, "err", err)
		return 1
	}
	var in analysis.Input
	if err := json.Unmarshal(raw, &in); err != nil {
		slog.Error("failed to parse input file", "path", *inputPath, "err", err)
		return 1
	}

	// ── Analyze ───────────────────────────────────────────────────────────────
	result, err := analyzer.Analyze(ctx, in)
	if err != nil {
		slog.Error("analysis failed", "err", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		slog.Error("failed to encode report", "err", err)
		return 1
	}
	return 0
}
