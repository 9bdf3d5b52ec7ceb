// Dienstplan planning engine entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/TimUx/Dienstplan-sub000/internal/config"
	"github.com/TimUx/Dienstplan-sub000/internal/database"
	"github.com/TimUx/Dienstplan-sub000/internal/repository"
	"github.com/TimUx/Dienstplan-sub000/pkg/logger"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
	"github.com/TimUx/Dienstplan-sub000/pkg/scheduler"
	"github.com/TimUx/Dienstplan-sub000/pkg/stats"
)

// Build information (injected via ldflags).
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	var (
		startDate  = flag.String("start", "", "first day of the planning range (YYYY-MM-DD)")
		endDate    = flag.String("end", "", "last day of the planning range (YYYY-MM-DD)")
		overwrite  = flag.Bool("overwrite", false, "replace non-pinned assignments instead of replaying them")
		budget     = flag.Duration("budget", 0, "solver time budget (default from config)")
		configPath = flag.String("config", "", "optional YAML config file")
	)
	flag.Parse()

	if *startDate == "" || *endDate == "" {
		fmt.Fprintln(os.Stderr, "usage: planner -start YYYY-MM-DD -end YYYY-MM-DD [-overwrite] [-budget 5m]")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Log)
	logger.Info().
		Str("version", Version).
		Str("commit", GitCommit).
		Msg("dienstplan planner starting")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	acc := stats.NewAccumulator(repository.NewFairnessRepository(db))
	if err := acc.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("loading fairness totals")
	}

	planner := scheduler.NewPlanner(
		repository.NewPlanningRepository(db),
		scheduler.SatSolver{},
		acc,
		cfg.Planner,
		cfg.Weights,
	)

	result, err := planner.Plan(ctx, model.PlanningRequest{
		StartDate:  *startDate,
		EndDate:    *endDate,
		Overwrite:  *overwrite,
		TimeBudget: *budget,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("planning failed")
	}

	if !result.Status.Solved() {
		logger.Error().
			Str("status", string(result.Status)).
			Msg("no usable schedule produced")
		os.Exit(1)
	}

	assignments := repository.NewAssignmentRepository(db)
	if err := assignments.ReplaceRange(ctx, *startDate, *endDate, result.Assignments); err != nil {
		logger.Fatal().Err(err).Msg("persisting assignments")
	}

	critical := 0
	for _, v := range result.Violations {
		ev := logger.Info()
		switch v.Severity {
		case model.SeverityCritical:
			critical++
			ev = logger.Error()
		case model.SeverityWarning:
			ev = logger.Warn()
		}
		ev.Str("category", v.Category).Str("date", v.Date).Msg(v.Message)
	}

	logger.Info().
		Str("status", string(result.Status)).
		Int("assignments", len(result.Assignments)).
		Int("violations", len(result.Violations)).
		Int("critical", critical).
		Int("extended_days", len(result.ExtendedDates)).
		Float64("fairness", result.FairnessScore).
		Dur("solve_time", result.SolveTime).
		Msg("planning run complete")
}
