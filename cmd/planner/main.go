package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"trip-planner/internal/adapters/optimizer"
	"trip-planner/internal/api/handlers"
	"trip-planner/internal/bootstrap"
	"trip-planner/internal/config"
	"trip-planner/internal/domain"
	"trip-planner/internal/platform/logging"
	"trip-planner/internal/ports"
	"trip-planner/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	end := fs.Bool("end", false, "treat the last location as a designated end point")
	preset := fs.String("preset", "", "load a saved trip by name")
	asJSON := fs.Bool("json", false, "print the itinerary as JSON")
	dryRun := fs.Bool("dry-run", false, "answer from a local stub instead of the optimizer")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: planner [-end] [-preset name] [-json] [-dry-run] location...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	// stdout carries the itinerary; logs go to stderr.
	slog.SetDefault(logging.New(stderr, cfg.Log.Level, "text"))

	ctx := context.Background()

	var planner *services.TripPlanner
	var trips ports.TripRepository
	if *dryRun {
		list := services.NewLocationListController(cfg.ListConfig())
		planner = services.NewTripPlanner(list, optimizer.NewMockOptimizer(), cfg.Optimizer.Timeout)
		seeded, err := bootstrap.SeedPresets(cfg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if seeded != nil {
			trips = seeded
		}
	} else {
		deps, err := bootstrap.Build(ctx, cfg)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		defer deps.Close()
		planner = deps.NewPlanner(cfg)()
		trips = deps.Trips
	}

	if *preset != "" {
		if err := loadPreset(ctx, planner, trips, *preset); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	}

	if err := fill(planner, fs.Args()); err != nil {
		fmt.Fprintln(stderr, domain.UserMessage(err))
		return 1
	}

	if *end && !planner.SetDesignatedEnd(true) {
		fmt.Fprintln(stderr, "designated end point is disabled in this configuration")
		return 1
	}

	it, err := planner.Submit(ctx)
	if err != nil {
		slog.Debug("submit failed", "err", err)
		fmt.Fprintln(stderr, domain.UserMessage(err))
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(handlers.ToItineraryResponse(it))
	} else {
		err = services.WriteItinerary(stdout, it)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func loadPreset(ctx context.Context, planner *services.TripPlanner, trips ports.TripRepository, name string) error {
	if trips == nil {
		return errors.New("no trip presets available: seed file not found")
	}
	trip, err := trips.GetTrip(ctx, name)
	if err != nil {
		return err
	}
	return planner.LoadPreset(trip)
}

// fill appends positional locations after any preset entries, reusing the
// blank slots the planner starts with.
func fill(planner *services.TripPlanner, locations []string) error {
	if len(locations) == 0 {
		return nil
	}

	current := planner.Locations()
	next := 0
	for i, loc := range current {
		if next == len(locations) {
			return nil
		}
		if loc == "" {
			planner.SetLocation(i, locations[next])
			next++
		}
	}

	for ; next < len(locations); next++ {
		if err := planner.AddLocation(); err != nil {
			return err
		}
		planner.SetLocation(len(planner.Locations())-1, locations[next])
	}
	return nil
}

