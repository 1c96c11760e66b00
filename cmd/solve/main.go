package main

import (
	"context"
	"dynamic-route-service/internal/adapters/csvload"
	"dynamic-route-service/internal/adapters/publisher"
	"dynamic-route-service/internal/adapters/weather"
	"dynamic-route-service/internal/config"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/obs"
	"dynamic-route-service/internal/services"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
)

// solve plans routes for the stops in a locations CSV and prints one route per vehicle.
func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.SetupLogger("info", "console")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	obs.SetupLogger(cfg.LogLevel, "console")

	var (
		locations = flag.String("locations", "locations.csv", "CSV with name,lat,lon columns")
		matrix    = flag.String("matrix", "distance_matrix.csv", "square distance matrix CSV in km")
		vehicles  = flag.Int("vehicles", 2, "number of vehicles")
		depot     = flag.Int("depot", 0, "index of the depot row")
		weatherF  = flag.String("weather", "", "Sunny or Rainy; empty uses the live lookup when configured")
		region    = flag.String("region", cfg.WeatherRegion, "region for the live weather lookup")
		jam       = flag.Float64("jam", cfg.JamProbability, "probability that an arc is jammed")
		seed      = flag.Uint64("seed", 0, "traffic seed; unset derives one from the request id")
		requestID = flag.String("id", "", "request id; defaults to a random UUID")
		format    = flag.String("format", "text", "output format: text or json")
	)
	flag.Parse()

	stops, m, err := csvload.LoadFiles(*locations, *matrix)
	if err != nil {
		log.Fatal().Err(err).Msg("load input")
	}

	planner := services.NewPlanner(services.PlannerConfig{
		AverageSpeedKmh:  cfg.AverageSpeedKmh,
		JamProbability:   cfg.JamProbability,
		RainProbability:  cfg.RainProbability,
		Region:           *region,
		BudgetBase:       cfg.SolveBudgetBase,
		BudgetPerArc:     cfg.SolveBudgetPerArc,
		MaxBatchSize:     cfg.MaxBatchSize,
		BatchConcurrency: cfg.BatchConcurrency,
	})

	req := services.PlanRequest{
		RequestID:      *requestID,
		Stops:          stops,
		Matrix:         m,
		VehicleCount:   *vehicles,
		DepotIndex:     *depot,
		JamProbability: jam,
	}

	if name := strings.TrimSpace(*weatherF); name != "" {
		w, ok := domain.ParseWeather(name)
		if !ok {
			log.Fatal().Str("weather", name).Msg("weather must be Sunny or Rainy")
		}
		req.Weather = &w
	} else if cfg.OpenWeatherAPIKey != "" {
		client, err := weather.NewOpenWeatherClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("openweather client")
		}
		planner.Weather = weather.NewLookup(client, nil)
	}

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			req.Seed = seed
		}
	})

	sol, err := planner.Plan(context.Background(), req)
	if err != nil {
		log.Fatal().Err(err).Str("kind", domain.ErrorKind(err)).Msg("solve failed")
	}

	switch *format {
	case "json":
		err = writeJSON(os.Stdout, sol)
	default:
		err = writeText(os.Stdout, sol)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("write output")
	}
}

// writeJSON prints the same payload that is published on <prefix>.solved.<id>.
func writeJSON(w io.Writer, sol *domain.Solution) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(publisher.NewSolvedMessage(sol))
}

func writeText(w io.Writer, sol *domain.Solution) error {
	fmt.Fprintf(w, "Request %s  weather=%s  speed=%.0f km/h\n\n",
		sol.RequestID, sol.Weather.Condition, sol.AverageSpeedKmh)

	for _, r := range sol.Routes {
		names := make([]string, 0, len(r.Visits))
		for _, v := range r.Visits {
			names = append(names, v.Name)
		}
		fmt.Fprintf(w, "Vehicle %d: %s\n", r.VehicleID, strings.Join(names, " -> "))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, v := range r.Visits[1:] {
			fmt.Fprintf(tw, "  %s\t%.2f km\t%s\t%.1f min\n", v.Name, v.SegmentDistanceKm, v.Traffic, v.ElapsedMinutes)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "  route: %.2f km, %.1f min\n\n", r.DistanceKm, r.DurationMinutes)
	}

	_, err := fmt.Fprintf(w, "Total distance: %.2f km\n", sol.TotalDistanceKm)
	return err
}
