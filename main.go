// Package main provides the pre-flight planner entry point and CLI interface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devskill-org/preflight/meteo"
	"github.com/devskill-org/preflight/mission"
	"github.com/devskill-org/preflight/planner"
	"github.com/devskill-org/preflight/route"
	"github.com/devskill-org/preflight/windows"
)

func main() {
	// Command line flags
	var (
		configFile  = flag.String("config", "config.json", "Configuration file path")
		missionFile = flag.String("mission", "", "Mission file path (overrides configuration)")
		routePlan   = flag.Bool("route", false, "Evaluate the mission route once and print the plan")
		windowsOnly = flag.Bool("windows", false, "Analyze flight time windows once and print them")
		serverOnly  = flag.Bool("serverOnly", false, "Run only web server without periodic refresh")
		help        = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := loadConfig(*configFile)
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		return
	}
	if *missionFile != "" {
		config.MissionFile = *missionFile
	}

	if *routePlan {
		runRoutePlan(config)
		return
	}

	if *windowsOnly {
		runWindowAnalysis(config)
		return
	}

	fmt.Printf("Starting pre-flight planner with the following configuration:\n")
	fmt.Printf("  Location: %.4f, %.4f\n", config.Latitude, config.Longitude)
	fmt.Printf("  Target Altitude: %.0f m AGL\n", config.TargetAltitude)
	fmt.Printf("  Refresh Interval: %s\n", config.RefreshInterval)
	fmt.Printf("  Server Port: %d\n", config.ServerPort)
	if config.MissionFile != "" {
		fmt.Printf("  Mission File: %s\n", config.MissionFile)
	} else {
		fmt.Printf("  Mission: built-in demo\n")
	}
	if config.DryRun {
		fmt.Printf("  Mode: DRY-RUN (remote forecasts will not be fetched)\n")
	}
	fmt.Println()

	// Create logger
	logger := log.New(os.Stdout, "[PLANNER] ", log.LstdFlags)

	// Create planner
	p := planner.NewPlannerWithServer(config, logger)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start planner in a goroutine
	go func() {
		if err := p.Start(ctx, *serverOnly); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Printf("Planner error: %v", err)
			}
		}
	}()

	logger.Printf("Planner started. Press Ctrl+C to stop...")

	// Wait for shutdown signal
	<-sigChan
	logger.Printf("Shutdown signal received, stopping planner...")

	cancel()
	p.Stop()

	logger.Printf("Planner stopped successfully")
}

// loadConfig reads the configuration file. A missing default file is not an
// error: the built-in defaults plus environment overrides apply instead.
func loadConfig(filename string) (*planner.Config, error) {
	config, err := planner.LoadConfig(filename)
	if err != nil {
		if filename != "config.json" || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		config = planner.DefaultConfig()
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func runRoutePlan(config *planner.Config) {
	m, err := mission.LoadOrDemo(config.MissionFile)
	if err != nil {
		fmt.Println("Error loading mission:", err)
		return
	}

	aircraft := m.Aircraft.Profile()
	if aircraft.CruiseSpeed == 0 {
		aircraft = config.Aircraft
	}

	plan, err := route.BuildPlan(m.Coordinates.Route, config.Wind, aircraft)
	if err != nil {
		fmt.Println("Error evaluating route:", err)
		return
	}

	fmt.Println("\n========================================")
	fmt.Printf("ROUTE PLAN: %s\n", m.Info.Name)
	fmt.Println("========================================")
	fmt.Printf("Wind: %.1f m/s from %.0f°\n\n", config.Wind.Speed, config.Wind.Direction)

	fmt.Println("┌────┬──────────────────────────────┬──────────┬────────┬──────────┬────────┬───────────┬──────────┐")
	fmt.Println("│  # │ Segment                      │ Dist(km) │ Course │ GS(km/h) │ T(min) │ E(mAh)    │ Risk     │")
	fmt.Println("├────┼──────────────────────────────┼──────────┼────────┼──────────┼────────┼───────────┼──────────┤")
	for _, s := range plan.Segments {
		fmt.Printf("│ %2d │ %-28s │ %8.1f │ %5.0f° │ %8.1f │ %6.0f │ %9.0f │ %-8s │\n",
			s.Index, truncate(s.Name, 28), s.Distance, s.Course, s.GroundSpeed, s.Time, s.Energy, s.Risk)
	}
	fmt.Println("└────┴──────────────────────────────┴──────────┴────────┴──────────┴────────┴───────────┴──────────┘")

	fmt.Println("\nSUMMARY")
	fmt.Printf("  Total distance:  %.1f km\n", plan.Summary.TotalDistance)
	fmt.Printf("  Total time:      %.0f min\n", plan.Summary.TotalTime)
	fmt.Printf("  Total energy:    %.0f mAh\n", plan.Summary.TotalEnergy)
	fmt.Printf("  Overall risk:    %s\n", plan.Summary.RiskLevel)
	fmt.Printf("  PNR:             %.1f km / %.0f min (segment %d)\n",
		plan.PNR.Distance, plan.PNR.Time, plan.PNR.Index+1)
	fmt.Printf("  Reserve:         %.0f mAh\n", plan.Feasibility.MinReserve)
	if plan.Feasibility.Feasible {
		fmt.Printf("  Feasible:        yes (margin %.0f mAh, %.1f%%)\n",
			plan.Feasibility.Margin, plan.Feasibility.MarginPercent)
	} else {
		fmt.Printf("  Feasible:        NO (short by %.0f mAh)\n", -plan.Feasibility.Margin)
	}
}

func runWindowAnalysis(config *planner.Config) {
	var hourly *meteo.Hourly

	if !config.DryRun {
		client := meteo.NewClient(config.UserAgent)
		forecast, err := client.GetForecast(meteo.QueryParams{
			Location:     meteo.Location{Latitude: config.Latitude, Longitude: config.Longitude},
			ForecastDays: config.ForecastDays,
			UpperAir:     config.UpperAir,
		})
		if err != nil {
			fmt.Println("Forecast unavailable, using demo windows:", err)
		} else {
			hourly = forecast.Hourly
		}
	}

	all := windows.Calculate(hourly)
	ws := windows.ClipToDaylight(all, config.Latitude, config.Longitude)

	opStart, opEnd := windows.OperatingWindow(time.Now(), config.Latitude, config.Longitude)
	fmt.Println("\n========================================")
	fmt.Println("FLIGHT TIME WINDOWS")
	fmt.Println("========================================")
	fmt.Printf("Daylight operating window: %s - %s\n", opStart.Format("15:04"), opEnd.Format("15:04"))
	if dropped := len(all) - len(ws); dropped > 0 {
		fmt.Printf("%d night windows outside the operating span omitted\n", dropped)
	}
	fmt.Println()

	fmt.Println("┌───────────────────┬────────┬────────────┬──────────────────────────────┐")
	fmt.Println("│ Window            │ Rating │ Status     │ Notes                        │")
	fmt.Println("├───────────────────┼────────┼────────────┼──────────────────────────────┤")
	for _, w := range ws {
		note := ""
		if len(w.Recommendations) > 0 {
			note = w.Recommendations[0]
		}
		fmt.Printf("│ %s - %s │  %4.2f  │ %-10s │ %-28s │\n",
			w.StartTime.Format("02.01 15:04"), w.EndTime.Format("15:04"),
			w.Rating, w.Status, truncate(note, 28))
	}
	fmt.Println("└───────────────────┴────────┴────────────┴──────────────────────────────┘")

	groups := windows.GroupByStatus(ws)
	fmt.Println("\nSUMMARY")
	fmt.Printf("  Allowed: %d, Restricted: %d, Forbidden: %d, Trend: %s\n",
		len(groups.Allowed), len(groups.Restricted), len(groups.Forbidden), windows.AnalyzeTrend(ws))

	departure := windows.RecommendDeparture(ws)
	if departure.Recommended {
		fmt.Printf("  Recommended departure: %s - %s (%d min, rating %.2f)\n",
			departure.StartTime.Format("15:04"), departure.EndTime.Format("15:04"),
			departure.Duration, departure.AvgRating)
	} else {
		fmt.Printf("  No recommended departure: %s\n", departure.Reason)
		for _, alt := range departure.Alternatives {
			fmt.Printf("  Best single window: %s (rating %.2f)\n",
				alt.StartTime.Format("15:04"), alt.Rating)
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func showHelp() {
	fmt.Println("Pre-Flight Planner - UAV weather risk assessment and route energy budgeting")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Evaluates whether a planned UAV mission can be flown safely: it fetches an")
	fmt.Println("  hourly forecast, derives icing, fog, and turbulence risk, scores 24-48h of")
	fmt.Println("  flight time windows, and budgets route energy including the point of no")
	fmt.Println("  return against the battery reserve.")
	fmt.Println()
	fmt.Println("  Key Features:")
	fmt.Println("  - Open-Meteo hourly forecast with pressure-level wind interpolation")
	fmt.Println("  - Go/no-go flight status with per-factor safety scores")
	fmt.Println("  - Time window ratings, continuous periods, departure recommendation")
	fmt.Println("  - Route segments with wind-adjusted ground speed and energy use")
	fmt.Println("  - Point-of-no-return and feasibility versus battery reserve")
	fmt.Println("  - Real-time web dashboard with WebSocket push")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  preflight [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run the planner daemon with the default configuration")
	fmt.Println("  preflight")
	fmt.Println()
	fmt.Println("  # Custom configuration and mission")
	fmt.Println("  preflight --config=config.json --mission=mission.json")
	fmt.Println()
	fmt.Println("  # Evaluate the route once and print the plan")
	fmt.Println("  preflight -route")
	fmt.Println()
	fmt.Println("  # Analyze flight time windows once")
	fmt.Println("  preflight -windows")
	fmt.Println()
	fmt.Println("  # Run only the web server without periodic refresh")
	fmt.Println("  preflight -serverOnly")
	fmt.Println()
	fmt.Println("  # Show this help")
	fmt.Println("  preflight -help")
}
