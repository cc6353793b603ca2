// Package planner orchestrates the pre-flight pipeline: it refreshes the
// forecast on a schedule, rebuilds the briefing report, and serves it to
// dashboard clients.
package planner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/devskill-org/preflight/meteo"
	"github.com/devskill-org/preflight/mission"
	"github.com/devskill-org/preflight/report"
	"github.com/devskill-org/preflight/risk"
)

// PeriodicTask represents a task that runs periodically with an optional
// initial delay.
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the periodic task in a loop, respecting the initial delay and
// context cancellation.
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *log.Logger) {
	if pt.initialDelay > 0 {
		logger.Printf("[%s] Waiting for initial delay: %v", pt.name, pt.initialDelay)
		select {
		case <-time.After(pt.initialDelay):
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped during initial delay due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped during initial delay due to stop signal", pt.name)
			return
		}
	} else {
		pt.runFunc()
	}

	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	logger.Printf("[%s] Started with interval: %v", pt.name, pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped due to stop signal", pt.name)
			return
		}
	}
}

// ForecastCache caches a fetched forecast with expiration.
type ForecastCache struct {
	mu            sync.RWMutex
	forecast      *meteo.Forecast
	fetchedAt     time.Time
	cacheDuration time.Duration
}

// Get returns the cached forecast when it is still fresh.
func (f *ForecastCache) Get() (*meteo.Forecast, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.forecast == nil {
		return nil, false
	}

	if time.Since(f.fetchedAt) > f.cacheDuration {
		return nil, false
	}

	return f.forecast, true
}

// Set stores a freshly fetched forecast.
func (f *ForecastCache) Set(forecast *meteo.Forecast) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.forecast = forecast
	f.fetchedAt = time.Now()
}

// Status is the planner's externally visible state.
type Status struct {
	IsRunning   bool        `json:"is_running"`
	MissionName string      `json:"mission_name"`
	HasForecast bool        `json:"has_forecast"`
	LastUpdate  *time.Time  `json:"last_update,omitempty"`
	Flight      risk.Status `json:"flight_status,omitempty"`
}

// Planner keeps the current briefing fresh.
type Planner struct {
	config *Config

	// State
	mission    *mission.Mission
	current    *report.Report
	lastUpdate time.Time
	isRunning  bool
	stopChan   chan struct{}
	mu         sync.RWMutex

	// Forecast fetching
	client        *meteo.Client
	forecastCache ForecastCache

	// Terrain lookup for missions without an aerodrome elevation
	elevClient   *meteo.ElevationClient
	elevResolved bool

	// Web server
	webServer *WebServer

	// Logging
	logger *log.Logger
}

// NewPlanner creates a new planner instance.
func NewPlanner(config *Config, logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.Default()
	}

	client := meteo.NewClient(config.UserAgent)

	return &Planner{
		config:     config,
		client:     client,
		elevClient: meteo.NewElevationClient(client),
		stopChan:   make(chan struct{}),
		logger:     logger,
		forecastCache: ForecastCache{
			cacheDuration: config.CacheDuration,
		},
	}
}

// NewPlannerWithServer creates a planner with the dashboard server attached.
func NewPlannerWithServer(config *Config, logger *log.Logger) *Planner {
	p := NewPlanner(config, logger)
	p.webServer = NewWebServer(p, config.ServerPort)
	return p
}

// SetClient replaces the forecast client, used to point at a test server.
func (p *Planner) SetClient(client *meteo.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
}

// GetConfig returns the current configuration.
func (p *Planner) GetConfig() *Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// SetElevationClient replaces the terrain client, used to point at a test server.
func (p *Planner) SetElevationClient(client *meteo.ElevationClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elevClient = client
}

// SetMission replaces the loaded mission.
func (p *Planner) SetMission(m *mission.Mission) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mission = m
	p.elevResolved = false
}

// GetMission returns the loaded mission.
func (p *Planner) GetMission() *mission.Mission {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mission
}

// GetReport returns the most recent briefing, nil before the first refresh.
func (p *Planner) GetReport() *report.Report {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// GetStatus returns the current status of the planner.
func (p *Planner) GetStatus() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := Status{
		IsRunning:   p.isRunning,
		HasForecast: p.current != nil,
	}
	if p.mission != nil {
		status.MissionName = p.mission.Info.Name
	}
	if p.current != nil {
		status.Flight = p.current.Status
	}
	if !p.lastUpdate.IsZero() {
		t := p.lastUpdate
		status.LastUpdate = &t
	}

	return status
}

// IsRunning returns whether the planner is currently running.
func (p *Planner) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// Refresh fetches the forecast and rebuilds the briefing once.
func (p *Planner) Refresh(ctx context.Context) error {
	m := p.GetMission()
	if m == nil {
		return fmt.Errorf("no mission loaded")
	}

	var hourly *meteo.Hourly
	if !p.config.DryRun {
		p.resolveElevation(m)

		forecast, err := p.getOrFetchForecast()
		if err != nil {
			p.logger.Printf("[Refresh] Forecast unavailable, degrading to defaults: %v", err)
		} else {
			hourly = forecast.Hourly
		}
	}

	r, err := report.Build(m, hourly, p.config.TargetAltitude, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build briefing: %w", err)
	}

	p.mu.Lock()
	p.current = r
	p.lastUpdate = time.Now()
	p.mu.Unlock()

	p.logger.Printf("[Refresh] Briefing %s: status %s, %d allowed windows, risk %s",
		r.ID, r.Status, r.Windows.Allowed, r.Plan.Summary.RiskLevel)

	if p.webServer != nil {
		p.webServer.QueueReport(r)
	}

	return nil
}

// resolveElevation fills in the aerodrome elevation from the terrain service
// when the mission left it at zero. One lookup per loaded mission; a failed
// lookup keeps the sea-level fallback.
func (p *Planner) resolveElevation(m *mission.Mission) {
	p.mu.Lock()
	if m.Aerodrome.Elevation != 0 || p.elevResolved {
		p.mu.Unlock()
		return
	}
	p.elevResolved = true
	client := p.elevClient
	p.mu.Unlock()

	elev, err := client.GetElevation(meteo.Location{
		Latitude:  m.Coordinates.Start.Lat,
		Longitude: m.Coordinates.Start.Lon,
	})
	if err != nil {
		p.logger.Printf("[Refresh] Elevation unavailable, assuming sea level: %v", err)
		return
	}

	p.mu.Lock()
	m.Aerodrome.Elevation = elev
	p.mu.Unlock()
	p.logger.Printf("[Refresh] Aerodrome elevation resolved to %.0f m", elev)
}

func (p *Planner) getOrFetchForecast() (*meteo.Forecast, error) {
	if forecast, ok := p.forecastCache.Get(); ok {
		return forecast, nil
	}

	forecast, err := p.client.GetForecast(meteo.QueryParams{
		Location: meteo.Location{
			Latitude:  p.config.Latitude,
			Longitude: p.config.Longitude,
		},
		ForecastDays: p.config.ForecastDays,
		UpperAir:     p.config.UpperAir,
	})
	if err != nil {
		return nil, err
	}

	p.forecastCache.Set(forecast)
	return forecast, nil
}

// Start begins the planner's periodic refresh loop and blocks until the
// context is cancelled or Stop is called.
func (p *Planner) Start(ctx context.Context, serverOnly bool) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return fmt.Errorf("planner is already running")
	}
	p.isRunning = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	m, err := mission.LoadOrDemo(p.config.MissionFile)
	if err != nil {
		p.stop()
		return fmt.Errorf("failed to load mission: %w", err)
	}
	p.SetMission(m)
	p.logger.Printf("Mission loaded: %s (%d waypoints)", m.Info.Name, len(m.Coordinates.Route))

	if p.config.DryRun {
		p.logger.Printf("DRY-RUN MODE ENABLED: remote forecasts will not be fetched")
	}

	if p.webServer != nil {
		if err := p.webServer.Start(); err != nil {
			p.logger.Printf("Failed to start web server: %v", err)
		} else {
			p.logger.Printf("Web server started on port %d", p.webServer.port)
		}
		if serverOnly {
			<-ctx.Done()
			p.stop()
			return nil
		}
	}

	tasks := []PeriodicTask{
		{
			name:         "ForecastRefresh",
			initialDelay: 0,
			interval:     p.config.RefreshInterval,
			runFunc: func() {
				if err := p.Refresh(ctx); err != nil {
					p.logger.Printf("[ForecastRefresh] %v", err)
				}
			},
		},
	}

	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		task := task
		go func() {
			defer wg.Done()
			task.run(ctx, p.stopChan, p.logger)
		}()
	}

	wg.Wait()

	p.logger.Printf("All periodic tasks stopped")
	p.stop()
	return nil
}

// Stop gracefully stops the planner.
func (p *Planner) Stop() {
	p.stop()
}

func (p *Planner) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isRunning {
		return
	}

	p.isRunning = false

	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}

	if p.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.webServer.Stop(ctx); err != nil {
			p.logger.Printf("Error stopping web server: %v", err)
		}
	}
}
