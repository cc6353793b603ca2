package planner

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/devskill-org/preflight/route"
)

// Config represents the configuration for the pre-flight planner.
type Config struct {
	// Operating location
	Latitude       float64 `json:"latitude"`        // Latitude for forecasts
	Longitude      float64 `json:"longitude"`       // Longitude for forecasts
	TargetAltitude float64 `json:"target_altitude"` // Flight altitude AGL in meters

	// Forecast settings
	ForecastDays    int           `json:"forecast_days"`    // Days of hourly forecast to request
	UpperAir        bool          `json:"upper_air"`        // Request pressure-level variables
	RefreshInterval time.Duration `json:"refresh_interval"` // How often to refresh the assessment
	CacheDuration   time.Duration `json:"cache_duration"`   // How long a fetched forecast stays valid
	UserAgent       string        `json:"user_agent"`       // User agent for the forecast client

	// Mission
	MissionFile string `json:"mission_file"` // Path to the mission JSON (empty = built-in demo)

	// Aircraft and wind fallback
	Aircraft route.Aircraft `json:"aircraft"`
	Wind     route.Wind     `json:"wind"`

	// Server settings
	ServerPort int `json:"server_port"` // Port for the dashboard server (0 = disabled)

	// Logging settings
	LogLevel  string `json:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `json:"log_format"` // Log format: text, json

	// Advanced settings
	DryRun bool `json:"dry_run"` // Compute without fetching remote forecasts
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Latitude:        55.302107,
		Longitude:       66.598778,
		TargetAltitude:  500,
		ForecastDays:    2,
		UpperAir:        true,
		RefreshInterval: 1 * time.Hour,
		CacheDuration:   2 * time.Hour,
		UserAgent:       "preflight/0.2 (ops@devskill.org)",
		MissionFile:     "",
		Aircraft:        route.DefaultAircraft(),
		Wind:            route.DefaultWind(),
		ServerPort:      0,
		LogLevel:        "info",
		LogFormat:       "text",
		DryRun:          false,
	}
}

// LoadConfig loads configuration from a JSON file.
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file.
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer.
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// ApplyEnv overrides configuration values from the environment. A .env file
// in the working directory is loaded first when present; real environment
// variables win over file entries.
func (c *Config) ApplyEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv("PREFLIGHT_LATITUDE"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PREFLIGHT_LATITUDE: %w", err)
		}
		c.Latitude = lat
	}

	if v := os.Getenv("PREFLIGHT_LONGITUDE"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PREFLIGHT_LONGITUDE: %w", err)
		}
		c.Longitude = lon
	}

	if v := os.Getenv("PREFLIGHT_SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREFLIGHT_SERVER_PORT: %w", err)
		}
		c.ServerPort = port
	}

	if v := os.Getenv("PREFLIGHT_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PREFLIGHT_REFRESH_INTERVAL: %w", err)
		}
		c.RefreshInterval = d
	}

	if v := os.Getenv("PREFLIGHT_USER_AGENT"); v != "" {
		c.UserAgent = v
	}

	if v := os.Getenv("PREFLIGHT_MISSION_FILE"); v != "" {
		c.MissionFile = v
	}

	if v := os.Getenv("PREFLIGHT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got: %f", c.Latitude)
	}

	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got: %f", c.Longitude)
	}

	if c.TargetAltitude < 0 {
		return fmt.Errorf("target_altitude must be non-negative, got: %f", c.TargetAltitude)
	}

	if c.ForecastDays < 1 || c.ForecastDays > 16 {
		return fmt.Errorf("forecast_days must be between 1 and 16, got: %d", c.ForecastDays)
	}

	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refresh_interval must be greater than 0, got: %s", c.RefreshInterval)
	}

	if c.CacheDuration <= 0 {
		return fmt.Errorf("cache_duration must be greater than 0, got: %s", c.CacheDuration)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	if c.ServerPort < 0 || c.ServerPort > 65535 {
		return fmt.Errorf("server_port must be between 0 and 65535, got: %d", c.ServerPort)
	}

	if c.Aircraft.CruiseSpeed < 0 || c.Aircraft.BatteryCapacity < 0 || c.Aircraft.ConsumptionRate < 0 {
		return fmt.Errorf("aircraft performance values must be non-negative")
	}

	if c.Aircraft.MinReservePercent < 0 || c.Aircraft.MinReservePercent > 100 {
		return fmt.Errorf("aircraft min_reserve_percent must be between 0 and 100, got: %f", c.Aircraft.MinReservePercent)
	}

	if c.Wind.Speed < 0 {
		return fmt.Errorf("wind speed must be non-negative, got: %f", c.Wind.Speed)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat)
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling to handle durations.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		RefreshInterval string `json:"refresh_interval"`
		CacheDuration   string `json:"cache_duration"`
	}{
		Alias:           (*Alias)(c),
		RefreshInterval: c.RefreshInterval.String(),
		CacheDuration:   c.CacheDuration.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations.
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		RefreshInterval string `json:"refresh_interval"`
		CacheDuration   string `json:"cache_duration"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.RefreshInterval != "" {
		if c.RefreshInterval, err = time.ParseDuration(aux.RefreshInterval); err != nil {
			return fmt.Errorf("invalid refresh_interval: %w", err)
		}
	}

	if aux.CacheDuration != "" {
		if c.CacheDuration, err = time.ParseDuration(aux.CacheDuration); err != nil {
			return fmt.Errorf("invalid cache_duration: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
