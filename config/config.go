package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lanecast/lanecast/internal/lane"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Database settings
	DB struct {
		Path string `yaml:"path"`
	} `yaml:"db"`

	// Lane scheduling settings
	Lanes struct {
		Count                   int `yaml:"count"`
		HorizonDays             int `yaml:"horizon_days"`
		PaddingMinutes          int `yaml:"padding_minutes"`
		PlaceholderBlockMinutes int `yaml:"placeholder_block_minutes"`
		PlaceholderExtraDays    int `yaml:"placeholder_extra_days"`
		StartNumber             int `yaml:"start_number"`
	} `yaml:"lanes"`

	// Guide output settings
	Guide struct {
		// ServerURL is the externally reachable base URL used in
		// playlist entries, without trailing slash.
		ServerURL string `yaml:"server_url"`
	} `yaml:"guide"`

	// Logging settings
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	// Validate HTTP settings
	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	// Validate database settings
	if c.DB.Path == "" {
		errors = append(errors, "Database path is required")
	}

	// Validate lane settings
	if err := c.LaneConfig().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("Lane config: %v", err))
	}

	// Validate guide settings
	if c.Guide.ServerURL == "" {
		errors = append(errors, "Guide server URL is required")
	}

	// Validate log level
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("Invalid log level: %s", c.Log.Level))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// LaneConfig returns the scheduling knobs as the scheduler's config value.
func (c *Config) LaneConfig() lane.Config {
	return lane.Config{
		LaneCount:               c.Lanes.Count,
		HorizonDays:             c.Lanes.HorizonDays,
		PaddingMinutes:          c.Lanes.PaddingMinutes,
		PlaceholderBlockMinutes: c.Lanes.PlaceholderBlockMinutes,
		PlaceholderExtraDays:    c.Lanes.PlaceholderExtraDays,
		LaneStartNumber:         c.Lanes.StartNumber,
	}
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	// HTTP defaults
	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	// Database defaults
	cfg.DB.Path = "lanecast.db"

	// Lane defaults
	laneCfg := lane.DefaultConfig()
	cfg.Lanes.Count = laneCfg.LaneCount
	cfg.Lanes.HorizonDays = laneCfg.HorizonDays
	cfg.Lanes.PaddingMinutes = laneCfg.PaddingMinutes
	cfg.Lanes.PlaceholderBlockMinutes = laneCfg.PlaceholderBlockMinutes
	cfg.Lanes.PlaceholderExtraDays = laneCfg.PlaceholderExtraDays
	cfg.Lanes.StartNumber = laneCfg.LaneStartNumber

	// Guide defaults
	cfg.Guide.ServerURL = "http://127.0.0.1:8080"

	// Log defaults
	cfg.Log.Level = "info"

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if provided) and applies environment variable overrides
func Load() (*Config, error) {
	// Get config file path from flag or environment variable
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	// Try to load from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// File doesn't exist, use defaults
		cfg = Default()
	}

	// Apply environment variable overrides
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	// HTTP settings
	if val := os.Getenv("HTTP_ADDRESS"); val != "" {
		cfg.HTTP.Address = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		cfg.HTTP.Port = val
	}

	// Database settings
	if val := os.Getenv("DB_PATH"); val != "" {
		cfg.DB.Path = val
	}

	// Lane settings
	intOverrides := []struct {
		env    string
		target *int
	}{
		{"LANE_COUNT", &cfg.Lanes.Count},
		{"LANE_HORIZON_DAYS", &cfg.Lanes.HorizonDays},
		{"LANE_PADDING_MINUTES", &cfg.Lanes.PaddingMinutes},
		{"LANE_PLACEHOLDER_BLOCK_MINUTES", &cfg.Lanes.PlaceholderBlockMinutes},
		{"LANE_PLACEHOLDER_EXTRA_DAYS", &cfg.Lanes.PlaceholderExtraDays},
		{"LANE_START_NUMBER", &cfg.Lanes.StartNumber},
	}
	for _, o := range intOverrides {
		if val := os.Getenv(o.env); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", o.env, err)
			}
			*o.target = n
		}
	}

	// Guide settings
	if val := os.Getenv("GUIDE_SERVER_URL"); val != "" {
		cfg.Guide.ServerURL = strings.TrimSuffix(val, "/")
	}

	// Log settings
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.Log.Level = val
	}

	return nil
}

// Print outputs the configuration to stdout
func (c *Config) Print() {
	fmt.Printf("httpAddress: %v\n", c.HTTP.Address)
	fmt.Printf("httpPort: %v\n", c.HTTP.Port)
	fmt.Printf("dbPath: %v\n", c.DB.Path)
	fmt.Printf("laneCount: %v\n", c.Lanes.Count)
	fmt.Printf("laneHorizonDays: %v\n", c.Lanes.HorizonDays)
	fmt.Printf("lanePaddingMinutes: %v\n", c.Lanes.PaddingMinutes)
	fmt.Printf("lanePlaceholderBlockMinutes: %v\n", c.Lanes.PlaceholderBlockMinutes)
	fmt.Printf("lanePlaceholderExtraDays: %v\n", c.Lanes.PlaceholderExtraDays)
	fmt.Printf("laneStartNumber: %v\n", c.Lanes.StartNumber)
	fmt.Printf("guideServerUrl: %v\n", c.Guide.ServerURL)
	fmt.Printf("logLevel: %v\n", c.Log.Level)
}
