package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environments recognized by APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all configuration for the application
type Config struct {
	Environment string            `toml:"environment"`
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Backend     BackendConfig     `toml:"backend"`
	CORS        CORSConfig        `toml:"cors"`
	Logging     LoggingConfig     `toml:"logging"`
	Import      ImportConfig      `toml:"import"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string `toml:"port"`
	Host string `toml:"host"`
	Addr string `toml:"-"` // Combined host:port for convenience
}

// DatabaseConfig selects and configures the document store.
// Driver is "mongo" for production or "sqlite" for the embedded store.
type DatabaseConfig struct {
	Driver string `toml:"driver"`
	URI    string `toml:"uri"`
	Name   string `toml:"name"`
	Path   string `toml:"path"`
}

// BackendConfig holds the modeling backend location and the throttle applied to model routes.
type BackendConfig struct {
	LocalURL      string  `toml:"local_url"`
	ProductionURL string  `toml:"production_url"`
	RateLimit     float64 `toml:"rate_limit"`
	RateBurst     int     `toml:"rate_burst"`
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ImportConfig names the single file the reserved portfolio is imported from.
type ImportConfig struct {
	File string `toml:"file"`
}

// MaintenanceConfig controls the unique_id backfill job.
type MaintenanceConfig struct {
	BackfillOnStartup bool   `toml:"backfill_on_startup"`
	BackfillSchedule  string `toml:"backfill_schedule"`
}

// NewDefaultConfig returns the configuration used when neither a file nor the environment override a value.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: EnvDevelopment,
		Server: ServerConfig{
			Port: "5001",
			Host: "localhost",
		},
		Database: DatabaseConfig{
			Driver: "mongo",
			Name:   "renew_assets",
			Path:   "./data/renew_assets.db",
		},
		Backend: BackendConfig{
			LocalURL:      "http://localhost:10000",
			ProductionURL: "https://backend-renew.onrender.com",
			RateLimit:     5,
			RateBurst:     10,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Import: ImportConfig{
			File: "./data/processed_inputs/ZEBRE_Inputs.json",
		},
		Maintenance: MaintenanceConfig{
			BackfillOnStartup: true,
		},
	}
}

// Load reads configuration with priority: defaults -> TOML file named by CONFIG_FILE -> environment.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	return LoadFromFile(os.Getenv("CONFIG_FILE"))
}

// LoadFromFile loads defaults, overlays the TOML file at path (if non-empty) and applies
// environment overrides.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// BackendURL returns the modeling backend base URL for the active environment.
func (c *Config) BackendURL() string {
	if c.IsProduction() {
		return strings.TrimRight(c.Backend.ProductionURL, "/")
	}
	return strings.TrimRight(c.Backend.LocalURL, "/")
}

// IsProduction reports whether APP_ENV selects production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvProduction)
}

func applyEnvOverrides(config *Config) error {
	config.Environment = getEnv("APP_ENV", config.Environment)
	config.Server.Port = getEnv("SERVER_PORT", config.Server.Port)
	config.Server.Host = getEnv("SERVER_HOST", config.Server.Host)

	config.Database.Driver = strings.ToLower(getEnv("DB_DRIVER", config.Database.Driver))
	config.Database.URI = getEnv("MONGODB_URI", config.Database.URI)
	config.Database.Name = getEnv("MONGODB_DB_NAME", config.Database.Name)
	config.Database.Path = getEnv("DB_PATH", config.Database.Path)

	config.Backend.LocalURL = getEnv("LOCAL_BACKEND_URL", config.Backend.LocalURL)
	config.Backend.ProductionURL = getEnv("BACKEND_URL", config.Backend.ProductionURL)
	if v := os.Getenv("BACKEND_RATE_LIMIT"); v != "" {
		limit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_RATE_LIMIT %q: %w", v, err)
		}
		config.Backend.RateLimit = limit
	}
	if v := os.Getenv("BACKEND_RATE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid BACKEND_RATE_BURST %q: %w", v, err)
		}
		config.Backend.RateBurst = burst
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := []string{}
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				origins = append(origins, origin)
			}
		}
		config.CORS.AllowedOrigins = origins
	}

	config.Logging.Level = getEnv("LOG_LEVEL", config.Logging.Level)
	config.Logging.Format = getEnv("LOG_FORMAT", config.Logging.Format)

	config.Import.File = getEnv("IMPORT_FILE", config.Import.File)

	if v := os.Getenv("BACKFILL_ON_STARTUP"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid BACKFILL_ON_STARTUP %q: %w", v, err)
		}
		config.Maintenance.BackfillOnStartup = enabled
	}
	config.Maintenance.BackfillSchedule = getEnv("BACKFILL_SCHEDULE", config.Maintenance.BackfillSchedule)

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
