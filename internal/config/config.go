package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Generator GeneratorConfig `yaml:"generator"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the SQLite file, used when Driver is "sqlite".
	Path string `yaml:"path"`
}

// AuthConfig protects mutating routes. An empty APIKey disables the check.
type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type GeneratorConfig struct {
	MaxRetries       int    `yaml:"max_retries"`
	EvenDistribution bool   `yaml:"even_distribution"`
	HistoryCapacity  int    `yaml:"history_capacity"`
	Seed             uint64 `yaml:"seed"`
}

type CatalogConfig struct {
	// SeedFile is a YAML exercise list loaded into the database at startup.
	// Empty uses the built-in catalog.
	SeedFile string `yaml:"seed_file"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix CIRCUITRY_ and underscore-separated paths:
//
//	CIRCUITRY_SERVER_HOST, CIRCUITRY_SERVER_PORT,
//	CIRCUITRY_DB_DRIVER, CIRCUITRY_DB_HOST, CIRCUITRY_DB_PORT, CIRCUITRY_DB_NAME,
//	CIRCUITRY_DB_USER, CIRCUITRY_DB_PASSWORD, CIRCUITRY_DB_SSLMODE, CIRCUITRY_DB_PATH,
//	CIRCUITRY_AUTH_API_KEY,
//	CIRCUITRY_TAILSCALE_ENABLED, CIRCUITRY_TAILSCALE_HOSTNAME,
//	CIRCUITRY_GENERATOR_MAX_RETRIES, CIRCUITRY_GENERATOR_SEED,
//	CIRCUITRY_CATALOG_SEED_FILE
func Load(path string) (*Config, error) {
	// Bools cannot be defaulted after decoding, so seed them here.
	cfg := &Config{Generator: GeneratorConfig{EvenDistribution: true}}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CIRCUITRY_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("CIRCUITRY_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("CIRCUITRY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("CIRCUITRY_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("CIRCUITRY_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("CIRCUITRY_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("CIRCUITRY_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("CIRCUITRY_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("CIRCUITRY_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("CIRCUITRY_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CIRCUITRY_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("CIRCUITRY_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("CIRCUITRY_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("CIRCUITRY_GENERATOR_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Generator.MaxRetries = n
		}
	}
	if v := os.Getenv("CIRCUITRY_GENERATOR_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Generator.Seed = n
		}
	}
	if v := os.Getenv("CIRCUITRY_CATALOG_SEED_FILE"); v != "" {
		cfg.Catalog.SeedFile = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverPostgres
	}
	if cfg.Database.Driver == DriverSQLite && cfg.Database.Path == "" {
		cfg.Database.Path = "circuitry.db"
	}
	if cfg.Generator.MaxRetries == 0 {
		cfg.Generator.MaxRetries = 100
	}
	if cfg.Generator.HistoryCapacity == 0 {
		cfg.Generator.HistoryCapacity = 50
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "circuitry"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
	default:
		return fmt.Errorf("database.driver %q is not supported (postgres or sqlite)", c.Database.Driver)
	}
	if c.Generator.MaxRetries < 0 {
		return fmt.Errorf("generator.max_retries must be positive")
	}
	if c.Generator.HistoryCapacity < 0 {
		return fmt.Errorf("generator.history_capacity must be positive")
	}
	return nil
}
