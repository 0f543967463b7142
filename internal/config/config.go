// Package config provides configuration loading for the teams API.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/graaaaa/teamstats/internal/appinfo"
	"github.com/graaaaa/teamstats/internal/store"
)

// Environment variable names for config overrides.
// Priority: Environment > Config File > Default
const (
	EnvPort       = "PORT"
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBName     = "DB_NAME"

	EnvHost          = appinfo.EnvPrefix + "HOST"
	EnvDBDriver      = appinfo.EnvPrefix + "DB_DRIVER"
	EnvDBDSN         = appinfo.EnvPrefix + "DB_DSN"
	EnvDBSSLMode     = appinfo.EnvPrefix + "DB_SSLMODE"
	EnvDBMaxOpen     = appinfo.EnvPrefix + "DB_MAX_OPEN_CONNS"
	EnvDBMaxIdle     = appinfo.EnvPrefix + "DB_MAX_IDLE_CONNS"
	EnvLogLevel      = appinfo.EnvPrefix + "LOG_LEVEL"
	EnvLogFormat     = appinfo.EnvPrefix + "LOG_FORMAT"
	EnvRateLimit     = appinfo.EnvPrefix + "RATE_LIMIT"
	EnvCORSOrigins   = appinfo.EnvPrefix + "CORS_ORIGINS"
	EnvStrictColumns = appinfo.EnvPrefix + "STRICT_COLUMNS"
)

// Config holds the service configuration.
type Config struct {
	Host          string         `yaml:"host"`
	Port          int            `yaml:"port"`
	Database      DatabaseConfig `yaml:"database"`
	Tables        TablesConfig   `yaml:"tables"`
	StrictColumns bool           `yaml:"strict_columns"`
	RateLimit     float64        `yaml:"rate_limit"`
	RateBurst     int            `yaml:"rate_burst"`
	CORSOrigins   []string       `yaml:"cors_origins"`
	LogLevel      string         `yaml:"log_level"`
	LogFormat     string         `yaml:"log_format"`
}

// DatabaseConfig describes the connection pool.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             Secret        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        Secret        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnectAttempts int           `yaml:"connect_attempts"`
}

// TablesConfig names the relations behind each endpoint.
type TablesConfig struct {
	Teams   string `yaml:"teams"`
	Records string `yaml:"records"`
	Stats   string `yaml:"stats"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host: "",
		Port: 3000,
		Database: DatabaseConfig{
			Driver:          store.DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnectAttempts: 5,
		},
		Tables: TablesConfig{
			Teams:   appinfo.TeamsTable,
			Records: appinfo.RecordsTable,
			Stats:   appinfo.StatsTable,
		},
		StrictColumns: true,
		RateLimit:     0,
		RateBurst:     20,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds the effective config: defaults, then the file at path (if
// path is not empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = LoadConfigFrom(path); err != nil {
			return cfg, err
		}
	}
	cfg = normalizeConfig(ApplyEnvOverrides(cfg))
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadConfigFrom reads a YAML config from path on top of the defaults.
// A missing file is not an error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty file decodes to io.EOF; keep the defaults.
		if len(bytes.TrimSpace(data)) == 0 {
			return DefaultConfig(), nil
		}
		return DefaultConfig(), fmt.Errorf("decode config %s: %w", path, err)
	}

	return normalizeConfig(cfg), nil
}

// normalizeConfig replaces out-of-range values with defaults.
func normalizeConfig(cfg Config) Config {
	defaults := DefaultConfig()

	if cfg.Port <= 0 || cfg.Port > 65535 {
		cfg.Port = defaults.Port
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		cfg.Database.Port = defaults.Database.Port
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = defaults.Database.Driver
	}
	if cfg.Database.MaxOpenConns < 0 {
		cfg.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if cfg.Database.ConnectAttempts <= 0 {
		cfg.Database.ConnectAttempts = defaults.Database.ConnectAttempts
	}
	if cfg.Database.MaxIdleConns < 0 {
		cfg.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if cfg.Tables.Teams == "" {
		cfg.Tables.Teams = defaults.Tables.Teams
	}
	if cfg.Tables.Records == "" {
		cfg.Tables.Records = defaults.Tables.Records
	}
	if cfg.Tables.Stats == "" {
		cfg.Tables.Stats = defaults.Tables.Stats
	}
	if cfg.RateLimit < 0 {
		cfg.RateLimit = 0
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaults.RateBurst
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}

	return cfg
}

// Validate reports settings that cannot be repaired with a default.
func (c Config) Validate() error {
	if !store.ValidDriver(c.Database.Driver) {
		return fmt.Errorf("invalid database driver %q", c.Database.Driver)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.Database.Driver == store.DriverSQLite && c.Database.DSN.IsEmpty() && c.Database.Name == "" {
		return errors.New("sqlite driver needs a dsn or database name")
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConnString returns the data source name for the configured driver. An explicit
// dsn wins over the individual fields.
func (d DatabaseConfig) ConnString() string {
	if !d.DSN.IsEmpty() {
		return d.DSN.Value()
	}

	if d.Driver == store.DriverSQLite {
		return "file:" + d.Name + "?_pragma=busy_timeout(5000)"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	switch {
	case d.User != "" && !d.Password.IsEmpty():
		u.User = url.UserPassword(d.User, d.Password.Value())
	case d.User != "":
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func ApplyEnvOverrides(cfg Config) Config {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Port = port
		}
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}

	if v := os.Getenv(EnvDBDriver); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv(EnvDBDSN); v != "" {
		cfg.Database.DSN = Secret(v)
	}
	if v := os.Getenv(EnvDBHost); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv(EnvDBPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 && port <= 65535 {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv(EnvDBUser); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv(EnvDBPassword); v != "" {
		cfg.Database.Password = Secret(v)
	}
	if v := os.Getenv(EnvDBName); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv(EnvDBSSLMode); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv(EnvDBMaxOpen); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Database.MaxOpenConns = n
		}
	}
	if v := os.Getenv(EnvDBMaxIdle); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Database.MaxIdleConns = n
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(EnvRateLimit); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r >= 0 {
			cfg.RateLimit = r
		}
	}
	if v := os.Getenv(EnvCORSOrigins); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
	if v := os.Getenv(EnvStrictColumns); v != "" {
		cfg.StrictColumns = parseBool(v)
	}

	return cfg
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseBool parses a boolean from various string representations.
// Accepts: "true", "1", "yes", "on" (case-insensitive) as true.
// All other values are treated as false.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
