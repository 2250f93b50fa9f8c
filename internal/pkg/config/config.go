package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Network sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Network   NetworkConfig   `mapstructure:"network"`
	Routing   RoutingConfig   `mapstructure:"routing"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type ValkeyConfig struct {
	Addr       string `mapstructure:"addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// NetworkConfig says where the transit network is loaded from.
type NetworkConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	// StrictDistances rejects routes that traverse a stop pair with no
	// road distance in either direction.
	StrictDistances bool `mapstructure:"strict_distances"`
}

type RoutingConfig struct {
	BusWaitTime int     `mapstructure:"bus_wait_time"`
	BusVelocity float64 `mapstructure:"bus_velocity"`
	Engine      string  `mapstructure:"engine"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "transit")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "transitcat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "") // empty disables messaging
	v.SetDefault("nats.subject_prefix", "transitcat")
	v.SetDefault("valkey.addr", "") // empty disables caching
	v.SetDefault("valkey.ttl_seconds", 300)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("network.source", SourceFile)
	v.SetDefault("network.path", "network.json")
	v.SetDefault("network.strict_distances", false)
	v.SetDefault("routing.bus_wait_time", 6)
	v.SetDefault("routing.bus_velocity", 40.0)
	v.SetDefault("routing.engine", "dijkstra")

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TRANSITCAT_ROUTING_ENGINE → routing.engine
	v.SetEnvPrefix("TRANSITCAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Network.Source {
	case SourceFile:
		if c.Network.Path == "" {
			errs = append(errs, "network.path is required when network.source is file")
		}
	case SourcePostgres:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("network.source must be file or postgres, got %q", c.Network.Source))
	}

	if c.Routing.BusWaitTime < 0 || c.Routing.BusWaitTime > 1000 {
		errs = append(errs, fmt.Sprintf("routing.bus_wait_time must be 0-1000, got %d", c.Routing.BusWaitTime))
	}
	if c.Routing.BusVelocity <= 0 || c.Routing.BusVelocity > 1000 {
		errs = append(errs, fmt.Sprintf("routing.bus_velocity must be in (0, 1000], got %g", c.Routing.BusVelocity))
	}
	switch strings.ToLower(c.Routing.Engine) {
	case "", "dijkstra", "ch":
	default:
		errs = append(errs, fmt.Sprintf("routing.engine must be dijkstra or ch, got %q", c.Routing.Engine))
	}

	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		errs = append(errs, "nats.subject_prefix is required when nats.url is set")
	}
	if c.Valkey.TTLSeconds < 0 {
		errs = append(errs, "valkey.ttl_seconds must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
