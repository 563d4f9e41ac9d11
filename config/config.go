// Package config loads service settings from the environment and an
// optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	SeedOnStart     bool
	Database        Database
	Tracing         Tracing
	Breaker         Breaker
}

type Database struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// Path is the database file for the sqlite driver.
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type Tracing struct {
	Enabled  bool
	Endpoint string
}

type Breaker struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8081")
	v.SetDefault("shutdown.timeout", 10*time.Second)
	v.SetDefault("seed.on_start", true)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "catalogdb")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.path", "catalog.db")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("db.conn_max_idle_time", time.Minute)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.reset_timeout", 30*time.Second)
}

// Load reads configuration. Environment variables win over the file at path;
// an empty path skips the file. Keys map to env names by upper-casing and
// replacing dots with underscores (db.host -> DB_HOST).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("tracing.endpoint", "TRACING_ENDPOINT", "JAEGER_ENDPOINT"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		HTTPAddr:        v.GetString("http.addr"),
		ShutdownTimeout: v.GetDuration("shutdown.timeout"),
		SeedOnStart:     v.GetBool("seed.on_start"),
		Database: Database{
			Driver:          strings.ToLower(v.GetString("db.driver")),
			Host:            v.GetString("db.host"),
			Port:            v.GetString("db.port"),
			User:            v.GetString("db.user"),
			Password:        v.GetString("db.password"),
			Name:            v.GetString("db.name"),
			SSLMode:         v.GetString("db.sslmode"),
			Path:            v.GetString("db.path"),
			MaxOpenConns:    v.GetInt("db.max_open_conns"),
			MaxIdleConns:    v.GetInt("db.max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetDuration("db.conn_max_idle_time"),
		},
		Tracing: Tracing{
			Enabled:  v.GetBool("tracing.enabled"),
			Endpoint: v.GetString("tracing.endpoint"),
		},
		Breaker: Breaker{
			MaxFailures:  v.GetInt("breaker.max_failures"),
			ResetTimeout: v.GetDuration("breaker.reset_timeout"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported db.driver %q (want postgres or sqlite)", c.Database.Driver)
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("config: http.addr must not be empty")
	}
	if c.Breaker.MaxFailures < 1 {
		return fmt.Errorf("config: breaker.max_failures must be at least 1")
	}
	return nil
}
