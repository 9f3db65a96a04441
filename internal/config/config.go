// Package config provides configuration management for the hippoplace tools.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/puneet-chandna/hippoplace/internal/optimizer"
)

// Config holds all configuration for the application.
type Config struct {
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	History   HistoryConfig   `mapstructure:"history"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// OptimizerConfig holds the search configuration.
type OptimizerConfig struct {
	PopulationSize       int           `mapstructure:"population_size"`
	MaxIterations        int           `mapstructure:"max_iterations"`
	ConvergenceThreshold float64       `mapstructure:"convergence_threshold"`
	ConvergencePatience  int           `mapstructure:"convergence_patience"`
	Seed                 int64         `mapstructure:"seed"`
	Profile              string        `mapstructure:"profile"`
	Deadline             time.Duration `mapstructure:"deadline"`
}

// Parameters converts the config section into engine parameters. The weight
// profile is resolved by the allocation policy, not here.
func (c OptimizerConfig) Parameters() optimizer.Parameters {
	p := optimizer.DefaultParameters()
	p.PopulationSize = c.PopulationSize
	p.MaxIterations = c.MaxIterations
	p.ConvergenceThreshold = c.ConvergenceThreshold
	p.ConvergencePatience = c.ConvergencePatience
	p.Seed = c.Seed
	return p
}

// HistoryConfig bounds the in-memory placement history.
type HistoryConfig struct {
	Size int `mapstructure:"size"`
}

// DatabaseConfig holds PostgreSQL configuration for run persistence.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// RedisConfig holds Redis configuration for the placement cache.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Address returns the Redis address string.
func (c RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("HIPPOPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Optimizer
	v.SetDefault("optimizer.population_size", 30)
	v.SetDefault("optimizer.max_iterations", 200)
	v.SetDefault("optimizer.convergence_threshold", 1e-4)
	v.SetDefault("optimizer.convergence_patience", 15)
	v.SetDefault("optimizer.seed", 1)
	v.SetDefault("optimizer.profile", "balanced")
	v.SetDefault("optimizer.deadline", "30s")

	// History
	v.SetDefault("history.size", 50)

	// Database
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "hippoplace")
	v.SetDefault("database.user", "hippoplace")
	v.SetDefault("database.password", "hippoplace")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "5m")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "10m")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
