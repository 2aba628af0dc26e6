package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// SymbolSpec is the external, read-only configuration backing one
// matchcore.Symbol (spec.md §3 "Symbol specification", SPEC_FULL.md §2).
type SymbolSpec struct {
	Name            string `mapstructure:"name"`
	ExchangeType    bool   `mapstructure:"exchange_type"`
	TickSize        int64  `mapstructure:"tick_size"`
	ReserveBidRisk  bool   `mapstructure:"reserve_bid_risk"`
	SchemaVersion   string `mapstructure:"schema_version"`
}

// Config represents the application configuration.
type Config struct {
	// Server configuration for the admin/query HTTP surface.
	Server struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"server"`

	// Database configuration for snapshot persistence.
	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`

	// NATS configuration for the downstream trade/reduce event bus.
	NATS struct {
		URL     string `mapstructure:"url"`
		Subject string `mapstructure:"subject"`
	} `mapstructure:"nats"`

	// Monitoring configuration.
	Monitoring struct {
		PrometheusPort int    `mapstructure:"prometheus_port"`
		LogLevel       string `mapstructure:"log_level"`
	} `mapstructure:"monitoring"`

	// Auth configuration for bearer-token gating of command/admin routes.
	Auth struct {
		JWTSecret     string `mapstructure:"jwt_secret"`
		TokenDuration int    `mapstructure:"token_duration"` // in minutes
	} `mapstructure:"auth"`

	// RateLimit configuration, per-uid.
	RateLimit struct {
		Rate   int64  `mapstructure:"rate"`
		Period string `mapstructure:"period"`
	} `mapstructure:"rate_limit"`

	// Symbols is every symbol this runtime multiplexes engines for.
	Symbols []SymbolSpec `mapstructure:"symbols"`
}

var (
	config *Config
	once   sync.Once
)

// LoadConfig loads config.yaml from the configPath directory (or from the
// default search path ., ./config, /etc/matchcore if configPath is empty),
// with environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	var err error

	once.Do(func() {
		config = &Config{}
		setDefaults()

		v := viper.New()
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if configPath != "" {
			v.AddConfigPath(configPath)
		} else {
			v.AddConfigPath(".")
			v.AddConfigPath("./config")
			v.AddConfigPath("/etc/matchcore")
		}

		v.AutomaticEnv()
		v.SetEnvPrefix("MATCHCORE")

		if err = v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				err = fmt.Errorf("failed to read config file: %w", err)
				return
			}
			err = nil
		}

		if err = v.Unmarshal(config); err != nil {
			err = fmt.Errorf("failed to unmarshal config: %w", err)
			return
		}

		for _, sym := range config.Symbols {
			if verr := ValidateSchemaVersion(sym.SchemaVersion); verr != nil {
				err = fmt.Errorf("symbol %q: %w", sym.Name, verr)
				return
			}
		}
	})

	return config, err
}

// GetConfig returns the current configuration, loading it with defaults on
// first use.
func GetConfig() *Config {
	if config == nil {
		_, err := LoadConfig("")
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	}
	return config
}

// SaveConfig persists config as JSON to path, creating parent directories
// as needed.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setDefaults() {
	config.Server.Host = "0.0.0.0"
	config.Server.Port = 8080

	config.Database.Host = "localhost"
	config.Database.Port = 5432
	config.Database.User = "postgres"
	config.Database.Name = "matchcore"
	config.Database.SSLMode = "disable"

	config.NATS.URL = "nats://localhost:4222"
	config.NATS.Subject = "matchcore.events"

	config.Monitoring.PrometheusPort = 9090
	config.Monitoring.LogLevel = "info"

	config.Auth.TokenDuration = 60 // 1 hour

	config.RateLimit.Rate = 100
	config.RateLimit.Period = "1s"

	config.Symbols = []SymbolSpec{
		{Name: "BTC-USD", ExchangeType: true, TickSize: 1, ReserveBidRisk: true, SchemaVersion: CurrentSchemaVersion},
	}
}

// InitLogger builds a development zap.Logger for log level "debug" and an
// info-level production zap.Logger for any other configured value.
func InitLogger(cfg *Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	switch cfg.Monitoring.LogLevel {
	case "debug":
		logger, err = zap.NewDevelopment()
	case "info", "warn", "error":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewProduction()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return logger, nil
}
