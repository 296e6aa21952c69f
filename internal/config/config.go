package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/cloud-weather/internal/common"
)

const (
	ServicePrecipitation = "precipitation"
	ServiceTemperature   = "temperature"
	ServiceReport        = "report"
)

var defaultPorts = map[string]string{
	ServicePrecipitation: "8081",
	ServiceTemperature:   "8082",
	ServiceReport:        "8080",
}

var validate = validator.New()

// Config holds the settings every service binary shares.
type Config struct {
	Service         string        `validate:"required,oneof=precipitation temperature report"`
	Port            string        `validate:"required,numeric"`
	LogLevel        string        `validate:"required"`
	LogFormat       string        `validate:"oneof=json console"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	// Storage backend and its settings.
	StoreBackend    string        `validate:"oneof=sqlite memory"`
	DatabaseDSN     string        `validate:"required_if=StoreBackend sqlite"`
	StoreMaxHistory int           `validate:"gte=0"` // max reports per zip in memory (0 = unlimited)
	StoreMaxAge     time.Duration `validate:"gte=0"` // max report age in memory (0 = unlimited)
}

// SourceConfig locates one upstream observation service.
type SourceConfig struct {
	Protocol string `validate:"oneof=http https"`
	Host     string `validate:"required"`
	Port     string `validate:"required,numeric"`
}

// ReportConfig holds the report aggregator settings.
type ReportConfig struct {
	Config

	Precipitation SourceConfig
	Temperature   SourceConfig

	// Outbound observation calls. Zero values keep the HTTP client defaults
	// and send every request once.
	HTTPTimeout    time.Duration `validate:"gte=0"`
	MaxRetries     int           `validate:"gte=0,lte=10"`
	EmptyOnFailure bool

	// Reuse of stored reports, off by default.
	CacheEnabled bool
	CacheMaxAge  time.Duration `validate:"gt=0"`

	// Scheduled report warming, off when WarmZips is empty.
	WarmZips     []string
	WarmDays     int           `validate:"min=1,max=30"`
	WarmInterval time.Duration `validate:"gt=0"`
}

// Load reads the shared service configuration from the environment,
// loading a .env file first when present.
func Load(service string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := loadBase(service)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadReport reads the report service configuration from the environment.
func LoadReport() (*ReportConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	base, err := loadBase(ServiceReport)
	if err != nil {
		return nil, err
	}
	cfg := &ReportConfig{
		Config: *base,
		Precipitation: SourceConfig{
			Protocol: common.EnvOrDefault("PRECIP_DATA_PROTOCOL", "http"),
			Host:     common.EnvOrDefault("PRECIP_DATA_HOST", "localhost"),
			Port:     common.EnvOrDefault("PRECIP_DATA_PORT", defaultPorts[ServicePrecipitation]),
		},
		Temperature: SourceConfig{
			Protocol: common.EnvOrDefault("TEMP_DATA_PROTOCOL", "http"),
			Host:     common.EnvOrDefault("TEMP_DATA_HOST", "localhost"),
			Port:     common.EnvOrDefault("TEMP_DATA_PORT", defaultPorts[ServiceTemperature]),
		},
		WarmZips: common.EnvList("REPORT_WARM_ZIPS"),
	}

	if cfg.HTTPTimeout, err = common.EnvDuration("OBS_HTTP_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = common.EnvInt("OBS_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.EmptyOnFailure, err = common.EnvBool("OBS_EMPTY_ON_FAILURE", false); err != nil {
		return nil, err
	}
	if cfg.CacheEnabled, err = common.EnvBool("REPORT_CACHE_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = common.EnvDuration("REPORT_CACHE_MAX_AGE", time.Hour); err != nil {
		return nil, err
	}
	if cfg.WarmDays, err = common.EnvInt("REPORT_WARM_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = common.EnvDuration("REPORT_WARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadBase(service string) (*Config, error) {
	cfg := &Config{
		Service:      service,
		Port:         common.EnvOrDefault("PORT", defaultPorts[service]),
		LogLevel:     common.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    common.EnvOrDefault("LOG_FORMAT", "json"),
		StoreBackend: common.EnvOrDefault("STORE_BACKEND", "sqlite"),
		DatabaseDSN:  common.EnvOrDefault("DATABASE_DSN", service+".db"),
	}

	var err error
	if cfg.ShutdownTimeout, err = common.EnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.StoreMaxHistory, err = common.EnvInt("STORE_MAX_HISTORY", 0); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = common.EnvDuration("STORE_MAX_AGE", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
