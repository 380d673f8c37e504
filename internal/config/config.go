package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
		// File rotation, applied when Output is a file path.
		FileMaxSizeMB  int `env:"LOG_FILE_MAX_SIZE_MB" envDefault:"100"`
		FileMaxBackups int `env:"LOG_FILE_MAX_BACKUPS" envDefault:"5"`
		FileMaxAgeDays int `env:"LOG_FILE_MAX_AGE_DAYS" envDefault:"30"`
	}
	Plant struct {
		// FuelCatalog is an optional YAML file overriding the built-in
		// fuel catalog.
		FuelCatalog             string  `env:"FUEL_CATALOG"`
		MonthlyProductionTonnes float64 `env:"PLANT_MONTHLY_TONNES" envDefault:"85500"`
		HeatRateGJPerTonne      float64 `env:"PLANT_HEAT_RATE_GJ_PER_TONNE" envDefault:"3.2"`
	}
	Search struct {
		WarmupSamples int `env:"SEARCH_WARMUP_SAMPLES" envDefault:"5"`
		// Restarts of the acquisition refinement; 0 scales with the
		// dimension of the space.
		Restarts int `env:"SEARCH_RESTARTS" envDefault:"0"`
		// Seed of 0 draws one from the clock per session.
		Seed int64 `env:"SEARCH_SEED" envDefault:"0"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	return cfg, nil
}
