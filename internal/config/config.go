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
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimization struct {
		// WorkerCount bounds candidate-evaluation parallelism; 0 means one
		// worker per CPU.
		WorkerCount int `env:"OPT_WORKER_COUNT" envDefault:"0"`

		// Defaults applied to submitted specifications that leave the
		// frequency axis or evaluation budget unset.
		FrequencyMin     float64 `env:"OPT_FREQ_MIN" envDefault:"80000"`
		FrequencyMax     float64 `env:"OPT_FREQ_MAX" envDefault:"200000"`
		FrequencySamples int     `env:"OPT_FREQ_SAMPLES" envDefault:"4"`
		MaxEvaluations   int     `env:"OPT_MAX_EVALUATIONS" envDefault:"200"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Verbose by default while developing.
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}
