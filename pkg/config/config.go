package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is cmd/schedulerd's process-level configuration: how it listens,
// logs, and which default engine tuning new runs start from unless a
// request overrides it.
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CORS      CORSConfig
	Log       LogConfig
	RunQueue  RunQueueConfig
	Scheduler SchedulerConfig
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// RunQueueConfig bounds how many scheduling runs the gateway allows at
// once and how long a request waits for a free slot.
type RunQueueConfig struct {
	Workers    int
	SubmitWait time.Duration
}

// SchedulerConfig mirrors internal/scheduler.Config's tunables as
// process-wide defaults a request's own config overrides piecemeal.
type SchedulerConfig struct {
	InitialPoolSize        int
	MaxESIterations        int
	Sigma                  float64
	SigmaDecay             float64
	MinSigma               float64
	MaxStagnantIterations  int
	MaxAnnealingIterations int
	Temperature            float64
	CoolingRate            float64
	MinTemperature         float64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),

		CORS: CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))},

		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},

		RunQueue: RunQueueConfig{
			Workers:    v.GetInt("RUNQUEUE_WORKERS"),
			SubmitWait: parseDuration(v.GetString("RUNQUEUE_SUBMIT_WAIT"), 5*time.Second),
		},

		Scheduler: SchedulerConfig{
			InitialPoolSize:        v.GetInt("SCHEDULER_INITIAL_POOL_SIZE"),
			MaxESIterations:        v.GetInt("SCHEDULER_MAX_ES_ITERATIONS"),
			Sigma:                  v.GetFloat64("SCHEDULER_SIGMA"),
			SigmaDecay:             v.GetFloat64("SCHEDULER_SIGMA_DECAY"),
			MinSigma:               v.GetFloat64("SCHEDULER_MIN_SIGMA"),
			MaxStagnantIterations:  v.GetInt("SCHEDULER_MAX_STAGNANT_ITERATIONS"),
			MaxAnnealingIterations: v.GetInt("SCHEDULER_MAX_ANNEALING_ITERATIONS"),
			Temperature:            v.GetFloat64("SCHEDULER_TEMPERATURE"),
			CoolingRate:            v.GetFloat64("SCHEDULER_COOLING_RATE"),
			MinTemperature:         v.GetFloat64("SCHEDULER_MIN_TEMPERATURE"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/v1")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RUNQUEUE_WORKERS", 2)
	v.SetDefault("RUNQUEUE_SUBMIT_WAIT", "5s")

	v.SetDefault("SCHEDULER_INITIAL_POOL_SIZE", 10)
	v.SetDefault("SCHEDULER_MAX_ES_ITERATIONS", 10000)
	v.SetDefault("SCHEDULER_SIGMA", 2.0)
	v.SetDefault("SCHEDULER_SIGMA_DECAY", 0.98)
	v.SetDefault("SCHEDULER_MIN_SIGMA", 0.1)
	v.SetDefault("SCHEDULER_MAX_STAGNANT_ITERATIONS", 500)
	v.SetDefault("SCHEDULER_MAX_ANNEALING_ITERATIONS", 2500)
	v.SetDefault("SCHEDULER_TEMPERATURE", 0.5)
	v.SetDefault("SCHEDULER_COOLING_RATE", 0.99)
	v.SetDefault("SCHEDULER_MIN_TEMPERATURE", 0.00001)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
