package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ErrMissingAPIKey is returned when SEOUL_API_KEY is neither in the
// environment nor in the secrets file.
var ErrMissingAPIKey = errors.New("SEOUL_API_KEY is not set")

// SetupMessage is shown to the operator when the API key is missing.
const SetupMessage = "🚨 API 키가 없습니다. .env 또는 secrets.toml을 설정하세요."

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Seoul Open Data API.
	SeoulAPIKey     string        `env:"SEOUL_API_KEY" validate:"required"`
	SecretsFile     string        `env:"SECRETS_FILE"`
	SeoulBaseURL    string        `env:"SEOUL_BASE_URL" validate:"required,url"`
	SeoulTimeout    time.Duration `env:"SEOUL_TIMEOUT" validate:"gt=0"`
	PageSize        int           `env:"SEOUL_PAGE_SIZE" validate:"gte=1,lte=1000"`
	ClosurePageSize int           `env:"SEOUL_CLOSURE_PAGE_SIZE" validate:"gte=1,lte=1000"`

	CacheTTL          time.Duration `env:"CACHE_TTL" validate:"gt=0"`
	CacheWarmSchedule string        `env:"CACHE_WARM_SCHEDULE"`

	HTTPAddr        string        `env:"HTTP_ADDR" validate:"required"`
	LogLevel        string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT" validate:"oneof=json text"`
	LogFile         string        `env:"LOG_FILE"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// Refresh events are published only when brokers are configured.
	KafkaBrokers      []string `env:"KAFKA_BROKERS"`
	KafkaRefreshTopic string   `env:"KAFKA_REFRESH_TOPIC"`
}

// KafkaEnabled reports whether refresh events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults where unset.
// The API key falls back to the SEOUL_API_KEY entry of the TOML secrets file.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	seoulTimeout, err := parseDuration("SEOUL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}
	pageSize, err := parseInt("SEOUL_PAGE_SIZE", 999)
	if err != nil {
		return nil, err
	}
	closurePageSize, err := parseInt("SEOUL_CLOSURE_PAGE_SIZE", 99)
	if err != nil {
		return nil, err
	}

	secretsFile := sharedcfg.EnvOrDefault("SECRETS_FILE", ".streamlit/secrets.toml")
	apiKey, err := lookupAPIKey(secretsFile)
	if err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		SeoulAPIKey:     apiKey,
		SecretsFile:     secretsFile,
		SeoulBaseURL:    sharedcfg.EnvOrDefault("SEOUL_BASE_URL", "http://openapi.seoul.go.kr:8088"),
		SeoulTimeout:    seoulTimeout,
		PageSize:        pageSize,
		ClosurePageSize: closurePageSize,

		CacheTTL:          cacheTTL,
		CacheWarmSchedule: os.Getenv("CACHE_WARM_SCHEDULE"),

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		LogFile:         os.Getenv("LOG_FILE"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:      brokers,
		KafkaRefreshTopic: sharedcfg.EnvOrDefault("KAFKA_REFRESH_TOPIC", "subway-facility-refreshes"),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	if cfg.CacheWarmSchedule != "" {
		if _, err := cron.ParseStandard(cfg.CacheWarmSchedule); err != nil {
			return nil, fmt.Errorf("invalid CACHE_WARM_SCHEDULE: %w", err)
		}
	}
	if cfg.KafkaEnabled() && cfg.KafkaRefreshTopic == "" {
		return nil, errors.New("KAFKA_REFRESH_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// lookupAPIKey prefers the environment and falls back to the secrets file.
// A missing secrets file is not an error.
func lookupAPIKey(secretsFile string) (string, error) {
	if v := os.Getenv("SEOUL_API_KEY"); v != "" {
		return v, nil
	}
	var secrets struct {
		SeoulAPIKey string `toml:"SEOUL_API_KEY"`
	}
	if _, err := toml.DecodeFile(secretsFile, &secrets); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read secrets file %s: %w", secretsFile, err)
	}
	return strings.TrimSpace(secrets.SeoulAPIKey), nil
}

// validate checks struct constraints and reports failures by env var name.
func validate(cfg *Config) error {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})

	err := v.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("invalid %s: failed %q constraint", fe.Field(), fe.Tag())
	}
	return err
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
