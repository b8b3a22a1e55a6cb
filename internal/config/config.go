package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPollInterval    = "PS_POLL_INTERVAL"
	envFetchTimeout    = "PS_FETCH_TIMEOUT"
	envInventoryURL    = "PS_INVENTORY_URL"
	envFeedsFile       = "PS_FEEDS_FILE"
	envCalibrationFile = "PS_CALIBRATION_FILE"
	envStatePath       = "PS_STATE_PATH"
	envSlackWebhookURL = "PS_SLACK_WEBHOOK_URL"
	envWebhookURL      = "PS_WEBHOOK_URL"
	envWebhookTemplate = "PS_WEBHOOK_TEMPLATE"
	envLogLevel        = "PS_LOG_LEVEL"
	envLogFormat       = "PS_LOG_FORMAT"
	envHealthPort      = "PS_HEALTH_PORT"
	envMetricsPort     = "PS_METRICS_PORT"
	envAPIPort         = "PS_API_PORT"
	envDryRun          = "PS_DRY_RUN"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultFetchTimeout = 10 * time.Second
	defaultStatePath    = "./data/state.json"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultHealthPort   = 8080
	defaultMetricsPort  = 9090
)

// Config describes runtime configuration loaded from the environment.
type Config struct {
	PollInterval    time.Duration
	FetchTimeout    time.Duration
	InventoryURL    string
	FeedsFile       string
	CalibrationFile string
	StatePath       string
	SlackWebhookURL string
	WebhookURL      string
	WebhookTemplate string
	LogLevel        string
	LogFormat       string
	HealthPort      int
	MetricsPort     int
	APIPort         int
	DryRun          bool
}

// Load reads configuration from environment variables and a local .env file if present.
// Existing environment variables take precedence over values in .env.
func Load() (Config, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return Config{}, err
	}

	cfg := Config{
		PollInterval: defaultPollInterval,
		FetchTimeout: defaultFetchTimeout,
		StatePath:    defaultStatePath,
		LogLevel:     defaultLogLevel,
		LogFormat:    defaultLogFormat,
		HealthPort:   defaultHealthPort,
		MetricsPort:  defaultMetricsPort,
	}

	var err error
	if cfg.PollInterval, err = durationEnv(envPollInterval, cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if cfg.FetchTimeout, err = durationEnv(envFetchTimeout, cfg.FetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.HealthPort, err = portEnv(envHealthPort, cfg.HealthPort); err != nil {
		return Config{}, err
	}
	if cfg.MetricsPort, err = portEnv(envMetricsPort, cfg.MetricsPort); err != nil {
		return Config{}, err
	}
	if cfg.APIPort, err = portEnv(envAPIPort, cfg.APIPort); err != nil {
		return Config{}, err
	}

	stringEnv(envInventoryURL, &cfg.InventoryURL)
	stringEnv(envFeedsFile, &cfg.FeedsFile)
	stringEnv(envCalibrationFile, &cfg.CalibrationFile)
	stringEnv(envStatePath, &cfg.StatePath)
	stringEnv(envSlackWebhookURL, &cfg.SlackWebhookURL)
	stringEnv(envWebhookURL, &cfg.WebhookURL)
	stringEnv(envWebhookTemplate, &cfg.WebhookTemplate)
	stringEnv(envLogLevel, &cfg.LogLevel)
	stringEnv(envLogFormat, &cfg.LogFormat)

	if value, ok := lookupTrimmed(envDryRun); ok && value != "" {
		dryRun, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", envDryRun, err)
		}
		cfg.DryRun = dryRun
	}

	if cfg.InventoryURL == "" && cfg.FeedsFile == "" {
		return Config{}, fmt.Errorf("%s or %s is required", envInventoryURL, envFeedsFile)
	}
	if cfg.InventoryURL != "" {
		if err := validateHTTPURL(cfg.InventoryURL, envInventoryURL); err != nil {
			return Config{}, err
		}
	}
	if cfg.StatePath == "" {
		return Config{}, fmt.Errorf("%s must not be empty", envStatePath)
	}
	for name, value := range map[string]string{
		envSlackWebhookURL: cfg.SlackWebhookURL,
		envWebhookURL:      cfg.WebhookURL,
	} {
		if value == "" {
			continue
		}
		if err := validateHTTPURL(value, name); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func stringEnv(key string, dst *string) {
	if value, ok := lookupTrimmed(key); ok {
		*dst = value
	}
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := lookupTrimmed(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be greater than zero", key)
	}
	return d, nil
}

// portEnv parses a TCP port. Zero disables the listener.
func portEnv(key string, fallback int) (int, error) {
	value, ok := lookupTrimmed(key)
	if !ok || value == "" {
		return fallback, nil
	}
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 0 and 65535", key)
	}
	return port, nil
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}

func validateHTTPURL(value, name string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s: scheme must be http or https", name)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s: must include a host", name)
	}
	return nil
}
