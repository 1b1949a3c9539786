package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DEV_ENV_FILENAME = ".env.development"
const PROD_ENV_FILENAME = ".env.production"

// Config drives the scraping pipeline. Every pacing bound and placeholder
// literal lives here so callers can tune per target instead of patching
// constants.
type Config struct {
	Headless   bool     `yaml:"headless"`
	UserAgents []string `yaml:"user_agents"`

	// Anti-detection pacing: a random delay in [MinDelaySec, MaxDelaySec)
	// precedes every remote action.
	MinDelaySec float64 `yaml:"min_delay_sec"`
	MaxDelaySec float64 `yaml:"max_delay_sec"`

	NavTimeoutSec     int `yaml:"nav_timeout_sec"`
	ElementTimeoutSec int `yaml:"element_timeout_sec"`
	StrikeWaitSec     int `yaml:"strike_wait_sec"`

	// Backoff delays between transient-failure attempts, in seconds.
	BackoffSec []int `yaml:"backoff_sec"`

	ChallengeMarkers []string `yaml:"challenge_markers"`

	// Placeholder written for any cell absent after the merge. The equity
	// Open Interest column can carry its own variant (the exchanges'
	// unified format uses a dash there).
	Placeholder         string `yaml:"placeholder"`
	EquityOIPlaceholder string `yaml:"equity_oi_placeholder"`

	// Whether a deterministic failure on one option series (e.g. strike not
	// available for the Call side) still attempts the sibling series.
	ContinueOnDeterministic bool `yaml:"continue_on_deterministic"`

	HistoryPath string `yaml:"history_path"`
	HistoryCap  int    `yaml:"history_cap"`
}

func Default() Config {
	return Config{
		Headless: true,
		UserAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		MinDelaySec:       3.0,
		MaxDelaySec:       6.0,
		NavTimeoutSec:     60,
		ElementTimeoutSec: 20,
		StrikeWaitSec:     15,
		BackoffSec:        []int{5, 10, 20},
		ChallengeMarkers: []string{
			"captcha",
			"access denied",
			"unusual traffic",
			"too many requests",
			"rate limit",
			"blocked",
		},
		Placeholder:             "N/A",
		EquityOIPlaceholder:     "N/A",
		ContinueOnDeterministic: true,
		HistoryPath:             ".fetch_history.json",
		HistoryCap:              5,
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error: defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Infof("config file %s not found, using defaults", path)
			return cfg, nil
		}
		return cfg, fmt.Errorf("Load: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("Load: failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("Load: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.MinDelaySec < 0 || c.MaxDelaySec < c.MinDelaySec {
		return fmt.Errorf("Config.Validate: delay interval [%v, %v) is invalid", c.MinDelaySec, c.MaxDelaySec)
	}

	if len(c.UserAgents) == 0 {
		return fmt.Errorf("Config.Validate: user agent pool cannot be empty")
	}

	if len(c.BackoffSec) == 0 {
		return fmt.Errorf("Config.Validate: backoff schedule cannot be empty")
	}

	if c.StrikeWaitSec <= 0 {
		return fmt.Errorf("Config.Validate: strike wait bound must be positive")
	}

	return nil
}

func (c Config) NavTimeout() time.Duration     { return time.Duration(c.NavTimeoutSec) * time.Second }
func (c Config) ElementTimeout() time.Duration { return time.Duration(c.ElementTimeoutSec) * time.Second }
func (c Config) StrikeWait() time.Duration     { return time.Duration(c.StrikeWaitSec) * time.Second }

func (c Config) Backoffs() []time.Duration {
	out := make([]time.Duration, 0, len(c.BackoffSec))
	for _, s := range c.BackoffSec {
		out = append(out, time.Duration(s)*time.Second)
	}
	return out
}

// InitEnvironmentVariables loads the .env file for the current GO_ENV. In
// production the environment is expected to be set by the host.
func InitEnvironmentVariables() error {
	if os.Getenv("ENV") == "production" {
		log.Info("Running in production environment")
		return nil
	}

	projectsDir := os.Getenv("PROJECTS_DIR")
	if projectsDir == "" {
		return fmt.Errorf("PROJECTS_DIR environment variable not set")
	}

	envDir := filepath.Join(projectsDir, "marketfetch", "src")

	envFile := filepath.Join(envDir, DEV_ENV_FILENAME)
	if os.Getenv("GO_ENV") == "production" {
		envFile = filepath.Join(envDir, PROD_ENV_FILENAME)
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s file: %v", envFile, err)
	}

	return nil
}
