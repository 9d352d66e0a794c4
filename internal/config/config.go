package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/dnswatch/internal/constants"
	"github.com/lite-lake/dnswatch/internal/domain"
)

// Config holds everything a monitor needs. It is built once at startup and
// handed to each component's constructor.
type Config struct {
	WebhookURL  string        `yaml:"webhook_url"`
	StateFile   string        `yaml:"state_file"`
	LogFile     string        `yaml:"log_file"`
	LastRunFile string        `yaml:"last_run_file"`
	Interval    time.Duration `yaml:"interval"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Retry       RetryConfig   `yaml:"retry"`
	AWS         AWSConfig     `yaml:"aws"`

	// BaseDir anchors relative file paths from the config and env files.
	BaseDir string `yaml:"-"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

type AWSConfig struct {
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`
}

type LoadOptions struct {
	// ConfigFile is an optional YAML file. A missing file is an error.
	ConfigFile string
	// EnvFile is a dotenv file. A missing file is ignored.
	EnvFile string
	// BaseDir is used when no config file is given. Defaults to the working directory.
	BaseDir string
}

func Default() *Config {
	return &Config{
		StateFile:   constants.DefaultStateFile,
		LogFile:     constants.DefaultLogFile,
		LastRunFile: constants.DefaultLastRunFile,
		Interval:    constants.DefaultInterval,
		HTTPTimeout: constants.DefaultHTTPTimeout,
		Retry: RetryConfig{
			MaxAttempts:  constants.DefaultRetryAttempts,
			InitialDelay: constants.DefaultRetryDelay,
		},
		BaseDir: ".",
	}
}

// Load layers defaults, the YAML file, the dotenv file and the process
// environment, in increasing precedence. Process variables win over the
// dotenv file; the process environment itself is never modified.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()
	if opts.BaseDir != "" {
		cfg.BaseDir = opts.BaseDir
	}

	if opts.ConfigFile != "" {
		if err := cfg.loadFile(opts.ConfigFile); err != nil {
			return nil, err
		}
		cfg.BaseDir = filepath.Dir(opts.ConfigFile)
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		vars, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			dotenv = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			kind := domain.ErrConfigParseFailed
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				kind = domain.ErrConfigReadFailed
			}
			return nil, fmt.Errorf("reading env file %s: %w", opts.EnvFile, domain.NewOpError("read env file", kind, err))
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	cfg.resolvePaths()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, domain.NewOpError("read config", domain.ErrConfigReadFailed, err))
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, domain.NewOpError("parse config", domain.ErrConfigParseFailed, err))
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strVars := []struct {
		key    string
		target *string
	}{
		{"SLACK_WEBHOOK_URL", &c.WebhookURL},
		{"DNSWATCH_STATE_FILE", &c.StateFile},
		{"DNSWATCH_LOG_FILE", &c.LogFile},
		{"DNSWATCH_LAST_RUN_FILE", &c.LastRunFile},
		{"AWS_REGION", &c.AWS.Region},
		{"AWS_PROFILE", &c.AWS.Profile},
	}
	for _, v := range strVars {
		if val, ok := lookup(v.key); ok {
			*v.target = strings.TrimSpace(val)
		}
	}

	durVars := []struct {
		key    string
		target *time.Duration
	}{
		{"DNSWATCH_INTERVAL", &c.Interval},
		{"DNSWATCH_HTTP_TIMEOUT", &c.HTTPTimeout},
		{"DNSWATCH_RETRY_DELAY", &c.Retry.InitialDelay},
	}
	for _, v := range durVars {
		val, ok := lookup(v.key)
		if !ok || val == "" {
			continue
		}
		d, err := ParseDuration(val)
		if err != nil {
			return domain.WrapEntity("env", v.key, err)
		}
		*v.target = d
	}

	if val, ok := lookup("DNSWATCH_RETRY_ATTEMPTS"); ok && val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return domain.WrapEntity("env", "DNSWATCH_RETRY_ATTEMPTS", fmt.Errorf("%w: %s", domain.ErrConfigInvalid, val))
		}
		c.Retry.MaxAttempts = n
	}
	return nil
}

func (c *Config) resolvePaths() {
	for _, p := range []*string{&c.StateFile, &c.LogFile, &c.LastRunFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(c.BaseDir, *p)
		}
	}
}

// ParseDuration accepts Go duration strings and bare integers as seconds.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", domain.ErrInvalidDuration, s)
	}
	return d, nil
}

// Validate checks the settings needed by a monitoring run. requireWebhook is
// false for offline commands that never notify.
func (c *Config) Validate(requireWebhook bool) error {
	if c.StateFile == "" {
		return domain.RequiredField("state_file")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", domain.ErrInvalidDuration)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("%w: http_timeout must be positive", domain.ErrInvalidDuration)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("%w: retry.max_attempts must be at least 1", domain.ErrConfigInvalid)
	}
	if !requireWebhook {
		return nil
	}
	if c.WebhookURL == "" {
		return domain.ErrWebhookURLMissing
	}
	u, err := url.ParseRequestURI(c.WebhookURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("%w: webhook_url", domain.ErrInvalidURL)
	}
	return nil
}
