package cli

import (
	"github.com/spf13/pflag"

	"github.com/lite-lake/dnswatch/internal/config"
	"github.com/lite-lake/dnswatch/internal/constants"
)

// Context carries the global flags shared by every command.
type Context struct {
	ConfigFile string
	EnvFile    string

	StateFile   string
	LogFile     string
	LastRunFile string
	WebhookURL  string
	Interval    string

	Test bool
	Loop bool
}

func NewContext() *Context {
	return &Context{
		EnvFile: constants.DefaultEnvFile,
	}
}

// LoadConfig reads the config layers and applies any flag the user set
// explicitly on top of them.
func (c *Context) LoadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: c.ConfigFile,
		EnvFile:    c.EnvFile,
	})
	if err != nil {
		return nil, err
	}
	if err := c.applyFlags(cfg, flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Context) applyFlags(cfg *config.Config, flags *pflag.FlagSet) error {
	overrides := []struct {
		flag   string
		value  string
		target *string
	}{
		{"state-file", c.StateFile, &cfg.StateFile},
		{"log-file", c.LogFile, &cfg.LogFile},
		{"last-run-file", c.LastRunFile, &cfg.LastRunFile},
		{"webhook-url", c.WebhookURL, &cfg.WebhookURL},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.target = o.value
		}
	}

	if flags.Changed("interval") {
		d, err := config.ParseDuration(c.Interval)
		if err != nil {
			return err
		}
		cfg.Interval = d
	}
	return nil
}
