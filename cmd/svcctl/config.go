package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/axondata/go-systemctl"
)

// Config holds the svcctl settings merged from flags, SVCCTL_* environment
// variables and svcctl.yaml
type Config struct {
	Sudo          bool          `mapstructure:"sudo"`
	SudoCommand   string        `mapstructure:"sudo_command"`
	Systemctl     string        `mapstructure:"systemctl"`
	Timeout       time.Duration `mapstructure:"timeout"`
	WaitTimeout   time.Duration `mapstructure:"wait_timeout"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
	UnitDir       string        `mapstructure:"unit_dir"`
	Concurrency   int           `mapstructure:"concurrency"`
	LogLevel      string        `mapstructure:"log_level"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"sudo":           "sudo",
	"sudo-command":   "sudo_command",
	"systemctl":      "systemctl",
	"timeout":        "timeout",
	"wait-timeout":   "wait_timeout",
	"poll-interval":  "poll_interval",
	"watch-interval": "watch_interval",
	"unit-dir":       "unit_dir",
	"concurrency":    "concurrency",
	"log-level":      "log_level",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("svcctl", pflag.ContinueOnError)
	fs.SetInterspersed(false)

	fs.Bool("version", false, "Print the version and exit")
	fs.String("config", "", "Path to the config file (default: ./svcctl.yaml or /etc/svcctl/svcctl.yaml)")
	fs.Bool("sudo", false, "Run control commands through the sudo command")
	fs.String("sudo-command", systemctl.DefaultSudoCommand, "Privilege escalation wrapper")
	fs.String("systemctl", systemctl.DefaultSystemctlPath, "Path to the systemctl binary")
	fs.Duration("timeout", 30*time.Second, "Overall timeout per unit operation")
	fs.Duration("wait-timeout", systemctl.DefaultWaitTimeout, "How long start, restart and stop wait for the target state")
	fs.Duration("poll-interval", 50*time.Millisecond, "Delay between state polls")
	fs.Duration("watch-interval", systemctl.DefaultWatchInterval, "Refresh interval for watch")
	fs.String("unit-dir", systemctl.DefaultUnitDir, "Directory drop-in overrides are written under")
	fs.Int("concurrency", 10, "Maximum number of units handled at once")
	fs.String("log-level", "WARNING", "Log level (TRACE, DEBUG, INFO, WARNING, ERROR)")

	return fs
}

// setDefaults mirrors the flag defaults so environment variables and the
// config file are consulted for every key
func setDefaults(v *viper.Viper, fs *pflag.FlagSet) {
	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			v.SetDefault(key, f.DefValue)
		}
	}
}

// loadConfig parses args and returns the merged configuration together
// with the remaining positional arguments
func loadConfig(fs *pflag.FlagSet, args []string) (*Config, []string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	v := viper.New()
	setDefaults(v, fs)

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix("SVCCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		v.SetConfigName("svcctl")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/svcctl")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	return cfg, fs.Args(), nil
}

// serviceOptions translates the configuration into handle options
func (c *Config) serviceOptions() []systemctl.Option {
	return []systemctl.Option{
		systemctl.WithSudo(c.Sudo),
		systemctl.WithSudoCommand(c.SudoCommand),
		systemctl.WithSystemctlPath(c.Systemctl),
		systemctl.WithWaitTimeout(c.WaitTimeout),
		systemctl.WithPollInterval(c.PollInterval),
		systemctl.WithWatchInterval(c.WatchInterval),
		systemctl.WithUnitDir(c.UnitDir),
	}
}
