// Package config loads padnav settings from flags, environment and an
// optional YAML file.
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "PADNAV"

type HapticsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// NavigationFeedback plays a short pulse on every confirm intent.
	NavigationFeedback bool `mapstructure:"navigation_feedback"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type Config struct {
	Listen               string        `mapstructure:"listen"`
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	DirectionalThreshold float64       `mapstructure:"directional_threshold"`
	HostShell            string        `mapstructure:"host_shell"`
	Tray                 bool          `mapstructure:"tray"`
	Haptics              HapticsConfig `mapstructure:"haptics"`
	Log                  LogConfig     `mapstructure:"log"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"listen":                "listen",
	"poll-interval":         "poll_interval",
	"directional-threshold": "directional_threshold",
	"host-shell":            "host_shell",
	"tray":                  "tray",
	"haptics":               "haptics.enabled",
	"haptics-feedback":      "haptics.navigation_feedback",
	"log-level":             "log.level",
	"log-dev":               "log.development",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", ":8080")
	v.SetDefault("poll_interval", 100*time.Millisecond)
	v.SetDefault("directional_threshold", 0.7)
	v.SetDefault("host_shell", "auto")
	v.SetDefault("tray", runtime.GOOS == "windows")
	v.SetDefault("haptics.enabled", true)
	v.SetDefault("haptics.navigation_feedback", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("padnav", pflag.ContinueOnError)
	fs.String("config", "", "path to a padnav.yaml config file")
	fs.String("listen", ":8080", "HTTP listen address")
	fs.Duration("poll-interval", 100*time.Millisecond, "navigation poll period")
	fs.Float64("directional-threshold", 0.7, "stick deflection that counts as a direction")
	fs.String("host-shell", "auto", "host shell index overrides: auto, none or steam")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	fs.Bool("haptics", true, "enable controller vibration")
	fs.Bool("haptics-feedback", false, "vibrate briefly on confirm")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.Bool("log-dev", false, "human readable development logs")
	return fs
}

// Load parses args (without the program name) and merges them over
// PADNAV_* environment variables, the config file and defaults.
func Load(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parsing flags")
	}

	v := viper.New()
	setDefaults(v)
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, errors.Wrapf(err, "binding flag %s", flag)
		}
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("padnav")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/padnav")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address is empty")
	}
	if c.PollInterval < 10*time.Millisecond {
		return errors.Errorf("poll_interval %s is below 10ms", c.PollInterval)
	}
	if c.DirectionalThreshold <= 0 || c.DirectionalThreshold > 1 {
		return errors.Errorf("directional_threshold %v must be in (0, 1]", c.DirectionalThreshold)
	}
	switch strings.ToLower(c.HostShell) {
	case "", "auto", "none", "steam":
	default:
		return errors.Errorf("host_shell %q must be auto, none or steam", c.HostShell)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}
