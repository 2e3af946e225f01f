// Package config loads the typereflect configuration from typereflect.yaml,
// TYPEREFLECT_* environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// FileName is the configuration file looked up in the working directory,
// without extension.
const FileName = "typereflect"

// EnvPrefix prefixes the environment variables that override settings.
const EnvPrefix = "TYPEREFLECT"

// Config represents the typereflect configuration.
type Config struct {
	Patterns    []string     `mapstructure:"patterns"`
	Suffix      string       `mapstructure:"suffix"`
	Diagnostics bool         `mapstructure:"diagnostics"`
	LogLevel    string       `mapstructure:"log_level"`
	Output      OutputConfig `mapstructure:"output"`
	Watch       WatchConfig  `mapstructure:"watch"`
}

// OutputConfig controls what generation writes.
type OutputConfig struct {
	RemoveStale      bool   `mapstructure:"remove_stale"`
	DebugUnformatted bool   `mapstructure:"debug_unformatted"`
	ReflectionPath   string `mapstructure:"reflection_path"`
}

// WatchConfig controls the watch loop.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Flags maps flag names to configuration keys. Only flags that are present
// in the flag set are bound.
var Flags = map[string]string{
	"suffix":      "suffix",
	"diagnostics": "diagnostics",
	"log-level":   "log_level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("patterns", []string{"./..."})
	v.SetDefault("suffix", "_reflection.go")
	v.SetDefault("diagnostics", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("output.remove_stale", true)
	v.SetDefault("output.debug_unformatted", true)
	v.SetDefault("output.reflection_path", "typereflect/reflection")
	v.SetDefault("watch.debounce", 200*time.Millisecond)
}

// Load reads the configuration. An explicit path must exist; otherwise
// typereflect.yaml in dir is optional. Flags that were set on the command
// line win over the file and the environment.
func Load(path, dir string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")

		if dir == "" {
			dir = "."
		}

		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range Flags {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values no command can work with.
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.Suffix, ".go") || strings.HasSuffix(c.Suffix, "_test.go") || c.Suffix == ".go" {
		return fmt.Errorf("suffix must end in .go and not name a test file, got %q", c.Suffix)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", c.Watch.Debounce)
	}

	return nil
}

// PatternsOr returns args when given, the configured patterns otherwise.
func (c *Config) PatternsOr(args []string) []string {
	if len(args) > 0 {
		return args
	}

	return c.Patterns
}
