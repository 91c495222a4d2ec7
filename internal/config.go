package internal

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type NovaGridConfig struct {
	AppName string `mapstructure:"app_name"`

	Grid struct {
		DefaultWidth   int    `mapstructure:"default_width"`
		HeaderRenderer string `mapstructure:"header_renderer"`
	} `mapstructure:"grid"`

	Repl struct {
		HistoryFile string `mapstructure:"history_file"`
		HistoryMax  int    `mapstructure:"history_max"`
		Prompt      string `mapstructure:"prompt"`
	} `mapstructure:"repl"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"history":     "repl.history_file",
	"history-max": "repl.history_max",
	"log-level":   "log.level",
	"width":       "grid.default_width",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "novagrid")
	v.SetDefault("grid.default_width", 150)
	v.SetDefault("grid.header_renderer", "default")
	v.SetDefault("repl.history_max", 2000)
	v.SetDefault("repl.prompt", "novagrid> ")
	v.SetDefault("log.level", "info")
}

// LoadConfig reads the YAML file at path (skipped when empty), then applies
// NOVAGRID_* environment variables and the flags set on flags (may be nil).
func LoadConfig(path string, flags *pflag.FlagSet) (*NovaGridConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("NOVAGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaGridConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SlogLevel parses Log.Level, falling back to info.
func (c *NovaGridConfig) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
