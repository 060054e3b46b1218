// Package config loads settings from a YAML file, the environment and command-line flags.
// Later sources override earlier ones: file, then FLASHDECK_* variables, then flags.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const envPrefix = "FLASHDECK_"

type Config struct {
	// History is the SQLite file reviews are logged to. Empty disables history.
	History  string `koanf:"history"`
	LogLevel string `koanf:"log-level" validate:"oneof=debug info warn error"`
	ReposDir string `koanf:"repos-dir" validate:"required"`

	// Import settings.
	Format  string `koanf:"format" validate:"oneof=auto csv markdown"`
	File    string `koanf:"file"`
	Replace bool   `koanf:"replace"`
}

// NewFlagSet declares every flag the CLI accepts, with defaults.
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.SetOutput(io.Discard)
	f.String("config", "", "path to a YAML config file")
	f.String("history", "", "SQLite file to log reviews to (empty disables history)")
	f.String("log-level", "warn", "log level: debug, info, warn or error")
	f.String("repos-dir", "repos", "directory git import sources are checked out into")
	f.String("format", "auto", "import format: auto, csv or markdown")
	f.String("file", "", "import file inside a git repository")
	f.Bool("replace", false, "overwrite the deck on import instead of merging")
	return f
}

// Load parses args and returns the merged configuration along with the
// positional arguments.
func Load(args []string) (*Config, []string, error) {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	f := NewFlagSet("flashdeck")
	if err := f.Parse(args); err != nil {
		return nil, nil, err
	}

	k := koanf.New(".")

	cfgPath, _ := f.GetString("config")
	if cfgPath == "" {
		cfgPath = os.Getenv(envPrefix + "CONFIG")
	}
	if cfgPath != "" {
		if err := k.Load(file.Provider(cfgPath), yaml.Parser()); err != nil {
			return nil, nil, fmt.Errorf("config: failed to load %s: %w", cfgPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, nil, fmt.Errorf("config: failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, f.Args(), nil
}

// envKey maps FLASHDECK_LOG_LEVEL to log-level.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", "-")
}
