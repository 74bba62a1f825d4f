package main

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// config holds the CLI's runtime parameters. Precedence: defaults,
// then the optional YAML file, then STRAND_* environment variables.
type config struct {
	TableLimit int    `koanf:"table_limit"`
	ChannelCap int    `koanf:"channel_cap"`
	LogLevel   string `koanf:"log_level"`
}

func defaultConfig() config {
	return config{
		TableLimit: 1 << 16,
		ChannelCap: 8,
		LogLevel:   "info",
	}
}

// loadConfig loads configuration from path (may be empty) and the
// environment.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, err
		}
	}
	if err := k.Load(env.Provider("STRAND_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "STRAND_"))
	}), nil); err != nil {
		return cfg, err
	}
	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
