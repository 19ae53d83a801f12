package main

import (
	"os"

	"github.com/BurntSushi/toml"
)

// config holds the formatter knobs read from the optional TOML file named
// by --config (SPEC_FULL.md §8.3). The set and rm commands load it, so a
// malformed file fails them, but the values are not applied to rendering.
type config struct {
	ListMultilineThreshold int    `toml:"list_multiline_threshold"`
	DefaultMultiline       string `toml:"default_multiline"`
}

func defaultConfig() config {
	return config{ListMultilineThreshold: 4, DefaultMultiline: "auto"}
}

// loadConfig reads path if non-empty, overlaying its values on the
// defaults. A missing path is not an error; a malformed one is.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
