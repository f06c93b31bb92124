//
// config.go
//
// Copyright (c) 2025 Tony Avall
//
// All rights reserved.
//

// Package config holds the driver settings shared by the command-line
// tools. Flags override anything read from a file.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the TOML driver configuration.
type Config struct {
	Input      string `toml:"input"`
	Output     string `toml:"output"`
	KeyField   string `toml:"keyField"`
	BucketSize int    `toml:"bucketSize"`
	Shards     int    `toml:"shards"`
	Cipher     string `toml:"cipher"`
}

// Default returns the driver defaults.
func Default() *Config {
	return &Config{
		Input:      "data.json",
		Output:     "sorted_output.json",
		KeyField:   "subscriberCount",
		BucketSize: 16,
		Shards:     4,
		Cipher:     "mask",
	}
}

// Load reads a TOML configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %s", path, err)
	}
	return cfg, nil
}
