package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration for the CLI.
//
//	[engine]
//	auto_recalc = false
//
//	[[operation]]
//	name = "DOUBLE"
//	expr = "args[0] * 2"
type Config struct {
	Engine struct {
		AutoRecalc bool `toml:"auto_recalc"`
	} `toml:"engine"`
	Operations []OperationConfig `toml:"operation"`
}

// OperationConfig declares one user-defined operation as an
// expression over its argument list.
type OperationConfig struct {
	Name string `toml:"name"`
	Expr string `toml:"expr"`
}

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	for _, op := range cfg.Operations {
		if op.Name == "" || op.Expr == "" {
			return nil, fmt.Errorf("config %s: operation needs both name and expr", path)
		}
	}
	return cfg, nil
}
