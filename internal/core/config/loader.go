package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Algod.URL == "" {
		cfg.Algod.URL = "https://algorand-algod-public.de-4.biatec.io"
	}
	if cfg.Algod.Timeout == 0 {
		cfg.Algod.Timeout = 10 * time.Second
	}
	if cfg.Indexer.URL == "" {
		cfg.Indexer.URL = "https://mainnet-idx.algonode.cloud"
	}
	if cfg.Indexer.Timeout == 0 {
		cfg.Indexer.Timeout = 10 * time.Second
	}
	if cfg.Trades.URL == "" {
		cfg.Trades.URL = "https://algorand-trades.de-4.biatec.io"
	}
	if cfg.Trades.Timeout == 0 {
		cfg.Trades.Timeout = 10 * time.Second
	}
	if cfg.Hub.URL == "" {
		cfg.Hub.URL = "wss://algorand-trades.de-4.biatec.io/biatecScanHub"
	}
	if cfg.Hub.HandshakeTimeout == 0 {
		cfg.Hub.HandshakeTimeout = 10 * time.Second
	}
	if cfg.Hub.RetryDelay == 0 {
		cfg.Hub.RetryDelay = 5 * time.Second
	}
	if cfg.Assets.MinFetchInterval == 0 {
		cfg.Assets.MinFetchInterval = 2 * time.Second
	}
	if cfg.Feed.WindowSize == 0 {
		cfg.Feed.WindowSize = 100
	}
}
