package config

import (
	"time"

	"github.com/algoscan/scand/internal/assets"
	"github.com/algoscan/scand/internal/infra/algod"
	"github.com/algoscan/scand/internal/infra/indexer"
	redisclient "github.com/algoscan/scand/internal/infra/redis"
	"github.com/algoscan/scand/internal/infra/trades"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server  ServerConfig       `yaml:"server"`
	Algod   algod.Config       `yaml:"algod"`
	Indexer indexer.Config     `yaml:"indexer"`
	Trades  trades.Config      `yaml:"trades"`
	Hub     HubConfig          `yaml:"hub"`
	Redis   redisclient.Config `yaml:"redis"`
	Assets  assets.Config      `yaml:"assets"`
	Feed    FeedConfig         `yaml:"feed"`
	Logging LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// HubConfig holds the realtime hub connection settings.
type HubConfig struct {
	URL              string        `yaml:"url"`
	Realm            string        `yaml:"realm"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	RetryDelay       time.Duration `yaml:"retry_delay"`
}

// FeedConfig holds the live feed settings.
type FeedConfig struct {
	WindowSize int `yaml:"window_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
