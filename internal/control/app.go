// Package control wires the upstream clients, resolver, asset cache, realtime
// channel and HTTP API into one application lifecycle.
package control

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/algoscan/scand/internal/api"
	"github.com/algoscan/scand/internal/assets"
	"github.com/algoscan/scand/internal/auth"
	"github.com/algoscan/scand/internal/core/config"
	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/favorites"
	"github.com/algoscan/scand/internal/gateway"
	"github.com/algoscan/scand/internal/infra/algod"
	"github.com/algoscan/scand/internal/infra/indexer"
	redisclient "github.com/algoscan/scand/internal/infra/redis"
	"github.com/algoscan/scand/internal/infra/trades"
	"github.com/algoscan/scand/internal/livefeed"
	"github.com/algoscan/scand/internal/resolver"
	"github.com/algoscan/scand/internal/stream"
)

// App is the composed application.
type App struct {
	cfg    *config.AppConfig
	log    *slog.Logger
	redis  *redisclient.Client
	cache  *assets.Cache
	mgr    *stream.Manager
	feed   *livefeed.Feed
	server *api.Server
}

// NewApp builds the application from configuration.
func NewApp(cfg *config.AppConfig, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	redisClient, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		return nil, err
	}

	algodClient := algod.NewClient(cfg.Algod)
	indexerClient := indexer.NewClient(cfg.Indexer)
	tradesClient := trades.NewClient(cfg.Trades)

	gw := gateway.New(algodClient, indexerClient, tradesClient, log)
	res := resolver.New(gw, log)
	cache := assets.NewCache(redisClient, algodClient, cfg.Assets, log)
	fav := favorites.NewService(redisClient)

	authCfg := auth.DefaultConfig()
	if cfg.Hub.Realm != "" {
		authCfg.Realm = cfg.Hub.Realm
	}
	supplier := auth.NewSupplier(authCfg, redisClient, log)

	transport := stream.NewWSTransport(stream.WSConfig{
		URL:              cfg.Hub.URL,
		TokenSupplier:    supplier.Token,
		HandshakeTimeout: cfg.Hub.HandshakeTimeout,
		RetryDelay:       cfg.Hub.RetryDelay,
	}, log)
	mgr := stream.NewManager(transport, log)

	feed := livefeed.NewFeed(livefeed.Config{
		WindowSize: cfg.Feed.WindowSize,
		Filter:     domain.DashboardSubscriptionFilter(),
	}, mgr, log)

	server := api.NewServer(cfg.Server.Port, gw, res, cache, fav, feed, mgr, log)

	return &App{
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
		cache:  cache,
		mgr:    mgr,
		feed:   feed,
		server: server,
	}, nil
}

// Start brings the hub connection, live feed and HTTP server up.
func (a *App) Start(ctx context.Context) error {
	a.mgr.Connect()
	a.feed.Start()

	go func() {
		if err := a.server.Start(); err != nil && err != http.ErrServerClosed {
			a.log.Error("API server failed", "error", err)
		}
	}()

	return nil
}

// Stop shuts everything down in reverse order.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping scand...")

	a.feed.Stop()
	a.mgr.Disconnect()

	if err := a.redis.Close(); err != nil {
		a.log.Warn("Failed to close Redis", "error", err)
	}

	return a.server.Stop(ctx)
}
