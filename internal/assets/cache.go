// Package assets resolves and caches asset metadata. Fetches are serialized
// through a FIFO queue with a global minimum inter-request interval so the
// upstream node's rate limits are respected no matter how many views ask for
// assets at once.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.uber.org/ratelimit"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/metrics"
)

const defaultMinFetchInterval = 2000 * time.Millisecond

// Store is the durable key-value store the cache persists into. Values
// survive process restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Fetcher loads asset metadata from the node.
type Fetcher interface {
	AssetParams(ctx context.Context, assetID uint64) (*domain.AssetParams, error)
}

// Config holds cache tuning and display conventions.
type Config struct {
	MinFetchInterval time.Duration `yaml:"min_fetch_interval"`
	QuotePriority    []QuoteRule   `yaml:"quote_priority"`
}

// Cache is a read-through asset metadata cache: an in-memory map for the
// process lifetime, mirrored into the durable store, filled by a single
// queue-draining loop.
type Cache struct {
	store   Store
	fetcher Fetcher
	limiter ratelimit.Limiter
	rules   []QuoteRule
	log     *slog.Logger

	mu       sync.Mutex
	mem      map[uint64]*domain.AssetParams
	order    []uint64
	waiting  map[uint64][]func()
	draining bool
}

// NewCache creates the cache. A zero MinFetchInterval defaults to 2000 ms; a
// nil QuotePriority defaults to the stock quote-asset list.
func NewCache(store Store, fetcher Fetcher, cfg Config, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	interval := cfg.MinFetchInterval
	if interval <= 0 {
		interval = defaultMinFetchInterval
	}
	rules := cfg.QuotePriority
	if rules == nil {
		rules = DefaultQuotePriority()
	}
	return &Cache{
		store:   store,
		fetcher: fetcher,
		limiter: ratelimit.New(1, ratelimit.Per(interval), ratelimit.WithoutSlack),
		rules:   rules,
		log:     log,
		mem:     make(map[uint64]*domain.AssetParams),
		waiting: make(map[uint64][]func()),
	}
}

func storeKey(assetID uint64) string {
	return fmt.Sprintf("asset_%d", assetID)
}

// RequestAsset asks for an asset's metadata to be made available and fires
// onReady once it is resolved (successfully or not). Requests for an asset
// already cached fire immediately; concurrent requests for the same uncached
// asset are coalesced into one upstream fetch.
func (c *Cache) RequestAsset(assetID uint64, onReady func()) {
	if c.GetAssetInfo(assetID) != nil {
		invoke(c.log, onReady)
		return
	}

	c.mu.Lock()
	if _, queued := c.waiting[assetID]; queued {
		c.waiting[assetID] = append(c.waiting[assetID], onReady)
	} else {
		c.waiting[assetID] = []func(){onReady}
		c.order = append(c.order, assetID)
	}
	metrics.AssetQueueDepth.Set(float64(len(c.order)))
	start := !c.draining
	if start {
		c.draining = true
	}
	c.mu.Unlock()

	if start {
		go c.drain()
	}
}

// drain processes the queue strictly FIFO. Exactly one drain loop runs at a
// time; the pacing limiter advances on every iteration, so even a request
// satisfied from cache keeps consecutive iterations spaced apart.
func (c *Cache) drain() {
	for {
		c.mu.Lock()
		if len(c.order) == 0 {
			c.draining = false
			c.mu.Unlock()
			return
		}
		assetID := c.order[0]
		c.order = c.order[1:]
		callbacks := c.waiting[assetID]
		delete(c.waiting, assetID)
		metrics.AssetQueueDepth.Set(float64(len(c.order)))
		c.mu.Unlock()

		c.limiter.Take()

		// The asset may have been resolved while queued.
		if c.GetAssetInfo(assetID) == nil {
			c.fetch(assetID)
		}
		for _, cb := range callbacks {
			invoke(c.log, cb)
		}
	}
}

func (c *Cache) fetch(assetID uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	params, err := c.fetcher.AssetParams(ctx, assetID)
	if err != nil {
		metrics.AssetFetches.WithLabelValues("error").Inc()
		c.log.Warn("Failed to load asset", "asset_id", assetID, "error", err)
		return
	}
	metrics.AssetFetches.WithLabelValues("ok").Inc()

	if data, err := json.Marshal(params); err == nil {
		if err := c.store.Set(ctx, storeKey(assetID), string(data)); err != nil {
			c.log.Warn("Failed to persist asset", "asset_id", assetID, "error", err)
		}
	}

	c.mu.Lock()
	c.mem[assetID] = params
	c.mu.Unlock()
}

// GetAssetInfo returns the asset's metadata when it is already available
// (hard-coded native unit, in-memory map, or durable store), nil otherwise.
// It never triggers a fetch.
func (c *Cache) GetAssetInfo(assetID uint64) *domain.AssetParams {
	if assetID == domain.AlgoAssetID {
		return domain.AlgoParams()
	}

	c.mu.Lock()
	if params, ok := c.mem[assetID]; ok {
		c.mu.Unlock()
		return params
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	value, ok, err := c.store.Get(ctx, storeKey(assetID))
	if err != nil {
		c.log.Warn("Asset store read failed", "asset_id", assetID, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var params domain.AssetParams
	if err := json.Unmarshal([]byte(value), &params); err != nil {
		c.log.Warn("Corrupt asset record", "asset_id", assetID, "error", err)
		return nil
	}

	c.mu.Lock()
	c.mem[assetID] = &params
	c.mu.Unlock()
	return &params
}

// invoke runs a caller-supplied callback, containing any panic so sibling
// callbacks and the queue loop keep going.
func invoke(log *slog.Logger, cb func()) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Asset callback panicked", "panic", r)
		}
	}()
	cb()
}
