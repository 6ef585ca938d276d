// Package livefeed keeps rolling in-memory windows of the realtime event
// categories so the HTTP layer can serve recent activity without replaying
// the hub.
package livefeed

import (
	"log/slog"
	"sync"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/stream"
)

// ring is a fixed-capacity append-only window. Oldest entries fall off.
type ring[T any] struct {
	mu    sync.Mutex
	buf   []T
	cap   int
	total uint64
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{cap: capacity}
}

func (r *ring[T]) push(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total++
	if len(r.buf) == r.cap {
		copy(r.buf, r.buf[1:])
		r.buf[len(r.buf)-1] = v
		return
	}
	r.buf = append(r.buf, v)
}

// snapshot returns the window newest-first.
func (r *ring[T]) snapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.buf))
	for i, v := range r.buf {
		out[len(r.buf)-1-i] = v
	}
	return out
}

func (r *ring[T]) count() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

// Config sets the feed window size and the filter it subscribes with.
type Config struct {
	WindowSize int
	Filter     domain.SubscriptionFilter
}

// Feed subscribes to the hub and retains the most recent events per category.
type Feed struct {
	cfg Config
	mgr *stream.Manager
	log *slog.Logger

	trades     *ring[domain.Trade]
	liquidity  *ring[domain.Liquidity]
	pools      *ring[domain.Pool]
	aggregated *ring[domain.AggregatedPool]
	blocks     *ring[domain.BlockEvent]
	assets     *ring[domain.AssetEvent]

	ids []func()
}

// NewFeed builds a feed over the given hub manager.
func NewFeed(cfg Config, mgr *stream.Manager, log *slog.Logger) *Feed {
	if log == nil {
		log = slog.Default()
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 100
	}
	return &Feed{
		cfg:        cfg,
		mgr:        mgr,
		log:        log,
		trades:     newRing[domain.Trade](cfg.WindowSize),
		liquidity:  newRing[domain.Liquidity](cfg.WindowSize),
		pools:      newRing[domain.Pool](cfg.WindowSize),
		aggregated: newRing[domain.AggregatedPool](cfg.WindowSize),
		blocks:     newRing[domain.BlockEvent](cfg.WindowSize),
		assets:     newRing[domain.AssetEvent](cfg.WindowSize),
	}
}

// Start registers the category listeners and issues the feed subscription.
// Subscribe blocks while the channel connects, so it runs on its own
// goroutine.
func (f *Feed) Start() {
	tradeID := f.mgr.OnTradeReceived(func(t domain.Trade) { f.trades.push(t) })
	liqID := f.mgr.OnLiquidityReceived(func(l domain.Liquidity) { f.liquidity.push(l) })
	poolID := f.mgr.OnPoolReceived(func(p domain.Pool) { f.pools.push(p) })
	aggID := f.mgr.OnAggregatedPoolReceived(func(p domain.AggregatedPool) { f.aggregated.push(p) })
	blockID := f.mgr.OnBlockReceived(func(b domain.BlockEvent) { f.blocks.push(b) })
	assetID := f.mgr.OnAssetReceived(func(a domain.AssetEvent) { f.assets.push(a) })

	f.ids = []func(){
		func() { f.mgr.UnsubscribeFromTradeUpdates(tradeID) },
		func() { f.mgr.UnsubscribeFromLiquidityUpdates(liqID) },
		func() { f.mgr.UnsubscribeFromPoolUpdates(poolID) },
		func() { f.mgr.UnsubscribeFromAggregatedPoolUpdates(aggID) },
		func() { f.mgr.UnsubscribeFromBlockUpdates(blockID) },
		func() { f.mgr.UnsubscribeFromAssetUpdates(assetID) },
	}

	go f.mgr.Subscribe(f.cfg.Filter)
	f.log.Info("Live feed started", "window", f.cfg.WindowSize)
}

// Stop withdraws the subscription and unregisters the listeners.
func (f *Feed) Stop() {
	f.mgr.UnsubscribeFilter(f.cfg.Filter)
	for _, unreg := range f.ids {
		unreg()
	}
	f.ids = nil
	f.log.Info("Live feed stopped")
}

// Trades returns the retained trades, newest first.
func (f *Feed) Trades() []domain.Trade { return f.trades.snapshot() }

// Liquidity returns the retained liquidity events, newest first.
func (f *Feed) Liquidity() []domain.Liquidity { return f.liquidity.snapshot() }

// Pools returns the retained pool updates, newest first.
func (f *Feed) Pools() []domain.Pool { return f.pools.snapshot() }

// AggregatedPools returns the retained aggregated pool updates, newest first.
func (f *Feed) AggregatedPools() []domain.AggregatedPool { return f.aggregated.snapshot() }

// Blocks returns the retained block events, newest first.
func (f *Feed) Blocks() []domain.BlockEvent { return f.blocks.snapshot() }

// Assets returns the retained asset events, newest first.
func (f *Feed) Assets() []domain.AssetEvent { return f.assets.snapshot() }

// Counts reports how many events each category has seen since start.
func (f *Feed) Counts() map[string]uint64 {
	return map[string]uint64{
		"trades":          f.trades.count(),
		"liquidity":       f.liquidity.count(),
		"pools":           f.pools.count(),
		"aggregatedPools": f.aggregated.count(),
		"blocks":          f.blocks.count(),
		"assets":          f.assets.count(),
	}
}
