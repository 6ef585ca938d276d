package stream

import (
	"encoding/json"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/metrics"
)

// Hub event names.
const (
	eventTrade          = "Trade"
	eventLiquidity      = "Liquidity"
	eventPool           = "Pool"
	eventAggregatedPool = "AggregatedPool"
	eventBlock          = "Block"
	eventAsset          = "Asset"
	eventInfo           = "Info"
	eventError          = "Error"
	eventTestResult     = "TestConnectionResult"
)

// dispatch fans one arriving event out to every callback registered for its
// category, synchronously and in registration order. The callback list is
// snapshotted first, so an unregistration during dispatch takes effect only
// for later events.
func (m *Manager) dispatch(target string, payload json.RawMessage) {
	switch target {
	case eventTrade:
		fanout(m, &m.trades, payload, target)
	case eventLiquidity:
		fanout(m, &m.liquidity, payload, target)
	case eventPool:
		fanout(m, &m.pools, payload, target)
	case eventAggregatedPool:
		fanout(m, &m.aggPools, payload, target)
	case eventBlock:
		fanout(m, &m.blocks, payload, target)
	case eventAsset:
		fanout(m, &m.assets, payload, target)
	case eventInfo:
		m.log.Info("Hub info", "payload", string(payload))
	case eventTestResult:
		m.log.Info("Hub test connection result", "payload", string(payload))
	case eventError:
		m.log.Error("Hub subscription error", "payload", string(payload))
	default:
		m.log.Debug("Unhandled hub event", "target", target)
	}
}

func fanout[T any](m *Manager, list *[]entry[T], payload json.RawMessage, category string) {
	metrics.StreamEvents.WithLabelValues(category).Inc()

	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		m.log.Warn("Malformed hub event", "target", category, "error", err)
		return
	}

	m.mu.Lock()
	callbacks := make([]func(T), len(*list))
	for i, e := range *list {
		callbacks[i] = e.fn
	}
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(event)
	}
}

func addEntry[T any](m *Manager, list *[]entry[T], fn func(T)) CallbackID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	*list = append(*list, entry[T]{id: m.nextID, fn: fn})
	return m.nextID
}

func removeEntry[T any](m *Manager, list *[]entry[T], id CallbackID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range *list {
		if e.id == id {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

// OnTradeReceived registers a trade callback and returns its handle.
func (m *Manager) OnTradeReceived(fn func(domain.Trade)) CallbackID {
	return addEntry(m, &m.trades, fn)
}

// UnsubscribeFromTradeUpdates removes a trade callback.
func (m *Manager) UnsubscribeFromTradeUpdates(id CallbackID) {
	removeEntry(m, &m.trades, id)
}

// OnLiquidityReceived registers a liquidity callback and returns its handle.
func (m *Manager) OnLiquidityReceived(fn func(domain.Liquidity)) CallbackID {
	return addEntry(m, &m.liquidity, fn)
}

// UnsubscribeFromLiquidityUpdates removes a liquidity callback.
func (m *Manager) UnsubscribeFromLiquidityUpdates(id CallbackID) {
	removeEntry(m, &m.liquidity, id)
}

// OnPoolReceived registers a pool callback and returns its handle.
func (m *Manager) OnPoolReceived(fn func(domain.Pool)) CallbackID {
	return addEntry(m, &m.pools, fn)
}

// UnsubscribeFromPoolUpdates removes a pool callback.
func (m *Manager) UnsubscribeFromPoolUpdates(id CallbackID) {
	removeEntry(m, &m.pools, id)
}

// OnAggregatedPoolReceived registers an aggregated-pool callback and returns
// its handle.
func (m *Manager) OnAggregatedPoolReceived(fn func(domain.AggregatedPool)) CallbackID {
	return addEntry(m, &m.aggPools, fn)
}

// UnsubscribeFromAggregatedPoolUpdates removes an aggregated-pool callback.
func (m *Manager) UnsubscribeFromAggregatedPoolUpdates(id CallbackID) {
	removeEntry(m, &m.aggPools, id)
}

// OnBlockReceived registers a block callback and returns its handle.
func (m *Manager) OnBlockReceived(fn func(domain.BlockEvent)) CallbackID {
	return addEntry(m, &m.blocks, fn)
}

// UnsubscribeFromBlockUpdates removes a block callback.
func (m *Manager) UnsubscribeFromBlockUpdates(id CallbackID) {
	removeEntry(m, &m.blocks, id)
}

// OnAssetReceived registers an asset callback and returns its handle.
func (m *Manager) OnAssetReceived(fn func(domain.AssetEvent)) CallbackID {
	return addEntry(m, &m.assets, fn)
}

// UnsubscribeFromAssetUpdates removes an asset callback.
func (m *Manager) UnsubscribeFromAssetUpdates(id CallbackID) {
	removeEntry(m, &m.assets, id)
}
