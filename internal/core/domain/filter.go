package domain

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// SubscriptionFilter expresses one feature's interest in hub events. Field
// tags follow the hub's invocation contract (PascalCase).
//
// Several filters are live at once (one per mounted feature); the channel
// always sends the server the merged union of all of them.
type SubscriptionFilter struct {
	RecentBlocks         bool `json:"RecentBlocks"`
	RecentTrades         bool `json:"RecentTrades"`
	RecentLiquidity      bool `json:"RecentLiquidity"`
	RecentPool           bool `json:"RecentPool"`
	RecentAggregatedPool bool `json:"RecentAggregatedPool"`
	RecentAssets         bool `json:"RecentAssets"`
	MainAggregatedPools  bool `json:"MainAggregatedPools"`

	PoolsAddresses     []string `json:"PoolsAddresses"`
	AggregatedPoolsIds []string `json:"AggregatedPoolsIds"`
	AssetIds           []string `json:"AssetIds"`
}

// DashboardSubscriptionFilter is the filter the dashboard feature registers:
// every recent-event category, no entity scoping.
func DashboardSubscriptionFilter() SubscriptionFilter {
	return SubscriptionFilter{
		RecentBlocks:         true,
		RecentTrades:         true,
		RecentLiquidity:      true,
		RecentPool:           true,
		RecentAggregatedPool: true,
		MainAggregatedPools:  true,
		PoolsAddresses:       []string{},
		AggregatedPoolsIds:   []string{},
		AssetIds:             []string{},
	}
}

// MergeSubscriptionFilters folds filters into a single conservative filter:
// boolean interest flags combine by OR, identifier lists by set union with
// duplicates removed. The resulting ID lists are sorted so the merged filter
// is deterministic.
func MergeSubscriptionFilters(filters []SubscriptionFilter) SubscriptionFilter {
	merged := SubscriptionFilter{
		PoolsAddresses:     []string{},
		AggregatedPoolsIds: []string{},
		AssetIds:           []string{},
	}

	pools := mapset.NewThreadUnsafeSet[string]()
	aggPools := mapset.NewThreadUnsafeSet[string]()
	assets := mapset.NewThreadUnsafeSet[string]()

	for _, f := range filters {
		merged.RecentBlocks = merged.RecentBlocks || f.RecentBlocks
		merged.RecentTrades = merged.RecentTrades || f.RecentTrades
		merged.RecentLiquidity = merged.RecentLiquidity || f.RecentLiquidity
		merged.RecentPool = merged.RecentPool || f.RecentPool
		merged.RecentAggregatedPool = merged.RecentAggregatedPool || f.RecentAggregatedPool
		merged.RecentAssets = merged.RecentAssets || f.RecentAssets
		merged.MainAggregatedPools = merged.MainAggregatedPools || f.MainAggregatedPools

		pools.Append(f.PoolsAddresses...)
		aggPools.Append(f.AggregatedPoolsIds...)
		assets.Append(f.AssetIds...)
	}

	merged.PoolsAddresses = sortedSlice(pools)
	merged.AggregatedPoolsIds = sortedSlice(aggPools)
	merged.AssetIds = sortedSlice(assets)
	return merged
}

// Equal reports structural equality: same flags and same ID sets, regardless
// of list order.
func (f SubscriptionFilter) Equal(other SubscriptionFilter) bool {
	if f.RecentBlocks != other.RecentBlocks ||
		f.RecentTrades != other.RecentTrades ||
		f.RecentLiquidity != other.RecentLiquidity ||
		f.RecentPool != other.RecentPool ||
		f.RecentAggregatedPool != other.RecentAggregatedPool ||
		f.RecentAssets != other.RecentAssets ||
		f.MainAggregatedPools != other.MainAggregatedPools {
		return false
	}
	return setOf(f.PoolsAddresses).Equal(setOf(other.PoolsAddresses)) &&
		setOf(f.AggregatedPoolsIds).Equal(setOf(other.AggregatedPoolsIds)) &&
		setOf(f.AssetIds).Equal(setOf(other.AssetIds))
}

func setOf(ids []string) mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	s.Append(ids...)
	return s
}

func sortedSlice(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}
