// Package gateway fronts the three upstream data sources (algod node,
// indexer, trade-history API) with fault-tolerant semantics: a failed
// upstream call degrades to "not found / empty" and is logged, never
// propagated.
package gateway

import (
	"context"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/metrics"
)

// AlgodAPI is the node-side surface the gateway needs.
type AlgodAPI interface {
	LastRound(ctx context.Context) (uint64, error)
	BlockHeader(ctx context.Context, round uint64) (*domain.BlockHeader, error)
}

// IndexerAPI is the indexer-side surface the gateway needs.
type IndexerAPI interface {
	TransactionByID(ctx context.Context, txID string) (*domain.Transaction, error)
	Block(ctx context.Context, round uint64) (*domain.BlockHeader, []domain.Transaction, error)
}

// TradeAPI is the trade-history fallback surface.
type TradeAPI interface {
	TradesByTxID(ctx context.Context, txID string, size int) ([]domain.Trade, error)
}

// Gateway bundles the upstream clients.
type Gateway struct {
	algod   AlgodAPI
	indexer IndexerAPI
	trades  TradeAPI
	log     *slog.Logger
}

// New creates a gateway over the three upstreams.
func New(algod AlgodAPI, indexer IndexerAPI, trades TradeAPI, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{algod: algod, indexer: indexer, trades: trades, log: log}
}

// GetBlock fetches a single block header from the node. Returns nil when the
// round cannot be fetched.
func (g *Gateway) GetBlock(ctx context.Context, round uint64) *domain.BlockHeader {
	metrics.GatewayCalls.WithLabelValues("algod", "block").Inc()
	hdr, err := g.algod.BlockHeader(ctx, round)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("algod", "block").Inc()
		g.log.Warn("Failed to fetch block", "round", round, "error", err)
		return nil
	}
	return hdr
}

// GetBlockTransactions returns the full top-level transaction list of a round
// (with inner-transaction trees) from the indexer. Empty on failure.
func (g *Gateway) GetBlockTransactions(ctx context.Context, round uint64) []domain.Transaction {
	_, txns := g.GetBlockWithTransactions(ctx, round)
	return txns
}

// GetBlockWithTransactions returns both the indexer's view of the block
// header and its transactions in one lookup.
func (g *Gateway) GetBlockWithTransactions(ctx context.Context, round uint64) (*domain.BlockHeader, []domain.Transaction) {
	metrics.GatewayCalls.WithLabelValues("indexer", "block").Inc()
	hdr, txns, err := g.indexer.Block(ctx, round)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("indexer", "block").Inc()
		g.log.Warn("Failed to fetch block transactions", "round", round, "error", err)
		return nil, nil
	}
	return hdr, txns
}

// LookupTransaction queries the indexer by transaction ID. Returns nil when
// the indexer does not have the record or the call fails.
func (g *Gateway) LookupTransaction(ctx context.Context, txID string) *domain.Transaction {
	metrics.GatewayCalls.WithLabelValues("indexer", "transaction").Inc()
	tx, err := g.indexer.TransactionByID(ctx, txID)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("indexer", "transaction").Inc()
		g.log.Debug("Indexer transaction lookup failed", "tx_id", txID, "error", err)
		return nil
	}
	return tx
}

// TradeFallback queries the trade-history API for a transaction ID. Trade
// records carry no full transaction payload, so this never yields a
// transaction; it logs what it found and reports not-found rather than
// synthesizing a partial record.
func (g *Gateway) TradeFallback(ctx context.Context, txID string) *domain.Transaction {
	metrics.GatewayCalls.WithLabelValues("trades", "by_tx_id").Inc()
	found, err := g.trades.TradesByTxID(ctx, txID, 1)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("trades", "by_tx_id").Inc()
		g.log.Warn("Trade API fallback failed", "tx_id", txID, "error", err)
		return nil
	}
	if len(found) > 0 {
		g.log.Info("Transaction known to trade API only", "tx_id", txID, "pool", found[0].Pool)
	}
	return nil
}

// GetLatestBlocks fetches up to limit consecutive rounds ending at the
// chain's current round, in parallel. Rounds that fail to fetch are dropped;
// the result is ordered by descending round.
func (g *Gateway) GetLatestBlocks(ctx context.Context, limit int) []domain.BlockHeader {
	if limit <= 0 {
		limit = 20
	}

	metrics.GatewayCalls.WithLabelValues("algod", "status").Inc()
	current, err := g.algod.LastRound(ctx)
	if err != nil {
		metrics.GatewayErrors.WithLabelValues("algod", "status").Inc()
		g.log.Warn("Failed to fetch chain status", "error", err)
		return nil
	}

	start := uint64(1)
	if current > uint64(limit) {
		start = current - uint64(limit) + 1
	}

	results := make([]*domain.BlockHeader, current-start+1)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = g.GetBlock(ctx, start+uint64(i))
		}(i)
	}
	wg.Wait()

	blocks := make([]domain.BlockHeader, 0, len(results))
	for _, hdr := range results {
		if hdr != nil {
			blocks = append(blocks, *hdr)
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Round > blocks[j].Round })
	return blocks
}

// SearchByID interprets id as a round number first, then as a transaction ID.
// Returns nil when neither interpretation finds anything.
func (g *Gateway) SearchByID(ctx context.Context, id string) *domain.SearchResult {
	if round, err := strconv.ParseUint(id, 10, 64); err == nil {
		if hdr := g.GetBlock(ctx, round); hdr != nil {
			return &domain.SearchResult{Type: domain.SearchResultBlock, Block: hdr}
		}
	}

	if tx := g.LookupTransaction(ctx, id); tx != nil {
		return &domain.SearchResult{Type: domain.SearchResultTransaction, Transaction: tx}
	}
	if tx := g.TradeFallback(ctx, id); tx != nil {
		return &domain.SearchResult{Type: domain.SearchResultTransaction, Transaction: tx}
	}
	return nil
}
