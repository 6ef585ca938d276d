// Package resolver locates transactions by ID across the indexer, raw block
// data and the trade-history fallback, including transactions nested
// arbitrarily deep inside application-call inner transactions.
package resolver

import (
	"context"
	"log/slog"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/gateway"
	"github.com/algoscan/scand/internal/metrics"
	"github.com/algoscan/scand/internal/txid"
)

// Resolver resolves transaction IDs through the gateway.
type Resolver struct {
	gw  *gateway.Gateway
	log *slog.Logger
}

// New creates a resolver over the gateway.
func New(gw *gateway.Gateway, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{gw: gw, log: log}
}

// Resolve returns the transaction with the given ID, or nil when every source
// has been exhausted. Lookup order:
//
//  1. Indexer by ID; an indexer-resident record is already canonical and is
//     returned unchanged.
//  2. If a round is known, the round's block is searched depth-first,
//     recomputing each inner transaction's canonical ID after inheriting the
//     genesis parameters from the block header and the group from the
//     enclosing transaction.
//  3. Trade-history API, best-effort.
//
// A failure at any step falls through to the next; no error escapes.
func (r *Resolver) Resolve(ctx context.Context, id string, round *uint64) *domain.Transaction {
	if tx := r.gw.LookupTransaction(ctx, id); tx != nil {
		metrics.ResolverLookups.WithLabelValues("indexer", "found").Inc()
		return tx
	}
	metrics.ResolverLookups.WithLabelValues("indexer", "miss").Inc()

	if round != nil {
		r.log.Info("Transaction not in indexer, searching block", "tx_id", id, "round", *round)
		if tx := r.findInBlock(ctx, id, *round); tx != nil {
			metrics.ResolverLookups.WithLabelValues("block", "found").Inc()
			return tx
		}
		metrics.ResolverLookups.WithLabelValues("block", "miss").Inc()
	}

	if tx := r.gw.TradeFallback(ctx, id); tx != nil {
		metrics.ResolverLookups.WithLabelValues("trades", "found").Inc()
		return tx
	}
	metrics.ResolverLookups.WithLabelValues("trades", "miss").Inc()
	return nil
}

// findInBlock performs the depth-first search over a round's transaction
// trees. The first pre-order match wins.
func (r *Resolver) findInBlock(ctx context.Context, id string, round uint64) *domain.Transaction {
	hdr, txns := r.gw.GetBlockWithTransactions(ctx, round)
	if len(txns) == 0 {
		return nil
	}

	for i := range txns {
		if found := r.search(&txns[i], nil, hdr, id); found != nil {
			r.log.Info("Found transaction in block", "tx_id", id, "round", round)
			return found
		}
	}
	r.log.Info("Transaction not found in block", "tx_id", id, "round", round)
	return nil
}

// search compares tx's ID to the target and recurses into inner transactions.
// parent==nil marks a top-level transaction, whose ID is always canonical;
// for inner transactions the ID is recomputed after Reconstruct fills in the
// inherited fields.
func (r *Resolver) search(tx, parent *domain.Transaction, hdr *domain.BlockHeader, target string) *domain.Transaction {
	if parent != nil {
		Reconstruct(tx, parent, hdr)
		if computed, err := txid.Compute(tx); err != nil {
			// Keep the original (unreliable) ID as a last resort.
			r.log.Debug("Cannot recompute inner transaction ID", "tx_type", tx.TxType, "error", err)
		} else {
			tx.ID = computed
		}
	}

	if tx.ID == target {
		return tx
	}
	for i := range tx.InnerTxns {
		if found := r.search(&tx.InnerTxns[i], tx, hdr, target); found != nil {
			return found
		}
	}
	return nil
}

// Reconstruct fills an inner transaction's absent genesis and group fields:
// genesisHash/genesisID come from the block header, the group comes from the
// immediately enclosing transaction. Fields already present are never
// overwritten, so reconstructing a complete transaction is a no-op.
func Reconstruct(tx, parent *domain.Transaction, hdr *domain.BlockHeader) {
	if hdr != nil {
		if len(tx.GenesisHash) == 0 && len(hdr.GenesisHash) > 0 {
			tx.GenesisHash = hdr.GenesisHash
		}
		if tx.GenesisID == "" && hdr.GenesisID != "" {
			tx.GenesisID = hdr.GenesisID
		}
	}
	if parent != nil {
		if len(tx.Group) == 0 && len(parent.Group) > 0 {
			tx.Group = parent.Group
		}
		if len(tx.GenesisHash) == 0 && len(parent.GenesisHash) > 0 {
			tx.GenesisHash = parent.GenesisHash
		}
		if tx.GenesisID == "" && parent.GenesisID != "" {
			tx.GenesisID = parent.GenesisID
		}
	}
}
