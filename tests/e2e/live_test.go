package e2e

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/algoscan/scand/internal/core/config"
	"github.com/algoscan/scand/internal/gateway"
	"github.com/algoscan/scand/internal/infra/algod"
	"github.com/algoscan/scand/internal/infra/indexer"
	"github.com/algoscan/scand/internal/infra/trades"
	"github.com/algoscan/scand/internal/resolver"
)

// newLiveGateway builds a gateway against the public mainnet endpoints using
// the config defaults.
func newLiveGateway(t *testing.T) *gateway.Gateway {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "config_*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp config: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	cfg, err := config.Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	return gateway.New(
		algod.NewClient(cfg.Algod),
		indexer.NewClient(cfg.Indexer),
		trades.NewClient(cfg.Trades),
		nil,
	)
}

func TestLatestBlocks_Live(t *testing.T) {
	if os.Getenv("E2E_LIVE") == "" {
		t.Skip("Skipping live E2E test. Set E2E_LIVE=true to run.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gw := newLiveGateway(t)

	blocks := gw.GetLatestBlocks(ctx, 5)
	if len(blocks) == 0 {
		t.Fatal("No blocks returned from live node")
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i-1].Round <= blocks[i].Round {
			t.Fatalf("Blocks not in descending round order: %d then %d",
				blocks[i-1].Round, blocks[i].Round)
		}
	}
	t.Logf("SUCCESS: fetched %d live blocks, head round %d", len(blocks), blocks[0].Round)
}

func TestResolveRecentTransaction_Live(t *testing.T) {
	if os.Getenv("E2E_LIVE") == "" {
		t.Skip("Skipping live E2E test. Set E2E_LIVE=true to run.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gw := newLiveGateway(t)
	res := resolver.New(gw, nil)

	// Walk back from the head until a round with transactions shows up.
	blocks := gw.GetLatestBlocks(ctx, 10)
	if len(blocks) == 0 {
		t.Fatal("No blocks returned from live node")
	}

	for _, b := range blocks {
		txns := gw.GetBlockTransactions(ctx, b.Round)
		if len(txns) == 0 {
			continue
		}

		round := b.Round
		got := res.Resolve(ctx, txns[0].ID, &round)
		if got == nil {
			t.Fatalf("Failed to resolve transaction %s in round %d", txns[0].ID, round)
		}
		if got.ID != txns[0].ID {
			t.Fatalf("Resolved wrong transaction: got %s want %s", got.ID, txns[0].ID)
		}
		t.Logf("SUCCESS: resolved %s in round %d", got.ID, round)
		return
	}

	t.Skip("No transactions in the last 10 rounds")
}
