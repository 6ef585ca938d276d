package assets

import (
	"testing"
	"time"

	"github.com/algoscan/scand/internal/core/domain"
)

func newFormatCache(t *testing.T, params map[uint64]*domain.AssetParams) *Cache {
	t.Helper()
	fetcher := newStubFetcher()
	c := newTestCache(fetcher, time.Millisecond)
	for id, p := range params {
		c.mu.Lock()
		c.mem[id] = p
		c.mu.Unlock()
	}
	return c
}

func TestNeedsToReverse(t *testing.T) {
	c := newFormatCache(t, nil)

	cases := []struct {
		assetA, assetB uint64
		want           bool
	}{
		{31566704, 123, true},    // USDC on the A side gets swapped
		{123, 31566704, false},   // already on the quote side
		{0, 123, true},           // ALGO quotes last
		{123, 456, false},        // no rule matches
		{2537013734, 123, true},  // unscoped rule fires for any partner
		{386192725, 386195940, true},
	}
	for _, tc := range cases {
		if got := c.NeedsToReverse(tc.assetA, tc.assetB); got != tc.want {
			t.Errorf("NeedsToReverse(%d, %d) = %v, want %v", tc.assetA, tc.assetB, got, tc.want)
		}
	}
}

func TestFormatAssetBalanceZero(t *testing.T) {
	// Zero renders before any lookup, even for an unknown asset.
	c := newFormatCache(t, nil)
	if got := c.FormatAssetBalance(0, 999999); got != "0" {
		t.Fatalf("FormatAssetBalance(0) = %q, want \"0\"", got)
	}
}

func TestFormatAssetBalanceUncached(t *testing.T) {
	c := newFormatCache(t, nil)
	if got := c.FormatAssetBalance(1000, 999999); got != "Loading..." {
		t.Fatalf("FormatAssetBalance(uncached) = %q, want \"Loading...\"", got)
	}
}

func TestFormatAssetBalance(t *testing.T) {
	c := newFormatCache(t, map[uint64]*domain.AssetParams{
		123: {Name: "Test Coin", UnitName: "TST", Decimals: 6},
		456: {Name: "NoUnit", Decimals: 0},
	})

	if got := c.FormatAssetBalance(1_500_000, 123); got != "1.5 TST" {
		t.Errorf("FormatAssetBalance = %q, want \"1.5 TST\"", got)
	}
	if got := c.FormatAssetBalance(2_000_000_000_000, 123); got != "2,000,000 TST" {
		t.Errorf("FormatAssetBalance = %q, want \"2,000,000 TST\"", got)
	}
	// Unit name falls back to the asset name.
	if got := c.FormatAssetBalance(7, 456); got != "7 NoUnit" {
		t.Errorf("FormatAssetBalance = %q, want \"7 NoUnit\"", got)
	}
	// Native unit is always available.
	if got := c.FormatAssetBalance(1_000_000, domain.AlgoAssetID); got != "1 ALGO" {
		t.Errorf("FormatAssetBalance = %q, want \"1 ALGO\"", got)
	}
}

func TestFormatPairBalanceSwapsQuoteSide(t *testing.T) {
	c := newFormatCache(t, map[uint64]*domain.AssetParams{
		31566704: {Name: "USDC", UnitName: "USDC", Decimals: 6},
		123:      {Name: "Test Coin", UnitName: "TST", Decimals: 6},
	})

	// USDC arrives on the A side; display swaps it to the B side.
	got := c.FormatPairBalance(2_000_000, 31566704, 1_000_000, 123)
	if got != "1 TST / 2 USDC" {
		t.Errorf("FormatPairBalance = %q, want \"1 TST / 2 USDC\"", got)
	}

	// Already in display order: unchanged.
	got = c.FormatPairBalance(1_000_000, 123, 2_000_000, 31566704)
	if got != "1 TST / 2 USDC" {
		t.Errorf("FormatPairBalance = %q, want \"1 TST / 2 USDC\"", got)
	}
}

func TestFormatNumberFractionDigits(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.5, "0.5"},
		{1234.5678, "1,234.568"}, // three fraction digits, rounded
		{1000000, "1,000,000"},
		{1.0001, "1"}, // below the three-digit resolution
	}
	for _, tc := range cases {
		if got := formatNumber(tc.in); got != tc.want {
			t.Errorf("formatNumber(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
