package assets

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/algoscan/scand/internal/core/domain"
)

// QuoteRule marks an asset that belongs on the quote side of a displayed
// pair. OnlyWith, when non-zero, restricts the rule to pairs whose other
// asset matches.
type QuoteRule struct {
	AssetID  uint64 `yaml:"asset_id"`
	OnlyWith uint64 `yaml:"only_with,omitempty"`
}

// DefaultQuotePriority is the stock display convention: known stablecoins and
// wrapped majors quote last, the native unit after them. The duplicated
// 2537013734 entry reproduces the upstream convention as-is — the second,
// 1185173782-scoped branch is shadowed by the first and kept faithfully
// pending clarification (see DESIGN.md).
func DefaultQuotePriority() []QuoteRule {
	return []QuoteRule{
		{AssetID: 31566704},  // USDC
		{AssetID: 312769},    // USDt
		{AssetID: 760037151}, // xUSD
		{AssetID: 2537013734},
		{AssetID: 2537013734, OnlyWith: 1185173782},
		{AssetID: 386192725}, // goBTC
		{AssetID: 386195940}, // goETH
		{AssetID: domain.AlgoAssetID},
	}
}

// NeedsToReverse reports whether a pair should be displayed with its sides
// swapped so the higher-priority quote asset ends up on the B side. Pairs
// matching no rule keep their order.
func (c *Cache) NeedsToReverse(assetA, assetB uint64) bool {
	for _, rule := range c.rules {
		if assetA != rule.AssetID {
			continue
		}
		if rule.OnlyWith != 0 && assetB != rule.OnlyWith {
			continue
		}
		return true
	}
	return false
}

// FormatAssetBalance renders a base-unit balance in the asset's display
// units. A zero balance short-circuits to "0" before any cache lookup; an
// uncached asset renders as "Loading..." so callers can re-render once their
// RequestAsset callback fires.
func (c *Cache) FormatAssetBalance(balance uint64, assetID uint64) string {
	if balance == 0 {
		return "0"
	}

	info := c.GetAssetInfo(assetID)
	if info == nil {
		return "Loading..."
	}

	value := float64(balance) / math.Pow10(int(info.Decimals))
	unit := info.UnitName
	if unit == "" {
		unit = info.Name
	}
	if unit == "" {
		unit = fmt.Sprintf("Asset %d", assetID)
	}
	return formatNumber(value) + " " + unit
}

// FormatPairBalance renders both sides of a pair, swapping them when the
// quote-priority convention calls for it.
func (c *Cache) FormatPairBalance(amountA uint64, assetA uint64, amountB uint64, assetB uint64) string {
	if c.NeedsToReverse(assetA, assetB) {
		amountA, amountB = amountB, amountA
		assetA, assetB = assetB, assetA
	}
	return c.FormatAssetBalance(amountA, assetA) + " / " + c.FormatAssetBalance(amountB, assetB)
}

// formatNumber renders a value with thousand separators and up to three
// fraction digits, trailing zeros trimmed.
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	whole, frac, _ := strings.Cut(s, ".")

	neg := strings.HasPrefix(whole, "-")
	whole = strings.TrimPrefix(whole, "-")

	out := groupThousands(whole)
	frac = strings.TrimRight(frac, "0")
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
