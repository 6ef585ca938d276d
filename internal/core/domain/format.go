package domain

import (
	"strconv"
	"strings"
)

// FormatAlgoAmount renders a microalgo amount in whole algos with thousand
// separators, at least 2 and at most 6 fraction digits.
func FormatAlgoAmount(microAlgos uint64) string {
	whole := microAlgos / 1_000_000
	frac := microAlgos % 1_000_000

	fracStr := strings.TrimRight(padLeft(strconv.FormatUint(frac, 10), 6), "0")
	for len(fracStr) < 2 {
		fracStr += "0"
	}
	return groupThousands(strconv.FormatUint(whole, 10)) + "." + fracStr
}

// FormatAddress shortens an address for display: first 4 and last 4 runes.
func FormatAddress(address string) string {
	if address == "" {
		return ""
	}
	if len(address) <= 8 {
		return address
	}
	return address[:4] + "..." + address[len(address)-4:]
}

// FormatTransactionID shortens a transaction ID for display.
func FormatTransactionID(txID string) string {
	if txID == "" {
		return ""
	}
	if len(txID) <= 24 {
		return txID
	}
	return txID[:12] + "..." + txID[len(txID)-12:]
}

// TypeLabel returns the human-readable name of a transaction type.
func TypeLabel(t TxType) string {
	switch t {
	case TxTypePay:
		return "Payment Transaction"
	case TxTypeAssetXfer:
		return "Asset Transfer"
	case TxTypeAppCall:
		return "Application Call"
	case TxTypeAssetCfg:
		return "Asset Configuration"
	case TxTypeAssetFrz:
		return "Asset Freeze"
	case TxTypeKeyReg:
		return "Key Registration"
	case TxTypeStateProof:
		return "State Proof"
	}
	if t == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(string(t))
}

func padLeft(s string, width int) string {
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// groupThousands inserts commas into a decimal digit string.
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
