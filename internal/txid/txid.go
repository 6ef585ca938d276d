// Package txid recomputes canonical Algorand transaction IDs.
//
// The ID of a transaction is the SHA-512/256 digest of the canonically
// msgpack-encoded transaction fields prefixed with "TX", rendered as unpadded
// base32. Canonical encoding means map keys sorted lexicographically and every
// zero-valued field omitted. The indexer fills this in for transactions it
// stores; for inner transactions dug out of raw blocks the ID has to be
// recomputed here once the inherited genesis/group fields are known.
package txid

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/algoscan/scand/internal/core/domain"
)

const idPrefix = "TX"

// ErrUnsupportedType marks a transaction whose field set does not map onto a
// constructible canonical form. Callers keep the original (unreliable) ID.
var ErrUnsupportedType = errors.New("txid: unsupported transaction type")

// Compute returns the canonical transaction ID for tx. The genesis and group
// fields must already be filled in: they are part of the signed digest, so an
// ID computed before inheritance resolves is wrong.
func Compute(tx *domain.Transaction) (string, error) {
	enc, err := Encode(tx)
	if err != nil {
		return "", err
	}

	payload := make([]byte, 0, len(idPrefix)+len(enc))
	payload = append(payload, idPrefix...)
	payload = append(payload, enc...)

	digest := sha512.Sum512_256(payload)
	return base32NoPad.EncodeToString(digest[:]), nil
}

// Encode returns the canonical msgpack encoding of the transaction fields
// (without the "TX" domain-separation prefix).
func Encode(tx *domain.Transaction) ([]byte, error) {
	fields, err := canonicalFields(tx)
	if err != nil {
		return nil, err
	}
	return encodeCanonical(fields)
}

// EncodeSigned returns the canonical msgpack encoding of {sig, txn}, the wire
// form of a signed transaction. Used for ARC-14 auth token construction.
func EncodeSigned(tx *domain.Transaction, sig []byte) ([]byte, error) {
	fields, err := canonicalFields(tx)
	if err != nil {
		return nil, err
	}
	return encodeCanonical(map[string]any{
		"sig": sig,
		"txn": fields,
	})
}

func encodeCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("txid: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// canonicalFields maps the indexer-shaped record onto the short-key field map
// the network signs. Zero-valued fields are left out entirely.
func canonicalFields(tx *domain.Transaction) (map[string]any, error) {
	m := map[string]any{}

	switch tx.TxType {
	case domain.TxTypePay:
		if tx.Payment == nil {
			return nil, fmt.Errorf("%w: pay without payment fields", ErrUnsupportedType)
		}
		if err := putAddr(m, "rcv", tx.Payment.Receiver); err != nil {
			return nil, err
		}
		putUint(m, "amt", tx.Payment.Amount)
		if err := putAddr(m, "close", tx.Payment.CloseRemainderTo); err != nil {
			return nil, err
		}

	case domain.TxTypeAssetXfer:
		if tx.AssetTransfer == nil {
			return nil, fmt.Errorf("%w: axfer without asset-transfer fields", ErrUnsupportedType)
		}
		putUint(m, "xaid", tx.AssetTransfer.AssetID)
		putUint(m, "aamt", tx.AssetTransfer.Amount)
		if err := putAddr(m, "arcv", tx.AssetTransfer.Receiver); err != nil {
			return nil, err
		}
		if err := putAddr(m, "asnd", tx.AssetTransfer.Sender); err != nil {
			return nil, err
		}
		if err := putAddr(m, "aclose", tx.AssetTransfer.CloseTo); err != nil {
			return nil, err
		}

	case domain.TxTypeAppCall:
		if tx.AppCall == nil {
			return nil, fmt.Errorf("%w: appl without application fields", ErrUnsupportedType)
		}
		if err := putAppCall(m, tx.AppCall); err != nil {
			return nil, err
		}

	case domain.TxTypeAssetCfg:
		if tx.AssetConfig == nil {
			return nil, fmt.Errorf("%w: acfg without asset-config fields", ErrUnsupportedType)
		}
		putUint(m, "caid", tx.AssetConfig.AssetID)
		if tx.AssetConfig.Params != nil {
			apar, err := assetParamsFields(tx.AssetConfig.Params)
			if err != nil {
				return nil, err
			}
			if len(apar) > 0 {
				m["apar"] = apar
			}
		}

	case domain.TxTypeAssetFrz:
		if tx.AssetFreeze == nil {
			return nil, fmt.Errorf("%w: afrz without asset-freeze fields", ErrUnsupportedType)
		}
		if err := putAddr(m, "fadd", tx.AssetFreeze.Address); err != nil {
			return nil, err
		}
		putUint(m, "faid", tx.AssetFreeze.AssetID)
		if tx.AssetFreeze.NewFreezeStatus {
			m["afrz"] = true
		}

	case domain.TxTypeKeyReg:
		if tx.KeyReg == nil {
			return nil, fmt.Errorf("%w: keyreg without keyreg fields", ErrUnsupportedType)
		}
		putBytes(m, "votekey", tx.KeyReg.VoteParticipationKey)
		putBytes(m, "selkey", tx.KeyReg.SelectionParticipationKey)
		putBytes(m, "sprfkey", tx.KeyReg.StateProofKey)
		putUint(m, "votefst", tx.KeyReg.VoteFirstValid)
		putUint(m, "votelst", tx.KeyReg.VoteLastValid)
		putUint(m, "votekd", tx.KeyReg.VoteKeyDilution)
		if tx.KeyReg.NonParticipation {
			m["nonpart"] = true
		}

	default:
		// stpf and anything newer than this code.
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, tx.TxType)
	}

	m["type"] = string(tx.TxType)
	if err := putAddr(m, "snd", tx.Sender); err != nil {
		return nil, err
	}
	putUint(m, "fee", tx.Fee)
	putUint(m, "fv", tx.FirstValid)
	putUint(m, "lv", tx.LastValid)
	if tx.GenesisID != "" {
		m["gen"] = tx.GenesisID
	}
	putBytes(m, "gh", tx.GenesisHash)
	putBytes(m, "grp", tx.Group)
	putBytes(m, "note", tx.Note)
	putBytes(m, "lx", tx.Lease)
	if err := putAddr(m, "rekey", tx.RekeyTo); err != nil {
		return nil, err
	}

	return m, nil
}

func putAppCall(m map[string]any, app *domain.AppCallFields) error {
	putUint(m, "apid", app.ApplicationID)

	oc, err := onCompletionValue(app.OnCompletion)
	if err != nil {
		return err
	}
	putUint(m, "apan", oc)

	if len(app.ApplicationArgs) > 0 {
		m["apaa"] = app.ApplicationArgs
	}
	if len(app.Accounts) > 0 {
		addrs := make([][]byte, 0, len(app.Accounts))
		for _, a := range app.Accounts {
			pk, err := DecodeAddress(a)
			if err != nil {
				return fmt.Errorf("txid: account %q: %w", a, err)
			}
			addrs = append(addrs, pk[:])
		}
		m["apat"] = addrs
	}
	if len(app.ForeignApps) > 0 {
		m["apfa"] = app.ForeignApps
	}
	if len(app.ForeignAssets) > 0 {
		m["apas"] = app.ForeignAssets
	}
	putBytes(m, "apap", app.ApprovalProgram)
	putBytes(m, "apsu", app.ClearStateProgram)
	if s := app.GlobalStateSchema; s != nil && (s.NumUint > 0 || s.NumByteSlice > 0) {
		m["apgs"] = schemaFields(s)
	}
	if s := app.LocalStateSchema; s != nil && (s.NumUint > 0 || s.NumByteSlice > 0) {
		m["apls"] = schemaFields(s)
	}
	putUint(m, "apep", app.ExtraProgramPages)
	return nil
}

func schemaFields(s *domain.StateSchema) map[string]any {
	m := map[string]any{}
	putUint(m, "nui", s.NumUint)
	putUint(m, "nbs", s.NumByteSlice)
	return m
}

func assetParamsFields(p *domain.AssetConfigParams) (map[string]any, error) {
	m := map[string]any{}
	putUint(m, "t", p.Total)
	putUint(m, "dc", uint64(p.Decimals))
	if p.DefaultFrozen {
		m["df"] = true
	}
	if p.UnitName != "" {
		m["un"] = p.UnitName
	}
	if p.Name != "" {
		m["an"] = p.Name
	}
	if p.URL != "" {
		m["au"] = p.URL
	}
	putBytes(m, "am", p.MetadataHash)
	for key, addr := range map[string]string{
		"m": p.Manager, "r": p.Reserve, "f": p.Freeze, "c": p.Clawback,
	} {
		if err := putAddr(m, key, addr); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// onCompletionValue maps the indexer's on-completion strings onto the
// protocol's numeric enum.
func onCompletionValue(oc string) (uint64, error) {
	switch oc {
	case "", "noop":
		return 0, nil
	case "optin":
		return 1, nil
	case "closeout":
		return 2, nil
	case "clear", "clearstate":
		return 3, nil
	case "update":
		return 4, nil
	case "delete":
		return 5, nil
	}
	return 0, fmt.Errorf("%w: on-completion %q", ErrUnsupportedType, oc)
}

func putUint(m map[string]any, key string, v uint64) {
	if v != 0 {
		m[key] = v
	}
}

func putBytes(m map[string]any, key string, v []byte) {
	if len(v) > 0 {
		m[key] = v
	}
}

func putAddr(m map[string]any, key, addr string) error {
	if isZeroAddress(addr) {
		return nil
	}
	pk, err := DecodeAddress(addr)
	if err != nil {
		return fmt.Errorf("txid: %s address %q: %w", key, addr, err)
	}
	m[key] = pk[:]
	return nil
}
