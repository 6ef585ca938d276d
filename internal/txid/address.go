package txid

import (
	"bytes"
	"crypto/sha512"
	"encoding/base32"
	"errors"
	"fmt"
)

var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

const (
	pubKeyLen   = 32
	checksumLen = 4
)

// DecodeAddress converts a 58-character Algorand address into its 32-byte
// public key, verifying the 4-byte SHA-512/256 checksum suffix.
func DecodeAddress(addr string) ([pubKeyLen]byte, error) {
	var pk [pubKeyLen]byte

	raw, err := base32NoPad.DecodeString(addr)
	if err != nil {
		return pk, fmt.Errorf("decode address: %w", err)
	}
	if len(raw) != pubKeyLen+checksumLen {
		return pk, errors.New("address has wrong length")
	}

	copy(pk[:], raw[:pubKeyLen])
	sum := sha512.Sum512_256(pk[:])
	if !bytes.Equal(sum[len(sum)-checksumLen:], raw[pubKeyLen:]) {
		return pk, errors.New("address checksum mismatch")
	}
	return pk, nil
}

// EncodeAddress converts a 32-byte public key into the checksummed base32
// address form.
func EncodeAddress(pk [pubKeyLen]byte) string {
	sum := sha512.Sum512_256(pk[:])

	raw := make([]byte, 0, pubKeyLen+checksumLen)
	raw = append(raw, pk[:]...)
	raw = append(raw, sum[len(sum)-checksumLen:]...)
	return base32NoPad.EncodeToString(raw)
}

// isZeroAddress reports whether addr is empty or the all-zero public key.
func isZeroAddress(addr string) bool {
	if addr == "" {
		return true
	}
	pk, err := DecodeAddress(addr)
	if err != nil {
		return false
	}
	return pk == [pubKeyLen]byte{}
}
