// Package auth issues ARC-14 authentication tokens for the realtime hub.
//
// An ARC-14 token is a signed zero-amount payment transaction whose note
// field carries the realm. The hub verifies the signature against the sender
// address, so a stable per-installation session identity is enough: the
// signing key is derived deterministically from a session ID persisted in the
// durable store.
package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/sha512"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/algoscan/scand/internal/core/domain"
	"github.com/algoscan/scand/internal/txid"
)

const sessionKey = "session"

// Config holds token parameters. The validity window and genesis values are
// fixed constants of the realm, not live chain state: the hub checks the
// signature, not the round.
type Config struct {
	Realm       string
	GenesisID   string
	GenesisHash string // base64
	FirstValid  uint64
	LastValid   uint64
	Fee         uint64
}

// DefaultConfig returns the mainnet BiatecScan realm parameters.
func DefaultConfig() Config {
	return Config{
		Realm:       "BiatecScan#ARC14",
		GenesisID:   "mainnet-v1.0",
		GenesisHash: "wGHE2Pwdvd7S12BL5FaOP20EGYesN73ktiC1qzkkit8=",
		FirstValid:  46915880,
		LastValid:   46916880,
		Fee:         1000,
	}
}

// Store persists the session identity.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Supplier mints ARC-14 tokens. Safe for concurrent use.
type Supplier struct {
	cfg   Config
	store Store
	log   *slog.Logger

	mu      sync.Mutex
	session string
	token   string
}

// NewSupplier creates a Supplier backed by the given session store.
func NewSupplier(cfg Config, store Store, log *slog.Logger) *Supplier {
	if log == nil {
		log = slog.Default()
	}
	return &Supplier{cfg: cfg, store: store, log: log}
}

// Token returns the ARC-14 authorization header value, minting and caching it
// on first use.
func (s *Supplier) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" {
		return s.token, nil
	}

	session, err := s.loadSession(ctx)
	if err != nil {
		return "", err
	}

	token, err := s.mint(session)
	if err != nil {
		return "", err
	}
	s.session = session
	s.token = token
	return token, nil
}

// Session returns the persisted session ID, creating one when absent.
func (s *Supplier) loadSession(ctx context.Context) (string, error) {
	if s.session != "" {
		return s.session, nil
	}

	session, ok, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	if ok && session != "" {
		return session, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate session: %w", err)
	}
	session = id.String()
	if err := s.store.Set(ctx, sessionKey, session); err != nil {
		return "", fmt.Errorf("persist session: %w", err)
	}
	s.log.Info("Created hub session", "session", session)
	return session, nil
}

// mint derives the session keypair, builds the realm transaction and signs it.
func (s *Supplier) mint(session string) (string, error) {
	seed := sha512.Sum512_256([]byte(session))
	key := ed25519.NewKeyFromSeed(seed[:])

	var pk [32]byte
	copy(pk[:], key.Public().(ed25519.PublicKey))
	addr := txid.EncodeAddress(pk)

	gh, err := base64.StdEncoding.DecodeString(s.cfg.GenesisHash)
	if err != nil {
		return "", fmt.Errorf("decode genesis hash: %w", err)
	}

	tx := &domain.Transaction{
		TxType:      domain.TxTypePay,
		Sender:      addr,
		Fee:         s.cfg.Fee,
		FirstValid:  s.cfg.FirstValid,
		LastValid:   s.cfg.LastValid,
		GenesisID:   s.cfg.GenesisID,
		GenesisHash: gh,
		Note:        []byte(s.cfg.Realm),
		Payment:     &domain.PaymentFields{Receiver: addr},
	}

	enc, err := txid.Encode(tx)
	if err != nil {
		return "", fmt.Errorf("encode auth transaction: %w", err)
	}
	sig := ed25519.Sign(key, append([]byte("TX"), enc...))

	signed, err := txid.EncodeSigned(tx, sig)
	if err != nil {
		return "", fmt.Errorf("encode signed transaction: %w", err)
	}
	return "SigTx " + base64.StdEncoding.EncodeToString(signed), nil
}
