// Package indexer is a thin REST client for the Algorand indexer API.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/algoscan/scand/internal/core/domain"
)

// ErrNotFound marks a lookup whose target the indexer does not have.
var ErrNotFound = errors.New("indexer: not found")

// Config holds indexer connection settings.
type Config struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to a single indexer instance.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an indexer REST client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("X-Indexer-API-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("indexer call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("indexer %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TransactionByID looks a transaction up by its ID. Only transactions the
// indexer stores directly are found here; inner transactions are not.
func (c *Client) TransactionByID(ctx context.Context, txID string) (*domain.Transaction, error) {
	var resp struct {
		Transaction  *domain.Transaction `json:"transaction"`
		CurrentRound uint64              `json:"current-round"`
	}
	if err := c.get(ctx, "/v2/transactions/"+txID, &resp); err != nil {
		return nil, err
	}
	if resp.Transaction == nil {
		return nil, ErrNotFound
	}
	return resp.Transaction, nil
}

// Block returns the header and the full top-level transaction list (with
// nested inner-transaction trees) of one round.
func (c *Client) Block(ctx context.Context, round uint64) (*domain.BlockHeader, []domain.Transaction, error) {
	var resp struct {
		Round        uint64               `json:"round"`
		GenesisID    string               `json:"genesis-id"`
		GenesisHash  []byte               `json:"genesis-hash"`
		Timestamp    int64                `json:"timestamp"`
		TxnCounter   uint64               `json:"txn-counter"`
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.get(ctx, fmt.Sprintf("/v2/blocks/%d", round), &resp); err != nil {
		return nil, nil, err
	}

	hdr := &domain.BlockHeader{
		Round:       resp.Round,
		GenesisID:   resp.GenesisID,
		GenesisHash: resp.GenesisHash,
		Timestamp:   resp.Timestamp,
		TxnCounter:  resp.TxnCounter,
	}
	if hdr.Round == 0 {
		hdr.Round = round
	}
	return hdr, resp.Transactions, nil
}
