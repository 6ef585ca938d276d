// Package algod is a thin REST client for the Algorand full-node API.
package algod

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/algoscan/scand/internal/core/domain"
)

// Config holds algod connection settings.
type Config struct {
	URL     string        `yaml:"url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to a single algod node.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates an algod REST client.
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
		req.Header.Set("X-Algo-API-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("algod call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("algod %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// LastRound returns the chain's current round from /v2/status.
func (c *Client) LastRound(ctx context.Context) (uint64, error) {
	var status struct {
		LastRound uint64 `json:"last-round"`
	}
	if err := c.get(ctx, "/v2/status", &status); err != nil {
		return 0, err
	}
	return status.LastRound, nil
}

// rawBlock mirrors the short-key JSON form algod returns for blocks.
type rawBlock struct {
	Block struct {
		Round       uint64 `json:"rnd"`
		GenesisID   string `json:"gen"`
		GenesisHash string `json:"gh"`
		Previous    string `json:"prev"`
		Seed        string `json:"seed"`
		Timestamp   int64  `json:"ts"`
		TxnCounter  uint64 `json:"tc"`
	} `json:"block"`
}

// BlockHeader fetches the header of a single round.
func (c *Client) BlockHeader(ctx context.Context, round uint64) (*domain.BlockHeader, error) {
	var raw rawBlock
	if err := c.get(ctx, fmt.Sprintf("/v2/blocks/%d?format=json", round), &raw); err != nil {
		return nil, err
	}

	hdr := &domain.BlockHeader{
		Round:      raw.Block.Round,
		GenesisID:  raw.Block.GenesisID,
		Timestamp:  raw.Block.Timestamp,
		TxnCounter: raw.Block.TxnCounter,
	}
	if hdr.Round == 0 {
		hdr.Round = round
	}
	// Byte fields arrive base64-encoded; a decode failure leaves them empty
	// rather than failing the whole header.
	hdr.GenesisHash = decodeB64(raw.Block.GenesisHash)
	hdr.PreviousBlockHash = decodeB64(raw.Block.Previous)
	hdr.Seed = decodeB64(raw.Block.Seed)
	return hdr, nil
}

// AssetParams fetches the metadata of one asset from /v2/assets/{id}.
func (c *Client) AssetParams(ctx context.Context, assetID uint64) (*domain.AssetParams, error) {
	var asset struct {
		Index  uint64 `json:"index"`
		Params struct {
			Name     string `json:"name"`
			UnitName string `json:"unit-name"`
			Total    uint64 `json:"total"`
			Decimals uint32 `json:"decimals"`
		} `json:"params"`
	}
	if err := c.get(ctx, fmt.Sprintf("/v2/assets/%d", assetID), &asset); err != nil {
		return nil, err
	}
	return &domain.AssetParams{
		Name:     asset.Params.Name,
		UnitName: asset.Params.UnitName,
		Total:    asset.Params.Total,
		Decimals: asset.Params.Decimals,
	}, nil
}

func decodeB64(s string) []byte {
	if s == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
