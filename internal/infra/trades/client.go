// Package trades is a REST client for the trade-history API, used as the
// last-resort transaction lookup source.
package trades

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/algoscan/scand/internal/core/domain"
)

// Config holds trade API connection settings.
type Config struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Client talks to the trade-history REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a trade API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
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

// TradesByTxID queries trades recorded for a transaction ID. The result is
// best-effort: trade records, not full transaction records.
func (c *Client) TradesByTxID(ctx context.Context, txID string, size int) ([]domain.Trade, error) {
	q := url.Values{}
	q.Set("txId", txID)
	q.Set("size", strconv.Itoa(size))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/trade?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trade api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("trade api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out []domain.Trade
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
