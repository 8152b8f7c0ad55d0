package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultHost is the public CLOB API.
const DefaultHost = "https://clob.polymarket.com"

const (
	DefaultInterval = "1d"
	DefaultFidelity = 60
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = DefaultHost
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		host:       strings.TrimRight(host, "/"),
		httpClient: httpClient,
	}
}

// PricePoint is one sample of a token's price history. T is unix seconds.
type PricePoint struct {
	T int64           `json:"t"`
	P decimal.Decimal `json:"p"`
}

type priceHistoryResponse struct {
	History []PricePoint `json:"history"`
}

// GetPriceHistory returns the price history of one outcome token.
// fidelity is the sample resolution in minutes.
func (c *Client) GetPriceHistory(ctx context.Context, tokenID, interval string, fidelity int) ([]PricePoint, error) {
	if tokenID == "" {
		return nil, fmt.Errorf("price history: token id is required")
	}
	if interval == "" {
		interval = DefaultInterval
	}
	if fidelity <= 0 {
		fidelity = DefaultFidelity
	}
	q := url.Values{}
	q.Set("market", tokenID)
	q.Set("interval", interval)
	q.Set("fidelity", strconv.Itoa(fidelity))

	body, err := c.doRequest(ctx, "/prices-history", q)
	if err != nil {
		return nil, err
	}
	var resp priceHistoryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode price history: %w", err)
	}
	return resp.History, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}
