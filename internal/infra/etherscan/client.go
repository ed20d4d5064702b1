// Package etherscan fetches account transaction lists from an
// Etherscan-compatible explorer API.
package etherscan

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

	"github.com/vietddude/dormancy-watcher/internal/core/domain"
)

const (
	DefaultURL     = "https://api.etherscan.io/v2/api"
	DefaultTimeout = 10 * time.Second

	// Etherscan answers status "0" with this message when an address has no transactions.
	noTransactionsMessage = "No transactions found"
)

// Config holds explorer API settings.
type Config struct {
	URL      string        `yaml:"url"`
	APIKey   string        `yaml:"api_key"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"` // 0 = let the service decide
}

// Client implements history.Fetcher against the txlist endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	chainID    domain.ChainID
	pageSize   int
	httpClient *http.Client
}

// NewClient creates a client bound to one chain.
func NewClient(cfg Config, chainID domain.ChainID) *Client {
	endpoint := cfg.URL
	if endpoint == "" {
		endpoint = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		chainID:  chainID,
		pageSize: cfg.PageSize,
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

type txListResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type txListItem struct {
	Hash        string `json:"hash"`
	BlockNumber string `json:"blockNumber"`
	TimeStamp   string `json:"timeStamp"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
}

// FetchHistory lists the address's transactions, most recent first.
func (c *Client) FetchHistory(ctx context.Context, address string) ([]domain.HistoryRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(address), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("txlist call: %w", err)
	}
	defer resp.Body.Close()

	// Rate limit detection
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("rate limited (429), retry after: %s", resp.Header.Get("Retry-After"))
	}

	// IP blocked detection
	if resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("ip blocked (403)")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}

	var parsed txListResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if parsed.Status != "1" {
		if strings.EqualFold(parsed.Message, noTransactionsMessage) {
			return []domain.HistoryRecord{}, nil
		}
		var reason string
		if err := json.Unmarshal(parsed.Result, &reason); err != nil || reason == "" {
			reason = parsed.Message
		}
		return nil, fmt.Errorf("etherscan: %s", reason)
	}

	var items []txListItem
	if err := json.Unmarshal(parsed.Result, &items); err != nil {
		return nil, fmt.Errorf("parse txlist result: %w", err)
	}

	records := make([]domain.HistoryRecord, 0, len(items))
	for i, item := range items {
		record, err := item.toRecord()
		if err != nil {
			return nil, fmt.Errorf("txlist item %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) requestURL(address string) string {
	q := url.Values{}
	if c.chainID != "" {
		q.Set("chainid", string(c.chainID))
	}
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "desc")
	if c.pageSize > 0 {
		q.Set("page", "1")
		q.Set("offset", strconv.Itoa(c.pageSize))
	}
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}

	sep := "?"
	if strings.Contains(c.endpoint, "?") {
		sep = "&"
	}
	return c.endpoint + sep + q.Encode()
}

func (i txListItem) toRecord() (domain.HistoryRecord, error) {
	ts, err := strconv.ParseUint(i.TimeStamp, 10, 64)
	if err != nil {
		return domain.HistoryRecord{}, fmt.Errorf("invalid timeStamp %q: %w", i.TimeStamp, err)
	}
	// blockNumber is informational; a malformed one is kept as zero.
	block, _ := strconv.ParseUint(i.BlockNumber, 10, 64)

	return domain.HistoryRecord{
		Hash:        i.Hash,
		BlockNumber: block,
		Timestamp:   ts,
		From:        strings.ToLower(i.From),
		To:          strings.ToLower(i.To),
		Value:       i.Value,
	}, nil
}
