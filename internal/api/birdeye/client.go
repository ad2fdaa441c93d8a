// Package birdeye fetches minute-candle price history for Solana tokens from
// the Birdeye public API.
package birdeye

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "solsniper/internal/platform/http"
	"solsniper/models"
)

const defaultBaseURL = "https://public-api.birdeye.so"

// interval between history points requested from the vendor.
const pointInterval = time.Minute

// Client is the Birdeye API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOptions holds options for creating a new Birdeye client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Birdeye API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Name:            "birdeye",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "birdeye_client").Logger(),
		now:    time.Now,
	}
}

type historyResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []historyItem `json:"items"`
	} `json:"data"`
}

type historyItem struct {
	UnixTime int64   `json:"unixTime"`
	Value    float64 `json:"value"`
}

// PriceHistory implements models.PriceHistoryProvider. It returns up to limit
// one-minute price points ordered oldest first, timestamps in Unix
// milliseconds.
func (c *Client) PriceHistory(ctx context.Context, address string, limit int) ([]models.PricePoint, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	to := c.now().UTC()
	from := to.Add(-time.Duration(limit) * pointInterval)

	params := url.Values{}
	params.Set("address", address)
	params.Set("address_type", "token")
	params.Set("type", "1m")
	params.Set("time_from", strconv.FormatInt(from.Unix(), 10))
	params.Set("time_to", strconv.FormatInt(to.Unix(), 10))

	reqURL := fmt.Sprintf("%s/defi/history_price?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("x-chain", "solana")
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var history historyResponse
	if err := json.Unmarshal(body, &history); err != nil {
		return nil, fmt.Errorf("parsing price history: %w", err)
	}
	if !history.Success {
		return nil, fmt.Errorf("birdeye reported failure for %s", address)
	}

	points := make([]models.PricePoint, 0, len(history.Data.Items))
	for _, item := range history.Data.Items {
		points = append(points, models.PricePoint{
			Timestamp: item.UnixTime * 1000,
			Price:     item.Value,
		})
	}
	if len(points) > limit {
		points = points[len(points)-limit:]
	}

	c.logger.Debug().
		Str("address", address).
		Int("points", len(points)).
		Msg("Fetched price history")

	return points, nil
}
