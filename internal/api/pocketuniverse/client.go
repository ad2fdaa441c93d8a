// Package pocketuniverse asks the Pocket Universe API whether a token's
// reported trading volume is real.
package pocketuniverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "solsniper/internal/platform/http"
)

const defaultBaseURL = "https://api.pocketuniverse.app"

// Client is the Pocket Universe API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Pocket Universe client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Pocket Universe API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  options.APIKey,
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Name:            "pocketuniverse",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "pocketuniverse_client").Logger(),
	}
}

type volumeRequest struct {
	Address string `json:"address"`
}

type volumeResponse struct {
	Address    string  `json:"address"`
	FakeVolume bool    `json:"fake_volume"`
	Confidence float64 `json:"confidence"`
}

// FakeVolume implements models.FakeVolumeClient.
func (c *Client) FakeVolume(ctx context.Context, address string) (bool, error) {
	payload, err := json.Marshal(volumeRequest{Address: address})
	if err != nil {
		return false, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/solana/volume-report", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return false, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("reading response body: %w", err)
	}

	var report volumeResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return false, fmt.Errorf("parsing volume report: %w", err)
	}

	c.logger.Debug().
		Str("address", address).
		Bool("fake_volume", report.FakeVolume).
		Float64("confidence", report.Confidence).
		Msg("Fetched volume report")

	return report.FakeVolume, nil
}
