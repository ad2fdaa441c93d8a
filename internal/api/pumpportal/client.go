// Package pumpportal places buy and sell orders through the PumpPortal
// lightning trade API.
package pumpportal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "solsniper/internal/platform/http"
	"solsniper/models"
)

const defaultBaseURL = "https://pumpportal.fun"

// Default order parameters, overridable through ClientOptions.
const (
	defaultAmountSol   = 0.01
	defaultSlippagePct = 10.0
	defaultPriorityFee = 0.00005
	defaultPool        = "auto"
)

// Client is the PumpPortal trade API client.
type Client struct {
	apiKey      string
	baseURL     string
	amountSol   float64
	slippagePct float64
	priorityFee float64
	pool        string
	httpClient  *httpclient.Client
	logger      zerolog.Logger
}

// ClientOptions holds options for creating a new PumpPortal client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	AmountSol       float64
	SlippagePct     float64
	PriorityFee     float64
	Pool            string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new PumpPortal API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}
	if options.AmountSol <= 0 {
		options.AmountSol = defaultAmountSol
	}
	if options.SlippagePct <= 0 {
		options.SlippagePct = defaultSlippagePct
	}
	if options.PriorityFee <= 0 {
		options.PriorityFee = defaultPriorityFee
	}
	if options.Pool == "" {
		options.Pool = defaultPool
	}

	return &Client{
		apiKey:      options.APIKey,
		baseURL:     options.BaseURL,
		amountSol:   options.AmountSol,
		slippagePct: options.SlippagePct,
		priorityFee: options.PriorityFee,
		pool:        options.Pool,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Name:            "pumpportal",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "pumpportal_client").Logger(),
	}
}

type tradeRequest struct {
	Action           string  `json:"action"`
	Mint             string  `json:"mint"`
	Amount           float64 `json:"amount"`
	DenominatedInSol string  `json:"denominatedInSol"`
	Slippage         float64 `json:"slippage"`
	PriorityFee      float64 `json:"priorityFee"`
	Pool             string  `json:"pool"`
}

type tradeResponse struct {
	Signature string   `json:"signature"`
	Errors    []string `json:"errors"`
}

// ExecuteTrade implements models.TradeExecutor. A response the vendor itself
// marks as failed comes back as an unsuccessful TradeResult with a nil error;
// only transport trouble is returned as an error.
func (c *Client) ExecuteTrade(ctx context.Context, address string, action models.TradeAction) (*models.TradeResult, error) {
	if action != models.ActionBuy && action != models.ActionSell {
		return nil, fmt.Errorf("unsupported trade action %q", action)
	}

	payload, err := json.Marshal(tradeRequest{
		Action:           string(action),
		Mint:             address,
		Amount:           c.amountSol,
		DenominatedInSol: "true",
		Slippage:         c.slippagePct,
		PriorityFee:      c.priorityFee,
		Pool:             c.pool,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling trade request: %w", err)
	}

	url := fmt.Sprintf("%s/api/trade?api-key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var trade tradeResponse
	if err := json.Unmarshal(body, &trade); err != nil {
		return nil, fmt.Errorf("parsing trade response: %w", err)
	}

	if len(trade.Errors) > 0 {
		reason := strings.Join(trade.Errors, "; ")
		c.logger.Warn().
			Str("address", address).
			Str("action", string(action)).
			Str("reason", reason).
			Msg("Trade rejected by vendor")
		return &models.TradeResult{Success: false, Reason: reason}, nil
	}
	if trade.Signature == "" {
		return &models.TradeResult{Success: false, Reason: "no signature in response"}, nil
	}

	c.logger.Info().
		Str("address", address).
		Str("action", string(action)).
		Str("signature", trade.Signature).
		Msg("Trade submitted")

	return &models.TradeResult{Success: true, Signature: trade.Signature}, nil
}
