// Package helius talks to a Helius Solana RPC endpoint for the ownership
// half of a token snapshot: largest holders, total supply and the token
// creator.
package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "solsniper/internal/platform/http"
	"solsniper/models"
)

const defaultBaseURL = "https://mainnet.helius-rpc.com"

// Client is a JSON-RPC 2.0 client for Helius.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *httpclient.Client
	logger     zerolog.Logger
	requestID  atomic.Uint64
}

// ClientOptions holds options for creating a new Helius client.
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Helius RPC client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}

	return &Client{
		baseURL: options.BaseURL,
		apiKey:  options.APIKey,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Name:            "helius",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "helius_client").Logger(),
	}
}

// rpcRequest represents a JSON-RPC 2.0 request. Params is a positional list
// for the standard RPC methods and an object for the DAS methods.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      uint64      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response.
type rpcResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// rpcError represents a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// call performs one JSON-RPC call and decodes its result.
func (c *Client) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	reqBody := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL
	if c.apiKey != "" {
		url = fmt.Sprintf("%s/?api-key=%s", c.baseURL, c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("parsing RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcResp.Result, result); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

type largestAccountsResult struct {
	Value []struct {
		Address  string  `json:"address"`
		UIAmount float64 `json:"uiAmount"`
	} `json:"value"`
}

// LargestHolders returns the token's largest holders in the order the RPC
// reports them (descending balance).
func (c *Client) LargestHolders(ctx context.Context, mint string) ([]models.Holder, error) {
	var result largestAccountsResult
	if err := c.call(ctx, "getTokenLargestAccounts", []interface{}{mint}, &result); err != nil {
		return nil, err
	}

	holders := make([]models.Holder, 0, len(result.Value))
	for _, v := range result.Value {
		holders = append(holders, models.Holder{
			Address: v.Address,
			Balance: v.UIAmount,
		})
	}
	return holders, nil
}

type supplyResult struct {
	Value struct {
		UIAmount float64 `json:"uiAmount"`
	} `json:"value"`
}

// TokenSupply returns the token's total supply in UI units.
func (c *Client) TokenSupply(ctx context.Context, mint string) (float64, error) {
	var result supplyResult
	if err := c.call(ctx, "getTokenSupply", []interface{}{mint}, &result); err != nil {
		return 0, err
	}
	return result.Value.UIAmount, nil
}

type assetResult struct {
	Authorities []struct {
		Address string `json:"address"`
	} `json:"authorities"`
	Creators []struct {
		Address  string `json:"address"`
		Verified bool   `json:"verified"`
	} `json:"creators"`
}

// TokenCreator returns the token's creator wallet: the first verified
// creator when the asset lists one, otherwise the update authority. A token
// without either yields an empty string, not an error.
func (c *Client) TokenCreator(ctx context.Context, mint string) (string, error) {
	var result assetResult
	if err := c.call(ctx, "getAsset", map[string]interface{}{"id": mint}, &result); err != nil {
		return "", err
	}

	for _, creator := range result.Creators {
		if creator.Verified {
			return creator.Address, nil
		}
	}
	if len(result.Creators) > 0 {
		return result.Creators[0].Address, nil
	}
	if len(result.Authorities) > 0 {
		return result.Authorities[0].Address, nil
	}
	return "", nil
}
