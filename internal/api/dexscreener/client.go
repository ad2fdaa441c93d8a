// Package dexscreener fetches market data from the DexScreener public API:
// per-token pair stats for snapshots and the latest token profiles feed for
// discovery.
package dexscreener

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "solsniper/internal/platform/http"
	"solsniper/models"
)

const defaultBaseURL = "https://api.dexscreener.com"

// Client is the DexScreener API client.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new DexScreener client.
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new DexScreener API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}

	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Name:            "dexscreener",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "dexscreener_client").Logger(),
	}
}

// Market is the per-token market state DexScreener reports for the most
// liquid pair.
type Market struct {
	Name         string
	Symbol       string
	PriceUSD     float64
	LiquidityUSD float64
	Volume24h    float64
	MarketCap    float64
}

// TokenProfile is one entry of the latest token profiles feed.
type TokenProfile struct {
	ChainID      string `json:"chainId"`
	TokenAddress string `json:"tokenAddress"`
	Description  string `json:"description"`
}

type pairsResponse struct {
	Pairs []pair `json:"pairs"`
}

type pair struct {
	ChainID   string `json:"chainId"`
	BaseToken struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	MarketCap float64 `json:"marketCap"`
	FDV       float64 `json:"fdv"`
}

// TokenMarket returns the market state of the token's most liquid Solana
// pair. It returns models.ErrTokenNotFound when DexScreener has no pair for
// the address.
func (c *Client) TokenMarket(ctx context.Context, address string) (*Market, error) {
	url := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, address)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data pairsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parsing pairs response: %w", err)
	}

	best := bestPair(data.Pairs, address)
	if best == nil {
		return nil, models.ErrTokenNotFound
	}

	price, err := strconv.ParseFloat(best.PriceUSD, 64)
	if err != nil && best.PriceUSD != "" {
		return nil, fmt.Errorf("parsing priceUsd %q: %w", best.PriceUSD, err)
	}

	marketCap := best.MarketCap
	if marketCap == 0 {
		marketCap = best.FDV
	}

	return &Market{
		Name:         best.BaseToken.Name,
		Symbol:       best.BaseToken.Symbol,
		PriceUSD:     price,
		LiquidityUSD: best.Liquidity.USD,
		Volume24h:    best.Volume.H24,
		MarketCap:    marketCap,
	}, nil
}

// bestPair picks the most liquid Solana pair whose base token is the
// requested address.
func bestPair(pairs []pair, address string) *pair {
	var best *pair
	for i := range pairs {
		p := &pairs[i]
		if p.ChainID != "solana" || p.BaseToken.Address != address {
			continue
		}
		if best == nil || p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return best
}

// LatestProfiles returns the newest token profiles across all chains. The
// caller filters for the chain it trades on.
func (c *Client) LatestProfiles(ctx context.Context) ([]TokenProfile, error) {
	url := fmt.Sprintf("%s/token-profiles/latest/v1", c.baseURL)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var profiles []TokenProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, fmt.Errorf("parsing profiles response: %w", err)
	}

	c.logger.Debug().Int("count", len(profiles)).Msg("fetched token profiles")
	return profiles, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
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
	return body, nil
}
