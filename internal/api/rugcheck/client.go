// Package rugcheck maps RugCheck report summaries onto the three-valued
// reputation status the vetting pipeline understands.
package rugcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "solsniper/internal/platform/http"
	"solsniper/models"
)

const defaultBaseURL = "https://api.rugcheck.xyz"

// Normalized score bounds. RugCheck scores risk, so higher is worse.
const (
	goodScoreMax = 30
	badScoreMin  = 60
)

// Client is the RugCheck API client.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new RugCheck client.
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new RugCheck API client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}

	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Name:            "rugcheck",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "rugcheck_client").Logger(),
	}
}

type reportSummary struct {
	ScoreNormalised int `json:"score_normalised"`
	Risks           []struct {
		Name  string `json:"name"`
		Level string `json:"level"`
	} `json:"risks"`
}

// ReputationStatus implements models.ReputationClient. A mint RugCheck has
// never indexed is Unknown, not an error; only transport trouble surfaces as
// an error so the gate can apply its safe default.
func (c *Client) ReputationStatus(ctx context.Context, address string) (models.ReputationStatus, error) {
	url := fmt.Sprintf("%s/v1/tokens/%s/report/summary", c.baseURL, address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.ReputationUnknown, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		var statusErr *httpclient.HTTPStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return models.ReputationUnknown, nil
		}
		return models.ReputationUnknown, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.ReputationUnknown, fmt.Errorf("reading response body: %w", err)
	}

	var summary reportSummary
	if err := json.Unmarshal(body, &summary); err != nil {
		return models.ReputationUnknown, fmt.Errorf("parsing report summary: %w", err)
	}

	return mapSummary(summary), nil
}

// mapSummary folds the vendor's risk report into Good, Bad or Unknown. Any
// danger-level risk is disqualifying regardless of the overall score.
func mapSummary(summary reportSummary) models.ReputationStatus {
	for _, risk := range summary.Risks {
		if risk.Level == "danger" {
			return models.ReputationBad
		}
	}
	if summary.ScoreNormalised >= badScoreMin {
		return models.ReputationBad
	}
	if summary.ScoreNormalised <= goodScoreMax {
		return models.ReputationGood
	}
	return models.ReputationUnknown
}
