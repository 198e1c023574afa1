// Package marketfeed provides a client for the market data provider API
package marketfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://api.marketfeed.io/v1"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 2 // requests per second
)

// Client implements the MarketDataClient interface over HTTP. Batch queries
// go through the rate limiter one ticker at a time, which also provides the
// inter-request delay the provider expects.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new market feed client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("marketfeed API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// isAuthError reports whether the error is an authentication/authorization
// failure, which fails the whole batch rather than a single ticker.
func isAuthError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	return nil
}

// securityResponse is the provider wire format for one ticker. Numeric
// fields may arrive as numbers or strings; absent fields stay nil.
type securityResponse struct {
	Ticker        string       `json:"ticker"`
	LastPrice     *flexFloat64 `json:"last_price"`
	MarketCap     *flexFloat64 `json:"market_cap"`
	PERatio       *flexFloat64 `json:"pe_ratio"`
	EPS           *flexFloat64 `json:"eps"`
	DividendYield *flexFloat64 `json:"dividend_yield"`
	Week52High    *flexFloat64 `json:"week_52_high"`
	Week52Low     *flexFloat64 `json:"week_52_low"`
	AnalystRating *string      `json:"analyst_rating"`
	Sector        string       `json:"sector"`
}

func toFloatPtr(f *flexFloat64) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

func (r *securityResponse) toModel(ticker string) *models.SecurityData {
	if r.Ticker == "" {
		r.Ticker = ticker
	}
	return &models.SecurityData{
		Ticker:        r.Ticker,
		LastPrice:     toFloatPtr(r.LastPrice),
		MarketCap:     toFloatPtr(r.MarketCap),
		PERatio:       toFloatPtr(r.PERatio),
		EPS:           toFloatPtr(r.EPS),
		DividendYield: toFloatPtr(r.DividendYield),
		Week52High:    toFloatPtr(r.Week52High),
		Week52Low:     toFloatPtr(r.Week52Low),
		AnalystRating: r.AnalystRating,
		Sector:        r.Sector,
	}
}

// GetSecurityData fetches market data for a single ticker.
func (c *Client) GetSecurityData(ctx context.Context, ticker string) (*models.SecurityData, error) {
	var resp securityResponse
	path := fmt.Sprintf("/security/%s", url.PathEscape(ticker))
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(ticker), nil
}

// GetBatchSecurityData fetches data for multiple tickers one at a time
// through the rate limiter. Per-ticker failures are recorded on the entry;
// context cancellation and auth failures abort the whole batch.
func (c *Client) GetBatchSecurityData(ctx context.Context, tickers []string) ([]models.SecurityData, error) {
	c.logger.Debug().Int("tickers", len(tickers)).Msg("Fetching security data batch")

	results := make([]models.SecurityData, 0, len(tickers))
	for _, ticker := range tickers {
		data, err := c.GetSecurityData(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("batch aborted: %w", ctx.Err())
			}
			if isAuthError(err) {
				return nil, err
			}
			c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Security data fetch failed")
			results = append(results, models.SecurityData{Ticker: ticker, Error: err.Error()})
			continue
		}
		results = append(results, *data)
	}

	return results, nil
}

var _ interfaces.MarketDataClient = (*Client)(nil)
