package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/lbsports/transfermarkt-cache/pkg/logging"
	"github.com/lbsports/transfermarkt-cache/pkg/store"
)

// Prometheus metrics for provider operations.
var (
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tfmkt_provider_requests_total",
		Help: "Total provider requests by endpoint and status",
	}, []string{"endpoint", "status"})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tfmkt_provider_request_duration_seconds",
		Help:    "Provider request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	providerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tfmkt_provider_errors_total",
		Help: "Total provider errors by class",
	}, []string{"class"})

	providerRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tfmkt_provider_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	providerRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tfmkt_provider_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// Config holds the HTTP client configuration.
type Config struct {
	// BaseURL of the scraping backend, e.g. "http://localhost:8000".
	BaseURL string

	// Timeout per request.
	Timeout time.Duration

	// Retry behavior for retriable failures.
	Retry RetryConfig
}

// DefaultConfig returns a safe default configuration for the given backend.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
		Retry:   DefaultRetryConfig(),
	}
}

// HTTPClient implements Client against the scraping backend's JSON API.
type HTTPClient struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// NewHTTPClient creates a provider client.
func NewHTTPClient(cfg Config) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	return &HTTPClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		config:     cfg,
		logger:     logging.NewLogger("provider"),
	}, nil
}

// SearchClubs returns one page of club candidates for a query.
func (c *HTTPClient) SearchClubs(ctx context.Context, query string, page int) (*ClubSearchResult, error) {
	endpoint := fmt.Sprintf("/clubs/search/%s", url.PathEscape(query))
	params := url.Values{"page_number": []string{fmt.Sprint(page)}}

	var result ClubSearchResult
	if err := c.getJSON(ctx, endpoint, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetClubPlayers returns the roster of a club.
func (c *HTTPClient) GetClubPlayers(ctx context.Context, clubID string) (*Roster, error) {
	endpoint := fmt.Sprintf("/clubs/%s/players", url.PathEscape(clubID))

	var roster Roster
	if err := c.getJSON(ctx, endpoint, nil, &roster); err != nil {
		return nil, err
	}
	return &roster, nil
}

// GetPlayerProfile returns a player's profile, or (nil, nil) when the
// provider has no record for the player.
func (c *HTTPClient) GetPlayerProfile(ctx context.Context, playerID string) (store.Record, error) {
	endpoint := fmt.Sprintf("/players/%s/profile", url.PathEscape(playerID))

	var rec store.Record
	err := c.getJSON(ctx, endpoint, nil, &rec)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

// getJSON performs a GET against the backend with retry and decodes the
// JSON body into out.
func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	target := c.config.BaseURL + endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	startTime := time.Now()
	defer func() {
		providerRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	return retryWithBackoff(ctx, c.logger, c.config.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("Provider request failed")
			providerErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			providerRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return &Error{Class: ErrorClassNetwork, Message: "request failed", Err: err}
		}
		defer resp.Body.Close()

		providerRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}

		if resp.StatusCode >= 400 {
			class := classifyStatus(resp.StatusCode)
			providerErrorsTotal.WithLabelValues(string(class)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("error_class", string(class)).
				Msg("Provider request error")

			return &Error{
				StatusCode: resp.StatusCode,
				Class:      class,
				Message:    resp.Status,
			}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			providerErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
			return &Error{
				StatusCode: resp.StatusCode,
				Class:      ErrorClassServer,
				Message:    "unusable response body",
				Err:        err,
			}
		}

		return nil
	})
}

// classifyStatus categorizes an HTTP status for retry and observability.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	default:
		return ErrorClassServer
	}
}
