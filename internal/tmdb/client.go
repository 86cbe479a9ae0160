// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package tmdb is a read-only client for The Movie Database v3 API.

Credentials are resolved once at construction:

  - a TMDB_API_KEY that looks like a JWT (starts with "eyJ") is sent as a
    bearer token
  - any other TMDB_API_KEY goes in the api_key query parameter
  - otherwise TMDB_AUTHORIZATION is sent as a bearer token

Successful responses are cached, requests are paced by a token bucket and
every call goes through a circuit breaker whose state is exported to
Prometheus.
*/
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelview/internal/cache"
	"github.com/tomtom215/reelview/internal/config"
	"github.com/tomtom215/reelview/internal/logging"
	"github.com/tomtom215/reelview/internal/metrics"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

const (
	breakerName     = "tmdb"
	maxErrorBody    = 1 << 10
	maxResponseBody = 8 << 20
)

var (
	// ErrNotConfigured is returned by every call when no credential is set.
	ErrNotConfigured = errors.New("TMDB_API_KEY or TMDB_AUTHORIZATION not set")

	// ErrUnauthorized is wrapped by APIError for HTTP 401.
	ErrUnauthorized = errors.New("tmdb: unauthorized")

	// ErrRateLimited is wrapped by APIError for HTTP 429.
	ErrRateLimited = errors.New("tmdb: rate limited")
)

// APIError is a non-2xx TMDB response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB error %d: %s", e.StatusCode, e.Body)
}

// Unwrap exposes ErrUnauthorized and ErrRateLimited.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// Client calls the TMDB API.
type Client struct {
	baseURL    string
	bearer     string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	cache      *cache.Cache[[]byte]
}

// NewClient builds a client from cfg. A client without credentials is valid;
// its calls return ErrNotConfigured.
func NewClient(cfg *config.TMDBConfig) *Client {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cb:         newBreaker(),
	}

	switch {
	case strings.HasPrefix(cfg.APIKey, "eyJ"):
		c.bearer = cfg.APIKey
	case cfg.APIKey != "":
		c.apiKey = cfg.APIKey
	case cfg.Authorization != "":
		c.bearer = strings.TrimPrefix(cfg.Authorization, "Bearer ")
	}

	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.CacheTTL > 0 {
		c.cache = cache.New[[]byte]("tmdb", cfg.CacheTTL, cache.DefaultCapacity)
	}
	return c
}

// Configured reports whether a credential is available.
func (c *Client) Configured() bool {
	return c.bearer != "" || c.apiKey != ""
}

func newBreaker() *gobreaker.CircuitBreaker[[]byte] {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= 0.6 {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("Opening TMDB circuit")
				return true
			}
			return false
		},
		// Client errors other than 429 say nothing about TMDB's health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", from.String()).Str("to", to.String()).Msg("TMDB circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// get fetches path with query and decodes the JSON body into out.
// endpoint labels metrics.
func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if query == nil {
		query = url.Values{}
	}
	key := path + "?" + query.Encode()

	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			return decode(body, out)
		}
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint, path, query)
	})
	if err != nil {
		c.recordBreakerResult(err)
		return err
	}
	c.recordBreakerResult(nil)

	if err := decode(body, out); err != nil {
		return err
	}
	if c.cache != nil {
		c.cache.Set(key, body)
	}
	return nil
}

func (c *Client) recordBreakerResult(err error) {
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
		logging.Warn().Err(err).Msg("TMDB request rejected by circuit breaker")
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(float64(c.cb.Counts().ConsecutiveFailures))
	}
}

func (c *Client) fetch(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("tmdb rate limiter: %w", err)
		}
	}

	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	u := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordTMDBRequest(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("tmdb %s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordTMDBRequest(endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read tmdb %s response: %w", endpoint, err)
	}
	return body, nil
}

func decode(body []byte, out interface{}) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode tmdb response: %w", err)
	}
	return nil
}

func pageQuery(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {strconv.Itoa(page)}}
}

// SearchMovies runs search/movie for query.
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchResults, error) {
	q := pageQuery(page)
	q.Set("query", query)

	var out SearchResults
	if err := c.get(ctx, "search", "/search/movie", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PopularMovies lists movie/popular.
func (c *Client) PopularMovies(ctx context.Context, page int) (*SearchResults, error) {
	var out SearchResults
	if err := c.get(ctx, "popular", "/movie/popular", pageQuery(page), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieDetails fetches movie/{id}.
func (c *Client) MovieDetails(ctx context.Context, id string) (*MovieDetails, error) {
	var out MovieDetails
	if err := c.get(ctx, "details", "/movie/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MovieCredits fetches movie/{id}/credits.
func (c *Client) MovieCredits(ctx context.Context, id string) (*Credits, error) {
	var out Credits
	if err := c.get(ctx, "credits", "/movie/"+url.PathEscape(id)+"/credits", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DetailsWithCredits fetches details and credits concurrently.
func (c *Client) DetailsWithCredits(ctx context.Context, id string) (*MovieDetails, *Credits, error) {
	var (
		details *MovieDetails
		credits *Credits
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = c.MovieDetails(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		credits, err = c.MovieCredits(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return details, credits, nil
}
