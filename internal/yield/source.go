// Package yield fetches DeFi pool listings, tolerates the loose upstream
// schema, and picks the best pool by a TVL-weighted APY score.
package yield

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"treasury-agent/internal/domain"
)

// DefaultEndpoint is the public protocol listing used when no override is
// configured.
const DefaultEndpoint = "https://api.llama.fi/protocols"

// DefaultTimeout bounds a single fetch including retries' per-attempt wait.
const DefaultTimeout = 10 * time.Second

// Source supplies pool candidates. The HTTP source talks to the real API;
// the fixture source serves deterministic data for tests and offline runs.
type Source interface {
	FetchPools(ctx context.Context) ([]domain.PoolCandidate, error)
}

// HTTPSource pulls the protocol listing over HTTPS with bounded retries.
type HTTPSource struct {
	endpoint string
	client   *resty.Client
}

// Option configures an HTTPSource.
type Option func(*HTTPSource)

// WithTimeout overrides the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPSource) {
		s.client.SetTimeout(d)
	}
}

// NewHTTPSource creates a source for the given endpoint. An empty endpoint
// falls back to DefaultEndpoint.
func NewHTTPSource(endpoint string, opts ...Option) *HTTPSource {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	s := &HTTPSource{
		endpoint: endpoint,
		client: resty.New().
			SetTimeout(DefaultTimeout).
			SetRetryCount(2).
			SetRetryWaitTime(100 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(func(resp *resty.Response, err error) bool {
				// Rate limiting is worth waiting out; other statuses are not.
				return err == nil && resp.StatusCode() == http.StatusTooManyRequests
			}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Endpoint returns the configured listing URL.
func (s *HTTPSource) Endpoint() string {
	return s.endpoint
}

// FetchPools downloads and parses the protocol listing. Transport failures,
// non-2xx statuses, and malformed bodies all come back as DataSourceError.
func (s *HTTPSource) FetchPools(ctx context.Context) ([]domain.PoolCandidate, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.endpoint)
	if err != nil {
		return nil, &domain.DataSourceError{Endpoint: s.endpoint, Err: err}
	}
	if resp.IsError() {
		return nil, &domain.DataSourceError{Endpoint: s.endpoint, Status: resp.StatusCode()}
	}

	var raw []map[string]any
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, &domain.DataSourceError{Endpoint: s.endpoint, Err: err}
	}
	return parsePools(raw), nil
}

var _ Source = (*HTTPSource)(nil)
