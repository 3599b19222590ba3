// Package providers holds one adapter per upstream data source. Every adapter
// issues a single-attempt HTTP call, shape-checks the body, and maps it into
// the common domain types. Failures come back as errors; the service layer
// degrades that branch instead of failing the whole response
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tokenlens/internal/metrics"
)

// Pagination hard cap. Cursor loops stop here no matter what the upstream
// keeps returning, bounding worst-case latency
const maxPages = 5

var (
	ErrUpstream  = errors.New("upstream unavailable")
	ErrMalformed = errors.New("malformed upstream response")
)

// Client is the shared HTTP plumbing every adapter goes through
type Client struct {
	http *http.Client
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// getJSON issues one GET and decodes the body into out. Non-2xx wraps
// ErrUpstream, a body that won't decode wraps ErrMalformed
func (c *Client) getJSON(ctx context.Context, provider, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.do(provider, req, out)
}

// postJSON issues one POST with a JSON body
func (c *Client) postJSON(ctx context.Context, provider, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: encode request: %v", ErrMalformed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(provider, req, out)
}

func (c *Client) do(provider string, req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeUpstream).Inc()
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeUpstream).Inc()
		return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeUpstream).Inc()
		return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeMalformed).Inc()
		return fmt.Errorf("%w: decode: %v", ErrMalformed, err)
	}

	metrics.ProviderRequests.WithLabelValues(provider, metrics.OutcomeOK).Inc()
	return nil
}
