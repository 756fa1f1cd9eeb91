package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/zip-weather/internal/weather"
)

var (
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// HTTPClientConfig bundles the HTTP client and the upstream base URL.
type HTTPClientConfig struct {
	Client  *http.Client
	BaseURL string
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// getJSON performs a single GET through the circuit breaker and decodes the
// body into out. Requests are never retried here; every failure wraps
// weather.ErrUpstream.
func getJSON(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
	out any,
) error {
	if cfg.Client == nil {
		return fmt.Errorf("%w: %v", weather.ErrUpstream, errNoHTTPClient)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", weather.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v: %v", weather.ErrUpstream, errCircuitOpen, err)
		}
		return fmt.Errorf("%w: %v", weather.ErrUpstream, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return fmt.Errorf("%w: unexpected result type from circuit breaker", weather.ErrUpstream)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", weather.ErrUpstream, err)
	}
	return nil
}
