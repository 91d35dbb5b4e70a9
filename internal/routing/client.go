package routing

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ProviderError carries the upstream status so the handler can distinguish
// a bad gateway from our own failures. The provider's API key never appears
// in the message.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("routing provider: %s (status %d)", e.Message, e.Status)
}

// Client is the outbound HTTP path shared by all providers: one timeout,
// one rate limit, one retry on upstream 5xx or network failure.
type Client struct {
	hc      *http.Client
	limiter *rate.Limiter
}

func NewClient(rps float64) *Client {
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		hc:      &http.Client{Timeout: 15 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

func (c *Client) do(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		req, err := build()
		if err != nil {
			return nil, err
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &ProviderError{Status: resp.StatusCode, Message: "upstream error"}
			continue
		}
		return resp, nil
	}
	return nil, lastErr
}
