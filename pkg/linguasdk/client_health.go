package linguasdk

import (
	"context"
	"net/http"
)

// Liveness reports whether the service is running.
func (c *Client) Liveness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readiness reports whether the service can serve traffic. A degraded
// service answers 503 and Readiness returns an *APIError; use ReadinessRaw
// to inspect the checks.
func (c *Client) Readiness(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, http.MethodGet, "/readyz", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReadinessRaw returns the readiness body and status code whatever the
// outcome.
func (c *Client) ReadinessRaw(ctx context.Context) (*HealthResponse, int, error) {
	resp, err := c.do(ctx, http.MethodGet, "/readyz", nil, nil)
	if err != nil {
		return nil, 0, err
	}
	var out HealthResponse
	code := resp.StatusCode
	if err := decodeJSON(resp, &out, code); err != nil {
		return nil, code, err
	}
	return &out, code, nil
}
