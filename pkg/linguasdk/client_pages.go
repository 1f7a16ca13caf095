package linguasdk

import (
	"context"
	"fmt"
	"net/http"
)

// Navigate requests a page the way a browser would, without following the
// guard's redirect. A rendered page is returned as its JSON descriptor.
func (c *Client) Navigate(ctx context.Context, path string) (*Navigation, error) {
	hc := *c.HTTPClient
	hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	nav := &Navigation{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
		Reason:     resp.Header.Get("X-Guard-Reason"),
	}
	if resp.StatusCode == http.StatusFound {
		_ = checkStatus(resp, http.StatusFound)
		return nav, nil
	}

	var page PageDescriptor
	if err := decodeJSON(resp, &page, http.StatusOK); err != nil {
		return nav, err
	}
	nav.Page = &page
	return nav, nil
}
