package linguasdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ============================================================================
// Stories
// ============================================================================

// Stories lists stories, optionally filtered by CEFR level.
func (c *Client) Stories(ctx context.Context, level string) ([]StoryResponse, error) {
	path := "/v1/stories"
	if level != "" {
		path += "?" + url.Values{"level": {level}}.Encode()
	}
	var out StoriesResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Stories, nil
}

func (c *Client) Story(ctx context.Context, id string) (*StoryResponse, error) {
	var out StoryResponse
	if err := c.call(ctx, http.MethodGet, "/v1/stories/"+url.PathEscape(id), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateStory requires an admin session.
func (c *Client) CreateStory(ctx context.Context, req StoryRequest) (*StoryResponse, error) {
	var out StoryResponse
	if err := c.call(ctx, http.MethodPost, "/v1/stories", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteStory requires an admin session.
func (c *Client) DeleteStory(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/v1/stories/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

// ============================================================================
// Vocabulary
// ============================================================================

func (c *Client) AddCard(ctx context.Context, req CardRequest) (*CardResponse, error) {
	var out CardResponse
	if err := c.call(ctx, http.MethodPost, "/v1/vocabulary", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Cards(ctx context.Context) ([]CardResponse, error) {
	var out CardsResponse
	if err := c.call(ctx, http.MethodGet, "/v1/vocabulary", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

// DueCards returns up to limit cards due for review. Zero uses the server
// default.
func (c *Client) DueCards(ctx context.Context, limit int) ([]CardResponse, error) {
	path := "/v1/vocabulary/due"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out CardsResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

func (c *Client) Review(ctx context.Context, cardID string, quality int) (*CardResponse, error) {
	var out CardResponse
	path := "/v1/vocabulary/" + url.PathEscape(cardID) + "/review"
	if err := c.call(ctx, http.MethodPost, path, ReviewRequest{Quality: quality}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCard(ctx context.Context, cardID string) error {
	return c.call(ctx, http.MethodDelete, "/v1/vocabulary/"+url.PathEscape(cardID), nil, nil, http.StatusNoContent)
}

// ============================================================================
// Sync
// ============================================================================

// Sync pushes a batch of offline operations.
func (c *Client) Sync(ctx context.Context, ops []SyncOp) (*SyncResponse, error) {
	var out SyncResponse
	if err := c.call(ctx, http.MethodPost, "/v1/sync", SyncRequest{Ops: ops}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Changes returns the cards changed after cursor. The empty cursor returns
// everything.
func (c *Client) Changes(ctx context.Context, cursor string) (*ChangesResponse, error) {
	path := "/v1/sync"
	if cursor != "" {
		path += "?" + url.Values{"since": {cursor}}.Encode()
	}
	var out ChangesResponse
	if err := c.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
