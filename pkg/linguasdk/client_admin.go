package linguasdk

import (
	"context"
	"net/http"
	"net/url"
)

// ActiveBanners is public.
func (c *Client) ActiveBanners(ctx context.Context) ([]BannerResponse, error) {
	var out BannersResponse
	if err := c.call(ctx, http.MethodGet, "/v1/banners/active", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Banners, nil
}

// The methods below require an admin session.

func (c *Client) Banners(ctx context.Context) ([]BannerResponse, error) {
	var out BannersResponse
	if err := c.call(ctx, http.MethodGet, "/v1/admin/banners", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Banners, nil
}

func (c *Client) CreateBanner(ctx context.Context, req BannerRequest) (*BannerResponse, error) {
	var out BannerResponse
	if err := c.call(ctx, http.MethodPost, "/v1/admin/banners", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateBanner(ctx context.Context, id string, req BannerRequest) (*BannerResponse, error) {
	var out BannerResponse
	if err := c.call(ctx, http.MethodPut, "/v1/admin/banners/"+url.PathEscape(id), req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBanner(ctx context.Context, id string) error {
	return c.call(ctx, http.MethodDelete, "/v1/admin/banners/"+url.PathEscape(id), nil, nil, http.StatusNoContent)
}

func (c *Client) Users(ctx context.Context) ([]UserResponse, error) {
	var out UsersResponse
	if err := c.call(ctx, http.MethodGet, "/v1/admin/users", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) SetRole(ctx context.Context, userID, role string) (*UserResponse, error) {
	var out UserResponse
	path := "/v1/admin/users/" + url.PathEscape(userID) + "/role"
	if err := c.call(ctx, http.MethodPut, path, RoleRequest{Role: role}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.call(ctx, http.MethodDelete, "/v1/admin/users/"+url.PathEscape(userID), nil, nil, http.StatusNoContent)
}
