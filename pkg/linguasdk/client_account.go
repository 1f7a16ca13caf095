package linguasdk

import (
	"context"
	"net/http"
)

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodPost, "/v1/auth/register", req, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and returns a client carrying the new session token.
// When the account has MFA enabled and req.Code is empty the error is
// ErrMFARequired.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Client, *LoginResponse, error) {
	var out LoginResponse
	if err := c.call(ctx, http.MethodPost, "/v1/auth/login", req, &out, http.StatusOK); err != nil {
		return nil, nil, err
	}
	return c.WithToken(out.AccessToken), &out, nil
}

// Logout clears the session cookie. Bearer tokens stay valid until they
// expire.
func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/v1/auth/logout", nil, nil, http.StatusNoContent)
}

// Bootstrap creates the first admin on an empty service.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*UserResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/v1/bootstrap", req, map[string]string{"X-Bootstrap-Token": token})
	if err != nil {
		return nil, err
	}
	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserResponse, error) {
	var out UserResponse
	if err := c.call(ctx, http.MethodPatch, "/v1/me", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================================================
// MFA
// ============================================================================

func (c *Client) EnrollTOTP(ctx context.Context) (*TOTPEnrollResponse, error) {
	var out TOTPEnrollResponse
	if err := c.call(ctx, http.MethodPost, "/v1/mfa/totp/enroll", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTOTP enables MFA and returns the one-time backup codes.
func (c *Client) VerifyTOTP(ctx context.Context, code string) (*BackupCodesResponse, error) {
	var out BackupCodesResponse
	if err := c.call(ctx, http.MethodPost, "/v1/mfa/totp/verify", TOTPCodeRequest{Code: code}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DisableTOTP(ctx context.Context, code string) error {
	return c.call(ctx, http.MethodDelete, "/v1/mfa/totp", TOTPCodeRequest{Code: code}, nil, http.StatusNoContent)
}
