package linguasdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Health
// ============================================================================

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Auth     string `json:"auth"`
	Routes   string `json:"routes"`
}

// ============================================================================
// Accounts
// ============================================================================

type RegisterRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	PreferredName string `json:"preferred_name,omitempty"`
	Level         string `json:"level,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// Code is a TOTP or backup code, required once MFA is enabled.
	Code string `json:"code,omitempty"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	PreferredName string    `json:"preferred_name"`
	Role          string    `json:"role"`
	Level         string    `json:"level"`
	MFAEnabled    bool      `json:"mfa_enabled"`
	CreatedAt     time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	PreferredName string `json:"preferred_name"`
	Level         string `json:"level"`
}

type BootstrapRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	PreferredName string `json:"preferred_name,omitempty"`
}

// ============================================================================
// MFA
// ============================================================================

type TOTPEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"otpauth_url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type TOTPCodeRequest struct {
	Code string `json:"code"`
}

type BackupCodesResponse struct {
	Codes []string `json:"backup_codes"`
}

// ============================================================================
// Stories
// ============================================================================

type StoryRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	Level    string `json:"level"`
	Body     string `json:"body"`
	AudioURL string `json:"audio_url,omitempty"`
}

type StoryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	Level     string    `json:"level"`
	Body      string    `json:"body"`
	AudioURL  string    `json:"audio_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type StoriesResponse struct {
	Stories []StoryResponse `json:"stories"`
}

// ============================================================================
// Vocabulary
// ============================================================================

type CardRequest struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	StoryID     string `json:"story_id,omitempty"`
}

type ReviewRequest struct {
	Quality int `json:"quality"`
}

type CardResponse struct {
	ID          string     `json:"id"`
	Word        string     `json:"word"`
	Translation string     `json:"translation"`
	StoryID     string     `json:"story_id,omitempty"`
	Ease        float64    `json:"ease"`
	Interval    int        `json:"interval_days"`
	Repetitions int        `json:"repetitions"`
	Streak      int        `json:"streak"`
	LastQuality int        `json:"last_quality"`
	Learned     bool       `json:"learned"`
	DueAt       time.Time  `json:"due_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type CardsResponse struct {
	Cards []CardResponse `json:"cards"`
}

// ============================================================================
// Sync
// ============================================================================

// SyncOp is one queued offline operation.
type SyncOp struct {
	OpID       string          `json:"op_id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	ClientTime time.Time       `json:"client_time"`
}

type SyncRequest struct {
	Ops []SyncOp `json:"ops"`
}

type SyncResult struct {
	OpID     string `json:"op_id"`
	Status   string `json:"status"`
	CardID   string `json:"card_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Replayed bool   `json:"replayed,omitempty"`
}

type SyncResponse struct {
	Results []SyncResult `json:"results"`
}

type ChangesResponse struct {
	Cards  []CardResponse `json:"cards"`
	Cursor string         `json:"cursor"`
}

// ============================================================================
// Admin
// ============================================================================

type BannerRequest struct {
	Message  string     `json:"message"`
	Level    string     `json:"level,omitempty"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
}

type BannerResponse struct {
	ID        string     `json:"id"`
	Message   string     `json:"message"`
	Level     string     `json:"level"`
	Active    bool       `json:"active"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type BannersResponse struct {
	Banners []BannerResponse `json:"banners"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

type RoleRequest struct {
	Role string `json:"role"`
}

// ============================================================================
// Pages
// ============================================================================

// PageDescriptor is the JSON form of a rendered page navigation.
type PageDescriptor struct {
	View   string            `json:"view"`
	Name   string            `json:"name,omitempty"`
	Path   string            `json:"path"`
	Params map[string]string `json:"params,omitempty"`
}

// Navigation is the outcome of requesting a page.
type Navigation struct {
	StatusCode int
	Location   string
	Reason     string
	Page       *PageDescriptor
}
