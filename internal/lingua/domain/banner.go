package domain

import "time"

// Banner severities.
const (
	BannerInfo    = "info"
	BannerWarning = "warning"
	BannerError   = "error"
)

// ValidBannerLevel reports whether l is a known severity.
func ValidBannerLevel(l string) bool {
	return l == BannerInfo || l == BannerWarning || l == BannerError
}

// Banner is a site-wide notice managed from the admin panel.
type Banner struct {
	ID        string
	Message   string
	Level     string
	Active    bool
	StartsAt  *time.Time
	EndsAt    *time.Time
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Showing reports whether the banner is visible at now.
func (b Banner) Showing(now time.Time) bool {
	if !b.Active {
		return false
	}
	if b.StartsAt != nil && now.Before(*b.StartsAt) {
		return false
	}
	if b.EndsAt != nil && !now.Before(*b.EndsAt) {
		return false
	}
	return true
}

// Expired reports whether the banner's window has closed.
func (b Banner) Expired(now time.Time) bool {
	return b.EndsAt != nil && !now.Before(*b.EndsAt)
}
