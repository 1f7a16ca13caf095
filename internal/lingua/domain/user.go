package domain

import "time"

// Roles a user may hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool { return r == RoleUser || r == RoleAdmin }

// Level is a CEFR proficiency level.
type Level string

const (
	LevelA1 Level = "A1"
	LevelA2 Level = "A2"
	LevelB1 Level = "B1"
	LevelB2 Level = "B2"
	LevelC1 Level = "C1"
	LevelC2 Level = "C2"
)

// Levels lists every level from beginner to mastery.
var Levels = []Level{LevelA1, LevelA2, LevelB1, LevelB2, LevelC1, LevelC2}

// Valid reports whether l is a known CEFR level.
func (l Level) Valid() bool {
	for _, v := range Levels {
		if l == v {
			return true
		}
	}
	return false
}

type User struct {
	ID            string
	Username      string
	PreferredName string
	PasswordHash  string // argon2id encoded
	Role          string
	Level         Level
	MFASecret     string     // base32 TOTP secret, set on enrolment
	MFAEnabledAt  *time.Time // nil until the first code is verified
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MFAEnabled reports whether login requires a second factor.
func (u User) MFAEnabled() bool { return u.MFAEnabledAt != nil }

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }
