package guard

import "time"

// Outcome is the terminal state of a guard check.
type Outcome string

const (
	Proceed  Outcome = "proceed"
	Redirect Outcome = "redirect"
)

// Reason names the rule that produced a decision.
type Reason string

const (
	ReasonAllowed       Reason = "allowed"
	ReasonGuestOnly     Reason = "guest_only"
	ReasonAuthRequired  Reason = "auth_required"
	ReasonAdminRequired Reason = "admin_required"
	ReasonRoleMismatch  Reason = "role_mismatch"
)

// Decision is the result of one navigation check.
type Decision struct {
	Outcome  Outcome
	Location string // redirect target, empty on Proceed
	Reason   Reason

	Path     string
	From     string
	Waited   time.Duration
	TimedOut bool // auth was still initialising when ReadyTimeout elapsed

	// Cancelled is set when the navigation's context ended the wait, for
	// example because the client moved on to another page.
	Cancelled bool
}

// Proceeding reports whether the navigation may continue.
func (d Decision) Proceeding() bool { return d.Outcome == Proceed }
