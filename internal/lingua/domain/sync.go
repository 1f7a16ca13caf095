package domain

import (
	"encoding/json"
	"time"
)

// Offline operation kinds.
const (
	OpAddCard    = "add_card"
	OpReview     = "review"
	OpDeleteCard = "delete_card"
)

// Op statuses.
const (
	OpApplied  = "applied"
	OpRejected = "rejected"
)

// SyncOp is an operation queued by an offline client.
type SyncOp struct {
	OpID       string          // client generated, unique per user
	Kind       string
	Payload    json.RawMessage
	ClientTime time.Time
}

// OpResult records how an op was applied. Replays return the stored result.
type OpResult struct {
	UserID    string
	OpID      string
	Kind      string
	Status    string
	CardID    string
	Error     string
	AppliedAt time.Time
}
