package relationship

import (
	"time"

	"github.com/google/uuid"
)

// Status of a link between two users. Declined rows are deleted rather
// than stored, so StatusDeclined never appears in the table; the constant
// exists because the API accepts it as a decision value.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

// Relationship maps to the user_relationship table. Identity is the
// (requester_id, target_id) pair; at most one row exists per unordered
// pair of users.
type Relationship struct {
	RequesterID uuid.UUID `db:"requester_id" json:"requester_id"`
	TargetID    uuid.UUID `db:"target_id" json:"target_id"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
