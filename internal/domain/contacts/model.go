package contacts

import (
	"time"

	"github.com/google/uuid"
)

// EmergencyContact maps to the emergency_contact table. Position defines the
// dial order during an escalation; the contact at position 0 is the primary
// contact and receives check-in messages.
type EmergencyContact struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SeniorID  uuid.UUID `db:"senior_id" json:"senior_id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	Relation  *string   `db:"relation" json:"relation,omitempty"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
