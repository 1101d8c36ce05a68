package notification

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification. Unknown kinds are stored as KindInfo.
type Kind string

const (
	KindMedication  Kind = "MEDICATION"
	KindAppointment Kind = "APPOINTMENT"
	KindCheckIn     Kind = "CHECK_IN"
	KindPanic       Kind = "PANIC"
	KindInfo        Kind = "INFO"
)

// Normalize maps any string onto a known kind, defaulting to info.
func Normalize(s string) Kind {
	switch Kind(s) {
	case KindMedication, KindAppointment, KindCheckIn, KindPanic:
		return Kind(s)
	}
	return KindInfo
}

// Notification maps to the notification table. Rows are append-only;
// only the read flag mutates.
type Notification struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SeniorID  uuid.UUID `db:"senior_id" json:"senior_id"`
	Kind      Kind      `db:"kind" json:"kind"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
