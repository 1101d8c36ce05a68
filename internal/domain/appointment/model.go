package appointment

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Appointment maps to the appointment table. Date ("2006-01-02") and
// Time ("15:04") are stored as entered by the user.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SeniorID  uuid.UUID `db:"senior_id" json:"senior_id"`
	Type      string    `db:"type" json:"type"`
	Location  *string   `db:"location" json:"location,omitempty"`
	Date      string    `db:"date" json:"date"`
	Time      string    `db:"time" json:"time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

const (
	dayLayout      = "2006-01-02"
	timeLayout     = "15:04"
	datetimeLayout = "2006-01-02 15:04"
)

// IsUpcoming reports whether the appointment is strictly in the future.
// An appointment at exactly now is past. A date or time that fails to
// parse keeps the appointment visible on the upcoming list rather than
// burying it in history.
func (a *Appointment) IsUpcoming(now time.Time) bool {
	at, err := time.ParseInLocation(datetimeLayout, a.Date+" "+a.Time, now.Location())
	if err != nil {
		return true
	}
	return at.After(now)
}

// Partition splits appointments into upcoming (soonest first) and past
// (most recent first).
func Partition(items []*Appointment, now time.Time) (upcoming, past []*Appointment) {
	for _, a := range items {
		if a.IsUpcoming(now) {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	byDatetime := func(items []*Appointment) func(i, j int) bool {
		return func(i, j int) bool {
			return items[i].Date+" "+items[i].Time < items[j].Date+" "+items[j].Time
		}
	}
	sort.SliceStable(upcoming, byDatetime(upcoming))
	sort.SliceStable(past, byDatetime(past))
	// past reads newest first
	for i, j := 0, len(past)-1; i < j; i, j = i+1, j-1 {
		past[i], past[j] = past[j], past[i]
	}
	return upcoming, past
}
