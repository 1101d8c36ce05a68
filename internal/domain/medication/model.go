package medication

import (
	"time"

	"github.com/google/uuid"
)

// Status is the derived adherence state of a medication for the current day.
type Status string

const (
	StatusTaken   Status = "taken"
	StatusSnoozed Status = "snoozed"
	StatusOverdue Status = "overdue"
	StatusPending Status = "pending"
)

// Medication maps to the medication table. ScheduledTime is a wall-clock
// "15:04" string; ScheduleStart and ScheduleEnd bound the days the
// medication is active ("2006-01-02", inclusive). LastTakenAt and
// SnoozeUntil are epoch milliseconds, zero when unset.
type Medication struct {
	ID            uuid.UUID `db:"id" json:"id"`
	SeniorID      uuid.UUID `db:"senior_id" json:"senior_id"`
	Name          string    `db:"name" json:"name"`
	Dosage        string    `db:"dosage" json:"dosage"`
	ScheduledTime string    `db:"scheduled_time" json:"scheduled_time"`
	ScheduleStart *string   `db:"schedule_start" json:"schedule_start,omitempty"`
	ScheduleEnd   *string   `db:"schedule_end" json:"schedule_end,omitempty"`
	LastTakenAt   int64     `db:"last_taken_at" json:"last_taken_at"`
	SnoozeUntil   int64     `db:"snooze_until" json:"snooze_until"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

const (
	timeLayout = "15:04"
	dayLayout  = "2006-01-02"
)

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StatusAt derives the adherence state at the given instant. The rules are
// checked in order: taken on the current calendar day wins, then an active
// snooze, then the scheduled time having passed today. A malformed
// scheduled time never marks a medication overdue.
func (m *Medication) StatusAt(now time.Time) Status {
	if m.LastTakenAt > 0 && sameDay(time.UnixMilli(m.LastTakenAt).In(now.Location()), now) {
		return StatusTaken
	}
	if m.SnoozeUntil > now.UnixMilli() {
		return StatusSnoozed
	}
	if t, err := time.Parse(timeLayout, m.ScheduledTime); err == nil {
		scheduled := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if !scheduled.After(now) {
			return StatusOverdue
		}
	}
	return StatusPending
}

// ActiveOn reports whether the medication's schedule window covers the
// given day. Missing bounds are open; malformed bounds do not exclude
// the medication.
func (m *Medication) ActiveOn(now time.Time) bool {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if m.ScheduleStart != nil {
		if start, err := time.ParseInLocation(dayLayout, *m.ScheduleStart, now.Location()); err == nil && day.Before(start) {
			return false
		}
	}
	if m.ScheduleEnd != nil {
		if end, err := time.ParseInLocation(dayLayout, *m.ScheduleEnd, now.Location()); err == nil && day.After(end) {
			return false
		}
	}
	return true
}
