package medication

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

// noon on a fixed day, local time
var noon = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func TestStatusAt_TakenToday(t *testing.T) {
	m := &Medication{
		ScheduledTime: "09:00",
		LastTakenAt:   noon.Add(-2 * time.Hour).UnixMilli(),
	}
	if got := m.StatusAt(noon); got != StatusTaken {
		t.Errorf("expected taken, got %s", got)
	}
}

func TestStatusAt_TakenYesterdayDoesNotCount(t *testing.T) {
	m := &Medication{
		ScheduledTime: "09:00",
		LastTakenAt:   noon.Add(-24 * time.Hour).UnixMilli(),
	}
	if got := m.StatusAt(noon); got != StatusOverdue {
		t.Errorf("expected overdue, got %s", got)
	}
}

func TestStatusAt_TakenWinsOverSnooze(t *testing.T) {
	m := &Medication{
		ScheduledTime: "09:00",
		LastTakenAt:   noon.Add(-time.Hour).UnixMilli(),
		SnoozeUntil:   noon.Add(10 * time.Minute).UnixMilli(),
	}
	if got := m.StatusAt(noon); got != StatusTaken {
		t.Errorf("expected taken to win over snooze, got %s", got)
	}
}

func TestStatusAt_Snoozed(t *testing.T) {
	m := &Medication{
		ScheduledTime: "09:00",
		SnoozeUntil:   noon.Add(10 * time.Minute).UnixMilli(),
	}
	if got := m.StatusAt(noon); got != StatusSnoozed {
		t.Errorf("expected snoozed, got %s", got)
	}
}

func TestStatusAt_ExpiredSnooze(t *testing.T) {
	m := &Medication{
		ScheduledTime: "09:00",
		SnoozeUntil:   noon.Add(-time.Minute).UnixMilli(),
	}
	if got := m.StatusAt(noon); got != StatusOverdue {
		t.Errorf("expected overdue after snooze expiry, got %s", got)
	}
}

func TestStatusAt_Pending(t *testing.T) {
	m := &Medication{ScheduledTime: "18:00"}
	if got := m.StatusAt(noon); got != StatusPending {
		t.Errorf("expected pending, got %s", got)
	}
}

func TestStatusAt_OverdueAtExactScheduledTime(t *testing.T) {
	m := &Medication{ScheduledTime: "12:00"}
	if got := m.StatusAt(noon); got != StatusOverdue {
		t.Errorf("expected overdue at exact scheduled time, got %s", got)
	}
}

func TestStatusAt_MalformedTimeNeverOverdue(t *testing.T) {
	m := &Medication{ScheduledTime: "mediodía"}
	if got := m.StatusAt(noon); got != StatusPending {
		t.Errorf("expected pending for malformed time, got %s", got)
	}
}

func TestActiveOn(t *testing.T) {
	tests := []struct {
		name  string
		start *string
		end   *string
		want  bool
	}{
		{"no bounds", nil, nil, true},
		{"inside window", strPtr("2026-03-01"), strPtr("2026-03-31"), true},
		{"starts today", strPtr("2026-03-10"), nil, true},
		{"ends today", nil, strPtr("2026-03-10"), true},
		{"not started", strPtr("2026-03-11"), nil, false},
		{"already ended", nil, strPtr("2026-03-09"), false},
		{"malformed start", strPtr("soon"), nil, true},
		{"malformed end", nil, strPtr("later"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Medication{ScheduleStart: tt.start, ScheduleEnd: tt.end}
			if got := m.ActiveOn(noon); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
