package medication

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const snoozeDuration = 15 * time.Minute

// Notifier receives adherence events for fanout to linked caregivers and
// full-list snapshots for connected dashboards.
type Notifier interface {
	MedicationEvent(ctx context.Context, seniorID uuid.UUID, message string)
	MedicationSnapshot(ctx context.Context, seniorID uuid.UUID, snapshot any)
}

// WithStatus pairs a medication with its derived status for API responses.
type WithStatus struct {
	*Medication
	Status Status `json:"status"`
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// SetNotifier attaches an optional adherence-event notifier.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func (s *Service) Create(ctx context.Context, m *Medication) error {
	if err := validate(m); err != nil {
		return err
	}
	m.LastTakenAt = 0
	m.SnoozeUntil = 0
	if err := s.repo.Create(ctx, m); err != nil {
		return err
	}
	s.publishSnapshot(ctx, m.SeniorID)
	return nil
}

// publishSnapshot pushes the senior's full medication list with derived
// statuses to connected dashboards. Consumers tolerate re-delivery, so any
// mutation simply republishes everything.
func (s *Service) publishSnapshot(ctx context.Context, seniorID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	items, err := s.repo.AllBySenior(ctx, seniorID)
	if err != nil {
		return
	}
	now := s.now()
	snapshot := make([]WithStatus, 0, len(items))
	for _, m := range items {
		snapshot = append(snapshot, WithStatus{Medication: m, Status: m.StatusAt(now)})
	}
	s.notifier.MedicationSnapshot(ctx, seniorID, snapshot)
}

func validate(m *Medication) error {
	if m.SeniorID == uuid.Nil {
		return fmt.Errorf("senior_id is required")
	}
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := time.Parse(timeLayout, m.ScheduledTime); err != nil {
		return fmt.Errorf("scheduled_time must be HH:MM")
	}
	if m.ScheduleStart != nil {
		if _, err := time.Parse(dayLayout, *m.ScheduleStart); err != nil {
			return fmt.Errorf("schedule_start must be YYYY-MM-DD")
		}
	}
	if m.ScheduleEnd != nil {
		if _, err := time.Parse(dayLayout, *m.ScheduleEnd); err != nil {
			return fmt.Errorf("schedule_end must be YYYY-MM-DD")
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, m *Medication) error {
	existing, err := s.repo.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	m.SeniorID = existing.SeniorID
	if err := validate(m); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return err
	}
	s.publishSnapshot(ctx, m.SeniorID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishSnapshot(ctx, m.SeniorID)
	return nil
}

// ListBySenior returns a senior's medications with their derived status.
func (s *Service) ListBySenior(ctx context.Context, seniorID uuid.UUID, limit, offset int) ([]WithStatus, int, error) {
	items, total, err := s.repo.ListBySenior(ctx, seniorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	result := make([]WithStatus, 0, len(items))
	for _, m := range items {
		result = append(result, WithStatus{Medication: m, Status: m.StatusAt(now)})
	}
	return result, total, nil
}

// Take marks the medication as taken now and clears any snooze. Taking a
// medication that is already taken today is a no-op at the status level.
func (s *Service) Take(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.LastTakenAt = s.now().UnixMilli()
	m.SnoozeUntil = 0
	if err := s.repo.SetAdherence(ctx, id, m.LastTakenAt, m.SnoozeUntil); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.MedicationEvent(ctx, m.SeniorID, fmt.Sprintf("%s was taken", m.Name))
	}
	s.publishSnapshot(ctx, m.SeniorID)
	return m, nil
}

// Snooze pushes the medication's reminder 15 minutes into the future.
func (s *Service) Snooze(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.SnoozeUntil = s.now().Add(snoozeDuration).UnixMilli()
	if err := s.repo.SetAdherence(ctx, id, m.LastTakenAt, m.SnoozeUntil); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.MedicationEvent(ctx, m.SeniorID, fmt.Sprintf("%s was snoozed", m.Name))
	}
	s.publishSnapshot(ctx, m.SeniorID)
	return m, nil
}

// PendingFor returns the medications still awaiting a dose today: active
// on the current day and neither taken nor snoozed, sorted by scheduled
// time ascending.
func (s *Service) PendingFor(ctx context.Context, seniorID uuid.UUID) ([]WithStatus, error) {
	items, err := s.repo.AllBySenior(ctx, seniorID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var pending []WithStatus
	for _, m := range items {
		if !m.ActiveOn(now) {
			continue
		}
		status := m.StatusAt(now)
		if status == StatusTaken || status == StatusSnoozed {
			continue
		}
		pending = append(pending, WithStatus{Medication: m, Status: status})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].ScheduledTime < pending[j].ScheduledTime
	})
	return pending, nil
}

// ReportOverdue fans out a notification for every overdue medication of
// the senior. Intended to be driven by a reminder job.
func (s *Service) ReportOverdue(ctx context.Context, seniorID uuid.UUID) (int, error) {
	pending, err := s.PendingFor(ctx, seniorID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, m := range pending {
		if m.Status != StatusOverdue {
			continue
		}
		if s.notifier != nil {
			s.notifier.MedicationEvent(ctx, seniorID, fmt.Sprintf("%s is overdue (scheduled %s)", m.Name, m.ScheduledTime))
		}
		count++
	}
	return count, nil
}
