package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Notifier receives appointment changes for fanout to linked caregivers and
// timeline snapshots for connected dashboards.
type Notifier interface {
	AppointmentEvent(ctx context.Context, seniorID uuid.UUID, message string)
	AppointmentSnapshot(ctx context.Context, seniorID uuid.UUID, snapshot any)
}

// Timeline is a senior's appointments split around the current instant.
type Timeline struct {
	Upcoming []*Appointment `json:"upcoming"`
	Past     []*Appointment `json:"past"`
}

type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

func validate(a *Appointment) error {
	if a.SeniorID == uuid.Nil {
		return fmt.Errorf("senior_id is required")
	}
	if a.Type == "" {
		return fmt.Errorf("type is required")
	}
	if _, err := time.Parse(dayLayout, a.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(timeLayout, a.Time); err != nil {
		return fmt.Errorf("time must be HH:MM")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if err := validate(a); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.AppointmentEvent(ctx, a.SeniorID, fmt.Sprintf("New appointment: %s on %s at %s", a.Type, a.Date, a.Time))
	}
	s.publishSnapshot(ctx, a.SeniorID)
	return nil
}

// publishSnapshot pushes the senior's full timeline partition to connected
// dashboards after a mutation. Consumers tolerate re-delivery.
func (s *Service) publishSnapshot(ctx context.Context, seniorID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	timeline, err := s.TimelineFor(ctx, seniorID)
	if err != nil {
		return
	}
	s.notifier.AppointmentSnapshot(ctx, seniorID, timeline)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, a *Appointment) error {
	existing, err := s.repo.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	a.SeniorID = existing.SeniorID
	if err := validate(a); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.AppointmentEvent(ctx, a.SeniorID, fmt.Sprintf("Appointment changed: %s on %s at %s", a.Type, a.Date, a.Time))
	}
	s.publishSnapshot(ctx, a.SeniorID)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishSnapshot(ctx, a.SeniorID)
	return nil
}

func (s *Service) ListBySenior(ctx context.Context, seniorID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListBySenior(ctx, seniorID, limit, offset)
}

// TimelineFor returns the senior's appointments partitioned into upcoming
// and past at the current instant.
func (s *Service) TimelineFor(ctx context.Context, seniorID uuid.UUID) (*Timeline, error) {
	items, err := s.repo.AllBySenior(ctx, seniorID)
	if err != nil {
		return nil, err
	}
	upcoming, past := Partition(items, s.now())
	return &Timeline{Upcoming: upcoming, Past: past}, nil
}
