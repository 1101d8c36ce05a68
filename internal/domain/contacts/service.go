package contacts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, c *EmergencyContact) error {
	if c.SeniorID == uuid.Nil {
		return fmt.Errorf("senior_id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*EmergencyContact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, c *EmergencyContact) error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Phone == "" {
		return fmt.Errorf("phone is required")
	}
	return s.repo.Update(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListBySenior(ctx context.Context, seniorID uuid.UUID, limit, offset int) ([]*EmergencyContact, int, error) {
	return s.repo.ListBySenior(ctx, seniorID, limit, offset)
}

// DialOrder returns the senior's contacts in escalation order.
func (s *Service) DialOrder(ctx context.Context, seniorID uuid.UUID) ([]*EmergencyContact, error) {
	return s.repo.OrderedBySenior(ctx, seniorID)
}

// Primary returns the first contact in dial order, or nil when the senior
// has no contacts.
func (s *Service) Primary(ctx context.Context, seniorID uuid.UUID) (*EmergencyContact, error) {
	ordered, err := s.repo.OrderedBySenior(ctx, seniorID)
	if err != nil {
		return nil, err
	}
	if len(ordered) == 0 {
		return nil, nil
	}
	return ordered[0], nil
}

func (s *Service) Reorder(ctx context.Context, seniorID uuid.UUID, orderedIDs []uuid.UUID) error {
	if seniorID == uuid.Nil {
		return fmt.Errorf("senior_id is required")
	}
	if len(orderedIDs) == 0 {
		return fmt.Errorf("ids are required")
	}
	seen := make(map[uuid.UUID]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate contact id %s", id)
		}
		seen[id] = struct{}{}
	}
	return s.repo.Reorder(ctx, seniorID, orderedIDs)
}
