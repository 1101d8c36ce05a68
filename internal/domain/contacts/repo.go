package contacts

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, c *EmergencyContact) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error)
	Update(ctx context.Context, c *EmergencyContact) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySenior(ctx context.Context, seniorID uuid.UUID, limit, offset int) ([]*EmergencyContact, int, error)
	// OrderedBySenior returns the full contact list in dial order.
	OrderedBySenior(ctx context.Context, seniorID uuid.UUID) ([]*EmergencyContact, error)
	Reorder(ctx context.Context, seniorID uuid.UUID, orderedIDs []uuid.UUID) error
}
