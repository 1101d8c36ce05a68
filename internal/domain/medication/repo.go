package medication

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medication, error)
	Update(ctx context.Context, m *Medication) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListBySenior(ctx context.Context, seniorID uuid.UUID, limit, offset int) ([]*Medication, int, error)
	// AllBySenior returns every medication of a senior, for status derivation.
	AllBySenior(ctx context.Context, seniorID uuid.UUID) ([]*Medication, error)
	// SetAdherence persists the taken/snoozed markers only.
	SetAdherence(ctx context.Context, id uuid.UUID, lastTakenAt, snoozeUntil int64) error
}
