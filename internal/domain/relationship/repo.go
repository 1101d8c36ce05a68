package relationship

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// FindPair returns the row linking the two users in either orientation,
	// or nil when none exists.
	FindPair(ctx context.Context, a, b uuid.UUID) (*Relationship, error)
	Create(ctx context.Context, r *Relationship) error
	UpdateStatus(ctx context.Context, requesterID, targetID uuid.UUID, status Status) error
	// DeletePair removes the row linking the two users in either orientation.
	DeletePair(ctx context.Context, a, b uuid.UUID) error
	// AcceptedPeersOf returns the ids of users linked to userID by an
	// accepted relationship, regardless of who requested it.
	AcceptedPeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// PendingInboundOf returns invites awaiting userID's decision.
	PendingInboundOf(ctx context.Context, userID uuid.UUID) ([]*Relationship, error)
}
