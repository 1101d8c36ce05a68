package relationship

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InviteOutcome tells the caller what an Invite actually did. Inviting an
// already linked or already invited peer is not an error.
type InviteOutcome string

const (
	InviteSent           InviteOutcome = "sent"
	InviteAlreadyPending InviteOutcome = "already_pending"
	InviteAlreadyLinked  InviteOutcome = "already_linked"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Invite creates a pending link request from requester to target. When a
// row already exists between the pair, in either direction, the call is a
// no-op and the outcome reports the existing state.
func (s *Service) Invite(ctx context.Context, requesterID, targetID uuid.UUID) (InviteOutcome, error) {
	if requesterID == uuid.Nil || targetID == uuid.Nil {
		return "", fmt.Errorf("requester and target are required")
	}
	if requesterID == targetID {
		return "", fmt.Errorf("cannot invite yourself")
	}

	existing, err := s.repo.FindPair(ctx, requesterID, targetID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if existing.Status == StatusAccepted {
			return InviteAlreadyLinked, nil
		}
		return InviteAlreadyPending, nil
	}

	rel := &Relationship{RequesterID: requesterID, TargetID: targetID, Status: StatusPending}
	if err := s.repo.Create(ctx, rel); err != nil {
		return "", err
	}
	return InviteSent, nil
}

// Accept flips a pending invite to accepted. Accepting an already accepted
// link is a no-op.
func (s *Service) Accept(ctx context.Context, requesterID, targetID uuid.UUID) error {
	existing, err := s.repo.FindPair(ctx, requesterID, targetID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("no invite to accept")
	}
	if existing.Status == StatusAccepted {
		return nil
	}
	return s.repo.UpdateStatus(ctx, existing.RequesterID, existing.TargetID, StatusAccepted)
}

// Decline removes a pending invite. No tombstone is kept; declining a pair
// with no row is a no-op.
func (s *Service) Decline(ctx context.Context, requesterID, targetID uuid.UUID) error {
	return s.repo.DeletePair(ctx, requesterID, targetID)
}

// Unlink severs an existing relationship in either orientation.
func (s *Service) Unlink(ctx context.Context, a, b uuid.UUID) error {
	return s.repo.DeletePair(ctx, a, b)
}

func (s *Service) AcceptedPeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.AcceptedPeersOf(ctx, userID)
}

func (s *Service) PendingInboundOf(ctx context.Context, userID uuid.UUID) ([]*Relationship, error) {
	return s.repo.PendingInboundOf(ctx, userID)
}

// IsLinked reports whether the two users share an accepted relationship.
func (s *Service) IsLinked(ctx context.Context, a, b uuid.UUID) (bool, error) {
	rel, err := s.repo.FindPair(ctx, a, b)
	if err != nil {
		return false, err
	}
	return rel != nil && rel.Status == StatusAccepted, nil
}
