package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PeerSource resolves which seniors a viewer may see notifications about.
type PeerSource interface {
	AcceptedPeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type Service struct {
	repo  Repository
	peers PeerSource
}

func NewService(repo Repository, peers PeerSource) *Service {
	return &Service{repo: repo, peers: peers}
}

func (s *Service) Create(ctx context.Context, n *Notification) error {
	if n.SeniorID == uuid.Nil {
		return fmt.Errorf("senior_id is required")
	}
	if n.Message == "" {
		return fmt.Errorf("message is required")
	}
	n.Kind = Normalize(string(n.Kind))
	return s.repo.Create(ctx, n)
}

// FeedForViewer returns the notifications the viewer may see: those about
// any senior linked to them by an accepted relationship, newest first. A
// senior sees their own feed.
func (s *Service) FeedForViewer(ctx context.Context, viewerID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	peers, err := s.peers.AcceptedPeersOf(ctx, viewerID)
	if err != nil {
		return nil, 0, err
	}
	// The viewer's own notifications are always part of the feed
	seniorIDs := append(peers, viewerID)
	return s.repo.ListBySeniors(ctx, seniorIDs, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id)
}
