package relationship

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/movicare/movicare/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const relationshipCols = `requester_id, target_id, status, created_at`

func (r *repoPG) scan(row pgx.Row) (*Relationship, error) {
	var rel Relationship
	err := row.Scan(&rel.RequesterID, &rel.TargetID, &rel.Status, &rel.CreatedAt)
	return &rel, err
}

func (r *repoPG) FindPair(ctx context.Context, a, b uuid.UUID) (*Relationship, error) {
	rel, err := r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+relationshipCols+` FROM user_relationship
		WHERE (requester_id = $1 AND target_id = $2) OR (requester_id = $2 AND target_id = $1)`, a, b))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rel, nil
}

func (r *repoPG) Create(ctx context.Context, rel *Relationship) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO user_relationship (requester_id, target_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at`,
		rel.RequesterID, rel.TargetID, rel.Status).
		Scan(&rel.CreatedAt)
}

func (r *repoPG) UpdateStatus(ctx context.Context, requesterID, targetID uuid.UUID, status Status) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE user_relationship SET status=$3
		WHERE requester_id = $1 AND target_id = $2`, requesterID, targetID, status)
	return err
}

func (r *repoPG) DeletePair(ctx context.Context, a, b uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM user_relationship
		WHERE (requester_id = $1 AND target_id = $2) OR (requester_id = $2 AND target_id = $1)`, a, b)
	return err
}

func (r *repoPG) AcceptedPeersOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT CASE WHEN requester_id = $1 THEN target_id ELSE requester_id END
		FROM user_relationship
		WHERE (requester_id = $1 OR target_id = $1) AND status = 'ACCEPTED'`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var peers []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		peers = append(peers, id)
	}
	return peers, rows.Err()
}

func (r *repoPG) PendingInboundOf(ctx context.Context, userID uuid.UUID) ([]*Relationship, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+relationshipCols+` FROM user_relationship
		WHERE target_id = $1 AND status = 'PENDING' ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Relationship
	for rows.Next() {
		rel, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rel)
	}
	return items, rows.Err()
}
