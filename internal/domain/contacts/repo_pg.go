package contacts

import (
	"context"
	"fmt"

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

const contactCols = `id, senior_id, name, phone, relation, position, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*EmergencyContact, error) {
	var c EmergencyContact
	err := row.Scan(&c.ID, &c.SeniorID, &c.Name, &c.Phone, &c.Relation, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *EmergencyContact) error {
	c.ID = uuid.New()
	// New contacts go to the end of the dial order
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO emergency_contact (id, senior_id, name, phone, relation, position)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX(position) + 1, 0) FROM emergency_contact WHERE senior_id = $2))
		RETURNING position, created_at, updated_at`,
		c.ID, c.SeniorID, c.Name, c.Phone, c.Relation).
		Scan(&c.Position, &c.CreatedAt, &c.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*EmergencyContact, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+contactCols+` FROM emergency_contact WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *EmergencyContact) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE emergency_contact SET name=$2, phone=$3, relation=$4, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.Name, c.Phone, c.Relation)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM emergency_contact WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListBySenior(ctx context.Context, seniorID uuid.UUID, limit, offset int) ([]*EmergencyContact, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM emergency_contact WHERE senior_id = $1`, seniorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+contactCols+` FROM emergency_contact
		WHERE senior_id = $1 ORDER BY position, created_at LIMIT $2 OFFSET $3`, seniorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*EmergencyContact
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

func (r *repoPG) OrderedBySenior(ctx context.Context, seniorID uuid.UUID) ([]*EmergencyContact, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+contactCols+` FROM emergency_contact
		WHERE senior_id = $1 ORDER BY position, created_at`, seniorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EmergencyContact
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *repoPG) Reorder(ctx context.Context, seniorID uuid.UUID, orderedIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for pos, id := range orderedIDs {
		tag, err := tx.Exec(ctx, `UPDATE emergency_contact SET position=$3, updated_at=NOW()
			WHERE id = $1 AND senior_id = $2`, id, seniorID, pos)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("contact %s not found for senior", id)
		}
	}

	return tx.Commit(ctx)
}
