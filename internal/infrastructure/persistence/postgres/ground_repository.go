package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"turfbook/internal/domain"
)

var ErrGroundNotFound = errors.New("ground not found")

// GroundRepository reads the ground catalogue. Grounds are administered out
// of band; this service never writes them.
type GroundRepository struct {
	db *pgxpool.Pool
}

func NewGroundRepository(db *pgxpool.Pool) *GroundRepository {
	return &GroundRepository{db: db}
}

func (r *GroundRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ground, error) {
	query := `SELECT id, name, pricing, created_at FROM grounds WHERE id = $1`

	var m GroundModel
	err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.Pricing, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGroundNotFound
		}
		return nil, fmt.Errorf("failed to scan ground: %w", err)
	}
	return toDomainGround(m), nil
}

// FindByNames returns grounds matching any of the given names. Unknown names
// are silently skipped so blocking partners missing from the catalogue do
// not fail the conflict check.
func (r *GroundRepository) FindByNames(ctx context.Context, names []string) ([]*domain.Ground, error) {
	if len(names) == 0 {
		return nil, nil
	}

	query := `SELECT id, name, pricing, created_at FROM grounds WHERE name = ANY($1)`

	rows, err := r.db.Query(ctx, query, names)
	if err != nil {
		return nil, fmt.Errorf("query grounds by names: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Ground, error) {
		var m GroundModel
		err := row.Scan(&m.ID, &m.Name, &m.Pricing, &m.CreatedAt)
		return toDomainGround(m), err
	})
	if err != nil {
		return nil, fmt.Errorf("scan grounds: %w", err)
	}
	return results, nil
}
