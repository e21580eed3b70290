package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/position"
	"github.com/iota-uz/personnel/pkg/composables"
)

var ErrPositionNotFound = person.NewNotFoundError("POSITION_NOT_FOUND", "position not found")

type PositionRepository struct{}

func NewPositionRepository() position.Repository {
	return &PositionRepository{}
}

func (r *PositionRepository) GetByID(ctx context.Context, id uuid.UUID) (position.Position, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return position.Position{}, err
	}

	var (
		p         position.Position
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err = tx.QueryRow(ctx, `
	SELECT id, unit_code, name, is_active, created_at, updated_at
	FROM positions
	WHERE id=$1
	`, pgUUID(id)).Scan(&p.ID, &p.UnitCode, &p.Name, &p.IsActive, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return position.Position{}, ErrPositionNotFound
		}
		return position.Position{}, gerrors.Wrap(err, "load position")
	}
	p.CreatedAt = timeFromPg(createdAt)
	p.UpdatedAt = timeFromPg(updatedAt)
	return p, nil
}

func (r *PositionRepository) IsOccupied(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}

	var occupied bool
	err = tx.QueryRow(ctx, `
	SELECT EXISTS (
		SELECT 1 FROM position_assignments
		WHERE position_id=$1 AND close_utc IS NULL
	)
	`, pgUUID(id)).Scan(&occupied)
	if err != nil {
		return false, gerrors.Wrap(err, "check position occupancy")
	}
	return occupied, nil
}
