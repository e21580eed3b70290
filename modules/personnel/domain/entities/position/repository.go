package position

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Position, error)
	// IsOccupied reports whether any person holds an open assignment on
	// the position. Must run inside the caller's transaction so the
	// answer stays valid until the subsequent write commits.
	IsOccupied(ctx context.Context, id uuid.UUID) (bool, error)
}
