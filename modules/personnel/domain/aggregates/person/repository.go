package person

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// HistorySlice is the immutable read-side projection of one person's
// stored history. The resolver never mutates it.
type HistorySlice struct {
	PersonID      uuid.UUID
	StatusRecords []StatusRecord
	Assignments   []PositionAssignment
}

// Repository is the persistence gateway for the aggregate. Save must
// check the optimistic version and surface a lost update as
// ErrVersionConflict, never a silent overwrite. LoadHistorySlice
// returns rows ordered by open date for each requested person.
type Repository interface {
	Load(ctx context.Context, personID uuid.UUID) (*Person, error)
	Save(ctx context.Context, p *Person) error
	LoadHistorySlice(ctx context.Context, personIDs []uuid.UUID, until time.Time) (map[uuid.UUID]HistorySlice, error)
}
