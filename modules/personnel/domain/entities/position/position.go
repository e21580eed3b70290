package position

import (
	"time"

	"github.com/google/uuid"
)

// Position is an organizational slot a person can be assigned to.
type Position struct {
	ID        uuid.UUID
	UnitCode  string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
