package person

import (
	"time"

	"github.com/google/uuid"
)

// StatusRecord is one row of the append-only status history. Active
// rows are unique on (PersonID, OpenDate, Sequence); Sequence
// disambiguates same-instant records. IsActive is a validity flag, not
// a temporal close.
type StatusRecord struct {
	ID           int64
	PersonID     uuid.UUID
	StatusKindID int64
	OpenDate     time.Time
	Sequence     int32
	IsActive     bool
	Note         string
	Author       string
	Modified     time.Time
	DocumentID   *int64
}
