package person

import (
	"time"

	"github.com/google/uuid"
)

// PositionAssignment is a time-bounded attachment of a person to a
// position. A zero CloseUTC means the assignment is currently open.
// Closing is temporal, orthogonal to StatusRecord.IsActive.
type PositionAssignment struct {
	ID         int64
	PersonID   uuid.UUID
	PositionID uuid.UUID
	OpenUTC    time.Time
	CloseUTC   time.Time
	Note       string
	Author     string
	Modified   time.Time
}

func (a PositionAssignment) IsOpen() bool {
	return a.CloseUTC.IsZero()
}
