package person

import (
	"time"

	"github.com/google/uuid"
)

// Domain events accumulate on the aggregate as a plain ordered list
// and are drained by the caller after a successful save. This is a
// notification queue, not a durable event store.

type CreatedEvent struct {
	PersonID        uuid.UUID
	InitialStatusID int64
	OpenDate        time.Time
}

type StatusChangedEvent struct {
	PersonID     uuid.UUID
	FromStatusID *int64
	ToStatusID   int64
	EffectiveAt  time.Time
}

type AssignedToPositionEvent struct {
	PersonID    uuid.UUID
	PositionID  uuid.UUID
	OpenUTC     time.Time
	ClosedPrior bool
}

type UnassignedFromPositionEvent struct {
	PersonID   uuid.UUID
	PositionID uuid.UUID
	CloseUTC   time.Time
}

type PlanActionCreatedEvent struct {
	PersonID    uuid.UUID
	Name        string
	EffectiveAt time.Time
	MoveType    MoveType
}

type PlanActionApprovedEvent struct {
	PersonID uuid.UUID
	Name     string
}
