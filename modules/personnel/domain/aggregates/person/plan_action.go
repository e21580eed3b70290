package person

import (
	"time"

	"github.com/google/uuid"
)

type PlanActionState string

const (
	PlanActionDraft    PlanActionState = "draft"
	PlanActionApproved PlanActionState = "approved"
)

type MoveType string

const (
	MoveDispatch MoveType = "dispatch"
	MoveReturn   MoveType = "return"
)

// AttributeSnapshot freezes the person's identity, military and
// position attributes at plan-action creation time. It never changes
// afterwards, even when the person does.
type AttributeSnapshot struct {
	NationalID string     `json:"national_id"`
	LastName   string     `json:"last_name"`
	FirstName  string     `json:"first_name"`
	MiddleName string     `json:"middle_name,omitempty"`
	Rank       string     `json:"rank"`
	Training   string     `json:"training"`
	Weapon     string     `json:"weapon,omitempty"`
	Callsign   string     `json:"callsign,omitempty"`
	PositionID *uuid.UUID `json:"position_id,omitempty"`
}

// PlanAction is a scheduled movement record progressing from draft to
// approved. EffectiveAtUTC is strictly increasing per person.
type PlanAction struct {
	ID             int64
	PersonID       uuid.UUID
	Name           string
	EffectiveAtUTC time.Time
	State          PlanActionState
	MoveType       MoveType
	Location       string
	Group          string
	Crew           string
	Note           string
	Order          int
	Snapshot       AttributeSnapshot
	Modified       time.Time
}
