package person

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TransitionPolicy validates edges of the status state machine. The
// statuskind package provides the reference-data-backed implementation.
type TransitionPolicy interface {
	IsValidInitialStatus(statusID int64) bool
	IsTransitionAllowed(from *int64, to int64) bool
}

// AssignmentPolicy confirms a position is eligible and unoccupied. It
// must be evaluated inside the same transaction as the write it guards.
type AssignmentPolicy interface {
	CanAssign(ctx context.Context, positionID uuid.UUID) error
}

// Person is the single write boundary for a person's lifecycle. Status
// records, assignments and plan actions are created only through its
// methods and are append-only from the write side.
type Person struct {
	id       uuid.UUID
	version  int64
	info     PersonalInfo
	military MilitaryDetails

	currentStatusID   int64
	currentStatusOpen time.Time

	statusHistory []StatusRecord
	assignments   []PositionAssignment
	planActions   []PlanAction

	events []any

	createdAt time.Time
	updatedAt time.Time
}

func New(
	info PersonalInfo,
	military MilitaryDetails,
	initialStatusID int64,
	openDate time.Time,
	policy TransitionPolicy,
) (*Person, error) {
	if !policy.IsValidInitialStatus(initialStatusID) {
		return nil, NewDomainError("INITIAL_STATUS_INVALID", "status is not a valid entry point")
	}

	now := time.Now().UTC()
	open := openDate.UTC()
	p := &Person{
		id:                uuid.New(),
		info:              info,
		military:          military,
		currentStatusID:   initialStatusID,
		currentStatusOpen: open,
		createdAt:         now,
		updatedAt:         now,
	}
	p.statusHistory = append(p.statusHistory, StatusRecord{
		PersonID:     p.id,
		StatusKindID: initialStatusID,
		OpenDate:     open,
		Sequence:     0,
		IsActive:     true,
		Modified:     now,
	})
	p.record(CreatedEvent{PersonID: p.id, InitialStatusID: initialStatusID, OpenDate: open})
	return p, nil
}

// Hydrate rebuilds an aggregate from persisted state. It performs no
// validation; the store is trusted.
func Hydrate(
	id uuid.UUID,
	version int64,
	info PersonalInfo,
	military MilitaryDetails,
	history []StatusRecord,
	assignments []PositionAssignment,
	planActions []PlanAction,
	createdAt time.Time,
	updatedAt time.Time,
) *Person {
	p := &Person{
		id:            id,
		version:       version,
		info:          info,
		military:      military,
		statusHistory: history,
		assignments:   assignments,
		planActions:   planActions,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
	p.recomputeCurrentStatus()
	return p
}

func (p *Person) ID() uuid.UUID                     { return p.id }
func (p *Person) Version() int64                    { return p.version }
func (p *Person) Info() PersonalInfo                { return p.info }
func (p *Person) Military() MilitaryDetails         { return p.military }
func (p *Person) CurrentStatusID() int64            { return p.currentStatusID }
func (p *Person) CurrentStatusOpen() time.Time      { return p.currentStatusOpen }
func (p *Person) StatusHistory() []StatusRecord     { return p.statusHistory }
func (p *Person) Assignments() []PositionAssignment { return p.assignments }
func (p *Person) PlanActions() []PlanAction         { return p.planActions }
func (p *Person) CreatedAt() time.Time              { return p.createdAt }
func (p *Person) UpdatedAt() time.Time              { return p.updatedAt }

// DrainEvents returns accumulated domain events in order and clears
// the queue. Called by the service after a successful save.
func (p *Person) DrainEvents() []any {
	out := p.events
	p.events = nil
	return out
}

func (p *Person) record(ev any) {
	p.events = append(p.events, ev)
}

// ChangeStatus appends a status record after validating the transition
// edge and temporal ordering against the current status.
func (p *Person) ChangeStatus(newStatusID int64, effectiveAt time.Time, policy TransitionPolicy, note, author string) error {
	from := p.currentStatusID
	if !policy.IsTransitionAllowed(&from, newStatusID) {
		return NewDomainError("TRANSITION_NOT_ALLOWED", "status transition is not permitted")
	}

	at := effectiveAt.UTC()
	if at.Before(p.currentStatusOpen) {
		return NewDomainError("STATUS_OUT_OF_ORDER", "effective date precedes the current status")
	}

	now := time.Now().UTC()
	p.statusHistory = append(p.statusHistory, StatusRecord{
		PersonID:     p.id,
		StatusKindID: newStatusID,
		OpenDate:     at,
		Sequence:     p.maxSequenceAt(at) + 1,
		IsActive:     true,
		Note:         note,
		Author:       author,
		Modified:     now,
	})
	p.currentStatusID = newStatusID
	p.currentStatusOpen = at
	p.updatedAt = now
	p.record(StatusChangedEvent{PersonID: p.id, FromStatusID: &from, ToStatusID: newStatusID, EffectiveAt: at})
	return nil
}

// AssignToPosition opens a new assignment, closing any prior open one
// at openAt minus one day. The policy check and the append must share
// one transaction; the caller owns that boundary.
func (p *Person) AssignToPosition(ctx context.Context, positionID uuid.UUID, openAt time.Time, policy AssignmentPolicy, note, author string) error {
	if err := policy.CanAssign(ctx, positionID); err != nil {
		return err
	}

	at := openAt.UTC()
	now := time.Now().UTC()
	closedPrior := false

	if last := p.lastAssignment(); last != nil && !at.After(last.OpenUTC) {
		return NewDomainError("ASSIGNMENT_OUT_OF_ORDER", "open date must exceed the previous assignment's open date")
	}
	if open := p.openAssignment(); open != nil {
		open.CloseUTC = at.AddDate(0, 0, -1)
		open.Modified = now
		closedPrior = true
	}

	p.assignments = append(p.assignments, PositionAssignment{
		PersonID:   p.id,
		PositionID: positionID,
		OpenUTC:    at,
		Note:       note,
		Author:     author,
		Modified:   now,
	})
	p.updatedAt = now
	p.record(AssignedToPositionEvent{PersonID: p.id, PositionID: positionID, OpenUTC: at, ClosedPrior: closedPrior})
	return nil
}

// UnassignFromPosition closes the open assignment at closeAt.
func (p *Person) UnassignFromPosition(closeAt time.Time, note, author string) error {
	open := p.openAssignment()
	if open == nil {
		return NewDomainError("NO_ACTIVE_ASSIGNMENT", "no active assignment")
	}

	at := closeAt.UTC()
	if !at.After(open.OpenUTC) {
		return NewDomainError("UNASSIGN_OUT_OF_ORDER", "close date must exceed the assignment's open date")
	}

	now := time.Now().UTC()
	open.CloseUTC = at
	if note != "" {
		open.Note = note
	}
	open.Modified = now
	p.updatedAt = now
	p.record(UnassignedFromPositionEvent{PersonID: p.id, PositionID: open.PositionID, CloseUTC: at})
	return nil
}

// CreatePlanAction appends a movement plan carrying a frozen snapshot
// of the person's current attributes.
func (p *Person) CreatePlanAction(name string, effectiveAt time.Time, moveType MoveType, location, group, crew, note string) error {
	at := effectiveAt.UTC()
	if n := len(p.planActions); n > 0 && !at.After(p.planActions[n-1].EffectiveAtUTC) {
		return NewDomainError("PLAN_ACTION_OUT_OF_ORDER", "effective date must exceed the latest plan action")
	}

	now := time.Now().UTC()
	snapshot := AttributeSnapshot{
		NationalID: p.info.NationalID(),
		LastName:   p.info.LastName(),
		FirstName:  p.info.FirstName(),
		MiddleName: p.info.MiddleName(),
		Rank:       p.military.Rank(),
		Training:   p.military.Training(),
		Weapon:     p.military.Weapon(),
		Callsign:   p.military.Callsign(),
	}
	if open := p.openAssignment(); open != nil {
		positionID := open.PositionID
		snapshot.PositionID = &positionID
	}

	p.planActions = append(p.planActions, PlanAction{
		PersonID:       p.id,
		Name:           name,
		EffectiveAtUTC: at,
		State:          PlanActionDraft,
		MoveType:       moveType,
		Location:       location,
		Group:          group,
		Crew:           crew,
		Note:           note,
		Order:          len(p.planActions) + 1,
		Snapshot:       snapshot,
		Modified:       now,
	})
	p.updatedAt = now
	p.record(PlanActionCreatedEvent{PersonID: p.id, Name: name, EffectiveAt: at, MoveType: moveType})
	return nil
}

// ApprovePlanAction moves a draft plan action to approved.
func (p *Person) ApprovePlanAction(planActionID int64) error {
	for i := range p.planActions {
		if p.planActions[i].ID != planActionID {
			continue
		}
		if p.planActions[i].State != PlanActionDraft {
			return NewDomainError("PLAN_ACTION_NOT_DRAFT", "plan action is already approved")
		}
		now := time.Now().UTC()
		p.planActions[i].State = PlanActionApproved
		p.planActions[i].Modified = now
		p.updatedAt = now
		p.record(PlanActionApprovedEvent{PersonID: p.id, Name: p.planActions[i].Name})
		return nil
	}
	return NewNotFoundError("PLAN_ACTION_NOT_FOUND", "plan action not found")
}

// UpdatePersonalInfo replaces the identity bundle without a history
// entry.
func (p *Person) UpdatePersonalInfo(info PersonalInfo) {
	p.info = info
	p.updatedAt = time.Now().UTC()
}

// UpdateMilitaryDetails replaces the attribute bundle without a history
// entry.
func (p *Person) UpdateMilitaryDetails(details MilitaryDetails) {
	p.military = details
	p.updatedAt = time.Now().UTC()
}

// DeactivateStatusRecord soft-deletes a history row, making it
// invisible to all resolution.
func (p *Person) DeactivateStatusRecord(recordID int64) error {
	for i := range p.statusHistory {
		if p.statusHistory[i].ID != recordID {
			continue
		}
		if !p.statusHistory[i].IsActive {
			return NewDomainError("STATUS_RECORD_INACTIVE", "status record is already deactivated")
		}
		now := time.Now().UTC()
		p.statusHistory[i].IsActive = false
		p.statusHistory[i].Modified = now
		p.updatedAt = now
		p.recomputeCurrentStatus()
		return nil
	}
	return NewNotFoundError("STATUS_RECORD_NOT_FOUND", "status record not found")
}

// ReactivateStatusRecord re-enables a soft-deleted row. The sequence is
// bumped past every active row sharing the exact open date so the
// (person, openDate, sequence) uniqueness constraint cannot trip; the
// DB constraint remains the backstop under concurrency.
func (p *Person) ReactivateStatusRecord(recordID int64) error {
	for i := range p.statusHistory {
		if p.statusHistory[i].ID != recordID {
			continue
		}
		if p.statusHistory[i].IsActive {
			return NewDomainError("STATUS_RECORD_ACTIVE", "status record is already active")
		}
		now := time.Now().UTC()
		p.statusHistory[i].Sequence = p.maxSequenceAt(p.statusHistory[i].OpenDate) + 1
		p.statusHistory[i].IsActive = true
		p.statusHistory[i].Modified = now
		p.updatedAt = now
		p.recomputeCurrentStatus()
		return nil
	}
	return NewNotFoundError("STATUS_RECORD_NOT_FOUND", "status record not found")
}

// maxSequenceAt returns the highest sequence among active rows sharing
// the exact instant, or -1 when none exist.
func (p *Person) maxSequenceAt(at time.Time) int32 {
	max := int32(-1)
	for i := range p.statusHistory {
		r := &p.statusHistory[i]
		if r.IsActive && r.OpenDate.Equal(at) && r.Sequence > max {
			max = r.Sequence
		}
	}
	return max
}

func (p *Person) openAssignment() *PositionAssignment {
	for i := range p.assignments {
		if p.assignments[i].IsOpen() {
			return &p.assignments[i]
		}
	}
	return nil
}

func (p *Person) lastAssignment() *PositionAssignment {
	if len(p.assignments) == 0 {
		return nil
	}
	return &p.assignments[len(p.assignments)-1]
}

// OpenAssignment returns a copy of the currently open assignment.
func (p *Person) OpenAssignment() (PositionAssignment, bool) {
	if open := p.openAssignment(); open != nil {
		return *open, true
	}
	return PositionAssignment{}, false
}

// recomputeCurrentStatus repoints the current-status pointer at the
// latest active row by (openDate, sequence, id).
func (p *Person) recomputeCurrentStatus() {
	var current *StatusRecord
	for i := range p.statusHistory {
		r := &p.statusHistory[i]
		if !r.IsActive {
			continue
		}
		if current == nil || laterRecord(r, current) {
			current = r
		}
	}
	if current == nil {
		p.currentStatusID = 0
		p.currentStatusOpen = time.Time{}
		return
	}
	p.currentStatusID = current.StatusKindID
	p.currentStatusOpen = current.OpenDate
}

func laterRecord(a, b *StatusRecord) bool {
	if !a.OpenDate.Equal(b.OpenDate) {
		return a.OpenDate.After(b.OpenDate)
	}
	if a.Sequence != b.Sequence {
		return a.Sequence > b.Sequence
	}
	return a.ID > b.ID
}
