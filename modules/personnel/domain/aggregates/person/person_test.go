package person_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
)

const (
	statusHome     int64 = 1
	statusTraining int64 = 2
	statusMission  int64 = 3
)

func testPolicy(t *testing.T) *statuskind.TransitionPolicy {
	t.Helper()
	policy, err := statuskind.NewTransitionPolicy(statusHome, []statuskind.TransitionEdge{
		{FromID: statusHome, ToID: statusTraining},
		{FromID: statusTraining, ToID: statusMission},
		{FromID: statusMission, ToID: statusHome},
	})
	require.NoError(t, err)
	return policy
}

func day(d int) time.Time {
	return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC)
}

func newPerson(t *testing.T) *person.Person {
	t.Helper()
	info, err := person.NewPersonalInfo("1234567890", "Ivanov", "Ivan", "")
	require.NoError(t, err)
	details, err := person.NewMilitaryDetails("sergeant", "infantry", "", "")
	require.NoError(t, err)
	p, err := person.New(info, details, statusHome, day(1), testPolicy(t))
	require.NoError(t, err)
	return p
}

type allowAllPolicy struct{}

func (allowAllPolicy) CanAssign(context.Context, uuid.UUID) error { return nil }

type denyPolicy struct{ err error }

func (p denyPolicy) CanAssign(context.Context, uuid.UUID) error { return p.err }

func TestNew_RejectsNonEntryStatus(t *testing.T) {
	info, err := person.NewPersonalInfo("1234567890", "Ivanov", "Ivan", "")
	require.NoError(t, err)
	details, err := person.NewMilitaryDetails("sergeant", "infantry", "", "")
	require.NoError(t, err)

	_, err = person.New(info, details, statusTraining, day(1), testPolicy(t))
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "INITIAL_STATUS_INVALID", derr.Code)
}

func TestNew_SeedsHistoryAndEvent(t *testing.T) {
	p := newPerson(t)

	require.Len(t, p.StatusHistory(), 1)
	require.Equal(t, statusHome, p.CurrentStatusID())
	require.Equal(t, int32(0), p.StatusHistory()[0].Sequence)
	require.True(t, p.StatusHistory()[0].IsActive)

	events := p.DrainEvents()
	require.Len(t, events, 1)
	created, ok := events[0].(person.CreatedEvent)
	require.True(t, ok)
	require.Equal(t, p.ID(), created.PersonID)
	require.Empty(t, p.DrainEvents())
}

func TestChangeStatus_AllowedEdge(t *testing.T) {
	p := newPerson(t)
	policy := testPolicy(t)

	require.NoError(t, p.ChangeStatus(statusTraining, day(5), policy, "rotation", "clerk"))
	require.Len(t, p.StatusHistory(), 2)
	require.Equal(t, statusTraining, p.CurrentStatusID())
	require.Equal(t, day(5), p.CurrentStatusOpen())
}

func TestChangeStatus_RejectsEarlierEffectiveDate(t *testing.T) {
	p := newPerson(t)
	policy := testPolicy(t)
	require.NoError(t, p.ChangeStatus(statusTraining, day(5), policy, "", ""))

	err := p.ChangeStatus(statusMission, day(3), policy, "", "")
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "STATUS_OUT_OF_ORDER", derr.Code)
	require.Len(t, p.StatusHistory(), 2)
	require.Equal(t, statusTraining, p.CurrentStatusID())
}

func TestChangeStatus_RejectsMissingEdge(t *testing.T) {
	p := newPerson(t)
	policy := testPolicy(t)
	require.NoError(t, p.ChangeStatus(statusTraining, day(5), policy, "", ""))

	// training -> home is not an edge of the graph.
	err := p.ChangeStatus(statusHome, day(6), policy, "", "")
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "TRANSITION_NOT_ALLOWED", derr.Code)
	require.Len(t, p.StatusHistory(), 2)
}

func TestChangeStatus_SameInstantBumpsSequence(t *testing.T) {
	p := newPerson(t)
	policy := testPolicy(t)

	require.NoError(t, p.ChangeStatus(statusTraining, day(1), policy, "", ""))
	history := p.StatusHistory()
	require.Len(t, history, 2)
	require.Equal(t, int32(0), history[0].Sequence)
	require.Equal(t, int32(1), history[1].Sequence)
}

func TestAssignToPosition_AutoClosesPrior(t *testing.T) {
	ctx := context.Background()
	p := newPerson(t)
	p.DrainEvents()
	p1 := uuid.New()
	p2 := uuid.New()

	require.NoError(t, p.AssignToPosition(ctx, p1, day(1), allowAllPolicy{}, "", "clerk"))
	require.NoError(t, p.AssignToPosition(ctx, p2, day(3), allowAllPolicy{}, "", "clerk"))

	assignments := p.Assignments()
	require.Len(t, assignments, 2)
	require.Equal(t, day(2), assignments[0].CloseUTC)
	require.False(t, assignments[0].IsOpen())
	require.True(t, assignments[1].IsOpen())

	events := p.DrainEvents()
	require.Len(t, events, 2)
	second, ok := events[1].(person.AssignedToPositionEvent)
	require.True(t, ok)
	require.True(t, second.ClosedPrior)
}

func TestAssignToPosition_RejectsNonIncreasingOpenDate(t *testing.T) {
	ctx := context.Background()
	p := newPerson(t)
	require.NoError(t, p.AssignToPosition(ctx, uuid.New(), day(3), allowAllPolicy{}, "", ""))

	err := p.AssignToPosition(ctx, uuid.New(), day(3), allowAllPolicy{}, "", "")
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "ASSIGNMENT_OUT_OF_ORDER", derr.Code)
	require.Len(t, p.Assignments(), 1)
}

func TestAssignToPosition_PolicyRejectionLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	p := newPerson(t)
	rejection := person.NewDomainError("POSITION_OCCUPIED", "position is already occupied")

	err := p.AssignToPosition(ctx, uuid.New(), day(1), denyPolicy{err: rejection}, "", "")
	require.ErrorIs(t, err, rejection)
	require.Empty(t, p.Assignments())
}

func TestUnassignFromPosition(t *testing.T) {
	ctx := context.Background()
	p := newPerson(t)
	require.NoError(t, p.AssignToPosition(ctx, uuid.New(), day(1), allowAllPolicy{}, "", ""))

	require.NoError(t, p.UnassignFromPosition(day(5), "rotation", "clerk"))
	_, open := p.OpenAssignment()
	require.False(t, open)
	require.Equal(t, day(5), p.Assignments()[0].CloseUTC)

	err := p.UnassignFromPosition(day(6), "", "")
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "NO_ACTIVE_ASSIGNMENT", derr.Code)
	require.Equal(t, "no active assignment", derr.Message)
}

func TestUnassignFromPosition_RejectsCloseAtOrBeforeOpen(t *testing.T) {
	ctx := context.Background()
	p := newPerson(t)
	require.NoError(t, p.AssignToPosition(ctx, uuid.New(), day(3), allowAllPolicy{}, "", ""))

	err := p.UnassignFromPosition(day(3), "", "")
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "UNASSIGN_OUT_OF_ORDER", derr.Code)
	_, open := p.OpenAssignment()
	require.True(t, open)
}

func TestCreatePlanAction_OrderingAndSnapshot(t *testing.T) {
	ctx := context.Background()
	p := newPerson(t)
	positionID := uuid.New()
	require.NoError(t, p.AssignToPosition(ctx, positionID, day(1), allowAllPolicy{}, "", ""))

	require.NoError(t, p.CreatePlanAction("dispatch north", day(5), person.MoveDispatch, "north", "g1", "c1", ""))

	err := p.CreatePlanAction("dup", day(5), person.MoveDispatch, "", "", "", "")
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "PLAN_ACTION_OUT_OF_ORDER", derr.Code)

	require.NoError(t, p.CreatePlanAction("return", day(9), person.MoveReturn, "", "", "", ""))
	actions := p.PlanActions()
	require.Len(t, actions, 2)
	require.Equal(t, 1, actions[0].Order)
	require.Equal(t, 2, actions[1].Order)

	snapshot := actions[0].Snapshot
	require.Equal(t, "1234567890", snapshot.NationalID)
	require.Equal(t, "sergeant", snapshot.Rank)
	require.NotNil(t, snapshot.PositionID)
	require.Equal(t, positionID, *snapshot.PositionID)
}

func TestCreatePlanAction_SnapshotIsFrozen(t *testing.T) {
	p := newPerson(t)
	require.NoError(t, p.CreatePlanAction("dispatch", day(5), person.MoveDispatch, "", "", "", ""))

	renamed, err := person.NewPersonalInfo("1234567890", "Petrov", "Ivan", "")
	require.NoError(t, err)
	p.UpdatePersonalInfo(renamed)

	require.Equal(t, "Petrov", p.Info().LastName())
	require.Equal(t, "Ivanov", p.PlanActions()[0].Snapshot.LastName)
}

func TestApprovePlanAction(t *testing.T) {
	p := newPerson(t)
	require.NoError(t, p.CreatePlanAction("dispatch", day(5), person.MoveDispatch, "", "", "", ""))

	require.NoError(t, p.ApprovePlanAction(0))
	require.Equal(t, person.PlanActionApproved, p.PlanActions()[0].State)

	err := p.ApprovePlanAction(0)
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "PLAN_ACTION_NOT_DRAFT", derr.Code)

	var nferr *person.NotFoundError
	require.ErrorAs(t, p.ApprovePlanAction(99), &nferr)
}

func hydrated(t *testing.T, history []person.StatusRecord) *person.Person {
	t.Helper()
	return person.Hydrate(
		uuid.New(),
		1,
		person.HydratePersonalInfo("1234567890", "Ivanov", "Ivan", ""),
		person.HydrateMilitaryDetails("sergeant", "infantry", "", ""),
		history,
		nil,
		nil,
		day(1),
		day(1),
	)
}

func TestDeactivateStatusRecord_RecomputesCurrent(t *testing.T) {
	p := hydrated(t, []person.StatusRecord{
		{ID: 1, StatusKindID: statusHome, OpenDate: day(1), Sequence: 0, IsActive: true},
		{ID: 2, StatusKindID: statusTraining, OpenDate: day(3), Sequence: 0, IsActive: true},
	})
	require.Equal(t, statusTraining, p.CurrentStatusID())

	require.NoError(t, p.DeactivateStatusRecord(2))
	require.Equal(t, statusHome, p.CurrentStatusID())
	require.Equal(t, day(1), p.CurrentStatusOpen())

	err := p.DeactivateStatusRecord(2)
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "STATUS_RECORD_INACTIVE", derr.Code)
}

func TestReactivateStatusRecord_BumpsSequencePastActivePeers(t *testing.T) {
	p := hydrated(t, []person.StatusRecord{
		{ID: 1, StatusKindID: statusHome, OpenDate: day(1), Sequence: 0, IsActive: true},
		{ID: 2, StatusKindID: statusTraining, OpenDate: day(3), Sequence: 0, IsActive: false},
		{ID: 3, StatusKindID: statusMission, OpenDate: day(3), Sequence: 1, IsActive: true},
	})
	require.Equal(t, statusMission, p.CurrentStatusID())

	require.NoError(t, p.ReactivateStatusRecord(2))
	history := p.StatusHistory()
	require.True(t, history[1].IsActive)
	require.Equal(t, int32(2), history[1].Sequence)
	require.Equal(t, statusTraining, p.CurrentStatusID())

	err := p.ReactivateStatusRecord(2)
	var derr *person.DomainError
	require.ErrorAs(t, err, &derr)
	require.Equal(t, "STATUS_RECORD_ACTIVE", derr.Code)

	var nferr *person.NotFoundError
	require.ErrorAs(t, p.ReactivateStatusRecord(42), &nferr)
}
