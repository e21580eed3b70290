package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
	"github.com/iota-uz/personnel/modules/personnel/services"
	"github.com/iota-uz/personnel/pkg/composables"
)

// fakeTx satisfies pgx.Tx for the context; the mocked repositories
// never touch the connection, so the embedded interface stays nil.
type fakeTx struct{ pgx.Tx }

func txContext() context.Context {
	return composables.WithTx(context.Background(), fakeTx{})
}

type countingPersonRepo struct {
	loads    int
	saves    int
	saveErrs []error
	entity   func() *person.Person
}

func (m *countingPersonRepo) Load(context.Context, uuid.UUID) (*person.Person, error) {
	m.loads++
	return m.entity(), nil
}

func (m *countingPersonRepo) Save(context.Context, *person.Person) error {
	m.saves++
	if len(m.saveErrs) > 0 {
		err := m.saveErrs[0]
		m.saveErrs = m.saveErrs[1:]
		return err
	}
	return nil
}

func (m *countingPersonRepo) LoadHistorySlice(context.Context, []uuid.UUID, time.Time) (map[uuid.UUID]person.HistorySlice, error) {
	return nil, nil
}

type publisherMock struct{ published []any }

func (p *publisherMock) Publish(args ...interface{}) { p.published = append(p.published, args...) }
func (p *publisherMock) Subscribe(interface{})       {}
func (p *publisherMock) Unsubscribe(interface{})     {}
func (p *publisherMock) Clear()                      { p.published = nil }
func (p *publisherMock) SubscribersCount() int       { return 0 }

func storedPerson(id uuid.UUID) *person.Person {
	return person.Hydrate(
		id,
		1,
		person.HydratePersonalInfo("1234567890", "Ivanov", "Ivan", ""),
		person.HydrateMilitaryDetails("sergeant", "infantry", "", ""),
		[]person.StatusRecord{
			{ID: 1, PersonID: id, StatusKindID: 1, OpenDate: sept(1), Sequence: 0, IsActive: true},
		},
		nil,
		nil,
		sept(1),
		sept(1),
	)
}

func newPersonService(repo person.Repository, publisher *publisherMock) *services.PersonService {
	kinds := &statusKindRepoMock{
		kinds: testKinds(),
		edges: []statuskind.TransitionEdge{{FromID: 1, ToID: 2}},
	}
	return services.NewPersonService(repo, kinds, nil, publisher, "HOME")
}

func TestPersonService_RetriesOnceOnConflict(t *testing.T) {
	personID := uuid.New()
	repo := &countingPersonRepo{
		saveErrs: []error{person.ErrVersionConflict},
		entity:   func() *person.Person { return storedPerson(personID) },
	}
	publisher := &publisherMock{}
	svc := newPersonService(repo, publisher)

	err := svc.ChangeStatus(txContext(), personID, 2, sept(5), "", "clerk")
	require.NoError(t, err)
	require.Equal(t, 2, repo.loads)
	require.Equal(t, 2, repo.saves)
	require.Len(t, publisher.published, 1)
	_, ok := publisher.published[0].(person.StatusChangedEvent)
	require.True(t, ok)
}

func TestPersonService_SurfacesRepeatedConflict(t *testing.T) {
	personID := uuid.New()
	repo := &countingPersonRepo{
		saveErrs: []error{person.ErrVersionConflict, person.ErrVersionConflict},
		entity:   func() *person.Person { return storedPerson(personID) },
	}
	publisher := &publisherMock{}
	svc := newPersonService(repo, publisher)

	err := svc.ChangeStatus(txContext(), personID, 2, sept(5), "", "clerk")
	var conflict *person.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, 2, repo.loads)
	require.Equal(t, 2, repo.saves)
	require.Empty(t, publisher.published)
}

func TestPersonService_DoesNotRetryOtherErrors(t *testing.T) {
	personID := uuid.New()
	storeDown := errors.New("store unavailable")
	repo := &countingPersonRepo{
		saveErrs: []error{storeDown},
		entity:   func() *person.Person { return storedPerson(personID) },
	}
	publisher := &publisherMock{}
	svc := newPersonService(repo, publisher)

	err := svc.ChangeStatus(txContext(), personID, 2, sept(5), "", "clerk")
	require.ErrorIs(t, err, storeDown)
	require.Equal(t, 1, repo.loads)
	require.Equal(t, 1, repo.saves)
	require.Empty(t, publisher.published)
}

func TestPersonService_CreatePublishesAfterSave(t *testing.T) {
	repo := &countingPersonRepo{}
	publisher := &publisherMock{}
	svc := newPersonService(repo, publisher)

	info, err := person.NewPersonalInfo("1234567890", "Ivanov", "Ivan", "")
	require.NoError(t, err)
	details, err := person.NewMilitaryDetails("sergeant", "infantry", "", "")
	require.NoError(t, err)

	created, err := svc.Create(txContext(), services.CreateInput{
		Info:            info,
		Military:        details,
		InitialStatusID: 1,
		OpenDate:        sept(1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, repo.saves)
	require.Len(t, publisher.published, 1)
	ev, ok := publisher.published[0].(person.CreatedEvent)
	require.True(t, ok)
	require.Equal(t, created.ID(), ev.PersonID)
}

func TestPersonService_CreateFailedSavePublishesNothing(t *testing.T) {
	repo := &countingPersonRepo{saveErrs: []error{errors.New("store unavailable")}}
	publisher := &publisherMock{}
	svc := newPersonService(repo, publisher)

	info, err := person.NewPersonalInfo("1234567890", "Ivanov", "Ivan", "")
	require.NoError(t, err)
	details, err := person.NewMilitaryDetails("sergeant", "infantry", "", "")
	require.NoError(t, err)

	_, err = svc.Create(txContext(), services.CreateInput{
		Info:            info,
		Military:        details,
		InitialStatusID: 1,
		OpenDate:        sept(1),
	})
	require.Error(t, err)
	require.Empty(t, publisher.published)
}
