package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/position"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
	"github.com/iota-uz/personnel/pkg/composables"
	"github.com/iota-uz/personnel/pkg/eventbus"
	"github.com/iota-uz/personnel/pkg/metrics"
)

// PersonService orchestrates the write boundary: one transaction per
// mutation, optimistic-conflict retry, domain events published after a
// successful save.
type PersonService struct {
	repo           person.Repository
	kinds          statuskind.Repository
	positions      position.Repository
	publisher      eventbus.EventBus
	homeStatusCode string
}

func NewPersonService(
	repo person.Repository,
	kinds statuskind.Repository,
	positions position.Repository,
	publisher eventbus.EventBus,
	homeStatusCode string,
) *PersonService {
	return &PersonService{
		repo:           repo,
		kinds:          kinds,
		positions:      positions,
		publisher:      publisher,
		homeStatusCode: homeStatusCode,
	}
}

func (s *PersonService) transitionPolicy(ctx context.Context) (person.TransitionPolicy, error) {
	kinds, err := s.kinds.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	home, ok := statuskind.FindByCode(kinds, s.homeStatusCode)
	if !ok {
		return nil, person.NewNotFoundError("HOME_STATUS_NOT_FOUND", "home status kind is missing from reference data")
	}
	edges, err := s.kinds.GetEdges(ctx)
	if err != nil {
		return nil, err
	}
	return statuskind.NewTransitionPolicy(home.ID, edges)
}

type CreateInput struct {
	Info            person.PersonalInfo
	Military        person.MilitaryDetails
	InitialStatusID int64
	OpenDate        time.Time
}

func (s *PersonService) Create(ctx context.Context, input CreateInput) (*person.Person, error) {
	entity, err := composables.InTxResult(ctx, func(txCtx context.Context) (*person.Person, error) {
		policy, err := s.transitionPolicy(txCtx)
		if err != nil {
			return nil, err
		}
		entity, err := person.New(input.Info, input.Military, input.InitialStatusID, input.OpenDate, policy)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Save(txCtx, entity); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, err
	}
	s.publishAll(entity.DrainEvents())
	return entity, nil
}

func (s *PersonService) GetByID(ctx context.Context, personID uuid.UUID) (*person.Person, error) {
	return composables.InTxResult(ctx, func(txCtx context.Context) (*person.Person, error) {
		return s.repo.Load(txCtx, personID)
	})
}

func (s *PersonService) ChangeStatus(ctx context.Context, personID uuid.UUID, newStatusID int64, effectiveAt time.Time, note, author string) error {
	return s.mutate(ctx, personID, func(txCtx context.Context, entity *person.Person) error {
		policy, err := s.transitionPolicy(txCtx)
		if err != nil {
			return err
		}
		return entity.ChangeStatus(newStatusID, effectiveAt, policy, note, author)
	})
}

func (s *PersonService) AssignToPosition(ctx context.Context, personID, positionID uuid.UUID, openAt time.Time, note, author string) error {
	return s.mutate(ctx, personID, func(txCtx context.Context, entity *person.Person) error {
		return entity.AssignToPosition(txCtx, positionID, openAt, NewAssignmentPolicy(s.positions), note, author)
	})
}

func (s *PersonService) UnassignFromPosition(ctx context.Context, personID uuid.UUID, closeAt time.Time, note, author string) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		return entity.UnassignFromPosition(closeAt, note, author)
	})
}

type PlanActionInput struct {
	Name        string
	EffectiveAt time.Time
	MoveType    person.MoveType
	Location    string
	Group       string
	Crew        string
	Note        string
}

func (s *PersonService) CreatePlanAction(ctx context.Context, personID uuid.UUID, input PlanActionInput) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		return entity.CreatePlanAction(input.Name, input.EffectiveAt, input.MoveType, input.Location, input.Group, input.Crew, input.Note)
	})
}

func (s *PersonService) ApprovePlanAction(ctx context.Context, personID uuid.UUID, planActionID int64) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		return entity.ApprovePlanAction(planActionID)
	})
}

func (s *PersonService) UpdatePersonalInfo(ctx context.Context, personID uuid.UUID, info person.PersonalInfo) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		entity.UpdatePersonalInfo(info)
		return nil
	})
}

func (s *PersonService) UpdateMilitaryDetails(ctx context.Context, personID uuid.UUID, details person.MilitaryDetails) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		entity.UpdateMilitaryDetails(details)
		return nil
	})
}

func (s *PersonService) DeactivateStatusRecord(ctx context.Context, personID uuid.UUID, recordID int64) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		return entity.DeactivateStatusRecord(recordID)
	})
}

func (s *PersonService) ReactivateStatusRecord(ctx context.Context, personID uuid.UUID, recordID int64) error {
	return s.mutate(ctx, personID, func(_ context.Context, entity *person.Person) error {
		return entity.ReactivateStatusRecord(recordID)
	})
}

// mutate runs one load-modify-save cycle in a transaction. A conflict
// aborts the transaction and the whole cycle is retried once; repeated
// conflict surfaces to the caller as a retryable error. Events are
// drained inside the cycle but published only once it has committed.
func (s *PersonService) mutate(ctx context.Context, personID uuid.UUID, fn func(context.Context, *person.Person) error) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		var events []any
		err := composables.InTx(ctx, func(txCtx context.Context) error {
			entity, err := s.repo.Load(txCtx, personID)
			if err != nil {
				return err
			}
			if err := fn(txCtx, entity); err != nil {
				return err
			}
			if err := s.repo.Save(txCtx, entity); err != nil {
				return err
			}
			events = entity.DrainEvents()
			return nil
		})
		if err == nil {
			s.publishAll(events)
			return nil
		}

		var conflict *person.ConflictError
		if errors.As(err, &conflict) {
			metrics.SaveConflicts.Inc()
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}

func (s *PersonService) publishAll(events []any) {
	for _, ev := range events {
		s.publisher.Publish(ev)
	}
}
