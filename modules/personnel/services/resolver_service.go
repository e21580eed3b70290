package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
	"github.com/iota-uz/personnel/pkg/metrics"
)

// ResolverService is the read path. It never mutates stored rows and
// runs lock-free against the history the repository hands it.
type ResolverService struct {
	persons        person.Repository
	kinds          statuskind.Repository
	homeStatusCode string
}

func NewResolverService(persons person.Repository, kinds statuskind.Repository, homeStatusCode string) *ResolverService {
	return &ResolverService{
		persons:        persons,
		kinds:          kinds,
		homeStatusCode: homeStatusCode,
	}
}

func (s *ResolverService) buildResolver(ctx context.Context) (*Resolver, error) {
	kinds, err := s.kinds.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return NewResolver(kinds, s.homeStatusCode), nil
}

// GetStatusAsOf resolves one person's status at an exact instant.
func (s *ResolverService) GetStatusAsOf(ctx context.Context, personID uuid.UUID, instant time.Time) (*ResolvedStatus, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.WithLabelValues("asof").Observe(time.Since(start).Seconds())
	}()

	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}
	slices, err := s.persons.LoadHistorySlice(ctx, []uuid.UUID{personID}, instant.UTC())
	if err != nil {
		return nil, err
	}
	return resolver.StatusAsOf(slices[personID], instant), nil
}

// ResolveOnDate resolves a batch of persons as of the end of one local
// calendar day. The day boundary is converted to UTC once and applied
// uniformly to the whole batch.
func (s *ResolverService) ResolveOnDate(ctx context.Context, personIDs []uuid.UUID, year int, month time.Month, day int, loc *time.Location) (map[uuid.UUID]*ResolvedStatus, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.WithLabelValues("on_date").Observe(time.Since(start).Seconds())
	}()

	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	dayEnd := DayEndUTC(year, month, day, loc)
	slices, err := s.persons.LoadHistorySlice(ctx, personIDs, dayEnd)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]*ResolvedStatus, len(personIDs))
	for _, id := range personIDs {
		out[id] = resolver.StatusAsOf(slices[id], dayEnd)
	}
	return out, nil
}

// ResolveMonth produces the per-person, per-day status matrix for one
// calendar month. Persons resolve independently, so the sweep fans out
// across goroutines; each person costs O(daysInMonth + historySize).
func (s *ResolverService) ResolveMonth(ctx context.Context, personIDs []uuid.UUID, year int, month time.Month, loc *time.Location) (map[uuid.UUID][]*ResolvedStatus, error) {
	start := time.Now()
	defer func() {
		metrics.ResolveDuration.WithLabelValues("month").Observe(time.Since(start).Seconds())
	}()

	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	dayEnds := MonthDayEndsUTC(year, month, loc)
	slices, err := s.persons.LoadHistorySlice(ctx, personIDs, dayEnds[len(dayEnds)-1])
	if err != nil {
		return nil, err
	}

	results := make([][]*ResolvedStatus, len(personIDs))
	g, gCtx := errgroup.WithContext(ctx)
	for i, id := range personIDs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = resolver.ResolveDays(slices[id], dayEnds)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]*ResolvedStatus, len(personIDs))
	for i, id := range personIDs {
		out[id] = results[i]
	}
	metrics.ResolvedDays.Add(float64(len(personIDs) * len(dayEnds)))
	return out, nil
}
