package services

import (
	"sort"
	"time"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
)

// ResolvedStatus is the outcome of a point-in-time query. NotPresent
// marks the synthetic "absent" result; it is never persisted. A nil
// ResolvedStatus means the person had no status at the instant.
type ResolvedStatus struct {
	Kind       *statuskind.StatusKind
	Record     *person.StatusRecord
	NotPresent bool
}

// Resolver derives point-in-time views from a stored history slice. It
// holds only immutable reference data and is safe for concurrent use.
type Resolver struct {
	kinds        map[int64]*statuskind.StatusKind
	homeStatusID int64
}

// NewResolver builds a resolver over the loaded status dictionary. The
// home status is matched by its stable code, not its display name.
func NewResolver(kinds []statuskind.StatusKind, homeStatusCode string) *Resolver {
	byID := make(map[int64]*statuskind.StatusKind, len(kinds))
	for i := range kinds {
		byID[kinds[i].ID] = &kinds[i]
	}
	r := &Resolver{kinds: byID}
	if home, ok := statuskind.FindByCode(kinds, homeStatusCode); ok {
		r.homeStatusID = home.ID
	}
	return r
}

func (r *Resolver) kindOf(id int64) *statuskind.StatusKind {
	return r.kinds[id]
}

// ReduceTimeline collapses the active rows of a history to one winner
// per distinct open date and returns them ordered by open date. The
// winner of a same-instant group is the lowest by (kind priority,
// sequence, id); rows with an unknown kind sort last. Insertion order
// never matters.
func (r *Resolver) ReduceTimeline(records []person.StatusRecord) []person.StatusRecord {
	winners := make(map[int64]person.StatusRecord)
	for _, rec := range records {
		if !rec.IsActive {
			continue
		}
		key := rec.OpenDate.UTC().UnixNano()
		current, ok := winners[key]
		if !ok || r.beats(rec, current) {
			winners[key] = rec
		}
	}

	out := make([]person.StatusRecord, 0, len(winners))
	for _, rec := range winners {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenDate.Before(out[j].OpenDate)
	})
	return out
}

// beats reports whether a wins a same-instant collision against b.
func (r *Resolver) beats(a, b person.StatusRecord) bool {
	if cmp := statuskind.ComparePriority(r.kindOf(a.StatusKindID), r.kindOf(b.StatusKindID)); cmp != 0 {
		return cmp < 0
	}
	if a.Sequence != b.Sequence {
		return a.Sequence < b.Sequence
	}
	return a.ID < b.ID
}

// FirstPresenceUTC is the earliest recorded presence at or before the
// upper bound: the first active home-status record or the first
// position assignment, whichever is earlier.
func (r *Resolver) FirstPresenceUTC(slice person.HistorySlice, upperBound time.Time) (time.Time, bool) {
	var earliest time.Time
	found := false

	take := func(t time.Time) {
		if t.After(upperBound) {
			return
		}
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}

	if r.homeStatusID != 0 {
		for _, rec := range slice.StatusRecords {
			if rec.IsActive && rec.StatusKindID == r.homeStatusID {
				take(rec.OpenDate)
			}
		}
	}
	for _, a := range slice.Assignments {
		take(a.OpenUTC)
	}
	return earliest, found
}

// StatusAsOf answers "what was the status at this instant". Absence
// wins over a technical candidate: an instant before the person's
// first recorded presence yields the synthetic not-present result.
func (r *Resolver) StatusAsOf(slice person.HistorySlice, instant time.Time) *ResolvedStatus {
	timeline := r.ReduceTimeline(slice.StatusRecords)
	return r.statusOnTimeline(slice, timeline, instant)
}

func (r *Resolver) statusOnTimeline(slice person.HistorySlice, timeline []person.StatusRecord, instant time.Time) *ResolvedStatus {
	at := instant.UTC()
	presence, ok := r.FirstPresenceUTC(slice, at)
	if !ok || at.Before(presence) {
		return &ResolvedStatus{NotPresent: true}
	}

	var candidate *person.StatusRecord
	for i := range timeline {
		if timeline[i].OpenDate.After(at) {
			break
		}
		candidate = &timeline[i]
	}
	if candidate == nil {
		return nil
	}
	rec := *candidate
	return &ResolvedStatus{Kind: r.kindOf(rec.StatusKindID), Record: &rec}
}

// ResolveDays resolves one person for every day-end boundary with a
// single forward-only sweep over the reduced timeline. The cursor never
// rewinds, so the cost is O(len(boundaries) + len(history)).
func (r *Resolver) ResolveDays(slice person.HistorySlice, dayEnds []time.Time) []*ResolvedStatus {
	timeline := r.ReduceTimeline(slice.StatusRecords)

	var presence time.Time
	presenceFound := false
	if len(dayEnds) > 0 {
		presence, presenceFound = r.FirstPresenceUTC(slice, dayEnds[len(dayEnds)-1])
	}

	out := make([]*ResolvedStatus, len(dayEnds))
	idx := 0
	var candidate *person.StatusRecord
	for i, dayEnd := range dayEnds {
		for idx < len(timeline) && !timeline[idx].OpenDate.After(dayEnd) {
			candidate = &timeline[idx]
			idx++
		}
		if !presenceFound || dayEnd.Before(presence) {
			out[i] = &ResolvedStatus{NotPresent: true}
			continue
		}
		if candidate == nil {
			continue
		}
		rec := *candidate
		out[i] = &ResolvedStatus{Kind: r.kindOf(rec.StatusKindID), Record: &rec}
	}
	return out
}

// DayEndUTC converts the end of a local calendar day to UTC: the next
// local midnight converted to UTC, minus one microsecond. Going through
// local midnights keeps the boundary correct across DST shifts.
func DayEndUTC(year int, month time.Month, day int, loc *time.Location) time.Time {
	next := time.Date(year, month, day+1, 0, 0, 0, 0, loc)
	return next.UTC().Add(-time.Microsecond)
}

// MonthDayEndsUTC precomputes the UTC end-of-day boundary for every
// calendar day of the month.
func MonthDayEndsUTC(year int, month time.Month, loc *time.Location) []time.Time {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	out := make([]time.Time, days)
	for d := 1; d <= days; d++ {
		out[d-1] = DayEndUTC(year, month, d, loc)
	}
	return out
}
