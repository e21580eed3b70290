package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
	"github.com/iota-uz/personnel/pkg/composables"
)

type PersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PersonRepository{}
}

func (r *PersonRepository) Load(ctx context.Context, personID uuid.UUID) (*person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var (
		id         uuid.UUID
		version    int64
		nationalID string
		lastName   string
		firstName  string
		middleName string
		rank       string
		training   string
		weapon     string
		callsign   string
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)
	err = tx.QueryRow(ctx, `
	SELECT id, version, national_id, last_name, first_name, middle_name,
		rank, training, weapon, callsign, created_at, updated_at
	FROM persons
	WHERE id=$1
	`, pgUUID(personID)).Scan(
		&id, &version, &nationalID, &lastName, &firstName, &middleName,
		&rank, &training, &weapon, &callsign, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, person.ErrNotFound
		}
		return nil, gerrors.Wrap(err, "load person")
	}

	history, err := r.loadStatusRecords(ctx, personID)
	if err != nil {
		return nil, err
	}
	assignments, err := r.loadAssignments(ctx, personID)
	if err != nil {
		return nil, err
	}
	planActions, err := r.loadPlanActions(ctx, personID)
	if err != nil {
		return nil, err
	}

	return person.Hydrate(
		id,
		version,
		person.HydratePersonalInfo(nationalID, lastName, firstName, middleName),
		person.HydrateMilitaryDetails(rank, training, weapon, callsign),
		history,
		assignments,
		planActions,
		timeFromPg(createdAt),
		timeFromPg(updatedAt),
	), nil
}

// Save persists the aggregate in the caller's transaction. The version
// check turns a lost update into ErrVersionConflict; the partial unique
// indexes are the backstop for same-instant and occupancy races, and
// their violations surface as ConflictError too.
func (r *PersonRepository) Save(ctx context.Context, p *person.Person) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	if p.Version() == 0 {
		_, err = tx.Exec(ctx, `
		INSERT INTO persons (
			id, version, national_id, last_name, first_name, middle_name,
			rank, training, weapon, callsign, created_at, updated_at
		) VALUES ($1, 1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			pgUUID(p.ID()),
			p.Info().NationalID(), p.Info().LastName(), p.Info().FirstName(), p.Info().MiddleName(),
			p.Military().Rank(), p.Military().Training(), p.Military().Weapon(), p.Military().Callsign(),
			pgTimestamptz(p.CreatedAt()), pgTimestamptz(p.UpdatedAt()),
		)
		if err != nil {
			return mapConstraintErr(err, "insert person")
		}
	} else {
		tag, err := tx.Exec(ctx, `
		UPDATE persons SET
			version=version+1,
			national_id=$3, last_name=$4, first_name=$5, middle_name=$6,
			rank=$7, training=$8, weapon=$9, callsign=$10, updated_at=$11
		WHERE id=$1 AND version=$2
		`,
			pgUUID(p.ID()), p.Version(),
			p.Info().NationalID(), p.Info().LastName(), p.Info().FirstName(), p.Info().MiddleName(),
			p.Military().Rank(), p.Military().Training(), p.Military().Weapon(), p.Military().Callsign(),
			pgTimestamptz(p.UpdatedAt()),
		)
		if err != nil {
			return mapConstraintErr(err, "update person")
		}
		if tag.RowsAffected() == 0 {
			return person.ErrVersionConflict
		}
	}

	if err := r.saveStatusRecords(ctx, p); err != nil {
		return err
	}
	if err := r.saveAssignments(ctx, p); err != nil {
		return err
	}
	return r.savePlanActions(ctx, p)
}

func (r *PersonRepository) saveStatusRecords(ctx context.Context, p *person.Person) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	records := p.StatusHistory()
	for i := range records {
		rec := &records[i]
		if rec.ID == 0 {
			err = tx.QueryRow(ctx, `
			INSERT INTO status_records (
				person_id, status_kind_id, open_date, sequence, is_active,
				note, author, modified, document_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
			`,
				pgUUID(rec.PersonID), rec.StatusKindID, pgTimestamptz(rec.OpenDate), rec.Sequence,
				rec.IsActive, rec.Note, rec.Author, pgTimestamptz(rec.Modified), rec.DocumentID,
			).Scan(&rec.ID)
		} else {
			_, err = tx.Exec(ctx, `
			UPDATE status_records
			SET sequence=$2, is_active=$3, note=$4, modified=$5
			WHERE id=$1
			`, rec.ID, rec.Sequence, rec.IsActive, rec.Note, pgTimestamptz(rec.Modified))
		}
		if err != nil {
			return mapConstraintErr(err, "save status record")
		}
	}
	return nil
}

func (r *PersonRepository) saveAssignments(ctx context.Context, p *person.Person) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	assignments := p.Assignments()
	for i := range assignments {
		a := &assignments[i]
		if a.ID == 0 {
			err = tx.QueryRow(ctx, `
			INSERT INTO position_assignments (
				person_id, position_id, open_utc, close_utc, note, author, modified
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
			`,
				pgUUID(a.PersonID), pgUUID(a.PositionID), pgTimestamptz(a.OpenUTC),
				pgTimestamptz(a.CloseUTC), a.Note, a.Author, pgTimestamptz(a.Modified),
			).Scan(&a.ID)
		} else {
			_, err = tx.Exec(ctx, `
			UPDATE position_assignments
			SET close_utc=$2, note=$3, modified=$4
			WHERE id=$1
			`, a.ID, pgTimestamptz(a.CloseUTC), a.Note, pgTimestamptz(a.Modified))
		}
		if err != nil {
			return mapConstraintErr(err, "save assignment")
		}
	}
	return nil
}

func (r *PersonRepository) savePlanActions(ctx context.Context, p *person.Person) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	planActions := p.PlanActions()
	for i := range planActions {
		pa := &planActions[i]
		if pa.ID == 0 {
			snapshot, err := json.Marshal(pa.Snapshot)
			if err != nil {
				return gerrors.Wrap(err, "marshal plan action snapshot")
			}
			err = tx.QueryRow(ctx, `
			INSERT INTO plan_actions (
				person_id, name, effective_at, state, move_type,
				location, group_name, crew, note, ord, snapshot, modified
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING id
			`,
				pgUUID(pa.PersonID), pa.Name, pgTimestamptz(pa.EffectiveAtUTC), string(pa.State), string(pa.MoveType),
				pa.Location, pa.Group, pa.Crew, pa.Note, pa.Order, snapshot, pgTimestamptz(pa.Modified),
			).Scan(&pa.ID)
			if err != nil {
				return mapConstraintErr(err, "insert plan action")
			}
		} else {
			_, err := tx.Exec(ctx, `
			UPDATE plan_actions SET state=$2, note=$3, modified=$4 WHERE id=$1
			`, pa.ID, string(pa.State), pa.Note, pgTimestamptz(pa.Modified))
			if err != nil {
				return mapConstraintErr(err, "update plan action")
			}
		}
	}
	return nil
}

// LoadHistorySlice returns the read-side projection for a batch of
// persons: active status records and assignments opened at or before
// the bound, ordered by open date. Inactive rows never leave the store.
func (r *PersonRepository) LoadHistorySlice(ctx context.Context, personIDs []uuid.UUID, until time.Time) (map[uuid.UUID]person.HistorySlice, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]person.HistorySlice, len(personIDs))
	for _, id := range personIDs {
		out[id] = person.HistorySlice{PersonID: id}
	}

	rows, err := tx.Query(ctx, `
	SELECT id, person_id, status_kind_id, open_date, sequence, is_active,
		note, author, modified, document_id
	FROM status_records
	WHERE person_id = ANY($1) AND is_active AND open_date <= $2
	ORDER BY person_id, open_date, sequence, id
	`, personIDs, pgTimestamptz(until))
	if err != nil {
		return nil, gerrors.Wrap(err, "load status records")
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rec      person.StatusRecord
			openDate pgtype.Timestamptz
			modified pgtype.Timestamptz
		)
		if err := rows.Scan(
			&rec.ID, &rec.PersonID, &rec.StatusKindID, &openDate, &rec.Sequence,
			&rec.IsActive, &rec.Note, &rec.Author, &modified, &rec.DocumentID,
		); err != nil {
			return nil, err
		}
		rec.OpenDate = timeFromPg(openDate)
		rec.Modified = timeFromPg(modified)
		slice := out[rec.PersonID]
		slice.StatusRecords = append(slice.StatusRecords, rec)
		out[rec.PersonID] = slice
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	aRows, err := tx.Query(ctx, `
	SELECT id, person_id, position_id, open_utc, close_utc, note, author, modified
	FROM position_assignments
	WHERE person_id = ANY($1) AND open_utc <= $2
	ORDER BY person_id, open_utc, id
	`, personIDs, pgTimestamptz(until))
	if err != nil {
		return nil, gerrors.Wrap(err, "load assignments")
	}
	defer aRows.Close()
	for aRows.Next() {
		var (
			a        person.PositionAssignment
			openUTC  pgtype.Timestamptz
			closeUTC pgtype.Timestamptz
			modified pgtype.Timestamptz
		)
		if err := aRows.Scan(&a.ID, &a.PersonID, &a.PositionID, &openUTC, &closeUTC, &a.Note, &a.Author, &modified); err != nil {
			return nil, err
		}
		a.OpenUTC = timeFromPg(openUTC)
		a.CloseUTC = timeFromPg(closeUTC)
		a.Modified = timeFromPg(modified)
		slice := out[a.PersonID]
		slice.Assignments = append(slice.Assignments, a)
		out[a.PersonID] = slice
	}
	if aRows.Err() != nil {
		return nil, aRows.Err()
	}

	return out, nil
}

func (r *PersonRepository) loadStatusRecords(ctx context.Context, personID uuid.UUID) ([]person.StatusRecord, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
	SELECT id, person_id, status_kind_id, open_date, sequence, is_active,
		note, author, modified, document_id
	FROM status_records
	WHERE person_id=$1
	ORDER BY open_date, sequence, id
	`, pgUUID(personID))
	if err != nil {
		return nil, gerrors.Wrap(err, "load status history")
	}
	defer rows.Close()

	out := make([]person.StatusRecord, 0, 16)
	for rows.Next() {
		var (
			rec      person.StatusRecord
			openDate pgtype.Timestamptz
			modified pgtype.Timestamptz
		)
		if err := rows.Scan(
			&rec.ID, &rec.PersonID, &rec.StatusKindID, &openDate, &rec.Sequence,
			&rec.IsActive, &rec.Note, &rec.Author, &modified, &rec.DocumentID,
		); err != nil {
			return nil, err
		}
		rec.OpenDate = timeFromPg(openDate)
		rec.Modified = timeFromPg(modified)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PersonRepository) loadAssignments(ctx context.Context, personID uuid.UUID) ([]person.PositionAssignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
	SELECT id, person_id, position_id, open_utc, close_utc, note, author, modified
	FROM position_assignments
	WHERE person_id=$1
	ORDER BY open_utc, id
	`, pgUUID(personID))
	if err != nil {
		return nil, gerrors.Wrap(err, "load assignments")
	}
	defer rows.Close()

	out := make([]person.PositionAssignment, 0, 4)
	for rows.Next() {
		var (
			a        person.PositionAssignment
			openUTC  pgtype.Timestamptz
			closeUTC pgtype.Timestamptz
			modified pgtype.Timestamptz
		)
		if err := rows.Scan(&a.ID, &a.PersonID, &a.PositionID, &openUTC, &closeUTC, &a.Note, &a.Author, &modified); err != nil {
			return nil, err
		}
		a.OpenUTC = timeFromPg(openUTC)
		a.CloseUTC = timeFromPg(closeUTC)
		a.Modified = timeFromPg(modified)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PersonRepository) loadPlanActions(ctx context.Context, personID uuid.UUID) ([]person.PlanAction, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
	SELECT id, person_id, name, effective_at, state, move_type,
		location, group_name, crew, note, ord, snapshot, modified
	FROM plan_actions
	WHERE person_id=$1
	ORDER BY effective_at, id
	`, pgUUID(personID))
	if err != nil {
		return nil, gerrors.Wrap(err, "load plan actions")
	}
	defer rows.Close()

	out := make([]person.PlanAction, 0, 4)
	for rows.Next() {
		var (
			pa          person.PlanAction
			effectiveAt pgtype.Timestamptz
			modified    pgtype.Timestamptz
			state       string
			moveType    string
			snapshot    []byte
		)
		if err := rows.Scan(
			&pa.ID, &pa.PersonID, &pa.Name, &effectiveAt, &state, &moveType,
			&pa.Location, &pa.Group, &pa.Crew, &pa.Note, &pa.Order, &snapshot, &modified,
		); err != nil {
			return nil, err
		}
		pa.EffectiveAtUTC = timeFromPg(effectiveAt)
		pa.Modified = timeFromPg(modified)
		pa.State = person.PlanActionState(state)
		pa.MoveType = person.MoveType(moveType)
		if len(snapshot) > 0 {
			if err := json.Unmarshal(snapshot, &pa.Snapshot); err != nil {
				return nil, gerrors.Wrap(err, "unmarshal plan action snapshot")
			}
		}
		out = append(out, pa)
	}
	return out, rows.Err()
}

func mapConstraintErr(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return person.NewConflictError("CONSTRAINT_CONFLICT", "concurrent change violated "+pgErr.ConstraintName)
	}
	return gerrors.Wrap(err, op)
}
