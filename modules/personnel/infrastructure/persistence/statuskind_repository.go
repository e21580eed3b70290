package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
	"github.com/iota-uz/personnel/pkg/composables"
)

type StatusKindRepository struct{}

func NewStatusKindRepository() statuskind.Repository {
	return &StatusKindRepository{}
}

func (r *StatusKindRepository) GetAll(ctx context.Context) ([]statuskind.StatusKind, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
	SELECT id, name, code, ord, is_active
	FROM status_kinds
	ORDER BY ord, id
	`)
	if err != nil {
		return nil, gerrors.Wrap(err, "load status kinds")
	}
	defer rows.Close()

	out := make([]statuskind.StatusKind, 0, 16)
	for rows.Next() {
		var k statuskind.StatusKind
		if err := rows.Scan(&k.ID, &k.Name, &k.Code, &k.Order, &k.IsActive); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *StatusKindRepository) GetEdges(ctx context.Context) ([]statuskind.TransitionEdge, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
	SELECT from_id, to_id
	FROM status_transitions
	ORDER BY from_id, to_id
	`)
	if err != nil {
		return nil, gerrors.Wrap(err, "load status transitions")
	}
	defer rows.Close()

	out := make([]statuskind.TransitionEdge, 0, 32)
	for rows.Next() {
		var e statuskind.TransitionEdge
		if err := rows.Scan(&e.FromID, &e.ToID); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
