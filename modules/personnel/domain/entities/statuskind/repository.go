package statuskind

import "context"

// Repository loads status reference data wholesale. Implementations
// must treat returned slices as immutable per call.
type Repository interface {
	GetAll(ctx context.Context) ([]StatusKind, error)
	GetEdges(ctx context.Context) ([]TransitionEdge, error)
}

// FindByCode returns the kind carrying the given stable code.
func FindByCode(kinds []StatusKind, code string) (StatusKind, bool) {
	for _, k := range kinds {
		if k.Code == code {
			return k, true
		}
	}
	return StatusKind{}, false
}
