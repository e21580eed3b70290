package statuskind

// StatusKind is dictionary data describing a personnel state. Order is
// the priority used to break same-instant collisions: lower wins.
type StatusKind struct {
	ID       int64
	Name     string
	Code     string
	Order    int
	IsActive bool
}

// TransitionEdge is a permitted (from, to) pair of the status state
// machine. Edges are reference data, not user-programmable rules.
type TransitionEdge struct {
	FromID int64
	ToID   int64
}

// ComparePriority is the single total order used by every resolution
// call site: nil sorts last, then ascending Order, then ascending ID.
func ComparePriority(a, b *StatusKind) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	if a.Order != b.Order {
		if a.Order < b.Order {
			return -1
		}
		return 1
	}
	if a.ID != b.ID {
		if a.ID < b.ID {
			return -1
		}
		return 1
	}
	return 0
}
