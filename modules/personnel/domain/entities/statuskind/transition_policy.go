package statuskind

import (
	"fmt"

	"github.com/iota-uz/personnel/pkg/serrors"
)

type edgeKey struct {
	from int64
	to   int64
}

// TransitionPolicy validates edges of the status state machine against
// a loaded reference graph. The graph is immutable per instance.
type TransitionPolicy struct {
	entryStatusID int64
	edges         map[edgeKey]struct{}
}

func NewTransitionPolicy(entryStatusID int64, edges []TransitionEdge) (*TransitionPolicy, error) {
	set := make(map[edgeKey]struct{}, len(edges))
	for _, e := range edges {
		if e.FromID == e.ToID {
			return nil, serrors.NewError(
				"TRANSITION_SELF_LOOP",
				fmt.Sprintf("transition graph contains self-loop on status %d", e.FromID),
			)
		}
		set[edgeKey{from: e.FromID, to: e.ToID}] = struct{}{}
	}
	return &TransitionPolicy{entryStatusID: entryStatusID, edges: set}, nil
}

// IsValidInitialStatus is true only for the designated entry status.
func (p *TransitionPolicy) IsValidInitialStatus(statusID int64) bool {
	return statusID == p.entryStatusID
}

// IsTransitionAllowed reports whether from→to is a member of the loaded
// edge set. A nil from delegates to the initial-status check.
func (p *TransitionPolicy) IsTransitionAllowed(from *int64, to int64) bool {
	if from == nil {
		return p.IsValidInitialStatus(to)
	}
	_, ok := p.edges[edgeKey{from: *from, to: to}]
	return ok
}
