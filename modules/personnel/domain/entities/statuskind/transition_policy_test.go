package statuskind_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/personnel/modules/personnel/domain/entities/statuskind"
	"github.com/iota-uz/personnel/pkg/serrors"
)

func TestNewTransitionPolicy_RejectsSelfLoop(t *testing.T) {
	_, err := statuskind.NewTransitionPolicy(1, []statuskind.TransitionEdge{
		{FromID: 2, ToID: 2},
	})
	var coded *serrors.Base
	require.ErrorAs(t, err, &coded)
	require.Equal(t, "TRANSITION_SELF_LOOP", coded.Code)
}

func TestTransitionPolicy(t *testing.T) {
	policy, err := statuskind.NewTransitionPolicy(1, []statuskind.TransitionEdge{
		{FromID: 1, ToID: 2},
		{FromID: 2, ToID: 3},
	})
	require.NoError(t, err)

	require.True(t, policy.IsValidInitialStatus(1))
	require.False(t, policy.IsValidInitialStatus(2))

	from := int64(1)
	require.True(t, policy.IsTransitionAllowed(&from, 2))
	require.False(t, policy.IsTransitionAllowed(&from, 3))

	// A nil origin means the person has no status yet, so only the
	// entry status is reachable.
	require.True(t, policy.IsTransitionAllowed(nil, 1))
	require.False(t, policy.IsTransitionAllowed(nil, 2))
}
