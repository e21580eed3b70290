package person_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/personnel/modules/personnel/domain/aggregates/person"
)

func TestNewPersonalInfo_TrimsWhitespace(t *testing.T) {
	info, err := person.NewPersonalInfo(" 1234567890 ", " Ivanov ", " Ivan ", " Ivanovich ")
	require.NoError(t, err)
	require.Equal(t, "1234567890", info.NationalID())
	require.Equal(t, "Ivanov", info.LastName())
	require.Equal(t, "Ivan", info.FirstName())
	require.Equal(t, "Ivanovich", info.MiddleName())
	require.False(t, info.IsZero())
}

func TestNewPersonalInfo_Invalid(t *testing.T) {
	cases := []struct {
		name       string
		nationalID string
		lastName   string
		firstName  string
	}{
		{"short national id", "12345", "Ivanov", "Ivan"},
		{"non numeric national id", "12345abcde", "Ivanov", "Ivan"},
		{"missing last name", "1234567890", "", "Ivan"},
		{"missing first name", "1234567890", "Ivanov", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := person.NewPersonalInfo(tc.nationalID, tc.lastName, tc.firstName, "")
			var verr *person.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, "PERSONAL_INFO_INVALID", verr.Code)
		})
	}
}

func TestNewMilitaryDetails(t *testing.T) {
	details, err := person.NewMilitaryDetails("sergeant", "infantry", "", "")
	require.NoError(t, err)
	require.Equal(t, "sergeant", details.Rank())
	require.Equal(t, "infantry", details.Training())
	require.Empty(t, details.Weapon())
	require.Empty(t, details.Callsign())
}

func TestNewMilitaryDetails_RequiresRankAndTraining(t *testing.T) {
	_, err := person.NewMilitaryDetails("", "infantry", "", "")
	var verr *person.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "MILITARY_DETAILS_INVALID", verr.Code)

	_, err = person.NewMilitaryDetails("sergeant", "  ", "", "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "MILITARY_DETAILS_INVALID", verr.Code)
}
