package person

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/personnel/pkg/constants"
	"github.com/iota-uz/personnel/pkg/serrors"
)

// MilitaryDetails is an immutable attribute bundle. Rank and training
// category are required; weapon and callsign are optional.
type MilitaryDetails struct {
	rank     string
	training string
	weapon   string
	callsign string
}

type militaryDetailsDTO struct {
	Rank     string `validate:"required"`
	Training string `validate:"required"`
}

func NewMilitaryDetails(rank, training, weapon, callsign string) (MilitaryDetails, error) {
	details := MilitaryDetails{
		rank:     strings.TrimSpace(rank),
		training: strings.TrimSpace(training),
		weapon:   strings.TrimSpace(weapon),
		callsign: strings.TrimSpace(callsign),
	}
	dto := militaryDetailsDTO{
		Rank:     details.rank,
		Training: details.training,
	}
	if err := constants.Validate.Struct(dto); err != nil {
		fields := serrors.ProcessValidatorErrors(err.(validator.ValidationErrors))
		return MilitaryDetails{}, NewValidationError("MILITARY_DETAILS_INVALID", fields.Error())
	}
	return details, nil
}

// HydrateMilitaryDetails rebuilds the value object from persisted
// state without re-validating.
func HydrateMilitaryDetails(rank, training, weapon, callsign string) MilitaryDetails {
	return MilitaryDetails{
		rank:     rank,
		training: training,
		weapon:   weapon,
		callsign: callsign,
	}
}

func (d MilitaryDetails) Rank() string     { return d.rank }
func (d MilitaryDetails) Training() string { return d.training }
func (d MilitaryDetails) Weapon() string   { return d.weapon }
func (d MilitaryDetails) Callsign() string { return d.callsign }
