package person

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iota-uz/personnel/pkg/constants"
	"github.com/iota-uz/personnel/pkg/serrors"
)

// PersonalInfo is an immutable identity bundle. Construction is the
// only validation point; a held value is always well-formed.
type PersonalInfo struct {
	nationalID string
	lastName   string
	firstName  string
	middleName string
}

type personalInfoDTO struct {
	NationalID string `validate:"required,len=10,numeric"`
	LastName   string `validate:"required"`
	FirstName  string `validate:"required"`
}

func NewPersonalInfo(nationalID, lastName, firstName, middleName string) (PersonalInfo, error) {
	info := PersonalInfo{
		nationalID: strings.TrimSpace(nationalID),
		lastName:   strings.TrimSpace(lastName),
		firstName:  strings.TrimSpace(firstName),
		middleName: strings.TrimSpace(middleName),
	}
	dto := personalInfoDTO{
		NationalID: info.nationalID,
		LastName:   info.lastName,
		FirstName:  info.firstName,
	}
	if err := constants.Validate.Struct(dto); err != nil {
		fields := serrors.ProcessValidatorErrors(err.(validator.ValidationErrors))
		return PersonalInfo{}, NewValidationError("PERSONAL_INFO_INVALID", fields.Error())
	}
	return info, nil
}

// HydratePersonalInfo rebuilds the value object from persisted state
// without re-validating; the store is trusted.
func HydratePersonalInfo(nationalID, lastName, firstName, middleName string) PersonalInfo {
	return PersonalInfo{
		nationalID: nationalID,
		lastName:   lastName,
		firstName:  firstName,
		middleName: middleName,
	}
}

func (i PersonalInfo) NationalID() string { return i.nationalID }
func (i PersonalInfo) LastName() string   { return i.lastName }
func (i PersonalInfo) FirstName() string  { return i.firstName }
func (i PersonalInfo) MiddleName() string { return i.middleName }
func (i PersonalInfo) IsZero() bool       { return i.nationalID == "" }
