package serrors_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/personnel/pkg/serrors"
)

func TestNewError(t *testing.T) {
	err := serrors.NewError("SOME_CODE", "something went wrong")
	require.Equal(t, "SOME_CODE: something went wrong", err.Error())
}

func TestValidationErrors_StableMessage(t *testing.T) {
	errs := serrors.ValidationErrors{
		"LastName":   {Field: "LastName", Rule: "required"},
		"NationalID": {Field: "NationalID", Rule: "len"},
		"FirstName":  {Field: "FirstName", Rule: "required"},
	}

	want := "validation failed on FirstName: required, LastName: required, NationalID: len"
	for i := 0; i < 20; i++ {
		require.Equal(t, want, errs.Error())
	}

	require.Equal(t, "validation failed", serrors.ValidationErrors{}.Error())
}

func TestProcessValidatorErrors(t *testing.T) {
	type dto struct {
		NationalID string `validate:"required,len=10,numeric"`
		LastName   string `validate:"required"`
	}

	err := validator.New().Struct(dto{NationalID: "123"})
	require.Error(t, err)

	fields := serrors.ProcessValidatorErrors(err.(validator.ValidationErrors))
	require.Len(t, fields, 2)
	require.Equal(t, "len", fields["NationalID"].Rule)
	require.Equal(t, "required", fields["LastName"].Rule)
}
