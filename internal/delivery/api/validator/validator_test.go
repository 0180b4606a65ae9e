package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Nickname string `json:"-" validate:"omitempty,max=3"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := New().Validate(&signup{Email: "nope", Password: "123"})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []FieldError{
		{Field: "email", Rule: "email"},
		{Field: "password", Rule: "min", Param: "6"},
	}, validationErr.Fields)
	assert.Contains(t, err.Error(), "password failed on 'min' (6)")
}

func TestValidate_Passes(t *testing.T) {
	assert.NoError(t, New().Validate(&signup{Email: "a@x.com", Password: "secret1"}))
}
