package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Status   string `json:"status" validate:"omitempty,oneof=accepted declined"`
}

func TestValidationDetails(t *testing.T) {
	v := NewValidator()

	err := v.Struct(signup{Email: "nope", Password: "123", Status: "maybe"})
	details := ValidationDetails(err)

	assert.Equal(t, []map[string]string{
		{"email": "must be a valid email address"},
		{"password": "must be at least 6 characters long"},
		{"status": "must be one of: accepted declined"},
	}, details)
	assert.Equal(t,
		"email must be a valid email address; password must be at least 6 characters long; status must be one of: accepted declined",
		Summary(details))
}

func TestValidationDetailsRequired(t *testing.T) {
	v := NewValidator()

	details := ValidationDetails(v.Struct(signup{}))
	assert.Equal(t, []map[string]string{{"email": "is required"}, {"password": "is required"}}, details)
}

func TestValidationDetailsOtherErrors(t *testing.T) {
	assert.Empty(t, ValidationDetails(errors.New("boom")))
	assert.Empty(t, ValidationDetails(nil))
}
