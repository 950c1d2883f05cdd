package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queueless/internal/pkg/apperr"
)

type sample struct {
	Name  string `json:"name" validate:"required"`
	Slug  string `json:"slug" validate:"required,slug"`
	Open  string `json:"open" validate:"omitempty,clock"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(sample{Name: "Barber", Slug: "barber-shop-1", Open: "09:30"}))
}

func TestValidate_CollectsFieldMessages(t *testing.T) {
	err := Validate(sample{Slug: "Bad Slug", Open: "25:00", Email: "nope"})
	require.Error(t, err)

	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	msg := err.Error()
	assert.Contains(t, msg, "Validation error: ")
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "slug must contain lowercase letters, digits and dashes")
	assert.Contains(t, msg, "open must be in HH:MM format")
	assert.Contains(t, msg, "email must be a valid email")
}
