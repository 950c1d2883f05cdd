package auth

import "queueless/internal/pkg/apperr"

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	ErrEmailTaken         = apperr.Conflict("Email is already registered")
)
