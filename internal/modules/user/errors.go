package user

import "queueless/internal/pkg/apperr"

var (
	ErrEmailTaken    = apperr.Conflict("Email is already registered")
	ErrWrongPassword = apperr.Validation("current password is incorrect")
	ErrSelfDemotion  = apperr.Conflict("You cannot remove your own admin role")
	ErrSamePassword  = apperr.Validation("new password must differ from the current one")
)
