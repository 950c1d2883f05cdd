package registration

import "queueless/internal/pkg/apperr"

var (
	ErrAlreadyPending   = apperr.Conflict("You already have a pending registration")
	ErrAlreadyProcessed = apperr.Conflict("Registration has already been processed")
	ErrReasonRequired   = apperr.Validation("rejection_reason is required when rejecting")
	ErrAdminOnly        = apperr.Forbidden("Only platform admins can process registrations")
	ErrForbidden        = apperr.Forbidden("You do not have access to this registration")
)
