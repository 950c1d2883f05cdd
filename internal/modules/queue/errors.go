package queue

import "queueless/internal/pkg/apperr"

var (
	ErrAlreadyQueued      = apperr.Conflict("You are already in this queue")
	ErrAlreadyCheckedIn   = apperr.Conflict("Reservation is already checked in")
	ErrNotConfirmed       = apperr.Conflict("Only confirmed reservations can be checked in")
	ErrCompanyInactive    = apperr.Conflict("Company is not accepting customers")
	ErrForbidden          = apperr.Forbidden("You do not have access to this queue entry")
	ErrCustomerCancelOnly = apperr.Forbidden("Customers can only cancel their queue entries")
	ErrNobodyWaiting      = apperr.NotFound("Waiting customer")
)
