package reservation

import "queueless/internal/pkg/apperr"

var (
	ErrSlotNotAvailable    = apperr.Conflict("Time slot is not available")
	ErrCompanyInactive     = apperr.Conflict("Company is not accepting reservations")
	ErrNotChangeable       = apperr.Conflict("Only pending or confirmed reservations can be changed")
	ErrForbidden           = apperr.Forbidden("You do not have access to this reservation")
	ErrCustomerCancelOnly  = apperr.Forbidden("Customers can only cancel their reservations")
	ErrInPast              = apperr.Validation("slot_start must be in the future")
	ErrInvalidRange        = apperr.Validation("slot_end must be after slot_start")
	ErrClosedDay           = apperr.Validation("company is closed on the selected day")
	ErrOutsideWorkingHours = apperr.Validation("reservation must be within working hours")
)
