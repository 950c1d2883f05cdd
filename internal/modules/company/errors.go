package company

import "queueless/internal/pkg/apperr"

var (
	ErrSlugTaken          = apperr.Conflict("Slug is already taken")
	ErrMemberExists       = apperr.Conflict("User is already a member of this company")
	ErrLastOwner          = apperr.Conflict("A company must keep at least one active owner")
	ErrInvalidHours       = apperr.Validation("open_time must be before close_time")
	ErrInvalidBreak       = apperr.Validation("break start_time must be before end_time")
	ErrBreakOutsideHours  = apperr.Validation("breaks must lie within working hours")
	ErrBreaksOverlap      = apperr.Validation("breaks on the same day must not overlap")
	ErrInvalidWeekday     = apperr.Validation("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrMemberNotInCompany = apperr.NotFound("Member")
)
