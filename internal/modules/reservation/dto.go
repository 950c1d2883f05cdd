package reservation

import (
	"time"

	"queueless/internal/domain"
)

type CreateReservationRequest struct {
	CompanyID int64      `json:"company_id" validate:"required,gt=0"`
	ServiceID *int64     `json:"service_id" validate:"omitempty,gt=0"`
	WorkerID  *int64     `json:"worker_id" validate:"omitempty,gt=0"`
	SlotStart time.Time  `json:"slot_start" validate:"required"`
	SlotEnd   *time.Time `json:"slot_end"`
	Notes     string     `json:"notes" validate:"max=1000"`
}

// UpdateReservationRequest reschedules or reassigns. Omitted fields keep
// their value; a new start without an end keeps the current duration.
type UpdateReservationRequest struct {
	SlotStart      *time.Time `json:"slot_start"`
	SlotEnd        *time.Time `json:"slot_end"`
	WorkerID       *int64     `json:"worker_id" validate:"omitempty,gt=0"`
	UnassignWorker bool       `json:"unassign_worker"`
	Notes          *string    `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateStatusRequest struct {
	Status domain.ReservationStatus `json:"status" validate:"required,oneof=PENDING CONFIRMED CANCELLED COMPLETED NO_SHOW"`
	Reason string                   `json:"reason" validate:"max=500"`
}

type ListQuery struct {
	Status   domain.ReservationStatus `form:"status"`
	Date     string                   `form:"date"`
	WorkerID *int64                   `form:"worker_id"`
	Page     int                      `form:"page"`
	Limit    int                      `form:"limit"`
}

type ListResult struct {
	Items []domain.Reservation `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
