package queue

import "queueless/internal/domain"

type JoinRequest struct {
	ServiceID *int64 `json:"service_id" validate:"omitempty,gt=0"`
}

type CheckInRequest struct {
	ReservationID int64 `json:"reservation_id" validate:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status domain.QueueStatus `json:"status" validate:"required,oneof=WAITING READY IN_PROGRESS COMPLETED CANCELLED"`
}

// Event is pushed to websocket subscribers of a company queue.
type Event struct {
	Type      string              `json:"type"`
	CompanyID int64               `json:"company_id"`
	Entries   []domain.QueueEntry `json:"entries"`
}

const EventSnapshot = "queue.snapshot"
