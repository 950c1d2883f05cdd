package domain

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationNoShow    ReservationStatus = "NO_SHOW"
)

// ActiveReservationStatuses are the statuses that occupy a slot.
var ActiveReservationStatuses = []ReservationStatus{ReservationPending, ReservationConfirmed}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted, ReservationNoShow:
		return true
	}
	return false
}

func (s ReservationStatus) IsActive() bool {
	return s == ReservationPending || s == ReservationConfirmed
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationPending:   {ReservationConfirmed, ReservationCancelled},
	ReservationConfirmed: {ReservationCompleted, ReservationCancelled, ReservationNoShow},
}

// CanTransitionTo reports whether the lifecycle allows s -> next. Terminal
// statuses never move again.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Reservation struct {
	ID                 int64             `json:"id" gorm:"primaryKey"`
	CompanyID          int64             `json:"company_id" gorm:"not null;index:idx_reservations_company_start"`
	UserID             int64             `json:"user_id" gorm:"not null;index"`
	WorkerID           *int64            `json:"worker_id,omitempty" gorm:"index"`
	ServiceID          *int64            `json:"service_id,omitempty"`
	SlotStart          time.Time         `json:"slot_start" gorm:"not null;index:idx_reservations_company_start"`
	SlotEnd            time.Time         `json:"slot_end" gorm:"not null"`
	Status             ReservationStatus `json:"status" gorm:"size:16;not null;index"`
	Notes              string            `json:"notes,omitempty" gorm:"type:text"`
	CancellationReason string            `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`

	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Worker  *User    `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (Reservation) TableName() string { return "reservations" }

// Overlaps uses half-open intervals: touching endpoints do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
