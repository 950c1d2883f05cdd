package domain

import "time"

type QueueStatus string

const (
	QueueWaiting    QueueStatus = "WAITING"
	QueueReady      QueueStatus = "READY"
	QueueInProgress QueueStatus = "IN_PROGRESS"
	QueueCompleted  QueueStatus = "COMPLETED"
	QueueCancelled  QueueStatus = "CANCELLED"
)

var ActiveQueueStatuses = []QueueStatus{QueueWaiting, QueueReady, QueueInProgress}

func (s QueueStatus) Valid() bool {
	switch s {
	case QueueWaiting, QueueReady, QueueInProgress, QueueCompleted, QueueCancelled:
		return true
	}
	return false
}

func (s QueueStatus) IsActive() bool {
	return s == QueueWaiting || s == QueueReady || s == QueueInProgress
}

var queueTransitions = map[QueueStatus][]QueueStatus{
	QueueWaiting:    {QueueReady, QueueCancelled},
	QueueReady:      {QueueInProgress, QueueWaiting, QueueCancelled},
	QueueInProgress: {QueueCompleted, QueueCancelled},
}

func (s QueueStatus) CanTransitionTo(next QueueStatus) bool {
	for _, allowed := range queueTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// QueueEntry is a walk-in or checked-in reservation waiting to be served.
// Position only orders entries; it is not unique.
type QueueEntry struct {
	ID             int64       `json:"id" gorm:"primaryKey"`
	CompanyID      int64       `json:"company_id" gorm:"not null;index:idx_queue_company_status"`
	UserID         int64       `json:"user_id" gorm:"not null;index"`
	ReservationID  *int64      `json:"reservation_id,omitempty" gorm:"index"`
	WorkerID       *int64      `json:"worker_id,omitempty"`
	ServiceID      *int64      `json:"service_id,omitempty"`
	QueuePosition  int         `json:"queue_position" gorm:"not null"`
	Status         QueueStatus `json:"status" gorm:"size:16;not null;index:idx_queue_company_status"`
	EstimatedStart *time.Time  `json:"estimated_start,omitempty"`
	EstimatedEnd   *time.Time  `json:"estimated_end,omitempty"`
	ActualStart    *time.Time  `json:"actual_start,omitempty"`
	ActualEnd      *time.Time  `json:"actual_end,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	User    *User    `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Service *Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (QueueEntry) TableName() string { return "queue_entries" }
