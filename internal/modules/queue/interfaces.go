package queue

import (
	"context"

	"queueless/internal/domain"
)

type QueueRepository interface {
	Create(ctx context.Context, e *domain.QueueEntry) error
	GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.QueueEntry, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	ListActive(ctx context.Context, companyID int64) ([]domain.QueueEntry, error)
	ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]domain.QueueEntry, error)
	FindActiveByUser(ctx context.Context, companyID, userID int64) (*domain.QueueEntry, error)
	FindByReservation(ctx context.Context, reservationID int64) (*domain.QueueEntry, error)
	MaxActivePosition(ctx context.Context, companyID int64) (int, error)
	CountActive(ctx context.Context, companyID int64) (int64, error)
	NextWaiting(ctx context.Context, companyID int64) (*domain.QueueEntry, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetSettings(ctx context.Context, companyID int64) (*domain.CompanySettings, error)
}

type MembershipRepository interface {
	Get(ctx context.Context, companyID, userID int64) (*domain.CompanyMembership, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type ReservationReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
}

// ReservationCompleter closes the reservation behind a served entry.
type ReservationCompleter interface {
	Complete(ctx context.Context, id int64) (bool, error)
	AfterComplete(ctx context.Context, companyID int64)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(companyID int64, event Event)
}
