package reservation

import (
	"context"
	"time"

	"queueless/internal/domain"
	"queueless/internal/repository"
)

type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	HasConflict(ctx context.Context, companyID int64, workerID *int64, start, end time.Time, excludeID int64) (bool, error)
	ListActiveBetween(ctx context.Context, companyID int64, workerID *int64, from, to time.Time) ([]domain.Reservation, error)
	List(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, int64, error)
	ListForExport(ctx context.Context, f repository.ReservationFilter) ([]domain.Reservation, error)
}

// CompanyRepository is the read side of company scheduling data.
type CompanyRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetSettings(ctx context.Context, companyID int64) (*domain.CompanySettings, error)
	GetWorkingHours(ctx context.Context, companyID int64, weekday int) (*domain.WorkingHours, error)
	ListWorkBreaksForDay(ctx context.Context, companyID int64, weekday int) ([]domain.WorkBreak, error)
}

type MembershipRepository interface {
	Get(ctx context.Context, companyID, userID int64) (*domain.CompanyMembership, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

// AvailabilityCache holds serialized Availability values.
type AvailabilityCache interface {
	Get(ctx context.Context, companyID int64, date string, workerID *int64) ([]byte, error)
	Set(ctx context.Context, companyID int64, date string, workerID *int64, payload []byte) error
	Invalidate(ctx context.Context, companyID int64) error
}
