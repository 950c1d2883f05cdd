package admin

import (
	"context"
	"time"

	"queueless/internal/domain"
)

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

type CompanyCounter interface {
	Count(ctx context.Context, activeOnly bool) (int64, error)
}

type RegistrationCounter interface {
	CountByStatus(ctx context.Context, status domain.RegistrationStatus) (int64, error)
}

type ReservationCounter interface {
	CountStartingBetween(ctx context.Context, from, to time.Time) (int64, error)
}

type QueueCounter interface {
	CountByStatus(ctx context.Context, status domain.QueueStatus) (int64, error)
}
