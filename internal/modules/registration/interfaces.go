package registration

import (
	"context"

	"queueless/internal/domain"
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.CompanyRegistration) error
	GetByID(ctx context.Context, id int64) (*domain.CompanyRegistration, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.CompanyRegistration, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	List(ctx context.Context, status domain.RegistrationStatus, page, limit int) ([]domain.CompanyRegistration, int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.CompanyRegistration, error)
	HasPendingForUser(ctx context.Context, userID int64) (bool, error)
	PendingSlugExists(ctx context.Context, slug string) (bool, error)
}

type SlugChecker interface {
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// CompanyProvisioner creates a company with settings and an owner, joining
// the caller's transaction.
type CompanyProvisioner interface {
	CreateWithOwner(ctx context.Context, c *domain.Company, ownerUserID int64) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
