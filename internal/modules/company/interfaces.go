package company

import (
	"context"

	"queueless/internal/domain"
	"queueless/internal/repository"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *domain.Company) error
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Company, error)
	GetDetailed(ctx context.Context, id int64) (*domain.Company, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	List(ctx context.Context, f repository.CompanyFilter) ([]domain.Company, int64, error)

	CreateSettings(ctx context.Context, s *domain.CompanySettings) error
	GetSettings(ctx context.Context, companyID int64) (*domain.CompanySettings, error)
	SaveSettings(ctx context.Context, s *domain.CompanySettings) error

	ListWorkingHours(ctx context.Context, companyID int64) ([]domain.WorkingHours, error)
	GetWorkingHours(ctx context.Context, companyID int64, weekday int) (*domain.WorkingHours, error)
	ReplaceWorkingHours(ctx context.Context, companyID int64, weekday int, wh *domain.WorkingHours) error

	ListWorkBreaks(ctx context.Context, companyID int64) ([]domain.WorkBreak, error)
	ReplaceWorkBreaks(ctx context.Context, companyID int64, weekday int, breaks []domain.WorkBreak) error
}

type MembershipRepository interface {
	Create(ctx context.Context, m *domain.CompanyMembership) error
	GetByID(ctx context.Context, id int64) (*domain.CompanyMembership, error)
	Get(ctx context.Context, companyID, userID int64) (*domain.CompanyMembership, error)
	ListByCompany(ctx context.Context, companyID int64) ([]domain.CompanyMembership, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
	CountActiveOwners(ctx context.Context, companyID int64) (int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type ImageStore interface {
	SaveBase64Image(ctx context.Context, kind, payload string) (string, error)
	Delete(url string) error
}

// AvailabilityInvalidator drops cached slots after schedule changes.
type AvailabilityInvalidator interface {
	Invalidate(ctx context.Context, companyID int64) error
}
