package catalog

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/validator"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	ListByCompany(ctx context.Context, companyID int64, includeInactive bool) ([]domain.Service, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
}

type CompanyReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Company, error)
}

type Service struct {
	services  ServiceRepository
	companies CompanyReader
	log       zerolog.Logger
}

func NewService(services ServiceRepository, companies CompanyReader, log zerolog.Logger) *Service {
	return &Service{
		services:  services,
		companies: companies,
		log:       log.With().Str("module", "catalog").Logger(),
	}
}

func (s *Service) ListServices(ctx context.Context, companyID int64, includeInactive bool) ([]domain.Service, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to list services")
	}
	rows, err := s.services.ListByCompany(ctx, companyID, includeInactive)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list services")
	}
	return rows, nil
}

// GetService hides services of other companies behind NotFound.
func (s *Service) GetService(ctx context.Context, companyID, serviceID int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, apperr.FromDB(err, "Service", "", "Failed to get service")
	}
	if svc.CompanyID != companyID {
		return nil, apperr.NotFound("Service")
	}
	return svc, nil
}

func (s *Service) CreateService(ctx context.Context, companyID int64, req CreateServiceRequest) (*domain.Service, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	svc := &domain.Service{
		CompanyID:       companyID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperr.Wrap(err, "Failed to create service")
	}

	s.log.Info().Int64("company_id", companyID).Int64("service_id", svc.ID).Msg("service created")
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, companyID, serviceID int64, req UpdateServiceRequest) (*domain.Service, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	svc, err := s.GetService(ctx, companyID, serviceID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
		fields["name"] = svc.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
		fields["description"] = svc.Description
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
		fields["duration_minutes"] = svc.DurationMinutes
	}
	if req.Price != nil {
		svc.Price = *req.Price
		fields["price"] = svc.Price
	}
	if req.IsActive != nil {
		svc.IsActive = *req.IsActive
		fields["is_active"] = svc.IsActive
	}
	if len(fields) == 0 {
		return svc, nil
	}

	if err := s.services.UpdateFields(ctx, svc.ID, fields); err != nil {
		return nil, apperr.FromDB(err, "Service", "", "Failed to update service")
	}
	return svc, nil
}

// DeleteService deactivates; existing reservations keep their reference.
func (s *Service) DeleteService(ctx context.Context, companyID, serviceID int64) error {
	svc, err := s.GetService(ctx, companyID, serviceID)
	if err != nil {
		return err
	}
	if err := s.services.UpdateFields(ctx, svc.ID, map[string]any{"is_active": false}); err != nil {
		return apperr.FromDB(err, "Service", "", "Failed to delete service")
	}
	s.log.Info().Int64("company_id", companyID).Int64("service_id", svc.ID).Msg("service deactivated")
	return nil
}
