package repository

import (
	"context"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

// ServiceRepository stores the services a company offers.
type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return conn(ctx, r.db).Create(s).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	if err := conn(ctx, r.db).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) ListByCompany(ctx context.Context, companyID int64, includeInactive bool) ([]domain.Service, error) {
	q := conn(ctx, r.db).Where("company_id = ?", companyID)
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	var rows []domain.Service
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

func (r *ServiceRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := conn(ctx, r.db).Model(&domain.Service{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
