package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) Create(ctx context.Context, reg *domain.CompanyRegistration) error {
	reg.Slug = strings.ToLower(reg.Slug)
	return conn(ctx, r.db).Omit("User").Create(reg).Error
}

func (r *RegistrationRepository) GetByID(ctx context.Context, id int64) (*domain.CompanyRegistration, error) {
	var reg domain.CompanyRegistration
	if err := conn(ctx, r.db).Preload("User").First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

// GetForUpdate reloads and locks the registration inside a transaction.
func (r *RegistrationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.CompanyRegistration, error) {
	var reg domain.CompanyRegistration
	if err := forUpdate(ctx, r.db).First(&reg, id).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *RegistrationRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := conn(ctx, r.db).Model(&domain.CompanyRegistration{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *RegistrationRepository) List(ctx context.Context, status domain.RegistrationStatus, page, limit int) ([]domain.CompanyRegistration, int64, error) {
	_, limit, offset := Page(page, limit)

	q := conn(ctx, r.db).Model(&domain.CompanyRegistration{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.CompanyRegistration
	err := q.Preload("User").Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *RegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CompanyRegistration, error) {
	var rows []domain.CompanyRegistration
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *RegistrationRepository) HasPendingForUser(ctx context.Context, userID int64) (bool, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.CompanyRegistration{}).
		Where("user_id = ? AND status = ?", userID, domain.RegistrationPending).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *RegistrationRepository) PendingSlugExists(ctx context.Context, slug string) (bool, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.CompanyRegistration{}).
		Where("slug = ? AND status = ?", strings.ToLower(slug), domain.RegistrationPending).
		Count(&cnt).Error
	return cnt > 0, err
}

func (r *RegistrationRepository) CountByStatus(ctx context.Context, status domain.RegistrationStatus) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.CompanyRegistration{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
