package repository

import (
	"context"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

type MembershipRepository struct {
	db *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(ctx context.Context, m *domain.CompanyMembership) error {
	return conn(ctx, r.db).Omit("User").Create(m).Error
}

func (r *MembershipRepository) GetByID(ctx context.Context, id int64) (*domain.CompanyMembership, error) {
	var m domain.CompanyMembership
	if err := conn(ctx, r.db).Preload("User").First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Get returns nil, nil when the user is not a member of the company.
func (r *MembershipRepository) Get(ctx context.Context, companyID, userID int64) (*domain.CompanyMembership, error) {
	var rows []domain.CompanyMembership
	err := conn(ctx, r.db).
		Where("company_id = ? AND user_id = ?", companyID, userID).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *MembershipRepository) ListByCompany(ctx context.Context, companyID int64) ([]domain.CompanyMembership, error) {
	var rows []domain.CompanyMembership
	err := conn(ctx, r.db).
		Preload("User").
		Where("company_id = ?", companyID).
		Order("role ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CompanyMembership, error) {
	var rows []domain.CompanyMembership
	err := conn(ctx, r.db).Where("user_id = ?", userID).Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *MembershipRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := conn(ctx, r.db).Model(&domain.CompanyMembership{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, id int64) error {
	return conn(ctx, r.db).Delete(&domain.CompanyMembership{}, id).Error
}

// CountActiveOwners counts owners that still have access to the company.
func (r *MembershipRepository) CountActiveOwners(ctx context.Context, companyID int64) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.CompanyMembership{}).
		Where("company_id = ? AND role = ? AND is_active = ?", companyID, domain.MemberRoleOwner, true).
		Count(&cnt).Error
	return cnt, err
}
