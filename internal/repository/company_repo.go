package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

type CompanyFilter struct {
	Search     string
	ActiveOnly bool
	Page       int
	Limit      int
}

func (r *CompanyRepository) Create(ctx context.Context, c *domain.Company) error {
	return conn(ctx, r.db).Omit("Settings", "WorkingHours", "WorkBreaks", "Services").Create(c).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*domain.Company, error) {
	var c domain.Company
	if err := conn(ctx, r.db).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	var c domain.Company
	if err := conn(ctx, r.db).Where("slug = ?", strings.ToLower(slug)).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetDetailed loads a company with settings, hours, breaks and active services.
func (r *CompanyRepository) GetDetailed(ctx context.Context, id int64) (*domain.Company, error) {
	var c domain.Company
	err := conn(ctx, r.db).
		Preload("Settings").
		Preload("WorkingHours", func(db *gorm.DB) *gorm.DB { return db.Order("weekday ASC") }).
		Preload("WorkBreaks", func(db *gorm.DB) *gorm.DB { return db.Order("weekday ASC, start_time ASC") }).
		Preload("Services", "is_active = ?", true).
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var cnt int64
	q := conn(ctx, r.db).Model(&domain.Company{}).Where("slug = ?", strings.ToLower(slug))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *CompanyRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := conn(ctx, r.db).Model(&domain.Company{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CompanyRepository) List(ctx context.Context, f CompanyFilter) ([]domain.Company, int64, error) {
	_, limit, offset := Page(f.Page, f.Limit)

	q := conn(ctx, r.db).Model(&domain.Company{})
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", containsPattern(s))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []domain.Company
	if err := q.Order("name ASC").Order("id ASC").Limit(limit).Offset(offset).Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}

func (r *CompanyRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var cnt int64
	q := conn(ctx, r.db).Model(&domain.Company{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Count(&cnt).Error
	return cnt, err
}

// Settings

func (r *CompanyRepository) CreateSettings(ctx context.Context, s *domain.CompanySettings) error {
	return conn(ctx, r.db).Create(s).Error
}

func (r *CompanyRepository) GetSettings(ctx context.Context, companyID int64) (*domain.CompanySettings, error) {
	var s domain.CompanySettings
	if err := conn(ctx, r.db).Where("company_id = ?", companyID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CompanyRepository) SaveSettings(ctx context.Context, s *domain.CompanySettings) error {
	return conn(ctx, r.db).Save(s).Error
}

// Working hours

func (r *CompanyRepository) ListWorkingHours(ctx context.Context, companyID int64) ([]domain.WorkingHours, error) {
	var rows []domain.WorkingHours
	err := conn(ctx, r.db).Where("company_id = ?", companyID).Order("weekday ASC").Find(&rows).Error
	return rows, err
}

// GetWorkingHours returns nil, nil when the company is closed that weekday.
func (r *CompanyRepository) GetWorkingHours(ctx context.Context, companyID int64, weekday int) (*domain.WorkingHours, error) {
	var rows []domain.WorkingHours
	err := conn(ctx, r.db).
		Where("company_id = ? AND weekday = ?", companyID, weekday).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// ReplaceWorkingHours deletes the weekday's row and inserts wh when non-nil.
func (r *CompanyRepository) ReplaceWorkingHours(ctx context.Context, companyID int64, weekday int, wh *domain.WorkingHours) error {
	db := conn(ctx, r.db)
	if err := db.Where("company_id = ? AND weekday = ?", companyID, weekday).Delete(&domain.WorkingHours{}).Error; err != nil {
		return err
	}
	if wh == nil {
		return nil
	}
	wh.ID = 0
	wh.CompanyID = companyID
	wh.Weekday = weekday
	return db.Create(wh).Error
}

// Work breaks

func (r *CompanyRepository) ListWorkBreaks(ctx context.Context, companyID int64) ([]domain.WorkBreak, error) {
	var rows []domain.WorkBreak
	err := conn(ctx, r.db).
		Where("company_id = ?", companyID).
		Order("weekday ASC, start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *CompanyRepository) ListWorkBreaksForDay(ctx context.Context, companyID int64, weekday int) ([]domain.WorkBreak, error) {
	var rows []domain.WorkBreak
	err := conn(ctx, r.db).
		Where("company_id = ? AND weekday = ?", companyID, weekday).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *CompanyRepository) ReplaceWorkBreaks(ctx context.Context, companyID int64, weekday int, breaks []domain.WorkBreak) error {
	db := conn(ctx, r.db)
	if err := db.Where("company_id = ? AND weekday = ?", companyID, weekday).Delete(&domain.WorkBreak{}).Error; err != nil {
		return err
	}
	if len(breaks) == 0 {
		return nil
	}
	for i := range breaks {
		breaks[i].ID = 0
		breaks[i].CompanyID = companyID
		breaks[i].Weekday = weekday
	}
	return db.Create(&breaks).Error
}
