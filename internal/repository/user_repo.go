package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// UserFilter drives the admin user list.
type UserFilter struct {
	Search string
	Role   domain.PlatformRole
	Page   int
	Limit  int
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	if u.PlatformRole == "" {
		u.PlatformRole = domain.PlatformRoleUser
	}
	return conn(ctx, r.db).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := conn(ctx, r.db).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := conn(ctx, r.db).
		Where("LOWER(email) = ?", normalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ExistsByEmail ignores the user with excludeID so a profile can keep its own address.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error) {
	var cnt int64
	q := conn(ctx, r.db).Model(&domain.User{}).Where("LOWER(email) = ?", normalizeEmail(email))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// UpdateFields writes only the given columns.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if email, ok := fields["email"].(string); ok {
		fields["email"] = normalizeEmail(email)
	}
	res := conn(ctx, r.db).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]domain.User, int64, error) {
	_, limit, offset := Page(f.Page, f.Limit)

	q := conn(ctx, r.db).Model(&domain.User{})
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := containsPattern(s)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if f.Role != "" {
		q = q.Where("platform_role = ?", f.Role)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.User{}).Count(&cnt).Error
	return cnt, err
}
