package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

type QueueRepository struct {
	db *gorm.DB
}

func NewQueueRepository(db *gorm.DB) *QueueRepository {
	return &QueueRepository{db: db}
}

func (r *QueueRepository) Create(ctx context.Context, e *domain.QueueEntry) error {
	return conn(ctx, r.db).Omit("User", "Service").Create(e).Error
}

func (r *QueueRepository) GetByID(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	if err := conn(ctx, r.db).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *QueueRepository) GetForUpdate(ctx context.Context, id int64) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	if err := forUpdate(ctx, r.db).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *QueueRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := conn(ctx, r.db).Model(&domain.QueueEntry{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActive returns the company's live queue ordered by position.
func (r *QueueRepository) ListActive(ctx context.Context, companyID int64) ([]domain.QueueEntry, error) {
	var rows []domain.QueueEntry
	err := conn(ctx, r.db).
		Preload("User").
		Preload("Service").
		Where("company_id = ? AND status IN ?", companyID, domain.ActiveQueueStatuses).
		Order("queue_position ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *QueueRepository) ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]domain.QueueEntry, error) {
	q := conn(ctx, r.db).Preload("Service").Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("status IN ?", domain.ActiveQueueStatuses)
	}
	var rows []domain.QueueEntry
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// FindActiveByUser returns nil, nil when the user has no live entry in the company queue.
func (r *QueueRepository) FindActiveByUser(ctx context.Context, companyID, userID int64) (*domain.QueueEntry, error) {
	var rows []domain.QueueEntry
	err := conn(ctx, r.db).
		Where("company_id = ? AND user_id = ? AND status IN ?", companyID, userID, domain.ActiveQueueStatuses).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *QueueRepository) FindByReservation(ctx context.Context, reservationID int64) (*domain.QueueEntry, error) {
	var rows []domain.QueueEntry
	err := conn(ctx, r.db).
		Where("reservation_id = ? AND status IN ?", reservationID, domain.ActiveQueueStatuses).
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func (r *QueueRepository) MaxActivePosition(ctx context.Context, companyID int64) (int, error) {
	var max *int
	err := conn(ctx, r.db).Model(&domain.QueueEntry{}).
		Where("company_id = ? AND status IN ?", companyID, domain.ActiveQueueStatuses).
		Select("MAX(queue_position)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 0, err
	}
	return *max, nil
}

func (r *QueueRepository) CountActive(ctx context.Context, companyID int64) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.QueueEntry{}).
		Where("company_id = ? AND status IN ?", companyID, domain.ActiveQueueStatuses).
		Count(&cnt).Error
	return cnt, err
}

// NextWaiting returns the lowest-position WAITING entry, or nil.
func (r *QueueRepository) NextWaiting(ctx context.Context, companyID int64) (*domain.QueueEntry, error) {
	var rows []domain.QueueEntry
	err := forUpdate(ctx, r.db).
		Where("company_id = ? AND status = ?", companyID, domain.QueueWaiting).
		Order("queue_position ASC, id ASC").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// CancelStale cancels live entries created before cutoff.
func (r *QueueRepository) CancelStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := conn(ctx, r.db).Model(&domain.QueueEntry{}).
		Where("status IN ? AND created_at < ?", domain.ActiveQueueStatuses, cutoff.UTC()).
		Update("status", domain.QueueCancelled)
	return res.RowsAffected, res.Error
}

func (r *QueueRepository) CountByStatus(ctx context.Context, status domain.QueueStatus) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.QueueEntry{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
