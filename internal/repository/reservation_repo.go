package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"queueless/internal/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

type ReservationFilter struct {
	CompanyID int64
	UserID    int64
	WorkerID  *int64
	Status    domain.ReservationStatus
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return conn(ctx, r.db).Omit("Company", "User", "Worker", "Service").Create(res).Error
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	err := conn(ctx, r.db).
		Preload("Company").
		Preload("Service").
		First(&res, id).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetForUpdate locks the row inside a transaction.
func (r *ReservationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := forUpdate(ctx, r.db).First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	res := conn(ctx, r.db).Model(&domain.Reservation{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// workerScope matches one worker, or the unassigned pool when workerID is nil.
func workerScope(workerID *int64) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if workerID == nil {
			return db.Where("worker_id IS NULL")
		}
		return db.Where("worker_id = ?", *workerID)
	}
}

// HasConflict reports whether an active reservation of the same company and
// worker overlaps [start, end). Unassigned reservations conflict with each
// other. excludeID skips the reservation being rescheduled.
func (r *ReservationRepository) HasConflict(ctx context.Context, companyID int64, workerID *int64, start, end time.Time, excludeID int64) (bool, error) {
	var cnt int64
	q := conn(ctx, r.db).Model(&domain.Reservation{}).
		Where("company_id = ?", companyID).
		Where("status IN ?", domain.ActiveReservationStatuses).
		Where("slot_start < ? AND slot_end > ?", end.UTC(), start.UTC()).
		Scopes(workerScope(workerID))
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// ListActiveBetween returns PENDING/CONFIRMED reservations of a company that
// intersect [from, to). With a worker only that worker's reservations count.
func (r *ReservationRepository) ListActiveBetween(ctx context.Context, companyID int64, workerID *int64, from, to time.Time) ([]domain.Reservation, error) {
	q := conn(ctx, r.db).
		Where("company_id = ?", companyID).
		Where("status IN ?", domain.ActiveReservationStatuses).
		Where("slot_start < ? AND slot_end > ?", to.UTC(), from.UTC())
	if workerID != nil {
		q = q.Where("worker_id = ?", *workerID)
	}
	var rows []domain.Reservation
	err := q.Order("slot_start ASC").Find(&rows).Error
	return rows, err
}

func (r *ReservationRepository) List(ctx context.Context, f ReservationFilter) ([]domain.Reservation, int64, error) {
	_, limit, offset := Page(f.Page, f.Limit)

	q := conn(ctx, r.db).Model(&domain.Reservation{})
	if f.CompanyID > 0 {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.WorkerID != nil {
		q = q.Where("worker_id = ?", *f.WorkerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("slot_start >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("slot_start < ?", f.To.UTC())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []domain.Reservation
	err := q.Preload("Company").Preload("User").Preload("Worker").Preload("Service").
		Order("slot_start ASC").Order("id ASC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListForExport returns every reservation matching the filter, ignoring paging.
func (r *ReservationRepository) ListForExport(ctx context.Context, f ReservationFilter) ([]domain.Reservation, error) {
	q := conn(ctx, r.db)
	if f.CompanyID > 0 {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.From != nil {
		q = q.Where("slot_start >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("slot_start < ?", f.To.UTC())
	}
	var rows []domain.Reservation
	err := q.Preload("Company").Preload("User").Preload("Worker").Preload("Service").
		Order("slot_start ASC").
		Find(&rows).Error
	return rows, err
}

// CancelStalePending cancels PENDING reservations that started before cutoff.
func (r *ReservationRepository) CancelStalePending(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	res := conn(ctx, r.db).Model(&domain.Reservation{}).
		Where("status = ? AND slot_start < ?", domain.ReservationPending, cutoff.UTC()).
		Updates(map[string]any{
			"status":              domain.ReservationCancelled,
			"cancellation_reason": reason,
		})
	return res.RowsAffected, res.Error
}

func (r *ReservationRepository) CountStartingBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var cnt int64
	err := conn(ctx, r.db).Model(&domain.Reservation{}).
		Where("slot_start >= ? AND slot_start < ?", from.UTC(), to.UTC()).
		Where("status <> ?", domain.ReservationCancelled).
		Count(&cnt).Error
	return cnt, err
}
