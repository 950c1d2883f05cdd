package reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/metrics"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/validator"
	"queueless/internal/repository"
)

type Deps struct {
	Reservations ReservationRepository
	Companies    CompanyRepository
	Members      MembershipRepository
	Services     ServiceRepository
	Cache        AvailabilityCache
	Location     *time.Location
	Logger       zerolog.Logger
}

type Service struct {
	reservations ReservationRepository
	companies    CompanyRepository
	members      MembershipRepository
	services     ServiceRepository
	cache        AvailabilityCache
	loc          *time.Location
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	cache := d.Cache
	if cache == nil {
		cache = repository.NopAvailabilityCache{}
	}
	return &Service{
		reservations: d.Reservations,
		companies:    d.Companies,
		members:      d.Members,
		services:     d.Services,
		cache:        cache,
		loc:          loc,
		log:          d.Logger.With().Str("module", "reservation").Logger(),
		now:          time.Now,
	}
}

func (s *Service) settingsFor(ctx context.Context, companyID int64) (*domain.CompanySettings, error) {
	st, err := s.companies.GetSettings(ctx, companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultCompanySettings(companyID), nil
	}
	return st, err
}

func (s *Service) isStaff(ctx context.Context, actor domain.Actor, companyID int64) (bool, error) {
	if actor.IsPlatformAdmin() {
		return true, nil
	}
	m, err := s.members.Get(ctx, companyID, actor.UserID)
	if err != nil {
		return false, err
	}
	return m != nil && m.IsActive, nil
}

// GetAvailability returns the free slots of a company on date (YYYY-MM-DD).
// With workerID only that worker's reservations block a slot.
func (s *Service) GetAvailability(ctx context.Context, companyID int64, date string, workerID *int64) (*Availability, error) {
	day, err := time.ParseInLocation(domain.DateLayout, date, s.loc)
	if err != nil {
		return nil, apperr.Validation("date must be in YYYY-MM-DD format")
	}

	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to get availability")
	}

	if cached, err := s.cache.Get(ctx, companyID, date, workerID); err != nil {
		s.log.Warn().Err(err).Int64("company_id", companyID).Msg("availability cache read failed")
	} else if cached != nil {
		var out Availability
		if err := json.Unmarshal(cached, &out); err == nil {
			metrics.IncAvailabilityCache(true)
			return &out, nil
		}
	}
	metrics.IncAvailabilityCache(false)

	out, err := s.computeAvailability(ctx, companyID, day, workerID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to get availability")
	}
	out.Date = date

	if payload, err := json.Marshal(out); err == nil {
		if err := s.cache.Set(ctx, companyID, date, workerID, payload); err != nil {
			s.log.Warn().Err(err).Int64("company_id", companyID).Msg("availability cache write failed")
		}
	}
	return out, nil
}

func (s *Service) computeAvailability(ctx context.Context, companyID int64, day time.Time, workerID *int64) (*Availability, error) {
	settings, err := s.settingsFor(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := &Availability{WorkerID: workerID, SlotMinutes: settings.SlotMinutes, Slots: []Slot{}}

	weekday := domain.WeekdayIndex(day)
	hours, err := s.companies.GetWorkingHours(ctx, companyID, weekday)
	if err != nil {
		return nil, err
	}
	if hours == nil {
		return out, nil
	}

	dayStart := domain.StartOfDay(day)
	reservations, err := s.reservations.ListActiveBetween(ctx, companyID, workerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	breaks, err := s.companies.ListWorkBreaksForDay(ctx, companyID, weekday)
	if err != nil {
		return nil, err
	}

	slots, err := GenerateSlots(day, settings, hours, breaks, reservations)
	if err != nil {
		return nil, err
	}
	out.Slots = slots
	return out, nil
}

// checkWithinHours requires [start, end) to fall inside the company's hours
// for that day, in the business timezone.
func (s *Service) checkWithinHours(ctx context.Context, companyID int64, start, end time.Time) error {
	local := start.In(s.loc)
	hours, err := s.companies.GetWorkingHours(ctx, companyID, domain.WeekdayIndex(local))
	if err != nil {
		return err
	}
	if hours == nil {
		return ErrClosedDay
	}
	open, err := domain.AtClock(local, hours.OpenTime)
	if err != nil {
		return err
	}
	closing, err := domain.AtClock(local, hours.CloseTime)
	if err != nil {
		return err
	}
	if start.Before(open) || end.After(closing) {
		return ErrOutsideWorkingHours
	}
	return nil
}

// activeWorker loads the worker's membership; trainees take longer.
func (s *Service) activeWorker(ctx context.Context, companyID, workerID int64) (*domain.CompanyMembership, error) {
	m, err := s.members.Get(ctx, companyID, workerID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsActive {
		return nil, apperr.NotFound("Worker")
	}
	return m, nil
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateReservationRequest) (*domain.Reservation, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to create reservation")
	}
	if !company.IsActive {
		return nil, ErrCompanyInactive
	}

	settings, err := s.settingsFor(ctx, company.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to create reservation")
	}

	duration := time.Duration(settings.SlotMinutes) * time.Minute
	if req.ServiceID != nil {
		svc, err := s.services.GetByID(ctx, *req.ServiceID)
		if err != nil {
			return nil, apperr.FromDB(err, "Service", "", "Failed to create reservation")
		}
		if svc.CompanyID != company.ID || !svc.IsActive {
			return nil, apperr.NotFound("Service")
		}
		duration = time.Duration(svc.DurationMinutes) * time.Minute
	}

	if req.WorkerID != nil {
		m, err := s.activeWorker(ctx, company.ID, *req.WorkerID)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to create reservation")
		}
		if m.IsTrainee {
			duration += time.Duration(settings.TraineeExtraMinutes) * time.Minute
		}
	}

	start := req.SlotStart.UTC().Truncate(time.Minute)
	end := start.Add(duration)
	if req.SlotEnd != nil {
		end = req.SlotEnd.UTC().Truncate(time.Minute)
	}
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	now := s.now()
	if start.Before(now) {
		return nil, ErrInPast
	}
	if settings.MaxAdvanceDays > 0 && start.After(now.AddDate(0, 0, settings.MaxAdvanceDays)) {
		return nil, apperr.Validation(fmt.Sprintf("reservations can be made at most %d days in advance", settings.MaxAdvanceDays))
	}
	if err := s.checkWithinHours(ctx, company.ID, start, end); err != nil {
		return nil, apperr.Wrap(err, "Failed to create reservation")
	}

	taken, err := s.reservations.HasConflict(ctx, company.ID, req.WorkerID, start, end, 0)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to create reservation")
	}
	if taken {
		metrics.IncReservationConflict()
		return nil, ErrSlotNotAvailable
	}

	status := domain.ReservationPending
	if settings.AutoAcceptReservations {
		status = domain.ReservationConfirmed
	}

	r := &domain.Reservation{
		CompanyID: company.ID,
		UserID:    userID,
		WorkerID:  req.WorkerID,
		ServiceID: req.ServiceID,
		SlotStart: start,
		SlotEnd:   end,
		Status:    status,
		Notes:     req.Notes,
	}
	if err := s.reservations.Create(ctx, r); err != nil {
		if apperr.IsExclusionViolation(err) {
			metrics.IncReservationConflict()
			return nil, ErrSlotNotAvailable
		}
		return nil, apperr.Wrap(err, "Failed to create reservation")
	}

	s.invalidate(ctx, company.ID)
	metrics.IncReservation(string(status))
	s.log.Info().
		Int64("reservation_id", r.ID).
		Int64("company_id", company.ID).
		Int64("user_id", userID).
		Str("status", string(status)).
		Time("slot_start", start).
		Msg("reservation created")

	return r, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Reservation", "", "Failed to get reservation")
	}
	if r.UserID == actor.UserID {
		return r, nil
	}
	staff, err := s.isStaff(ctx, actor, r.CompanyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to get reservation")
	}
	if !staff {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, actor domain.Actor, id int64, req UpdateReservationRequest) (*domain.Reservation, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Reservation", "", "Failed to update reservation")
	}
	if r.UserID != actor.UserID {
		staff, err := s.isStaff(ctx, actor, r.CompanyID)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to update reservation")
		}
		if !staff {
			return nil, ErrForbidden
		}
	}
	if !r.Status.IsActive() {
		return nil, ErrNotChangeable
	}

	start, end := r.SlotStart.UTC(), r.SlotEnd.UTC()
	if req.SlotStart != nil {
		duration := end.Sub(start)
		start = req.SlotStart.UTC().Truncate(time.Minute)
		end = start.Add(duration)
	}
	if req.SlotEnd != nil {
		end = req.SlotEnd.UTC().Truncate(time.Minute)
	}
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	workerID := r.WorkerID
	switch {
	case req.UnassignWorker:
		workerID = nil
	case req.WorkerID != nil:
		if _, err := s.activeWorker(ctx, r.CompanyID, *req.WorkerID); err != nil {
			return nil, apperr.Wrap(err, "Failed to update reservation")
		}
		workerID = req.WorkerID
	}

	moved := !start.Equal(r.SlotStart.UTC()) || !end.Equal(r.SlotEnd.UTC())
	if moved {
		if start.Before(s.now()) {
			return nil, ErrInPast
		}
		if err := s.checkWithinHours(ctx, r.CompanyID, start, end); err != nil {
			return nil, apperr.Wrap(err, "Failed to update reservation")
		}
	}

	taken, err := s.reservations.HasConflict(ctx, r.CompanyID, workerID, start, end, r.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update reservation")
	}
	if taken {
		metrics.IncReservationConflict()
		return nil, ErrSlotNotAvailable
	}

	fields := map[string]any{
		"slot_start": start,
		"slot_end":   end,
		"worker_id":  workerID,
	}
	if req.Notes != nil {
		fields["notes"] = *req.Notes
	}
	if err := s.reservations.UpdateFields(ctx, r.ID, fields); err != nil {
		if apperr.IsExclusionViolation(err) {
			return nil, ErrSlotNotAvailable
		}
		return nil, apperr.Wrap(err, "Failed to update reservation")
	}

	s.invalidate(ctx, r.CompanyID)
	s.log.Info().Int64("reservation_id", r.ID).Int64("actor_id", actor.UserID).Msg("reservation updated")

	r.SlotStart, r.SlotEnd, r.WorkerID = start, end, workerID
	if req.Notes != nil {
		r.Notes = *req.Notes
	}
	return r, nil
}

// UpdateStatus moves a reservation forward in its lifecycle. Customers may
// only cancel their own; company staff may apply any allowed transition.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id int64, req UpdateStatusRequest) (*domain.Reservation, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Reservation", "", "Failed to update reservation status")
	}

	staff, err := s.isStaff(ctx, actor, r.CompanyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update reservation status")
	}
	if !staff {
		if r.UserID != actor.UserID {
			return nil, ErrForbidden
		}
		if req.Status != domain.ReservationCancelled {
			return nil, ErrCustomerCancelOnly
		}
	}

	if !r.Status.CanTransitionTo(req.Status) {
		return nil, apperr.Conflict(fmt.Sprintf("Cannot change reservation status from %s to %s", r.Status, req.Status))
	}

	fields := map[string]any{"status": req.Status}
	if req.Status == domain.ReservationCancelled {
		fields["cancellation_reason"] = req.Reason
	}
	if err := s.reservations.UpdateFields(ctx, r.ID, fields); err != nil {
		return nil, apperr.FromDB(err, "Reservation", "", "Failed to update reservation status")
	}

	s.invalidate(ctx, r.CompanyID)
	metrics.IncReservation(string(req.Status))
	s.log.Info().
		Int64("reservation_id", r.ID).
		Int64("actor_id", actor.UserID).
		Str("from", string(r.Status)).
		Str("to", string(req.Status)).
		Msg("reservation status changed")

	r.Status = req.Status
	if req.Status == domain.ReservationCancelled {
		r.CancellationReason = req.Reason
	}
	return r, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64, q ListQuery) (*ListResult, error) {
	page, limit, _ := repository.Page(q.Page, q.Limit)
	items, total, err := s.reservations.List(ctx, repository.ReservationFilter{
		UserID: userID,
		Status: q.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list reservations")
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// ListCompany is the staff view of a company's reservations, optionally for one day.
func (s *Service) ListCompany(ctx context.Context, companyID int64, q ListQuery) (*ListResult, error) {
	page, limit, _ := repository.Page(q.Page, q.Limit)
	f := repository.ReservationFilter{
		CompanyID: companyID,
		WorkerID:  q.WorkerID,
		Status:    q.Status,
		Page:      page,
		Limit:     limit,
	}
	if q.Date != "" {
		day, err := time.ParseInLocation(domain.DateLayout, q.Date, s.loc)
		if err != nil {
			return nil, apperr.Validation("date must be in YYYY-MM-DD format")
		}
		from, to := day, day.AddDate(0, 0, 1)
		f.From, f.To = &from, &to
	}
	if q.Status != "" && !q.Status.Valid() {
		return nil, apperr.Validation("status is invalid")
	}

	items, total, err := s.reservations.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list reservations")
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Complete marks a confirmed reservation COMPLETED and reports whether it
// changed. It only writes, so it is safe inside the caller's transaction;
// call AfterComplete once that transaction has committed.
func (s *Service) Complete(ctx context.Context, id int64) (bool, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return false, apperr.FromDB(err, "Reservation", "", "Failed to complete reservation")
	}
	if !r.Status.CanTransitionTo(domain.ReservationCompleted) {
		return false, nil
	}
	if err := s.reservations.UpdateFields(ctx, id, map[string]any{"status": domain.ReservationCompleted}); err != nil {
		return false, apperr.Wrap(err, "Failed to complete reservation")
	}
	return true, nil
}

// AfterComplete drops cached slots of the company and counts the completion.
func (s *Service) AfterComplete(ctx context.Context, companyID int64) {
	s.invalidate(ctx, companyID)
	metrics.IncReservation(string(domain.ReservationCompleted))
}

func (s *Service) invalidate(ctx context.Context, companyID int64) {
	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		s.log.Warn().Err(err).Int64("company_id", companyID).Msg("availability cache invalidation failed")
	}
}
