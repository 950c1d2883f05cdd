package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/metrics"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/validator"
)

type Deps struct {
	Entries      QueueRepository
	Companies    CompanyRepository
	Members      MembershipRepository
	Services     ServiceRepository
	Reservations ReservationReader
	Completer    ReservationCompleter
	Tx           Transactor
	Publisher    Publisher
	Logger       zerolog.Logger
}

type Service struct {
	entries      QueueRepository
	companies    CompanyRepository
	members      MembershipRepository
	services     ServiceRepository
	reservations ReservationReader
	completer    ReservationCompleter
	tx           Transactor
	pub          Publisher
	log          zerolog.Logger
	now          func() time.Time
}

func NewService(d Deps) *Service {
	return &Service{
		entries:      d.Entries,
		companies:    d.Companies,
		members:      d.Members,
		services:     d.Services,
		reservations: d.Reservations,
		completer:    d.Completer,
		tx:           d.Tx,
		pub:          d.Publisher,
		log:          d.Logger.With().Str("module", "queue").Logger(),
		now:          time.Now,
	}
}

func (s *Service) slotMinutes(ctx context.Context, companyID int64) (int, error) {
	st, err := s.companies.GetSettings(ctx, companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultSlotMinutes, nil
	}
	if err != nil {
		return 0, err
	}
	return st.SlotMinutes, nil
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

// estimate places a new entry behind everyone still being served or waiting.
func (s *Service) estimate(ctx context.Context, companyID int64, duration time.Duration) (position int, start, end time.Time, err error) {
	last, err := s.entries.MaxActivePosition(ctx, companyID)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	ahead, err := s.entries.CountActive(ctx, companyID)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	slot, err := s.slotMinutes(ctx, companyID)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	start = s.now().UTC().Add(time.Duration(ahead) * time.Duration(slot) * time.Minute)
	if duration <= 0 {
		duration = time.Duration(slot) * time.Minute
	}
	return last + 1, start, start.Add(duration), nil
}

// Join puts a walk-in customer at the end of the company queue.
func (s *Service) Join(ctx context.Context, userID, companyID int64, req JoinRequest) (*domain.QueueEntry, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to join queue")
	}
	if !company.IsActive {
		return nil, ErrCompanyInactive
	}

	var duration time.Duration
	if req.ServiceID != nil {
		svc, err := s.services.GetByID(ctx, *req.ServiceID)
		if err != nil {
			return nil, apperr.FromDB(err, "Service", "", "Failed to join queue")
		}
		if svc.CompanyID != companyID || !svc.IsActive {
			return nil, apperr.NotFound("Service")
		}
		duration = time.Duration(svc.DurationMinutes) * time.Minute
	}

	var entry *domain.QueueEntry
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.entries.FindActiveByUser(ctx, companyID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyQueued
		}

		pos, start, end, err := s.estimate(ctx, companyID, duration)
		if err != nil {
			return err
		}
		entry = &domain.QueueEntry{
			CompanyID:      companyID,
			UserID:         userID,
			ServiceID:      req.ServiceID,
			QueuePosition:  pos,
			Status:         domain.QueueWaiting,
			EstimatedStart: &start,
			EstimatedEnd:   &end,
		}
		return s.entries.Create(ctx, entry)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to join queue")
	}

	metrics.IncQueueTransition(string(domain.QueueWaiting))
	s.log.Info().
		Int64("entry_id", entry.ID).
		Int64("company_id", companyID).
		Int64("user_id", userID).
		Int("position", entry.QueuePosition).
		Msg("queue joined")
	s.broadcast(ctx, companyID)
	return entry, nil
}

// CheckIn turns a confirmed reservation into a queue entry on arrival.
func (s *Service) CheckIn(ctx context.Context, actor domain.Actor, req CheckInRequest) (*domain.QueueEntry, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	r, err := s.reservations.GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, apperr.FromDB(err, "Reservation", "", "Failed to check in")
	}
	if r.UserID != actor.UserID {
		staff, err := s.isStaff(ctx, actor, r.CompanyID)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to check in")
		}
		if !staff {
			return nil, ErrForbidden
		}
	}
	if r.Status != domain.ReservationConfirmed {
		return nil, ErrNotConfirmed
	}

	var entry *domain.QueueEntry
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.entries.FindByReservation(ctx, r.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyCheckedIn
		}

		pos, start, end, err := s.estimate(ctx, r.CompanyID, r.SlotEnd.Sub(r.SlotStart))
		if err != nil {
			return err
		}
		// Early arrivals are still served at the booked time.
		if slot := r.SlotStart.UTC(); slot.After(start) {
			start, end = slot, r.SlotEnd.UTC()
		}
		entry = &domain.QueueEntry{
			CompanyID:      r.CompanyID,
			UserID:         r.UserID,
			ReservationID:  &r.ID,
			WorkerID:       r.WorkerID,
			ServiceID:      r.ServiceID,
			QueuePosition:  pos,
			Status:         domain.QueueWaiting,
			EstimatedStart: &start,
			EstimatedEnd:   &end,
		}
		return s.entries.Create(ctx, entry)
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to check in")
	}

	metrics.IncQueueTransition(string(domain.QueueWaiting))
	s.log.Info().
		Int64("entry_id", entry.ID).
		Int64("reservation_id", r.ID).
		Int64("actor_id", actor.UserID).
		Msg("reservation checked in")
	s.broadcast(ctx, r.CompanyID)
	return entry, nil
}

func (s *Service) ListCompany(ctx context.Context, companyID int64) ([]domain.QueueEntry, error) {
	if _, err := s.companies.GetByID(ctx, companyID); err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to list queue")
	}
	rows, err := s.entries.ListActive(ctx, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list queue")
	}
	return rows, nil
}

// ListForStaff is ListCompany for callers not already vetted by CompanyAccess.
func (s *Service) ListForStaff(ctx context.Context, actor domain.Actor, companyID int64) ([]domain.QueueEntry, error) {
	staff, err := s.isStaff(ctx, actor, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list queue")
	}
	if !staff {
		return nil, apperr.Forbidden("You are not a member of this company")
	}
	return s.ListCompany(ctx, companyID)
}

func (s *Service) ListMine(ctx context.Context, userID int64, activeOnly bool) ([]domain.QueueEntry, error) {
	rows, err := s.entries.ListByUser(ctx, userID, activeOnly)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list queue entries")
	}
	return rows, nil
}

// UpdateStatus moves an entry through WAITING, READY, IN_PROGRESS and a
// final state. Customers may only cancel their own entry.
func (s *Service) UpdateStatus(ctx context.Context, actor domain.Actor, id int64, req UpdateStatusRequest) (*domain.QueueEntry, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var entry *domain.QueueEntry
	var from domain.QueueStatus
	var reservationDone bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		e, err := s.entries.GetForUpdate(ctx, id)
		if err != nil {
			return apperr.FromDB(err, "Queue entry", "", "Failed to update queue entry")
		}

		staff, err := s.isStaff(ctx, actor, e.CompanyID)
		if err != nil {
			return err
		}
		if !staff {
			if e.UserID != actor.UserID {
				return ErrForbidden
			}
			if req.Status != domain.QueueCancelled {
				return ErrCustomerCancelOnly
			}
		}
		if !e.Status.CanTransitionTo(req.Status) {
			return apperr.Conflict(fmt.Sprintf("Cannot change queue status from %s to %s", e.Status, req.Status))
		}

		now := s.now().UTC()
		fields := map[string]any{"status": req.Status}
		switch req.Status {
		case domain.QueueInProgress:
			fields["actual_start"] = now
			e.ActualStart = &now
			if e.WorkerID == nil && !actor.IsPlatformAdmin() {
				fields["worker_id"] = actor.UserID
				e.WorkerID = &actor.UserID
			}
		case domain.QueueCompleted:
			fields["actual_end"] = now
			e.ActualEnd = &now
		}
		if err := s.entries.UpdateFields(ctx, e.ID, fields); err != nil {
			return err
		}
		if req.Status == domain.QueueCompleted && e.ReservationID != nil && s.completer != nil {
			done, err := s.completer.Complete(ctx, *e.ReservationID)
			if err != nil {
				return err
			}
			reservationDone = done
		}

		from = e.Status
		e.Status = req.Status
		entry = e
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update queue entry")
	}

	if reservationDone {
		s.completer.AfterComplete(ctx, entry.CompanyID)
	}
	metrics.IncQueueTransition(string(req.Status))
	s.log.Info().
		Int64("entry_id", entry.ID).
		Int64("actor_id", actor.UserID).
		Str("from", string(from)).
		Str("to", string(req.Status)).
		Msg("queue status changed")
	s.broadcast(ctx, entry.CompanyID)
	return entry, nil
}

// CallNext marks the first waiting customer READY and assigns the caller.
func (s *Service) CallNext(ctx context.Context, actor domain.Actor, companyID int64) (*domain.QueueEntry, error) {
	var entry *domain.QueueEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		e, err := s.entries.NextWaiting(ctx, companyID)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrNobodyWaiting
		}
		fields := map[string]any{"status": domain.QueueReady}
		if !actor.IsPlatformAdmin() && e.WorkerID == nil {
			fields["worker_id"] = actor.UserID
			e.WorkerID = &actor.UserID
		}
		if err := s.entries.UpdateFields(ctx, e.ID, fields); err != nil {
			return err
		}
		e.Status = domain.QueueReady
		entry = e
		return nil
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to call next customer")
	}

	metrics.IncQueueTransition(string(domain.QueueReady))
	s.log.Info().Int64("entry_id", entry.ID).Int64("company_id", companyID).Int64("actor_id", actor.UserID).Msg("next customer called")
	s.broadcast(ctx, companyID)
	return entry, nil
}

// Snapshot is the event a new websocket subscriber receives first.
func (s *Service) Snapshot(ctx context.Context, companyID int64) (*Event, error) {
	rows, err := s.entries.ListActive(ctx, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to load queue")
	}
	if rows == nil {
		rows = []domain.QueueEntry{}
	}
	return &Event{Type: EventSnapshot, CompanyID: companyID, Entries: rows}, nil
}

func (s *Service) broadcast(ctx context.Context, companyID int64) {
	if s.pub == nil {
		return
	}
	ev, err := s.Snapshot(ctx, companyID)
	if err != nil {
		s.log.Warn().Err(err).Int64("company_id", companyID).Msg("queue snapshot failed")
		return
	}
	s.pub.Publish(companyID, *ev)
}
