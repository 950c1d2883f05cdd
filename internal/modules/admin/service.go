package admin

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
)

type Deps struct {
	Users         UserCounter
	Companies     CompanyCounter
	Registrations RegistrationCounter
	Reservations  ReservationCounter
	Queue         QueueCounter
	Location      *time.Location
	Logger        zerolog.Logger
}

type Service struct {
	users         UserCounter
	companies     CompanyCounter
	registrations RegistrationCounter
	reservations  ReservationCounter
	queue         QueueCounter
	loc           *time.Location
	log           zerolog.Logger
	now           func() time.Time
}

func NewService(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		users:         d.Users,
		companies:     d.Companies,
		registrations: d.Registrations,
		reservations:  d.Reservations,
		queue:         d.Queue,
		loc:           loc,
		log:           d.Logger.With().Str("module", "admin").Logger(),
		now:           time.Now,
	}
}

// Statistics gathers the platform counters. "Today" is the current day in
// the business timezone.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	now := s.now().In(s.loc)
	dayStart := domain.StartOfDay(now)
	out := &Statistics{GeneratedAt: now}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Users, err = s.users.Count(ctx)
		return err
	})
	g.Go(func() (err error) {
		out.Companies, err = s.companies.Count(ctx, false)
		return err
	})
	g.Go(func() (err error) {
		out.ActiveCompanies, err = s.companies.Count(ctx, true)
		return err
	})
	g.Go(func() (err error) {
		out.PendingRegistrations, err = s.registrations.CountByStatus(ctx, domain.RegistrationPending)
		return err
	})
	g.Go(func() (err error) {
		out.ReservationsToday, err = s.reservations.CountStartingBetween(ctx, dayStart, dayStart.AddDate(0, 0, 1))
		return err
	})
	g.Go(func() (err error) {
		out.QueueWaiting, err = s.queue.CountByStatus(ctx, domain.QueueWaiting)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("statistics query failed")
		return nil, apperr.Internal("Failed to load statistics", err)
	}
	return out, nil
}
