package registration

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"queueless/internal/domain"
	"queueless/internal/metrics"
	"queueless/internal/modules/company"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/validator"
	"queueless/internal/repository"
)

type Deps struct {
	Registrations RegistrationRepository
	Companies     SlugChecker
	Users         UserReader
	Provisioner   CompanyProvisioner
	Tx            Transactor
	Logger        zerolog.Logger
}

type Service struct {
	registrations RegistrationRepository
	companies     SlugChecker
	users         UserReader
	provisioner   CompanyProvisioner
	tx            Transactor
	log           zerolog.Logger
	now           func() time.Time
}

func NewService(d Deps) *Service {
	return &Service{
		registrations: d.Registrations,
		companies:     d.Companies,
		users:         d.Users,
		provisioner:   d.Provisioner,
		tx:            d.Tx,
		log:           d.Logger.With().Str("module", "registration").Logger(),
		now:           time.Now,
	}
}

// Submit files a request to open a company. A user holds at most one
// pending request and the slug must be free among companies and pending
// requests.
func (s *Service) Submit(ctx context.Context, userID int64, req SubmitRequest) (*domain.CompanyRegistration, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	slug := strings.ToLower(req.Slug)

	pending, err := s.registrations.HasPendingForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to submit registration")
	}
	if pending {
		return nil, ErrAlreadyPending
	}

	taken, err := s.companies.SlugExists(ctx, slug, 0)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to submit registration")
	}
	if !taken {
		taken, err = s.registrations.PendingSlugExists(ctx, slug)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to submit registration")
		}
	}
	if taken {
		return nil, company.ErrSlugTaken
	}

	reg := &domain.CompanyRegistration{
		UserID:      userID,
		CompanyName: strings.TrimSpace(req.CompanyName),
		Slug:        slug,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		Status:      domain.RegistrationPending,
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, apperr.Wrap(err, "Failed to submit registration")
	}

	metrics.IncRegistration(string(domain.RegistrationPending))
	s.log.Info().Int64("registration_id", reg.ID).Int64("user_id", userID).Str("slug", slug).Msg("registration submitted")
	return reg, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.CompanyRegistration, error) {
	rows, err := s.registrations.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list registrations")
	}
	return rows, nil
}

func (s *Service) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	switch q.Status {
	case "", domain.RegistrationPending, domain.RegistrationApproved, domain.RegistrationRejected:
	default:
		return nil, apperr.Validation("status is invalid")
	}
	page, limit, _ := repository.Page(q.Page, q.Limit)
	rows, total, err := s.registrations.List(ctx, q.Status, page, limit)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list registrations")
	}
	return &ListResult{Items: rows, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.CompanyRegistration, error) {
	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Registration", "", "Failed to get registration")
	}
	if reg.UserID != actor.UserID && !actor.IsPlatformAdmin() {
		return nil, ErrForbidden
	}
	return reg, nil
}

// Process approves or rejects a pending registration. Input is checked
// before anything is read; the admin check reads the stored platform role,
// not the session. The status change and, on approval, the new company are
// written in one transaction.
func (s *Service) Process(ctx context.Context, actorID, id int64, req ProcessRequest) (*domain.CompanyRegistration, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.RejectionReason)
	if req.Status == domain.RegistrationRejected && reason == "" {
		return nil, ErrReasonRequired
	}

	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to process registration")
	}
	if !actor.IsPlatformAdmin() {
		return nil, ErrAdminOnly
	}

	var companyID int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		reg, err := s.registrations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if reg.Status != domain.RegistrationPending {
			return ErrAlreadyProcessed
		}

		now := s.now().UTC()
		fields := map[string]any{
			"status":       req.Status,
			"processed_by": actorID,
			"processed_at": now,
		}

		if req.Status == domain.RegistrationApproved {
			c := &domain.Company{
				Name:        reg.CompanyName,
				Slug:        reg.Slug,
				Description: reg.Description,
				Address:     reg.Address,
				Phone:       reg.Phone,
				Email:       reg.Email,
				IsActive:    true,
			}
			if err := s.provisioner.CreateWithOwner(ctx, c, reg.UserID); err != nil {
				return err
			}
			fields["company_id"] = c.ID
			companyID = c.ID
		} else {
			fields["rejection_reason"] = reason
		}

		return s.registrations.UpdateFields(ctx, reg.ID, fields)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Registration", "", "Failed to process registration")
	}

	metrics.IncRegistration(string(req.Status))
	s.log.Info().
		Int64("registration_id", id).
		Int64("admin_id", actorID).
		Str("status", string(req.Status)).
		Int64("company_id", companyID).
		Msg("registration processed")

	reg, err := s.registrations.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Registration", "", "Failed to process registration")
	}
	return reg, nil
}
