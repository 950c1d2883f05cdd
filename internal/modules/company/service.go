package company

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/media"
	"queueless/internal/pkg/validator"
	"queueless/internal/repository"
)

type Deps struct {
	Companies CompanyRepository
	Members   MembershipRepository
	Users     UserRepository
	Tx        Transactor
	Images    ImageStore
	Cache     AvailabilityInvalidator
	Logger    zerolog.Logger
}

type Service struct {
	companies CompanyRepository
	members   MembershipRepository
	users     UserRepository
	tx        Transactor
	images    ImageStore
	cache     AvailabilityInvalidator
	log       zerolog.Logger
}

func NewService(d Deps) *Service {
	cache := d.Cache
	if cache == nil {
		cache = repository.NopAvailabilityCache{}
	}
	return &Service{
		companies: d.Companies,
		members:   d.Members,
		users:     d.Users,
		tx:        d.Tx,
		images:    d.Images,
		cache:     cache,
		log:       d.Logger.With().Str("module", "company").Logger(),
	}
}

// CreateCompany is the platform admin path. The owner must already exist.
func (s *Service) CreateCompany(ctx context.Context, req CreateCompanyRequest) (*domain.Company, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, req.OwnerUserID); err != nil {
		return nil, apperr.FromDB(err, "Owner user", "", "Failed to create company")
	}

	c := &domain.Company{
		Name:        strings.TrimSpace(req.Name),
		Slug:        strings.ToLower(req.Slug),
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
		IsActive:    true,
	}
	if err := s.CreateWithOwner(ctx, c, req.OwnerUserID); err != nil {
		return nil, err
	}
	s.log.Info().Int64("company_id", c.ID).Str("slug", c.Slug).Int64("owner_id", req.OwnerUserID).Msg("company created")
	return c, nil
}

// CreateWithOwner writes the company, its default settings and the OWNER
// membership as one unit. It joins the caller's transaction when ctx
// carries one and does not log; callers log once their transaction commits.
func (s *Service) CreateWithOwner(ctx context.Context, c *domain.Company, ownerUserID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		taken, err := s.companies.SlugExists(ctx, c.Slug, 0)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlugTaken
		}

		if err := s.companies.Create(ctx, c); err != nil {
			return err
		}
		if err := s.companies.CreateSettings(ctx, domain.DefaultCompanySettings(c.ID)); err != nil {
			return err
		}
		return s.members.Create(ctx, &domain.CompanyMembership{
			CompanyID: c.ID,
			UserID:    ownerUserID,
			Role:      domain.MemberRoleOwner,
			IsActive:  true,
		})
	})
	if err != nil {
		return apperr.FromDB(err, "Company", ErrSlugTaken.Message, "Failed to create company")
	}
	return nil
}

func (s *Service) ListCompanies(ctx context.Context, q ListQuery) (*ListResult, error) {
	page, limit, _ := repository.Page(q.Page, q.Limit)
	items, total, err := s.companies.List(ctx, repository.CompanyFilter{
		Search:     q.Search,
		ActiveOnly: true,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list companies")
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetCompany accepts a numeric id or a slug.
func (s *Service) GetCompany(ctx context.Context, idOrSlug string) (*domain.Company, error) {
	id, err := strconv.ParseInt(idOrSlug, 10, 64)
	if err != nil {
		c, err := s.companies.GetBySlug(ctx, idOrSlug)
		if err != nil {
			return nil, apperr.FromDB(err, "Company", "", "Failed to get company")
		}
		id = c.ID
	}

	c, err := s.companies.GetDetailed(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to get company")
	}
	return c, nil
}

func (s *Service) UpdateCompany(ctx context.Context, id int64, req UpdateCompanyRequest) (*domain.Company, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Slug != nil {
		slug := strings.ToLower(*req.Slug)
		taken, err := s.companies.SlugExists(ctx, slug, id)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to update company")
		}
		if taken {
			return nil, ErrSlugTaken
		}
		fields["slug"] = slug
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}

	if len(fields) > 0 {
		if err := s.companies.UpdateFields(ctx, id, fields); err != nil {
			return nil, apperr.FromDB(err, "Company", ErrSlugTaken.Message, "Failed to update company")
		}
	}
	return s.GetCompany(ctx, strconv.FormatInt(id, 10))
}

// UpdateLogo stores the new image first and removes the old file only after
// the row points at the new one.
func (s *Service) UpdateLogo(ctx context.Context, id int64, req ImageRequest) (*domain.Company, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	c, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to update logo")
	}

	url, err := s.images.SaveBase64Image(ctx, media.KindLogo, req.Image)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to save logo")
	}
	if err := s.companies.UpdateFields(ctx, id, map[string]any{"logo_url": url}); err != nil {
		_ = s.images.Delete(url)
		return nil, apperr.FromDB(err, "Company", "", "Failed to update logo")
	}
	if c.LogoURL != "" {
		if err := s.images.Delete(c.LogoURL); err != nil {
			s.log.Warn().Err(err).Str("url", c.LogoURL).Msg("old logo not removed")
		}
	}

	c.LogoURL = url
	return c, nil
}

func (s *Service) SetCompanyActive(ctx context.Context, id int64, req SetActiveRequest) (*domain.Company, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if err := s.companies.UpdateFields(ctx, id, map[string]any{"is_active": *req.IsActive}); err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to update company")
	}
	s.invalidate(ctx, id)
	s.log.Info().Int64("company_id", id).Bool("active", *req.IsActive).Msg("company activation changed")

	c, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to update company")
	}
	return c, nil
}

// MembershipRole returns the caller's active role in the company, or "".
func (s *Service) MembershipRole(ctx context.Context, companyID, userID int64) (domain.MemberRole, error) {
	m, err := s.members.Get(ctx, companyID, userID)
	if err != nil {
		return "", apperr.Wrap(err, "Failed to get membership")
	}
	if m == nil || !m.IsActive {
		return "", nil
	}
	return m.Role, nil
}

// Settings

func (s *Service) GetSettings(ctx context.Context, companyID int64) (*domain.CompanySettings, error) {
	st, err := s.companies.GetSettings(ctx, companyID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, err := s.companies.GetByID(ctx, companyID); err != nil {
			return nil, apperr.FromDB(err, "Company", "", "Failed to get settings")
		}
		return domain.DefaultCompanySettings(companyID), nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to get settings")
	}
	return st, nil
}

func (s *Service) UpdateSettings(ctx context.Context, companyID int64, req UpdateSettingsRequest) (*domain.CompanySettings, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	st, err := s.GetSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if req.SlotMinutes != nil {
		st.SlotMinutes = *req.SlotMinutes
	}
	if req.TraineeExtraMinutes != nil {
		st.TraineeExtraMinutes = *req.TraineeExtraMinutes
	}
	if req.AutoAcceptReservations != nil {
		st.AutoAcceptReservations = *req.AutoAcceptReservations
	}
	if req.MaxAdvanceDays != nil {
		st.MaxAdvanceDays = *req.MaxAdvanceDays
	}

	if err := s.companies.SaveSettings(ctx, st); err != nil {
		return nil, apperr.Wrap(err, "Failed to update settings")
	}
	s.invalidate(ctx, companyID)
	return st, nil
}

// Working hours

func (s *Service) ListWorkingHours(ctx context.Context, companyID int64) ([]domain.WorkingHours, error) {
	rows, err := s.companies.ListWorkingHours(ctx, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list working hours")
	}
	return rows, nil
}

// ReplaceWorkingHours sets or clears one weekday. Breaks left outside the
// new hours are rejected on their next replacement, not silently dropped.
func (s *Service) ReplaceWorkingHours(ctx context.Context, companyID int64, weekday int, req WorkingHoursRequest) (*domain.WorkingHours, error) {
	if !domain.ValidWeekday(weekday) {
		return nil, ErrInvalidWeekday
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var wh *domain.WorkingHours
	if !req.Closed {
		if req.OpenTime == "" || req.CloseTime == "" {
			return nil, apperr.Validation("open_time and close_time are required unless closed")
		}
		open, closing, err := parseSpan(req.OpenTime, req.CloseTime)
		if err != nil {
			return nil, err
		}
		if open >= closing {
			return nil, ErrInvalidHours
		}
		wh = &domain.WorkingHours{OpenTime: req.OpenTime, CloseTime: req.CloseTime}
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.companies.ReplaceWorkingHours(ctx, companyID, weekday, wh)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to update working hours")
	}
	s.invalidate(ctx, companyID)
	return wh, nil
}

// Work breaks

func (s *Service) ListWorkBreaks(ctx context.Context, companyID int64) ([]domain.WorkBreak, error) {
	rows, err := s.companies.ListWorkBreaks(ctx, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list work breaks")
	}
	return rows, nil
}

func (s *Service) ReplaceWorkBreaks(ctx context.Context, companyID int64, weekday int, req WorkBreaksRequest) ([]domain.WorkBreak, error) {
	if !domain.ValidWeekday(weekday) {
		return nil, ErrInvalidWeekday
	}
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	hours, err := s.companies.GetWorkingHours(ctx, companyID, weekday)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to update work breaks")
	}
	breaks, err := checkBreaks(req.Breaks, hours)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.companies.ReplaceWorkBreaks(ctx, companyID, weekday, breaks)
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Company", "", "Failed to update work breaks")
	}
	s.invalidate(ctx, companyID)
	return breaks, nil
}

func parseSpan(from, to string) (int, int, error) {
	start, err := domain.ParseClock(from)
	if err != nil {
		return 0, 0, apperr.Validation(err.Error())
	}
	end, err := domain.ParseClock(to)
	if err != nil {
		return 0, 0, apperr.Validation(err.Error())
	}
	return start, end, nil
}

// checkBreaks sorts the breaks and verifies each is a proper interval inside
// hours (when the day has hours) and that none overlap.
func checkBreaks(in []BreakInput, hours *domain.WorkingHours) ([]domain.WorkBreak, error) {
	type span struct{ start, end int }
	spans := make([]span, len(in))
	out := make([]domain.WorkBreak, len(in))
	for i, b := range in {
		start, end, err := parseSpan(b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		if start >= end {
			return nil, ErrInvalidBreak
		}
		spans[i] = span{start, end}
		out[i] = domain.WorkBreak{StartTime: b.StartTime, EndTime: b.EndTime, Label: strings.TrimSpace(b.Label)}
	}

	if hours != nil {
		open, closing, err := parseSpan(hours.OpenTime, hours.CloseTime)
		if err != nil {
			return nil, err
		}
		for _, sp := range spans {
			if sp.start < open || sp.end > closing {
				return nil, ErrBreakOutsideHours
			}
		}
	}

	idx := make([]int, len(spans))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return spans[idx[a]].start < spans[idx[b]].start })
	sorted := make([]domain.WorkBreak, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
		if i > 0 && spans[j].start < spans[idx[i-1]].end {
			return nil, ErrBreaksOverlap
		}
	}
	return sorted, nil
}

// Staff

func (s *Service) ListMembers(ctx context.Context, companyID int64) ([]domain.CompanyMembership, error) {
	rows, err := s.members.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list members")
	}
	return rows, nil
}

func (s *Service) AddMember(ctx context.Context, companyID int64, req AddMemberRequest) (*domain.CompanyMembership, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to add member")
	}

	existing, err := s.members.Get(ctx, companyID, u.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to add member")
	}
	if existing != nil {
		return nil, ErrMemberExists
	}

	m := &domain.CompanyMembership{
		CompanyID: companyID,
		UserID:    u.ID,
		Role:      req.Role,
		IsTrainee: req.IsTrainee,
		IsActive:  true,
	}
	if err := s.members.Create(ctx, m); err != nil {
		return nil, apperr.FromDB(err, "Member", ErrMemberExists.Message, "Failed to add member")
	}
	m.User = u

	s.log.Info().Int64("company_id", companyID).Int64("user_id", u.ID).Str("role", string(req.Role)).Msg("member added")
	return m, nil
}

func (s *Service) memberOf(ctx context.Context, companyID, memberID int64) (*domain.CompanyMembership, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if m.CompanyID != companyID {
		return nil, ErrMemberNotInCompany
	}
	return m, nil
}

// keepsOwner fails when m is the last active owner and the change would
// take that away.
func (s *Service) keepsOwner(ctx context.Context, m *domain.CompanyMembership) error {
	if m.Role != domain.MemberRoleOwner || !m.IsActive {
		return nil
	}
	owners, err := s.members.CountActiveOwners(ctx, m.CompanyID)
	if err != nil {
		return err
	}
	if owners <= 1 {
		return ErrLastOwner
	}
	return nil
}

func (s *Service) UpdateMember(ctx context.Context, companyID, memberID int64, req UpdateMemberRequest) (*domain.CompanyMembership, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	var out *domain.CompanyMembership
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.memberOf(ctx, companyID, memberID)
		if err != nil {
			return err
		}

		demoted := req.Role != nil && *req.Role != domain.MemberRoleOwner
		deactivated := req.IsActive != nil && !*req.IsActive
		if demoted || deactivated {
			if err := s.keepsOwner(ctx, m); err != nil {
				return err
			}
		}

		fields := map[string]any{}
		if req.Role != nil {
			fields["role"] = *req.Role
			m.Role = *req.Role
		}
		if req.IsTrainee != nil {
			fields["is_trainee"] = *req.IsTrainee
			m.IsTrainee = *req.IsTrainee
		}
		if req.IsActive != nil {
			fields["is_active"] = *req.IsActive
			m.IsActive = *req.IsActive
		}
		if len(fields) > 0 {
			if err := s.members.UpdateFields(ctx, m.ID, fields); err != nil {
				return err
			}
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, apperr.FromDB(err, "Member", "", "Failed to update member")
	}

	// trainee and active flags change slot lengths and worker pools
	s.invalidate(ctx, companyID)
	return out, nil
}

func (s *Service) RemoveMember(ctx context.Context, companyID, memberID int64) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		m, err := s.memberOf(ctx, companyID, memberID)
		if err != nil {
			return err
		}
		if err := s.keepsOwner(ctx, m); err != nil {
			return err
		}
		return s.members.Delete(ctx, m.ID)
	})
	if err != nil {
		return apperr.FromDB(err, "Member", "", "Failed to remove member")
	}

	s.invalidate(ctx, companyID)
	s.log.Info().Int64("company_id", companyID).Int64("member_id", memberID).Msg("member removed")
	return nil
}

func (s *Service) invalidate(ctx context.Context, companyID int64) {
	if err := s.cache.Invalidate(ctx, companyID); err != nil {
		s.log.Warn().Err(err).Int64("company_id", companyID).Msg("availability cache invalidation failed")
	}
}
