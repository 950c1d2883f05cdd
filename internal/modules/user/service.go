package user

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"queueless/internal/domain"
	"queueless/internal/modules/auth"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/media"
	"queueless/internal/pkg/validator"
	"queueless/internal/repository"
)

type Service struct {
	users  UserRepository
	images ImageStore
	log    zerolog.Logger
}

func NewService(users UserRepository, images ImageStore, log zerolog.Logger) *Service {
	return &Service{
		users:  users,
		images: images,
		log:    log.With().Str("module", "user").Logger(),
	}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to get profile")
	}
	return u, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		fields["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		taken, err := s.users.ExistsByEmail(ctx, *req.Email, userID)
		if err != nil {
			return nil, apperr.Wrap(err, "Failed to update profile")
		}
		if taken {
			return nil, ErrEmailTaken
		}
		fields["email"] = *req.Email
	}

	if len(fields) > 0 {
		if err := s.users.UpdateFields(ctx, userID, fields); err != nil {
			return nil, apperr.FromDB(err, "User", ErrEmailTaken.Message, "Failed to update profile")
		}
	}
	return s.GetProfile(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	if err := validator.Validate(req); err != nil {
		return err
	}
	if req.CurrentPassword == req.NewPassword {
		return ErrSamePassword
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.FromDB(err, "User", "", "Failed to change password")
	}
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return ErrWrongPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperr.Internal("Failed to change password", err)
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]any{"password_hash": hash}); err != nil {
		return apperr.FromDB(err, "User", "", "Failed to change password")
	}
	s.log.Info().Int64("user_id", userID).Msg("password changed")
	return nil
}

func (s *Service) UpdateAvatar(ctx context.Context, userID int64, req AvatarRequest) (*domain.User, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to update avatar")
	}

	url, err := s.images.SaveBase64Image(ctx, media.KindAvatar, req.Image)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to save avatar")
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]any{"avatar_url": url}); err != nil {
		_ = s.images.Delete(url)
		return nil, apperr.FromDB(err, "User", "", "Failed to update avatar")
	}
	if u.AvatarURL != "" {
		if err := s.images.Delete(u.AvatarURL); err != nil {
			s.log.Warn().Err(err).Str("url", u.AvatarURL).Msg("old avatar not removed")
		}
	}

	u.AvatarURL = url
	return u, nil
}

func (s *Service) ListUsers(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Role != "" && q.Role != domain.PlatformRoleUser && q.Role != domain.PlatformRoleAdmin {
		return nil, apperr.Validation("role is invalid")
	}
	page, limit, _ := repository.Page(q.Page, q.Limit)
	items, total, err := s.users.List(ctx, repository.UserFilter{Search: q.Search, Role: q.Role, Page: page, Limit: limit})
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to list users")
	}
	return &ListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to get user")
	}
	return u, nil
}

// SetPlatformRole grants or revokes platform admin. Admins cannot demote
// themselves so the platform always keeps at least the caller.
func (s *Service) SetPlatformRole(ctx context.Context, actor domain.Actor, id int64, req SetRoleRequest) (*domain.User, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}
	if actor.UserID == id && req.Role != domain.PlatformRoleAdmin {
		return nil, ErrSelfDemotion
	}

	if err := s.users.UpdateFields(ctx, id, map[string]any{"platform_role": req.Role}); err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to update role")
	}
	s.log.Info().Int64("user_id", id).Int64("actor_id", actor.UserID).Str("role", string(req.Role)).Msg("platform role changed")
	return s.GetUser(ctx, id)
}
