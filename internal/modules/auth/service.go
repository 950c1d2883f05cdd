package auth

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"queueless/internal/domain"
	"queueless/internal/pkg/apperr"
	"queueless/internal/pkg/jwt"
	"queueless/internal/pkg/validator"
)

type Service struct {
	users    UserRepository
	members  MembershipRepository
	tokens   TokenIssuer
	sessions SessionRevoker
	log      zerolog.Logger
}

func NewService(users UserRepository, members MembershipRepository, tokens TokenIssuer, sessions SessionRevoker, log zerolog.Logger) *Service {
	return &Service{
		users:    users,
		members:  members,
		tokens:   tokens,
		sessions: sessions,
		log:      log.With().Str("module", "auth").Logger(),
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to register")
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to register", err)
	}

	u := &domain.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		PlatformRole: domain.PlatformRoleUser,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.FromDB(err, "User", ErrEmailTaken.Message, "Failed to register")
	}

	s.log.Info().Int64("user_id", u.ID).Msg("user registered")
	return s.issue(u, domain.RoleUser)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	if err := validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		CheckPassword(string(dummyHash), req.Password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to login")
	}
	if !CheckPassword(u.PasswordHash, req.Password) {
		s.log.Info().Int64("user_id", u.ID).Msg("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	memberships, err := s.members.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to login")
	}

	s.log.Info().Int64("user_id", u.ID).Msg("user logged in")
	return s.issue(u, domain.ResolveRole(u, memberships))
}

// Logout revokes the session id until the token would have expired anyway.
func (s *Service) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	if err := s.sessions.Revoke(ctx, jti, expiresAt); err != nil {
		return apperr.Internal("Failed to logout", err)
	}
	return nil
}

// Me re-reads the user; the role is recomputed so membership changes show
// up before the session token expires.
func (s *Service) Me(ctx context.Context, userID int64) (*Me, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.FromDB(err, "User", "", "Failed to load user")
	}
	memberships, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(err, "Failed to load user")
	}
	if memberships == nil {
		memberships = []domain.CompanyMembership{}
	}
	return &Me{User: u, Role: domain.ResolveRole(u, memberships), Memberships: memberships}, nil
}

func (s *Service) issue(u *domain.User, role domain.Role) (*Session, error) {
	token, _, exp, err := s.tokens.GenerateToken(jwt.Session{UserID: u.ID, Email: u.Email, Role: string(role)})
	if err != nil {
		return nil, apperr.Internal("Failed to create session", err)
	}
	return &Session{User: u, Role: role, Token: token, ExpiresAt: exp}, nil
}
