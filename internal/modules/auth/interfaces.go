package auth

import (
	"context"
	"time"

	"queueless/internal/domain"
	"queueless/internal/pkg/jwt"
)

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
}

type MembershipRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.CompanyMembership, error)
}

type TokenIssuer interface {
	GenerateToken(sess jwt.Session) (token string, jti string, expiresAt time.Time, err error)
}

type SessionRevoker interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
}
