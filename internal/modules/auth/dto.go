package auth

import (
	"time"

	"queueless/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session is returned on register and login. The token is also set as an
// HttpOnly cookie.
type Session struct {
	User      *domain.User `json:"user"`
	Role      domain.Role  `json:"role"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type Me struct {
	User        *domain.User               `json:"user"`
	Role        domain.Role                `json:"role"`
	Memberships []domain.CompanyMembership `json:"memberships"`
}
