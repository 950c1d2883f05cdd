package domain

import "time"

// PlatformRole is stored on the user row. Company-level roles live on CompanyMembership.
type PlatformRole string

const (
	PlatformRoleUser  PlatformRole = "USER"
	PlatformRoleAdmin PlatformRole = "PLATFORM_ADMIN"
)

// Role is the effective role carried by a session.
type Role string

const (
	RoleUser          Role = "USER"
	RoleWorker        Role = "WORKER"
	RoleOwner         Role = "OWNER"
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleWorker, RoleOwner, RolePlatformAdmin:
		return true
	}
	return false
}

// Actor is the authenticated caller as seen by services.
type Actor struct {
	UserID int64
	Email  string
	Role   Role
}

func (a Actor) IsPlatformAdmin() bool { return a.Role == RolePlatformAdmin }

type User struct {
	ID           int64        `json:"id" gorm:"primaryKey"`
	Email        string       `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"column:password_hash;not null"`
	Name         string       `json:"name" gorm:"size:255;not null"`
	Phone        string       `json:"phone,omitempty" gorm:"size:64"`
	AvatarURL    string       `json:"avatar_url,omitempty" gorm:"size:512"`
	PlatformRole PlatformRole `json:"platform_role" gorm:"size:32;not null;default:USER"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsPlatformAdmin() bool {
	return u != nil && u.PlatformRole == PlatformRoleAdmin
}

// ResolveRole picks the strongest role a user holds: platform admin, then
// owner of any company, then worker, then plain user.
func ResolveRole(u *User, memberships []CompanyMembership) Role {
	if u.IsPlatformAdmin() {
		return RolePlatformAdmin
	}
	role := RoleUser
	for _, m := range memberships {
		if !m.IsActive {
			continue
		}
		if m.Role == MemberRoleOwner {
			return RoleOwner
		}
		if m.Role == MemberRoleWorker {
			role = RoleWorker
		}
	}
	return role
}
