package user

import "queueless/internal/domain"

type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=64"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

type AvatarRequest struct {
	Image string `json:"image" validate:"required"`
}

type SetRoleRequest struct {
	Role domain.PlatformRole `json:"role" validate:"required,oneof=USER PLATFORM_ADMIN"`
}

type ListQuery struct {
	Search string              `form:"search"`
	Role   domain.PlatformRole `form:"role"`
	Page   int                 `form:"page"`
	Limit  int                 `form:"limit"`
}

type ListResult struct {
	Items []domain.User `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
