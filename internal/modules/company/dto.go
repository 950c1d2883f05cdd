package company

import "queueless/internal/domain"

type CreateCompanyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Slug        string `json:"slug" validate:"required,min=2,max=128,slug"`
	Description string `json:"description" validate:"max=5000"`
	Address     string `json:"address" validate:"max=512"`
	Phone       string `json:"phone" validate:"max=64"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
	OwnerUserID int64  `json:"owner_user_id" validate:"required,gt=0"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
	Slug        *string `json:"slug" validate:"omitempty,min=2,max=128,slug"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Address     *string `json:"address" validate:"omitempty,max=512"`
	Phone       *string `json:"phone" validate:"omitempty,max=64"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
}

type ImageRequest struct {
	Image string `json:"image" validate:"required"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type UpdateSettingsRequest struct {
	SlotMinutes            *int  `json:"slot_minutes" validate:"omitempty,min=5,max=480"`
	TraineeExtraMinutes    *int  `json:"trainee_extra_minutes" validate:"omitempty,min=0,max=240"`
	AutoAcceptReservations *bool `json:"auto_accept_reservations"`
	MaxAdvanceDays         *int  `json:"max_advance_days" validate:"omitempty,min=1,max=365"`
}

// WorkingHoursRequest replaces one weekday. Closed clears it.
type WorkingHoursRequest struct {
	Closed    bool   `json:"closed"`
	OpenTime  string `json:"open_time" validate:"omitempty,clock"`
	CloseTime string `json:"close_time" validate:"omitempty,clock"`
}

type BreakInput struct {
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
	Label     string `json:"label" validate:"max=128"`
}

type WorkBreaksRequest struct {
	Breaks []BreakInput `json:"breaks" validate:"max=20,dive"`
}

type AddMemberRequest struct {
	Email     string            `json:"email" validate:"required,email"`
	Role      domain.MemberRole `json:"role" validate:"required,oneof=OWNER WORKER"`
	IsTrainee bool              `json:"is_trainee"`
}

type UpdateMemberRequest struct {
	Role      *domain.MemberRole `json:"role" validate:"omitempty,oneof=OWNER WORKER"`
	IsTrainee *bool              `json:"is_trainee"`
	IsActive  *bool              `json:"is_active"`
}

type ListQuery struct {
	Search string `form:"search"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type ListResult struct {
	Items []domain.Company `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
