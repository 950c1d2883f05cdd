package registration

import "queueless/internal/domain"

type SubmitRequest struct {
	CompanyName string `json:"company_name" validate:"required,min=2,max=255"`
	Slug        string `json:"slug" validate:"required,min=2,max=128,slug"`
	Description string `json:"description" validate:"max=5000"`
	Address     string `json:"address" validate:"max=512"`
	Phone       string `json:"phone" validate:"max=64"`
	Email       string `json:"email" validate:"omitempty,email,max=255"`
}

type ProcessRequest struct {
	Status          domain.RegistrationStatus `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	RejectionReason string                    `json:"rejection_reason" validate:"max=2000"`
}

type ListQuery struct {
	Status domain.RegistrationStatus `form:"status"`
	Page   int                       `form:"page"`
	Limit  int                       `form:"limit"`
}

type ListResult struct {
	Items []domain.CompanyRegistration `json:"items"`
	Total int64                        `json:"total"`
	Page  int                          `json:"page"`
	Limit int                          `json:"limit"`
}
