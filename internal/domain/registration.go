package domain

import "time"

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationApproved RegistrationStatus = "APPROVED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

// CompanyRegistration is a user's request to open a company. Approval
// creates the company, its settings and the requester's OWNER membership.
type CompanyRegistration struct {
	ID              int64              `json:"id" gorm:"primaryKey"`
	UserID          int64              `json:"user_id" gorm:"not null;index"`
	CompanyName     string             `json:"company_name" gorm:"size:255;not null"`
	Slug            string             `json:"slug" gorm:"size:128;not null;index"`
	Description     string             `json:"description,omitempty" gorm:"type:text"`
	Address         string             `json:"address,omitempty" gorm:"size:512"`
	Phone           string             `json:"phone,omitempty" gorm:"size:64"`
	Email           string             `json:"email,omitempty" gorm:"size:255"`
	Status          RegistrationStatus `json:"status" gorm:"size:16;not null;default:PENDING;index"`
	RejectionReason string             `json:"rejection_reason,omitempty" gorm:"type:text"`
	ProcessedBy     *int64             `json:"processed_by,omitempty"`
	ProcessedAt     *time.Time         `json:"processed_at,omitempty"`
	CompanyID       *int64             `json:"company_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (CompanyRegistration) TableName() string { return "company_registrations" }
