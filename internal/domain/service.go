package domain

import "time"

// Service is something a company offers for booking (haircut, consultation, ...).
type Service struct {
	ID              int64     `json:"id" gorm:"primaryKey"`
	CompanyID       int64     `json:"company_id" gorm:"not null;index"`
	Name            string    `json:"name" gorm:"size:255;not null"`
	Description     string    `json:"description,omitempty" gorm:"type:text"`
	DurationMinutes int       `json:"duration_minutes" gorm:"not null"`
	Price           float64   `json:"price" gorm:"not null;default:0"`
	IsActive        bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Service) TableName() string { return "services" }
