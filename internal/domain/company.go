package domain

import "time"

const (
	DefaultSlotMinutes    = 30
	DefaultMaxAdvanceDays = 60
)

type Company struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Slug        string    `json:"slug" gorm:"size:128;not null;uniqueIndex"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Address     string    `json:"address,omitempty" gorm:"size:512"`
	Phone       string    `json:"phone,omitempty" gorm:"size:64"`
	Email       string    `json:"email,omitempty" gorm:"size:255"`
	LogoURL     string    `json:"logo_url,omitempty" gorm:"size:512"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Settings     *CompanySettings `json:"settings,omitempty" gorm:"foreignKey:CompanyID"`
	WorkingHours []WorkingHours   `json:"working_hours,omitempty" gorm:"foreignKey:CompanyID"`
	WorkBreaks   []WorkBreak      `json:"work_breaks,omitempty" gorm:"foreignKey:CompanyID"`
	Services     []Service        `json:"services,omitempty" gorm:"foreignKey:CompanyID"`
}

func (Company) TableName() string { return "companies" }

type CompanySettings struct {
	CompanyID              int64     `json:"company_id" gorm:"primaryKey;autoIncrement:false"`
	SlotMinutes            int       `json:"slot_minutes" gorm:"not null;default:30"`
	TraineeExtraMinutes    int       `json:"trainee_extra_minutes" gorm:"not null;default:0"`
	AutoAcceptReservations bool      `json:"auto_accept_reservations" gorm:"not null;default:false"`
	MaxAdvanceDays         int       `json:"max_advance_days" gorm:"not null;default:60"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func (CompanySettings) TableName() string { return "company_settings" }

// DefaultCompanySettings are written together with every new company.
func DefaultCompanySettings(companyID int64) *CompanySettings {
	return &CompanySettings{
		CompanyID:      companyID,
		SlotMinutes:    DefaultSlotMinutes,
		MaxAdvanceDays: DefaultMaxAdvanceDays,
	}
}

// WorkingHours holds the open/close pair for one weekday (0 = Sunday).
type WorkingHours struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	CompanyID int64  `json:"company_id" gorm:"not null;uniqueIndex:idx_working_hours_company_day"`
	Weekday   int    `json:"weekday" gorm:"not null;uniqueIndex:idx_working_hours_company_day"`
	OpenTime  string `json:"open_time" gorm:"size:5;not null"`
	CloseTime string `json:"close_time" gorm:"size:5;not null"`
}

func (WorkingHours) TableName() string { return "working_hours" }

type WorkBreak struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	CompanyID int64  `json:"company_id" gorm:"not null;index:idx_work_breaks_company_day"`
	Weekday   int    `json:"weekday" gorm:"not null;index:idx_work_breaks_company_day"`
	StartTime string `json:"start_time" gorm:"size:5;not null"`
	EndTime   string `json:"end_time" gorm:"size:5;not null"`
	Label     string `json:"label,omitempty" gorm:"size:128"`
}

func (WorkBreak) TableName() string { return "work_breaks" }

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "OWNER"
	MemberRoleWorker MemberRole = "WORKER"
)

type CompanyMembership struct {
	ID        int64      `json:"id" gorm:"primaryKey"`
	CompanyID int64      `json:"company_id" gorm:"not null;uniqueIndex:idx_membership_company_user"`
	UserID    int64      `json:"user_id" gorm:"not null;uniqueIndex:idx_membership_company_user;index"`
	Role      MemberRole `json:"role" gorm:"size:16;not null"`
	IsTrainee bool       `json:"is_trainee" gorm:"not null;default:false"`
	IsActive  bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"created_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (CompanyMembership) TableName() string { return "company_memberships" }
