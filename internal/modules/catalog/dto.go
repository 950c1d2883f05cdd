package catalog

type CreateServiceRequest struct {
	Name            string  `json:"name" validate:"required,min=2,max=255"`
	Description     string  `json:"description" validate:"max=5000"`
	DurationMinutes int     `json:"duration_minutes" validate:"required,min=5,max=720"`
	Price           float64 `json:"price" validate:"min=0"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=2,max=255"`
	Description     *string  `json:"description" validate:"omitempty,max=5000"`
	DurationMinutes *int     `json:"duration_minutes" validate:"omitempty,min=5,max=720"`
	Price           *float64 `json:"price" validate:"omitempty,min=0"`
	IsActive        *bool    `json:"is_active"`
}

