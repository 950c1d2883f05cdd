package user

import (
	"context"

	"queueless/internal/domain"
	"queueless/internal/repository"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]any) error
	List(ctx context.Context, f repository.UserFilter) ([]domain.User, int64, error)
}

type ImageStore interface {
	SaveBase64Image(ctx context.Context, kind, payload string) (string, error)
	Delete(url string) error
}
