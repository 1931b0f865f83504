package business

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=business
type Repository interface {
	CreateBusiness(ctx context.Context, b *Business) error
	GetBusiness(ctx context.Context, id uuid.UUID) (*Business, error)
	FindByEmail(ctx context.Context, email string) (*Business, error)
	UpdateSettings(ctx context.Context, b *Business) error
}
