package ledger

import (
	"context"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=ledger
type Repository interface {
	Report(ctx context.Context, userID, clientID uuid.UUID) (*Report, error)
	Reports(ctx context.Context, userID uuid.UUID) ([]*Report, error)
}
