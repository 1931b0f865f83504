package client

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=repository_mock.go -package=client
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, userID, id uuid.UUID) (*Client, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error)
	FindByEmail(ctx context.Context, userID uuid.UUID, email string) (*Client, error)
	FindAllByEmail(ctx context.Context, email string) ([]*Client, error)
	TaxIDTaken(ctx context.Context, taxID string, exclude uuid.UUID) (bool, error)
	ListClients(ctx context.Context, filter ListFilter) ([]*Client, int, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
	CountInvoices(ctx context.Context, id uuid.UUID) (int, error)
	PeerIDs(ctx context.Context, userID uuid.UUID, email string) ([]uuid.UUID, error)
	TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}
