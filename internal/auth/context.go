package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	businessKey contextKey = iota
	clientKey
)

func WithBusiness(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, businessKey, id)
}

func BusinessID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(businessKey).(uuid.UUID)
	return id, ok
}

func WithClient(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, clientKey, id)
}

func ClientID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(clientKey).(uuid.UUID)
	return id, ok
}
