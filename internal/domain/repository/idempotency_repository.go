package repository

import (
	"context"

	"github.com/flightworks/aeroops-api/internal/domain/entity"
	"github.com/google/uuid"
)

// IdempotencyRepository defines the interface for idempotency key storage.
// Keys are scoped to the user and endpoint that first used them.
type IdempotencyRepository interface {
	Create(ctx context.Context, key *entity.IdempotencyKey) error
	GetByRequest(ctx context.Context, key string, userID uuid.UUID, endpoint string) (*entity.IdempotencyKey, error)
	DeleteExpired(ctx context.Context) error
}
