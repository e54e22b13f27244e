package images

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence operations for Image metadata records.
// It abstracts the underlying data store; identifiers are store-native
// UUIDs internally and opaque strings at the HTTP boundary.
type Repository interface {
	Create(ctx context.Context, img Image) (Image, error)
	GetByID(ctx context.Context, id uuid.UUID) (Image, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int32) ([]Image, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
