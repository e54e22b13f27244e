package images

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	db "github.com/sundayezeilo/imagevault/internal/db/sqlc"
	"github.com/sundayezeilo/imagevault/internal/errx"
	"github.com/sundayezeilo/imagevault/internal/idgen"
)

// querier is an internal interface that abstracts *db.Queries
type querier interface {
	CreateImage(ctx context.Context, arg db.CreateImageParams) (db.Image, error)
	GetImageByID(ctx context.Context, id uuid.UUID) (db.Image, error)
	ListImagesByOwner(ctx context.Context, arg db.ListImagesByOwnerParams) ([]db.Image, error)
	CountImagesByOwner(ctx context.Context, ownerID string) (int64, error)
	DeleteImage(ctx context.Context, id uuid.UUID) error
}

type repo struct {
	q   querier
	ids idgen.Generator
}

// RepositoryConfig holds configuration for the repository
type RepositoryConfig struct {
	IDGenerator idgen.Generator
}

// NewRepository creates a new Repository implementation
func NewRepository(q querier, config *RepositoryConfig) Repository {
	if config == nil {
		config = &RepositoryConfig{}
	}

	// Default: UUID v7 (good for DB locality).
	if config.IDGenerator == nil {
		config.IDGenerator = idgen.NewV7(idgen.WithRetries(1))
	}

	return &repo{
		q:   q,
		ids: config.IDGenerator,
	}
}

func mustTime(ts pgtype.Timestamptz, field string) (time.Time, error) {
	if !ts.Valid {
		return time.Time{}, fmt.Errorf("%s unexpectedly NULL", field)
	}
	return ts.Time, nil
}

func toDomainImage(x db.Image) (Image, error) {
	createdAt, err := mustTime(x.CreatedAt, "created_at")
	if err != nil {
		return Image{}, err
	}

	return Image{
		ID:        x.ID,
		OwnerID:   x.OwnerID,
		PublicID:  x.PublicID,
		URL:       x.Url,
		FileName:  x.FileName,
		MimeType:  x.MimeType,
		SizeBytes: x.SizeBytes,
		Format:    x.Format,
		CreatedAt: createdAt,
	}, nil
}

func mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errx.E(op, errx.NotFound, err)

	default:
		return errx.E(op, errx.Unavailable, err)
	}
}

func (r *repo) Create(ctx context.Context, img Image) (Image, error) {
	const op = "images.repo.Create"

	// Generate ID if not provided
	if img.ID == uuid.Nil {
		id, err := r.ids.Generate()
		if err != nil {
			return Image{}, errx.E(op, errx.Unavailable, err)
		}
		img.ID = id
	}

	row, err := r.q.CreateImage(ctx, db.CreateImageParams{
		ID:        img.ID,
		OwnerID:   img.OwnerID,
		PublicID:  img.PublicID,
		Url:       img.URL,
		FileName:  img.FileName,
		MimeType:  img.MimeType,
		SizeBytes: img.SizeBytes,
		Format:    img.Format,
	})
	if err != nil {
		return Image{}, mapRepoError(op, err)
	}

	return toDomainImage(row)
}

func (r *repo) GetByID(ctx context.Context, id uuid.UUID) (Image, error) {
	const op = "images.repo.GetByID"

	row, err := r.q.GetImageByID(ctx, id)
	if err != nil {
		return Image{}, mapRepoError(op, err)
	}
	return toDomainImage(row)
}

func (r *repo) ListByOwner(ctx context.Context, ownerID string, limit, offset int32) ([]Image, error) {
	const op = "images.repo.ListByOwner"

	rows, err := r.q.ListImagesByOwner(ctx, db.ListImagesByOwnerParams{
		OwnerID: ownerID,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, mapRepoError(op, err)
	}

	items := make([]Image, 0, len(rows))
	for _, row := range rows {
		img, err := toDomainImage(row)
		if err != nil {
			return nil, err
		}
		items = append(items, img)
	}
	return items, nil
}

func (r *repo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	const op = "images.repo.CountByOwner"

	count, err := r.q.CountImagesByOwner(ctx, ownerID)
	if err != nil {
		return 0, mapRepoError(op, err)
	}
	return count, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "images.repo.Delete"
	if err := r.q.DeleteImage(ctx, id); err != nil {
		return mapRepoError(op, err)
	}
	return nil
}
