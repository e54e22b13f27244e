package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const createImage = `
INSERT INTO images (id, owner_id, public_id, url, file_name, mime_type, size_bytes, format)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, owner_id, public_id, url, file_name, mime_type, size_bytes, format, created_at
`

type CreateImageParams struct {
	ID        uuid.UUID
	OwnerID   string
	PublicID  string
	Url       string
	FileName  string
	MimeType  string
	SizeBytes int64
	Format    string
}

func (q *Queries) CreateImage(ctx context.Context, arg CreateImageParams) (Image, error) {
	row := q.db.QueryRow(ctx, createImage,
		arg.ID,
		arg.OwnerID,
		arg.PublicID,
		arg.Url,
		arg.FileName,
		arg.MimeType,
		arg.SizeBytes,
		arg.Format,
	)
	var i Image
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.PublicID,
		&i.Url,
		&i.FileName,
		&i.MimeType,
		&i.SizeBytes,
		&i.Format,
		&i.CreatedAt,
	)
	return i, err
}

const getImageByID = `
SELECT id, owner_id, public_id, url, file_name, mime_type, size_bytes, format, created_at
FROM images
WHERE id = $1
`

func (q *Queries) GetImageByID(ctx context.Context, id uuid.UUID) (Image, error) {
	row := q.db.QueryRow(ctx, getImageByID, id)
	var i Image
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.PublicID,
		&i.Url,
		&i.FileName,
		&i.MimeType,
		&i.SizeBytes,
		&i.Format,
		&i.CreatedAt,
	)
	return i, err
}

const listImagesByOwner = `
SELECT id, owner_id, public_id, url, file_name, mime_type, size_bytes, format, created_at
FROM images
WHERE owner_id = $1
ORDER BY created_at, id
LIMIT $2 OFFSET $3
`

type ListImagesByOwnerParams struct {
	OwnerID string
	Limit   int32
	Offset  int32
}

func (q *Queries) ListImagesByOwner(ctx context.Context, arg ListImagesByOwnerParams) ([]Image, error) {
	rows, err := q.db.Query(ctx, listImagesByOwner, arg.OwnerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Image{}
	for rows.Next() {
		var i Image
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.PublicID,
			&i.Url,
			&i.FileName,
			&i.MimeType,
			&i.SizeBytes,
			&i.Format,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countImagesByOwner = `
SELECT count(*) FROM images WHERE owner_id = $1
`

func (q *Queries) CountImagesByOwner(ctx context.Context, ownerID string) (int64, error) {
	row := q.db.QueryRow(ctx, countImagesByOwner, ownerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteImage = `
DELETE FROM images
WHERE id = $1
`

func (q *Queries) DeleteImage(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, deleteImage, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
