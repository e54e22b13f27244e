package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const createLink = `
INSERT INTO links (id, original_url, slug)
VALUES ($1, $2, $3)
RETURNING id, original_url, slug, access_count, created_at, updated_at, last_accessed_at
`

type CreateLinkParams struct {
	ID          uuid.UUID
	OriginalUrl string
	Slug        string
}

func (q *Queries) CreateLink(ctx context.Context, arg CreateLinkParams) (Link, error) {
	row := q.db.QueryRow(ctx, createLink, arg.ID, arg.OriginalUrl, arg.Slug)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.OriginalUrl,
		&i.Slug,
		&i.AccessCount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.LastAccessedAt,
	)
	return i, err
}

const getLinkBySlug = `
SELECT id, original_url, slug, access_count, created_at, updated_at, last_accessed_at
FROM links
WHERE slug = $1
`

func (q *Queries) GetLinkBySlug(ctx context.Context, slug string) (Link, error) {
	row := q.db.QueryRow(ctx, getLinkBySlug, slug)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.OriginalUrl,
		&i.Slug,
		&i.AccessCount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.LastAccessedAt,
	)
	return i, err
}

const resolveAndTrackLink = `
UPDATE links
SET access_count = access_count + 1,
    last_accessed_at = now()
WHERE slug = $1
RETURNING id, original_url, slug, access_count, created_at, updated_at, last_accessed_at
`

func (q *Queries) ResolveAndTrackLink(ctx context.Context, slug string) (Link, error) {
	row := q.db.QueryRow(ctx, resolveAndTrackLink, slug)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.OriginalUrl,
		&i.Slug,
		&i.AccessCount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.LastAccessedAt,
	)
	return i, err
}

const updateLinkURL = `
UPDATE links
SET original_url = $2,
    updated_at = now()
WHERE slug = $1
RETURNING id, original_url, slug, access_count, created_at, updated_at, last_accessed_at
`

type UpdateLinkURLParams struct {
	Slug        string
	OriginalUrl string
}

func (q *Queries) UpdateLinkURL(ctx context.Context, arg UpdateLinkURLParams) (Link, error) {
	row := q.db.QueryRow(ctx, updateLinkURL, arg.Slug, arg.OriginalUrl)
	var i Link
	err := row.Scan(
		&i.ID,
		&i.OriginalUrl,
		&i.Slug,
		&i.AccessCount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.LastAccessedAt,
	)
	return i, err
}

const deleteLink = `
DELETE FROM links
WHERE slug = $1
`

func (q *Queries) DeleteLink(ctx context.Context, slug string) error {
	tag, err := q.db.Exec(ctx, deleteLink, slug)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
