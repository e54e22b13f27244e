package db

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Link struct {
	ID             uuid.UUID
	OriginalUrl    string
	Slug           string
	AccessCount    int64
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
	LastAccessedAt pgtype.Timestamptz
}

type Image struct {
	ID        uuid.UUID
	OwnerID   string
	PublicID  string
	Url       string
	FileName  string
	MimeType  string
	SizeBytes int64
	Format    string
	CreatedAt pgtype.Timestamptz
}
