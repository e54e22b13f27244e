package images

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Image is the stored metadata record for one uploaded image. PublicID and
// URL are immutable once set; OwnerID never changes.
type Image struct {
	ID        uuid.UUID
	OwnerID   string
	PublicID  string
	URL       string
	FileName  string
	MimeType  string
	SizeBytes int64
	Format    string
	CreatedAt time.Time
}

// ImageView is an Image as returned by GetByID. When a specific output
// format was requested, RequestedFormat names it and URL carries a freshly
// computed delivery URL; the stored record is never mutated.
type ImageView struct {
	Image
	RequestedFormat string
}

// DerivedAsset pairs the stored original URL with a transformed URL computed
// on demand. Neither side is persisted by a transform call.
type DerivedAsset struct {
	OriginalURL    string
	TransformedURL string
}

// ImagePage is one page of an owner's images plus pagination metadata.
type ImagePage struct {
	Images []Image
	Total  int64
	Page   int
	Limit  int
	Pages  int
}

// RenderUpload is the provider's answer to a successful byte upload.
type RenderUpload struct {
	PublicID string
	URL      string
	Format   string
}

// UploadSignature holds the parameters a client needs to perform a presigned
// direct upload against the rendering provider.
type UploadSignature struct {
	Timestamp int64
	Signature string
	APIKey    string
	CloudName string
	Folder    string
}

// RenderProvider is the external rendering/storage collaborator. The image
// core never touches raw pixel data; it only hands bytes over and composes
// delivery URLs from operation lists.
type RenderProvider interface {
	Upload(ctx context.Context, data []byte, folder string) (RenderUpload, error)
	URL(publicID string, ops []Operation, format string, secure bool) string
	Destroy(ctx context.Context, publicID string) error
	SignUpload(folder string, timestamp int64) (UploadSignature, error)
}
