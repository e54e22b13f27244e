package images

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sundayezeilo/imagevault/internal/errx"
)

const (
	DefaultPage         = 1
	DefaultPageLimit    = 10
	DefaultUploadFolder = "roadmap_images"

	// MaxPageLimit caps the page size; MaxPage keeps the computed offset
	// within the store's int32 range.
	MaxPageLimit = 100
	MaxPage      = math.MaxInt32 / MaxPageLimit
)

// FileUpload carries the raw bytes and client-reported metadata of a direct
// upload.
type FileUpload struct {
	FileName string
	MimeType string
	Data     []byte
}

// SaveMetadataRequest carries client-reported metadata after a presigned
// upload went straight to the provider.
type SaveMetadataRequest struct {
	PublicID  string
	URL       string
	FileName  string
	MimeType  string
	SizeBytes int64
	Format    string
}

// Service defines the business logic operations of the image pipeline.
type Service interface {
	Upload(ctx context.Context, ownerID string, file FileUpload) (Image, error)
	SaveMetadata(ctx context.Context, ownerID string, req SaveMetadataRequest) (Image, error)
	UploadSignature() (UploadSignature, error)
	Transform(ctx context.Context, id string, req TransformationRequest) (DerivedAsset, error)
	GetByID(ctx context.Context, id string, format string) (ImageView, error)
	List(ctx context.Context, ownerID string, page, limit int) (ImagePage, error)
	Delete(ctx context.Context, id string, ownerID string) error
}

// service implements the Service interface.
type service struct {
	repo         Repository
	provider     RenderProvider
	uploadFolder string
	now          func() time.Time
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	UploadFolder string           // folder used for provider uploads (default: roadmap_images)
	Now          func() time.Time // clock override for tests
}

// NewService creates a new service instance.
func NewService(repo Repository, provider RenderProvider, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	folder := config.UploadFolder
	if folder == "" {
		folder = DefaultUploadFolder
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		repo:         repo,
		provider:     provider,
		uploadFolder: folder,
		now:          now,
	}
}

// parseID resolves an opaque identifier into a store id. Malformed ids are
// indistinguishable from missing records: both come back as NotFound.
func parseID(op, id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, errx.E(op, errx.NotFound, errors.New("image not found"))
	}
	return parsed, nil
}

// Upload sends the bytes to the provider, then records the metadata. The
// insert is never attempted when the provider call fails.
func (s *service) Upload(ctx context.Context, ownerID string, file FileUpload) (Image, error) {
	const op = "images.service.Upload"

	if ownerID == "" {
		return Image{}, errx.E(op, errx.Unauthorized, errors.New("owner is required"))
	}
	if len(file.Data) == 0 {
		return Image{}, errx.E(op, errx.Invalid, errors.New("image file is required"))
	}

	uploaded, err := s.provider.Upload(ctx, file.Data, s.uploadFolder)
	if err != nil {
		return Image{}, errx.E(op, errx.Upstream, err)
	}

	created, err := s.repo.Create(ctx, Image{
		OwnerID:   ownerID,
		PublicID:  uploaded.PublicID,
		URL:       uploaded.URL,
		FileName:  file.FileName,
		MimeType:  file.MimeType,
		SizeBytes: int64(len(file.Data)),
		Format:    uploaded.Format,
	})
	if err != nil {
		return Image{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

// SaveMetadata records client-reported metadata for an asset that was
// uploaded directly to the provider via a presigned request.
func (s *service) SaveMetadata(ctx context.Context, ownerID string, req SaveMetadataRequest) (Image, error) {
	const op = "images.service.SaveMetadata"

	if ownerID == "" {
		return Image{}, errx.E(op, errx.Unauthorized, errors.New("owner is required"))
	}
	if req.PublicID == "" {
		return Image{}, errx.E(op, errx.Invalid, errors.New("public id is required"))
	}
	if req.URL == "" {
		return Image{}, errx.E(op, errx.Invalid, errors.New("url is required"))
	}

	created, err := s.repo.Create(ctx, Image{
		OwnerID:   ownerID,
		PublicID:  req.PublicID,
		URL:       req.URL,
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
		Format:    req.Format,
	})
	if err != nil {
		return Image{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

// UploadSignature returns the parameters a client needs to upload straight
// to the provider.
func (s *service) UploadSignature() (UploadSignature, error) {
	const op = "images.service.UploadSignature"

	sig, err := s.provider.SignUpload(s.uploadFolder, s.now().Unix())
	if err != nil {
		return UploadSignature{}, errx.E(op, errx.Internal, err)
	}
	return sig, nil
}

// Transform resolves the record and maps the request into a derived asset
// reference. The stored record is never mutated and the result is never
// persisted; transformed URLs are always composed over an encrypted channel.
func (s *service) Transform(ctx context.Context, id string, req TransformationRequest) (DerivedAsset, error) {
	const op = "images.service.Transform"

	parsed, err := parseID(op, id)
	if err != nil {
		return DerivedAsset{}, err
	}

	record, err := s.repo.GetByID(ctx, parsed)
	if err != nil {
		return DerivedAsset{}, errx.E(op, errx.KindOf(err), err)
	}

	ops, format := BuildOperations(req, record.Format)

	return DerivedAsset{
		OriginalURL:    record.URL,
		TransformedURL: s.provider.URL(record.PublicID, ops, format, true),
	}, nil
}

// GetByID returns the stored record verbatim, or, when a format is
// requested, the same fields with a recomputed URL for that format only.
func (s *service) GetByID(ctx context.Context, id string, format string) (ImageView, error) {
	const op = "images.service.GetByID"

	parsed, err := parseID(op, id)
	if err != nil {
		return ImageView{}, err
	}

	record, err := s.repo.GetByID(ctx, parsed)
	if err != nil {
		return ImageView{}, errx.E(op, errx.KindOf(err), err)
	}

	view := ImageView{Image: record}
	if format != "" {
		view.RequestedFormat = format
		view.Image.URL = s.provider.URL(record.PublicID, nil, format, true)
	}
	return view, nil
}

// List returns one owner-scoped page. The count and the page fetch are
// issued concurrently; the pagination metadata may be stale by the time the
// response is read, which is accepted.
func (s *service) List(ctx context.Context, ownerID string, page, limit int) (ImagePage, error) {
	const op = "images.service.List"

	if ownerID == "" {
		return ImagePage{}, errx.E(op, errx.Unauthorized, errors.New("owner is required"))
	}
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	offset := (page - 1) * limit

	var (
		records []Image
		total   int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.repo.ListByOwner(gctx, ownerID, int32(limit), int32(offset))
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.CountByOwner(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ImagePage{}, errx.E(op, errx.KindOf(err), err)
	}

	pages := int((total + int64(limit) - 1) / int64(limit))

	return ImagePage{
		Images: records,
		Total:  total,
		Page:   page,
		Limit:  limit,
		Pages:  pages,
	}, nil
}

// Delete removes the external asset first, then the metadata record. There
// is no compensating rollback: a metadata-delete failure after a successful
// destroy leaves an orphaned record, which is accepted.
func (s *service) Delete(ctx context.Context, id string, ownerID string) error {
	const op = "images.service.Delete"

	parsed, err := parseID(op, id)
	if err != nil {
		return err
	}

	record, err := s.repo.GetByID(ctx, parsed)
	if err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}

	if record.OwnerID != ownerID {
		return errx.E(op, errx.Unauthorized, errors.New("image belongs to another user"))
	}

	if err := s.provider.Destroy(ctx, record.PublicID); err != nil {
		return errx.E(op, errx.Upstream, err)
	}

	if err := s.repo.Delete(ctx, parsed); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}
