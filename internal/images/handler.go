package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sundayezeilo/imagevault/internal/errx"
	"github.com/sundayezeilo/imagevault/internal/httpx"
)

const (
	// OwnerIDHeader carries the caller identity. Authentication proper is
	// out of scope; the header value is trusted as-is.
	OwnerIDHeader = "X-User-ID"

	// maxUploadBytes caps the multipart upload body (10MB).
	maxUploadBytes = 10 << 20
)

// HTTPSaveImageRequest is the JSON body for recording metadata after a
// presigned direct upload.
type HTTPSaveImageRequest struct {
	PublicID  string `json:"public_id" validate:"required"`
	URL       string `json:"url" validate:"required,url"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes" validate:"gte=0"`
	Format    string `json:"format"`
}

// HTTPTransformRequest wraps the declarative transformation payload.
type HTTPTransformRequest struct {
	Transformations TransformationRequest `json:"transformations"`
}

// ImageResponse is the JSON shape of one image record.
type ImageResponse struct {
	ID              string `json:"id"`
	OwnerID         string `json:"owner_id"`
	PublicID        string `json:"public_id"`
	URL             string `json:"url"`
	FileName        string `json:"file_name,omitempty"`
	MimeType        string `json:"mime_type,omitempty"`
	SizeBytes       int64  `json:"size_bytes"`
	Format          string `json:"format"`
	CreatedAt       string `json:"created_at"`
	RequestedFormat string `json:"requested_format,omitempty"`
}

// TransformResponse pairs the original URL with the derived one.
type TransformResponse struct {
	OriginalURL    string `json:"original_url"`
	TransformedURL string `json:"transformed_url"`
}

// PaginationResponse is the metadata block of a list response.
type PaginationResponse struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

// ListImagesResponse is the JSON shape of one owner-scoped page.
type ListImagesResponse struct {
	Images     []ImageResponse    `json:"images"`
	Pagination PaginationResponse `json:"pagination"`
}

// UploadSignatureResponse carries presigned-upload parameters for the client.
type UploadSignatureResponse struct {
	Timestamp int64  `json:"timestamp"`
	Signature string `json:"signature"`
	APIKey    string `json:"api_key"`
	CloudName string `json:"cloud_name"`
	Folder    string `json:"folder"`
}

// Handler provides HTTP handlers for the image service.
type Handler struct {
	service  Service
	logger   *slog.Logger
	validate *validator.Validate
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service:  cfg.Service,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func toImageResponse(img Image, requestedFormat string) ImageResponse {
	return ImageResponse{
		ID:              img.ID.String(),
		OwnerID:         img.OwnerID,
		PublicID:        img.PublicID,
		URL:             img.URL,
		FileName:        img.FileName,
		MimeType:        img.MimeType,
		SizeBytes:       img.SizeBytes,
		Format:          img.Format,
		CreatedAt:       img.CreatedAt.Format(time.RFC3339),
		RequestedFormat: requestedFormat,
	}
}

// ownerID extracts the caller identity header; empty means unauthenticated.
func ownerID(r *http.Request) string {
	return r.Header.Get(OwnerIDHeader)
}

// parsePageParam parses a positive integer query parameter, falling back to
// the default for absent or unparseable values.
func parsePageParam(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// UploadImage handles POST requests with a multipart image upload. The
// provider upload must succeed before any metadata is recorded.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	owner := ownerID(r)
	if owner == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "caller identity required", nil)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		logger.WarnContext(ctx, "malformed multipart body", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed multipart body", nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		logger.WarnContext(ctx, "missing image file", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "image file is required", nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		logger.ErrorContext(ctx, "failed to read upload", "error", err.Error())
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}
	if len(data) > maxUploadBytes {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "image file too large", nil)
		return
	}

	img, err := h.service.Upload(ctx, owner, FileUpload{
		FileName: header.Filename,
		MimeType: header.Header.Get("Content-Type"),
		Data:     data,
	})
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "image uploaded",
		"image_id", img.ID.String(),
		"owner_id", owner,
		"size_bytes", img.SizeBytes,
	)

	httpx.WriteJSON(w, http.StatusCreated, toImageResponse(img, ""))
}

// UploadSignature handles GET requests for presigned-upload parameters.
func (h *Handler) UploadSignature(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	if ownerID(r) == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "caller identity required", nil)
		return
	}

	sig, err := h.service.UploadSignature()
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, UploadSignatureResponse{
		Timestamp: sig.Timestamp,
		Signature: sig.Signature,
		APIKey:    sig.APIKey,
		CloudName: sig.CloudName,
		Folder:    sig.Folder,
	})
}

// SaveImage handles POST requests recording metadata for an asset uploaded
// directly to the provider.
func (h *Handler) SaveImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	owner := ownerID(r)
	if owner == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "caller identity required", nil)
		return
	}

	req, err := httpx.DecodeJSON[HTTPSaveImageRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "request validation failed", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
		return
	}

	img, err := h.service.SaveMetadata(ctx, owner, SaveMetadataRequest{
		PublicID:  req.PublicID,
		URL:       req.URL,
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
		Format:    req.Format,
	})
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "image metadata saved",
		"image_id", img.ID.String(),
		"public_id", img.PublicID,
	)

	httpx.WriteJSON(w, http.StatusCreated, toImageResponse(img, ""))
}

// TransformImage handles POST requests mapping a declarative transformation
// payload into a derived asset reference.
func (h *Handler) TransformImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	req, err := httpx.DecodeJSON[HTTPTransformRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request", "error", err.Error())
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	asset, err := h.service.Transform(ctx, r.PathValue("id"), req.Transformations)
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, TransformResponse{
		OriginalURL:    asset.OriginalURL,
		TransformedURL: asset.TransformedURL,
	})
}

// GetImage handles GET requests for one record, optionally recomputing the
// URL for a requested output format.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	view, err := h.service.GetByID(ctx, r.PathValue("id"), r.URL.Query().Get("format"))
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toImageResponse(view.Image, view.RequestedFormat))
}

// ListImages handles GET requests for one owner-scoped page.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	owner := ownerID(r)
	if owner == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "caller identity required", nil)
		return
	}

	page := parsePageParam(r.URL.Query().Get("page"), DefaultPage)
	limit := parsePageParam(r.URL.Query().Get("limit"), DefaultPageLimit)

	result, err := h.service.List(ctx, owner, page, limit)
	if err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	items := make([]ImageResponse, 0, len(result.Images))
	for _, img := range result.Images {
		items = append(items, toImageResponse(img, ""))
	}

	httpx.WriteJSON(w, http.StatusOK, ListImagesResponse{
		Images: items,
		Pagination: PaginationResponse{
			Total: result.Total,
			Page:  result.Page,
			Limit: result.Limit,
			Pages: result.Pages,
		},
	})
}

// DeleteImage handles DELETE requests. The external asset is destroyed
// before the metadata record is removed.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.requestLogger(r)

	owner := ownerID(r)
	if owner == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "caller identity required", nil)
		return
	}

	id := r.PathValue("id")
	if err := h.service.Delete(ctx, id, owner); err != nil {
		h.writeServiceError(ctx, logger, w, err)
		return
	}

	logger.InfoContext(ctx, "image deleted", "image_id", id, "owner_id", owner)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return h.logger.With(
		"request_id", httpx.GetRequestID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}

// writeServiceError maps a service error onto a transport response, logging
// through the request-scoped logger.
func (h *Handler) writeServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind.String(),
		"operation", errx.OpOf(err),
	}

	var message string
	switch kind {
	case errx.NotFound:
		logger.WarnContext(ctx, "image not found", logAttrs...)
		message = "image not found"
	case errx.Unauthorized:
		logger.WarnContext(ctx, "ownership check failed", logAttrs...)
		message = "you do not have access to this image"
	case errx.Invalid:
		logger.WarnContext(ctx, "invalid image request", logAttrs...)
		message = err.Error()
	case errx.Upstream:
		logger.ErrorContext(ctx, "render provider call failed", logAttrs...)
		message = "image provider request failed"
	default:
		logger.ErrorContext(ctx, "unexpected image service error", logAttrs...)
		message = "unable to process the request at this time"
	}

	httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindToCode(kind), message, nil)
}
