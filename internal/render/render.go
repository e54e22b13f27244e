// Package render talks to the external image rendering provider through the
// provider's Go SDK: direct uploads, deletes, and presigned-upload signatures
// go through the SDK. Delivery URLs for derived assets are composed locally;
// the operation segment grammar is fixed and the secure flag is decided per
// call, neither of which the SDK's URL builder expresses (it injects version
// prefixes and analytics tokens, and takes the scheme from client-wide
// config).
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/sundayezeilo/imagevault/internal/images"
)

const defaultDeliveryHost = "res.cloudinary.com"

// Config holds the provider account credentials and endpoint overrides.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string

	// UploadPrefix overrides the provider API endpoint (tests).
	UploadPrefix string
	// DeliveryHost overrides the delivery hostname (tests).
	DeliveryHost string
}

// Client is a RenderProvider backed by the provider SDK.
type Client struct {
	cld          *cloudinary.Cloudinary
	cloudName    string
	apiKey       string
	apiSecret    string
	deliveryHost string
}

// NewClient creates a provider client from config. Zero-value endpoint
// fields fall back to production defaults.
func NewClient(cfg Config) (*Client, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("init provider sdk: %w", err)
	}
	if cfg.UploadPrefix != "" {
		cld.Config.API.UploadPrefix = cfg.UploadPrefix
	}

	host := cfg.DeliveryHost
	if host == "" {
		host = defaultDeliveryHost
	}

	return &Client{
		cld:          cld,
		cloudName:    cfg.CloudName,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
		deliveryHost: host,
	}, nil
}

// SignUpload produces the parameters a client needs to upload straight to
// the provider without routing bytes through us.
func (c *Client) SignUpload(folder string, timestamp int64) (images.UploadSignature, error) {
	params := url.Values{}
	params.Set("folder", folder)
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(params, c.apiSecret)
	if err != nil {
		return images.UploadSignature{}, fmt.Errorf("sign upload params: %w", err)
	}

	return images.UploadSignature{
		Timestamp: timestamp,
		Signature: signature,
		APIKey:    c.apiKey,
		CloudName: c.cloudName,
		Folder:    folder,
	}, nil
}

// Upload sends the raw bytes to the provider as a signed request and returns
// the provider-assigned identifiers.
func (c *Client) Upload(ctx context.Context, data []byte, folder string) (images.RenderUpload, error) {
	result, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{Folder: folder})
	if err != nil {
		return images.RenderUpload{}, fmt.Errorf("upload request: %w", err)
	}
	if result.Error.Message != "" {
		return images.RenderUpload{}, fmt.Errorf("upload rejected: %s", result.Error.Message)
	}
	if result.PublicID == "" {
		return images.RenderUpload{}, errors.New("upload response missing public_id")
	}

	return images.RenderUpload{
		PublicID: result.PublicID,
		URL:      result.SecureURL,
		Format:   result.Format,
	}, nil
}

// Destroy removes the asset from the provider. "not found" from the
// provider is treated as failure; callers decide what to do with it.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	result, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("destroy request: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("destroy failed: result %q", result.Result)
	}
	return nil
}

// URL composes a delivery URL for the asset with the given operation chain.
// Each operation becomes one path segment between "upload" and the public
// id; an empty chain yields a plain delivery URL.
func (c *Client) URL(publicID string, ops []images.Operation, format string, secure bool) string {
	scheme := "http"
	if secure {
		scheme = "https"
	}

	segments := make([]string, 0, len(ops))
	for _, op := range ops {
		if seg := operationSegment(op); seg != "" {
			segments = append(segments, seg)
		}
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(c.deliveryHost)
	b.WriteString("/")
	b.WriteString(c.cloudName)
	b.WriteString("/image/upload")
	if len(segments) > 0 {
		b.WriteString("/")
		b.WriteString(strings.Join(segments, "/"))
	}
	b.WriteString("/")
	b.WriteString(publicID)
	if format != "" {
		b.WriteString(".")
		b.WriteString(format)
	}
	return b.String()
}

func operationSegment(op images.Operation) string {
	switch op.Kind {
	case images.OpResize:
		return fmt.Sprintf("c_scale,w_%d,h_%d", op.Width, op.Height)
	case images.OpCrop:
		return fmt.Sprintf("c_crop,w_%d,h_%d,x_%d,y_%d", op.Width, op.Height, op.X, op.Y)
	case images.OpRotate:
		return fmt.Sprintf("a_%d", op.Angle)
	case images.OpFlipVertical:
		return "a_vflip"
	case images.OpFlipHorizontal:
		return "a_hflip"
	case images.OpOverlay:
		return fmt.Sprintf("l_text:%s_%d:%s,g_%s,o_%d",
			images.OverlayFont, images.OverlayFontSize, url.PathEscape(op.Text), op.Gravity, op.Opacity)
	case images.OpGrayscale:
		return "e_grayscale"
	case images.OpSepia:
		return "e_sepia"
	case images.OpAutoQuality:
		return "q_auto"
	default:
		return ""
	}
}
