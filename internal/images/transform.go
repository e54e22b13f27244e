package images

import "fmt"

// ResizeDirective scales the image to the given dimensions.
type ResizeDirective struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// CropDirective extracts a region of the given size at the given offset.
type CropDirective struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	X      int `json:"x"`
	Y      int `json:"y"`
}

// FilterDirectives are independently-toggleable color filters.
type FilterDirectives struct {
	Grayscale bool `json:"grayscale"`
	Sepia     bool `json:"sepia"`
}

// TransformationRequest is the declarative payload of a transform call.
// Every directive is optional; directives are never persisted.
type TransformationRequest struct {
	Resize    *ResizeDirective `json:"resize,omitempty"`
	Crop      *CropDirective   `json:"crop,omitempty"`
	Rotate    *int             `json:"rotate,omitempty"`
	Flip      bool             `json:"flip,omitempty"`
	Mirror    bool             `json:"mirror,omitempty"`
	Watermark string           `json:"watermark,omitempty"`
	Filters   FilterDirectives `json:"filters,omitempty"`
	Compress  bool             `json:"compress,omitempty"`
	Format    string           `json:"format,omitempty"`
}

// OpKind tags one primitive operation variant.
type OpKind uint8

const (
	OpResize OpKind = iota + 1
	OpCrop
	OpRotate
	OpFlipVertical
	OpFlipHorizontal
	OpOverlay
	OpGrayscale
	OpSepia
	OpAutoQuality
)

// String returns the string representation of the operation kind.
func (k OpKind) String() string {
	switch k {
	case OpResize:
		return "Resize"
	case OpCrop:
		return "Crop"
	case OpRotate:
		return "Rotate"
	case OpFlipVertical:
		return "FlipVertical"
	case OpFlipHorizontal:
		return "FlipHorizontal"
	case OpOverlay:
		return "Overlay"
	case OpGrayscale:
		return "Grayscale"
	case OpSepia:
		return "Sepia"
	case OpAutoQuality:
		return "AutoQuality"
	default:
		return fmt.Sprintf("OpKind(%d)", k)
	}
}

// Operation is one primitive, ordered step of the derived rendering
// pipeline. Only the fields relevant to Kind are meaningful.
type Operation struct {
	Kind    OpKind
	Width   int
	Height  int
	X       int
	Y       int
	Angle   int
	Text    string
	Gravity string
	Opacity int
}

// Watermark overlays use a fixed styling policy; only the text varies.
const (
	OverlayFont     = "Arial"
	OverlayFontSize = 30
	OverlayGravity  = "south_east"
	OverlayOpacity  = 50
)

// BuildOperations translates a TransformationRequest into an ordered
// operation list plus the resolved output format. The emission order is a
// fixed contract, grouped by category: geometry (Resize, Crop), orientation
// (Rotate, FlipVertical, FlipHorizontal), watermark Overlay, then filters
// and compression (Grayscale, Sepia, AutoQuality). Absent directives are
// omitted; numeric values are passed through without range validation, so
// this function never fails.
func BuildOperations(req TransformationRequest, fallbackFormat string) ([]Operation, string) {
	ops := make([]Operation, 0, 9)

	if req.Resize != nil {
		ops = append(ops, Operation{
			Kind:   OpResize,
			Width:  req.Resize.Width,
			Height: req.Resize.Height,
		})
	}
	if req.Crop != nil {
		ops = append(ops, Operation{
			Kind:   OpCrop,
			Width:  req.Crop.Width,
			Height: req.Crop.Height,
			X:      req.Crop.X,
			Y:      req.Crop.Y,
		})
	}

	if req.Rotate != nil {
		ops = append(ops, Operation{Kind: OpRotate, Angle: *req.Rotate})
	}
	if req.Flip {
		ops = append(ops, Operation{Kind: OpFlipVertical})
	}
	if req.Mirror {
		ops = append(ops, Operation{Kind: OpFlipHorizontal})
	}

	if req.Watermark != "" {
		ops = append(ops, Operation{
			Kind:    OpOverlay,
			Text:    req.Watermark,
			Gravity: OverlayGravity,
			Opacity: OverlayOpacity,
		})
	}

	if req.Filters.Grayscale {
		ops = append(ops, Operation{Kind: OpGrayscale})
	}
	if req.Filters.Sepia {
		ops = append(ops, Operation{Kind: OpSepia})
	}
	if req.Compress {
		ops = append(ops, Operation{Kind: OpAutoQuality})
	}

	format := req.Format
	if format == "" {
		format = fallbackFormat
	}
	return ops, format
}
