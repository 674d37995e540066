package texload

import (
	"errors"
	"time"
)

// ColorSpace selects the transfer function a decoded texture is tagged with.
type ColorSpace uint8

const (
	// ColorSpaceLinear marks the pixel data as linear.
	ColorSpaceLinear ColorSpace = iota

	// ColorSpaceSRGB marks the pixel data as gamma-encoded (sRGB).
	ColorSpaceSRGB
)

// String returns a human-readable name for the color space.
func (c ColorSpace) String() string {
	switch c {
	case ColorSpaceLinear:
		return "linear"
	case ColorSpaceSRGB:
		return "srgb"
	default:
		return "unknown"
	}
}

// Request validation errors.
var (
	ErrEmptyURL         = errors.New("texload: request URL is empty")
	ErrBadAttemptBudget = errors.New("texload: MaxAttempts must be >= 1")
	ErrNegativeDelay    = errors.New("texload: RetryDelay must not be negative")
	ErrPipelineRequired = errors.New("texload: loader requires a pipeline")
)

// LoadRequest describes one load: where to fetch from, the retry policy,
// and decode parameters for container formats.
type LoadRequest struct {
	// URL is the remote location of the encoded image.
	URL string

	// Headers are extra headers added to the fetch request. Optional.
	Headers map[string]string

	// MaxAttempts is the retry budget. Zero means 1.
	MaxAttempts int

	// RetryDelay is the timed wait between failed attempts.
	RetryDelay time.Duration

	// NonReadableResult discards the CPU-side copy of the decoded result
	// for memory savings. The returned pixmap cannot be read back.
	NonReadableResult bool

	// ImageIndex selects an image inside a multi-image container.
	// Used by the two-phase pipeline only.
	ImageIndex uint32

	// FaceSlice selects a cubemap face or array slice.
	// Used by the two-phase pipeline only.
	FaceSlice uint32

	// MipLimit is the maximum mip level to materialize. Zero means only
	// the base level. Used by the two-phase pipeline only.
	MipLimit int

	// ImportMips imports mip levels stored in the container instead of
	// discarding them. Used by the two-phase pipeline only.
	ImportMips bool

	// ColorSpace tags the decoded pixel data. Used by the two-phase
	// pipeline only.
	ColorSpace ColorSpace
}

// withDefaults returns a copy of the request with zero values replaced by
// their defaults.
func (r LoadRequest) withDefaults() LoadRequest {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 1
	}
	return r
}

// validate reports whether the request is usable.
func (r LoadRequest) validate() error {
	if r.URL == "" {
		return ErrEmptyURL
	}
	if r.MaxAttempts < 1 {
		return ErrBadAttemptBudget
	}
	if r.RetryDelay < 0 {
		return ErrNegativeDelay
	}
	return nil
}
