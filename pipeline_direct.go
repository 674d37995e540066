package texload

import (
	"bytes"
	"image"

	// Extended raster formats for image.Decode.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DirectPipeline is the single-phase strategy: one fetch whose payload is
// decoded as a common raster encoding (PNG, JPEG, GIF, WebP, BMP, TIFF).
//
// Progress is the fetch byte fraction over [0, 1]. Transport failures are
// transient request errors; an empty or undecodable payload is a transient
// empty-response error. All DecodeParams-style request fields are ignored:
// raster images carry a single base level.
type DirectPipeline struct {
	transport Transport
}

// NewDirectPipeline creates a direct-decode pipeline over the given
// transport. A nil transport means a default HTTPTransport.
func NewDirectPipeline(transport Transport) *DirectPipeline {
	if transport == nil {
		transport = NewHTTPTransport(HTTPTransportConfig{})
	}
	return &DirectPipeline{transport: transport}
}

// Attempt implements the Pipeline interface.
func (p *DirectPipeline) Attempt(ac AttemptContext) (*Pixmap, AttemptOutcome) {
	data, out := fetchPayload(ac, p.transport, ac.Report)
	if out.kind != attemptSuccess {
		return nil, out
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Transient(FailureEmptyResponse, err)
	}
	if img.Bounds().Empty() {
		return nil, Transient(FailureEmptyResponse, ErrEmptyResponse)
	}

	Logger().Debug("direct decode complete",
		"url", ac.Request.URL, "format", format, "bytes", len(data))
	return FromImage(img), Success()
}

// fetchPayload runs one transport fetch with cancellation bound to the
// attempt token. Shared by both pipeline variants; report receives the
// raw byte fraction and the caller applies any sub-range scaling.
func fetchPayload(ac AttemptContext, transport Transport, report func(float64)) ([]byte, AttemptOutcome) {
	if ac.Token.Canceled() {
		return nil, Canceled()
	}

	ctx, cancel := ac.Token.bind(ac.Ctx)
	defer cancel()

	data, err := transport.Fetch(ctx, ac.Request.URL, ac.Request.Headers, report)

	// Checkpoint: cancellation observed mid-fetch aborts the transport
	// and completes with an empty result, bypassing the failure channel.
	if ac.Token.Canceled() || ac.Ctx.Err() != nil {
		return nil, Canceled()
	}
	if err != nil {
		return nil, Transient(FailureRequest, err)
	}
	if len(data) == 0 {
		return nil, Transient(FailureEmptyResponse, ErrEmptyResponse)
	}
	return data, Success()
}
