// Package raster provides a texload codec for common raster image
// formats: PNG, JPEG, and GIF, plus WebP, BMP, and TIFF via
// golang.org/x/image.
//
// Importing the package registers the codec:
//
//	import _ "github.com/gogpu/texload/raster"
//
// Raster payloads hold a single base image, so containers opened by this
// codec report an image count of one and reject nonzero image or face
// indices. Mip parameters are ignored: raster formats store no mip chain,
// and asking to import one is not an error. The color-space parameter is
// a tag only; pixel values are passed through unconverted.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"sync/atomic"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/texload"
)

// CodecName identifies this codec in the texload registry.
const CodecName = "raster"

func init() {
	texload.RegisterCodec(Codec{})
}

// magic headers for the supported formats. WebP is RIFF....WEBP, checked
// separately because of the size hole at bytes 4-7.
var magics = [][]byte{
	{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'},
	{0xff, 0xd8, 0xff},     // JPEG
	[]byte("GIF8"),         // GIF87a / GIF89a
	[]byte("BM"),           // BMP
	{'I', 'I', 0x2a, 0x00}, // TIFF little-endian
	{'M', 'M', 0x00, 0x2a}, // TIFF big-endian
}

// Codec implements texload.Codec for raster formats.
type Codec struct{}

// Name implements the texload.Codec interface.
func (Codec) Name() string { return CodecName }

// Probe implements the texload.Codec interface by header sniffing.
func (Codec) Probe(data []byte) bool {
	for _, m := range magics {
		if bytes.HasPrefix(data, m) {
			return true
		}
	}
	if len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")) {
		return true
	}
	return false
}

// Open implements the texload.Codec interface. It validates the header
// eagerly so that an undecodable payload fails at open time, but defers
// the full pixel decode to Container.Decode.
func (Codec) Open(data []byte) (texload.Container, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: open: %w", err)
	}
	return &container{data: data, config: cfg, format: format}, nil
}

// container is a single-image raster container.
type container struct {
	data   []byte
	config image.Config
	format string
	closed atomic.Bool
}

// Decode implements the texload.Container interface.
func (c *container) Decode(ctx context.Context, params texload.DecodeParams) (*texload.Pixmap, error) {
	if c.closed.Load() {
		return nil, texload.ErrCodecClosed
	}
	if params.ImageIndex != 0 {
		return nil, fmt.Errorf("raster: image index %d out of range (container holds 1 image)", params.ImageIndex)
	}
	if params.FaceSlice != 0 {
		return nil, fmt.Errorf("raster: face slice %d out of range (not a cubemap)", params.FaceSlice)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(c.data))
	if err != nil {
		return nil, fmt.Errorf("raster: decode %s: %w", c.format, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return texload.FromImage(img), nil
}

// ImageCount implements the texload.Container interface.
func (c *container) ImageCount() int { return 1 }

// Close implements the texload.Container interface.
func (c *container) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.data = nil
	return nil
}

// Format returns the sniffed format name ("png", "jpeg", ...).
func (c *container) Format() string { return c.format }

// Config returns the image dimensions without decoding pixels.
func (c *container) Config() image.Config { return c.config }
