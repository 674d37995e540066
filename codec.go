package texload

import (
	"context"
	"errors"
	"sync"
)

// Codec errors.
var (
	// ErrNoCodec is returned when no registered codec recognizes a payload.
	ErrNoCodec = errors.New("texload: no codec for payload")

	// ErrCodecClosed is returned when decoding from a closed container.
	ErrCodecClosed = errors.New("texload: container is closed")
)

// DecodeParams parameterizes a container decode.
type DecodeParams struct {
	// ImageIndex selects an image inside a multi-image container.
	ImageIndex uint32

	// FaceSlice selects a cubemap face or array slice.
	FaceSlice uint32

	// MipLimit is the maximum mip level to materialize. Zero means only
	// the base level.
	MipLimit int

	// ImportMips imports mip levels stored in the container. Codecs for
	// formats without stored mips ignore this.
	ImportMips bool

	// ColorSpace tags the decoded pixel data.
	ColorSpace ColorSpace
}

// Container is an opened encoded payload. It must be closed after use;
// Close is idempotent.
type Container interface {
	// Decode produces the pixel buffer selected by params. The context
	// aborts long-running decodes cooperatively.
	Decode(ctx context.Context, params DecodeParams) (*Pixmap, error)

	// ImageCount returns the number of images in the container.
	ImageCount() int

	// Close releases decoder resources.
	Close() error
}

// Codec opens encoded bytes into a decodable container.
//
// Codecs register themselves via RegisterCodec, typically from an init
// function in their own package:
//
//	import _ "github.com/gogpu/texload/raster" // enable raster formats
type Codec interface {
	// Name returns the codec identifier (e.g., "raster", "ktx2").
	Name() string

	// Probe reports whether the payload looks like this codec's format.
	// It must be cheap: header sniffing only.
	Probe(data []byte) bool

	// Open parses the payload into a container.
	Open(data []byte) (Container, error)
}

var (
	codecMu   sync.RWMutex
	codecs    []Codec
	codecByID = make(map[string]Codec)
)

// RegisterCodec adds a codec to the global registry. Registering a name
// that already exists replaces the previous entry but keeps its probing
// position.
func RegisterCodec(c Codec) {
	codecMu.Lock()
	defer codecMu.Unlock()
	if _, ok := codecByID[c.Name()]; ok {
		for i, old := range codecs {
			if old.Name() == c.Name() {
				codecs[i] = c
				break
			}
		}
	} else {
		codecs = append(codecs, c)
	}
	codecByID[c.Name()] = c
}

// CodecByName returns a registered codec by name.
func CodecByName(name string) (Codec, bool) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	c, ok := codecByID[name]
	return c, ok
}

// Codecs returns the names of all registered codecs in probing order.
func Codecs() []string {
	codecMu.RLock()
	defer codecMu.RUnlock()
	names := make([]string, len(codecs))
	for i, c := range codecs {
		names[i] = c.Name()
	}
	return names
}

// DetectCodec probes registered codecs in registration order and returns
// the first that recognizes the payload.
func DetectCodec(data []byte) (Codec, error) {
	codecMu.RLock()
	defer codecMu.RUnlock()
	for _, c := range codecs {
		if c.Probe(data) {
			return c, nil
		}
	}
	return nil, ErrNoCodec
}
