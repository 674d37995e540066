package texload

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
)

// softwareBackend is the built-in CPU resample backend. It is always
// available and sits at the bottom of the selection priority.
type softwareBackend struct{}

func newSoftwareBackend() *softwareBackend {
	return &softwareBackend{}
}

// Name returns the backend identifier.
func (b *softwareBackend) Name() string { return BackendSoftware }

// Init implements the ResampleBackend interface. The CPU backend has no
// resources to prepare.
func (b *softwareBackend) Init() error { return nil }

// Close implements the ResampleBackend interface.
func (b *softwareBackend) Close() {}

// NewSurface allocates a CPU scratch surface.
func (b *softwareBackend) NewSurface(width, height int) (Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadTargetSize, width, height)
	}
	return &softwareSurface{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

// softwareSurface resamples on the CPU using golang.org/x/image/draw
// kernels: the cheap bilinear approximation when purely minifying (every
// source texel still contributes), Catmull-Rom when any axis grows.
type softwareSurface struct {
	img      *image.RGBA
	released bool
}

func (s *softwareSurface) Width() int {
	return s.img.Rect.Dx()
}

func (s *softwareSurface) Height() int {
	return s.img.Rect.Dy()
}

// Blit implements the Surface interface.
func (s *softwareSurface) Blit(src *image.RGBA) error {
	if s.released {
		return ErrSurfaceReleased
	}
	scalerFor(src.Rect, s.img.Rect).Scale(s.img, s.img.Rect, src, src.Rect, xdraw.Src, nil)
	return nil
}

// Readback implements the Surface interface. The returned image is a
// copy; the surface may be released afterward without invalidating it.
func (s *softwareSurface) Readback() (*image.RGBA, error) {
	if s.released {
		return nil, ErrSurfaceReleased
	}
	out := image.NewRGBA(s.img.Rect)
	copy(out.Pix, s.img.Pix)
	return out, nil
}

// ReadbackAsync implements the Surface interface.
func (s *softwareSurface) ReadbackAsync(done func(*image.RGBA, error)) {
	// Snapshot synchronously so a Release racing the goroutine cannot
	// invalidate the read.
	img, err := s.Readback()
	go done(img, err)
}

// Release implements the Surface interface.
func (s *softwareSurface) Release() {
	s.released = true
	s.img = nil
}

// scalerFor picks the resample kernel for a source/target pair.
func scalerFor(src, dst image.Rectangle) xdraw.Scaler {
	if dst.Dx() <= src.Dx() && dst.Dy() <= src.Dy() {
		return xdraw.ApproxBiLinear
	}
	return xdraw.CatmullRom
}
