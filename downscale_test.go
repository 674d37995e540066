package texload

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSurface fails at a scripted stage and records its lifecycle.
type fakeSurface struct {
	width, height int
	blitErr       error
	readbackErr   error

	blitted  *image.RGBA
	released bool
}

func (s *fakeSurface) Width() int  { return s.width }
func (s *fakeSurface) Height() int { return s.height }

func (s *fakeSurface) Blit(src *image.RGBA) error {
	if s.blitErr != nil {
		return s.blitErr
	}
	s.blitted = src
	return nil
}

func (s *fakeSurface) Readback() (*image.RGBA, error) {
	if s.readbackErr != nil {
		return nil, s.readbackErr
	}
	out := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for i := range out.Pix {
		out.Pix[i] = 0x7f
	}
	return out, nil
}

func (s *fakeSurface) ReadbackAsync(done func(*image.RGBA, error)) {
	img, err := s.Readback()
	go done(img, err)
}

func (s *fakeSurface) Release() { s.released = true }

// fakeResampleBackend hands out pre-built surfaces.
type fakeResampleBackend struct {
	surfaceErr error
	surfaces   []*fakeSurface
}

func (b *fakeResampleBackend) Name() string { return "fake" }
func (b *fakeResampleBackend) Init() error  { return nil }
func (b *fakeResampleBackend) Close()       {}

func (b *fakeResampleBackend) NewSurface(width, height int) (Surface, error) {
	if b.surfaceErr != nil {
		return nil, b.surfaceErr
	}
	s := &fakeSurface{width: width, height: height}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

// gradientPixmap builds a source with position-dependent content so
// degraded results can be compared against it.
func gradientPixmap(w, h int) *Pixmap {
	pm := NewPixmap(w, h)
	data := pm.Data()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			data[i+0] = uint8(x * 13)
			data[i+1] = uint8(y * 29)
			data[i+2] = uint8(x ^ y)
			data[i+3] = 0xff
		}
	}
	return pm
}

func TestDownscaleSuccess(t *testing.T) {
	b := &fakeResampleBackend{}
	src := gradientPixmap(16, 16)

	out, err := DownscaleOn(b, src, 4, 4)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 4, out.Width())
	assert.Equal(t, 4, out.Height())
	assert.Equal(t, FormatRGBA8, out.Format())

	// Result is handed off non-readable; the source is consumed.
	assert.False(t, out.Readable())
	assert.False(t, src.Readable())

	require.Len(t, b.surfaces, 1)
	assert.True(t, b.surfaces[0].released)
	assert.NotNil(t, b.surfaces[0].blitted)
}

func TestDownscaleDegrade(t *testing.T) {
	t.Run("surface allocation fails", func(t *testing.T) {
		b := &fakeResampleBackend{surfaceErr: errors.New("allocation failed")}
		src := gradientPixmap(8, 8)
		want := src.ToImage()

		out, err := DownscaleOn(b, src, 4, 4)
		require.NoError(t, err)
		require.NotNil(t, out)

		// Degraded result keeps the original dimensions and content and
		// stays readable.
		assert.Equal(t, 8, out.Width())
		assert.Equal(t, 8, out.Height())
		assert.True(t, out.Readable())
		assert.Equal(t, want.Pix, out.Data())

		// The source is consumed even though resampling never happened.
		assert.False(t, src.Readable())
	})

	t.Run("readback fails", func(t *testing.T) {
		b := &rigBackend{readbackErr: errors.New("device lost")}
		src := gradientPixmap(8, 8)
		want := src.ToImage()

		out, err := DownscaleOn(b, src, 4, 4)
		require.NoError(t, err)
		require.NotNil(t, out)

		assert.Equal(t, 8, out.Width())
		assert.True(t, out.Readable())
		assert.Equal(t, want.Pix, out.Data())
		assert.False(t, src.Readable())

		require.Len(t, b.surfaces, 1)
		assert.True(t, b.surfaces[0].released)
	})

	t.Run("blit fails", func(t *testing.T) {
		b := &rigBackend{blitErr: errors.New("upload failed")}
		src := gradientPixmap(8, 8)
		want := src.ToImage()

		out, err := DownscaleOn(b, src, 4, 4)
		require.NoError(t, err)
		assert.Equal(t, want.Pix, out.Data())

		require.Len(t, b.surfaces, 1)
		assert.True(t, b.surfaces[0].released)
	})
}

// rigBackend injects surface-stage failures.
type rigBackend struct {
	blitErr     error
	readbackErr error
	surfaces    []*fakeSurface
}

func (b *rigBackend) Name() string { return "rig" }
func (b *rigBackend) Init() error  { return nil }
func (b *rigBackend) Close()       {}

func (b *rigBackend) NewSurface(width, height int) (Surface, error) {
	s := &fakeSurface{width: width, height: height, blitErr: b.blitErr, readbackErr: b.readbackErr}
	b.surfaces = append(b.surfaces, s)
	return s, nil
}

func TestDownscaleSourceValidation(t *testing.T) {
	b := &fakeResampleBackend{}

	t.Run("nil source", func(t *testing.T) {
		_, err := DownscaleOn(b, nil, 4, 4)
		require.ErrorIs(t, err, ErrNonReadable)
	})

	t.Run("non-readable source", func(t *testing.T) {
		src := NewPixmap(8, 8)
		src.MarkNonReadable()
		_, err := DownscaleOn(b, src, 4, 4)
		require.ErrorIs(t, err, ErrNonReadable)
	})

	t.Run("bad target size", func(t *testing.T) {
		src := NewPixmap(8, 8)
		_, err := DownscaleOn(b, src, 0, 4)
		require.ErrorIs(t, err, ErrBadTargetSize)
		// Ownership transferred regardless of the outcome.
		assert.False(t, src.Readable())
	})
}

func TestDownscaleSyncSuccess(t *testing.T) {
	b := &fakeResampleBackend{}
	src := gradientPixmap(16, 16)

	out, err := DownscaleSyncOn(b, src, 2, 2)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 2, out.Width())
	assert.Equal(t, 2, out.Height())
	assert.False(t, out.Readable())
	assert.False(t, src.Readable())
	assert.True(t, b.surfaces[0].released)
}

func TestDownscaleSyncPropagatesFailures(t *testing.T) {
	t.Run("surface allocation", func(t *testing.T) {
		allocErr := errors.New("out of memory")
		b := &fakeResampleBackend{surfaceErr: allocErr}
		src := gradientPixmap(8, 8)

		out, err := DownscaleSyncOn(b, src, 4, 4)
		require.ErrorIs(t, err, allocErr)
		assert.Nil(t, out)
		assert.False(t, src.Readable())
	})

	t.Run("readback", func(t *testing.T) {
		b := &rigBackend{readbackErr: ErrReadbackNotSupported}
		src := gradientPixmap(8, 8)

		out, err := DownscaleSyncOn(b, src, 4, 4)
		require.ErrorIs(t, err, ErrReadbackNotSupported)
		assert.Nil(t, out)
		assert.False(t, src.Readable())
		assert.True(t, b.surfaces[0].released)
	})
}

func TestDownscaleSoftwareEndToEnd(t *testing.T) {
	// A solid-color source must downscale to the same solid color on the
	// CPU backend, whichever kernel runs.
	src := NewPixmap(32, 32)
	data := src.Data()
	for i := 0; i < len(data); i += 4 {
		data[i+0] = 200
		data[i+1] = 100
		data[i+2] = 50
		data[i+3] = 255
	}

	b, err := BackendByName(BackendSoftware)
	require.NoError(t, err)

	out, err := DownscaleSyncOn(b, src, 8, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, out.Width())
	assert.Equal(t, 8, out.Height())
	assert.False(t, out.Readable())
}

func TestSoftwareSurface(t *testing.T) {
	b := newSoftwareBackend()
	require.NoError(t, b.Init())
	defer b.Close()

	t.Run("bad size", func(t *testing.T) {
		_, err := b.NewSurface(0, 10)
		require.ErrorIs(t, err, ErrBadTargetSize)
		_, err = b.NewSurface(10, -1)
		require.ErrorIs(t, err, ErrBadTargetSize)
	})

	t.Run("blit and readback", func(t *testing.T) {
		surf, err := b.NewSurface(4, 4)
		require.NoError(t, err)
		defer surf.Release()

		assert.Equal(t, 4, surf.Width())
		assert.Equal(t, 4, surf.Height())

		src := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for i := 0; i < len(src.Pix); i += 4 {
			src.Pix[i+0] = 10
			src.Pix[i+1] = 20
			src.Pix[i+2] = 30
			src.Pix[i+3] = 255
		}
		require.NoError(t, surf.Blit(src))

		img, err := surf.Readback()
		require.NoError(t, err)
		assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, img.RGBAAt(2, 2))
	})

	t.Run("readback is a copy", func(t *testing.T) {
		surf, err := b.NewSurface(2, 2)
		require.NoError(t, err)

		img, err := surf.Readback()
		require.NoError(t, err)
		surf.Release()
		// The copy survives the release.
		assert.Len(t, img.Pix, 2*2*4)
	})

	t.Run("released surface", func(t *testing.T) {
		surf, err := b.NewSurface(2, 2)
		require.NoError(t, err)
		surf.Release()
		surf.Release() // idempotent

		require.ErrorIs(t, surf.Blit(image.NewRGBA(image.Rect(0, 0, 1, 1))), ErrSurfaceReleased)
		_, err = surf.Readback()
		require.ErrorIs(t, err, ErrSurfaceReleased)
	})

	t.Run("async readback", func(t *testing.T) {
		surf, err := b.NewSurface(3, 3)
		require.NoError(t, err)
		defer surf.Release()

		done := make(chan *image.RGBA, 1)
		surf.ReadbackAsync(func(img *image.RGBA, err error) {
			require.NoError(t, err)
			done <- img
		})
		img := <-done
		assert.Equal(t, 3, img.Rect.Dx())
	})
}

func TestScalerSelection(t *testing.T) {
	small := image.Rect(0, 0, 4, 4)
	large := image.Rect(0, 0, 16, 16)
	wide := image.Rect(0, 0, 16, 2)

	// Pure minification takes the cheap kernel; any growth takes the
	// high-quality one.
	assert.NotNil(t, scalerFor(large, small))
	assert.Equal(t, scalerFor(large, small), scalerFor(large, large))
	assert.NotEqual(t, scalerFor(large, small), scalerFor(small, large))
	assert.NotEqual(t, scalerFor(large, small), scalerFor(wide, large))
}
