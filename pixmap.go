package texload

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Format represents the pixel format of a Pixmap.
type Format uint8

const (
	// FormatRGBA8 is the standard RGBA format with 8 bits per channel.
	FormatRGBA8 Format = iota

	// FormatBGRA8 is BGRA format, often used for surface presentation.
	FormatBGRA8

	// FormatR8 is single-channel 8-bit format, used for masks.
	FormatR8
)

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	case FormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Unknown(%d)", f)
	}
}

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8, FormatBGRA8:
		return 4
	case FormatR8:
		return 1
	default:
		return 4
	}
}

// Pixmap represents a rectangular pixel buffer ready for consumption by a
// rendering system.
//
// A pixmap may be marked non-readable to signal that the CPU-side copy has
// been discarded for memory savings. Once marked, Data and ToImage return
// nil; the latch is irreversible.
type Pixmap struct {
	width       int
	height      int
	format      Format
	data        []uint8
	nonReadable bool
}

// NewPixmap creates a new RGBA8 pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return NewPixmapWithFormat(width, height, FormatRGBA8)
}

// NewPixmapWithFormat creates a new pixmap with the given dimensions and
// pixel format.
func NewPixmapWithFormat(width, height int, format Format) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		format: format,
		data:   make([]uint8, width*height*format.BytesPerPixel()),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// Format returns the pixel format of the pixmap.
func (p *Pixmap) Format() Format {
	return p.format
}

// Empty reports whether the pixmap holds no pixels.
func (p *Pixmap) Empty() bool {
	return p == nil || p.width == 0 || p.height == 0
}

// Data returns the raw pixel data, or nil if the pixmap has been marked
// non-readable.
func (p *Pixmap) Data() []uint8 {
	if p.nonReadable {
		return nil
	}
	return p.data
}

// Readable reports whether the CPU-side pixel data is still accessible.
func (p *Pixmap) Readable() bool {
	return !p.nonReadable
}

// MarkNonReadable permanently disables CPU-side readback and releases the
// pixel payload. The width, height, and format remain queryable.
func (p *Pixmap) MarkNonReadable() {
	p.nonReadable = true
	p.data = nil
}

// take transfers the pixel payload out of the pixmap as an image.RGBA and
// marks the pixmap non-readable. It returns nil if the pixmap was already
// non-readable or is not 4-channel.
func (p *Pixmap) take() *image.RGBA {
	if p.nonReadable || p.format.BytesPerPixel() != 4 {
		p.MarkNonReadable()
		return nil
	}
	img := &image.RGBA{
		Pix:    p.data,
		Stride: p.width * 4,
		Rect:   image.Rect(0, 0, p.width, p.height),
	}
	p.MarkNonReadable()
	return img
}

// ToImage converts the pixmap to an image.RGBA copy, or nil if the pixmap
// is non-readable.
func (p *Pixmap) ToImage() *image.RGBA {
	if p.nonReadable {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	copy(img.Pix, p.data)
	return img
}

// FromImage creates an RGBA8 pixmap from an image.
func FromImage(img image.Image) *Pixmap {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pm := NewPixmap(width, height)

	if src, ok := img.(*image.RGBA); ok && src.Stride == width*4 {
		copy(pm.data, src.Pix)
		return pm
	}

	dst := &image.RGBA{Pix: pm.data, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return pm
}

// fromRGBA wraps an image.RGBA payload as a pixmap without copying.
// The image must not be used by the caller afterward.
func fromRGBA(img *image.RGBA) *Pixmap {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if img.Stride == w*4 {
		return &Pixmap{width: w, height: h, format: FormatRGBA8, data: img.Pix}
	}
	pm := NewPixmap(w, h)
	dst := &image.RGBA{Pix: pm.data, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}
	draw.Draw(dst, dst.Rect, img, img.Rect.Min, draw.Src)
	return pm
}

// SavePNG saves the pixmap to a PNG file. It fails if the pixmap has been
// marked non-readable.
func (p *Pixmap) SavePNG(path string) error {
	img := p.ToImage()
	if img == nil {
		return ErrNonReadable
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}

// At implements the image.Image interface. Non-readable pixmaps report
// transparent pixels.
func (p *Pixmap) At(x, y int) color.Color {
	if p.nonReadable || x < 0 || x >= p.width || y < 0 || y >= p.height || p.format.BytesPerPixel() != 4 {
		return color.RGBA{}
	}
	i := (y*p.width + x) * 4
	return color.RGBA{R: p.data[i+0], G: p.data[i+1], B: p.data[i+2], A: p.data[i+3]}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
