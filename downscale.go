package texload

import "image"

// Downscale resamples src to (targetWidth, targetHeight) on the default
// resample backend, reading the result back asynchronously.
//
// Downscale takes ownership of src: the source buffer is released on
// every return path, success or failure, and must not be reused by the
// caller. The scratch surface is likewise released before returning.
//
// On a surface or readback failure the call degrades rather than fails:
// it returns a readable buffer holding the original source content at the
// original dimensions. On success it returns a new RGBA8 buffer of
// exactly the target dimensions, marked non-readable.
func Downscale(src *Pixmap, targetWidth, targetHeight int) (*Pixmap, error) {
	b, err := DefaultBackend()
	if err != nil {
		src.MarkNonReadable()
		return nil, err
	}
	return DownscaleOn(b, src, targetWidth, targetHeight)
}

// DownscaleOn is Downscale on an explicit backend.
func DownscaleOn(b ResampleBackend, src *Pixmap, targetWidth, targetHeight int) (*Pixmap, error) {
	srcImg, err := consumeSource(src, targetWidth, targetHeight)
	if err != nil {
		return nil, err
	}
	log := Logger()

	surf, err := b.NewSurface(targetWidth, targetHeight)
	if err != nil {
		log.Warn("downscale surface allocation failed, returning original",
			"backend", b.Name(), "err", err)
		return fromRGBA(srcImg), nil
	}
	defer surf.Release()

	if err := surf.Blit(srcImg); err != nil {
		log.Warn("downscale blit failed, returning original",
			"backend", b.Name(), "err", err)
		return fromRGBA(srcImg), nil
	}

	// Checkpoint: await the asynchronous readback.
	type readback struct {
		img *image.RGBA
		err error
	}
	ch := make(chan readback, 1)
	surf.ReadbackAsync(func(img *image.RGBA, err error) {
		ch <- readback{img: img, err: err}
	})
	r := <-ch

	if r.err != nil {
		log.Warn("downscale readback failed, returning original",
			"backend", b.Name(), "err", r.err)
		return fromRGBA(srcImg), nil
	}

	out := fromRGBA(r.img)
	out.MarkNonReadable()
	return out, nil
}

// DownscaleSync resamples src to (targetWidth, targetHeight) on the
// default resample backend with a blocking readback on the calling
// goroutine.
//
// Like Downscale it takes ownership of src and releases both the source
// and the scratch surface on every return path. Unlike Downscale it never
// falls back: surface failures are propagated unchanged. On success it
// returns a new RGBA8 buffer of the target dimensions, marked
// non-readable.
func DownscaleSync(src *Pixmap, targetWidth, targetHeight int) (*Pixmap, error) {
	b, err := DefaultBackend()
	if err != nil {
		src.MarkNonReadable()
		return nil, err
	}
	return DownscaleSyncOn(b, src, targetWidth, targetHeight)
}

// DownscaleSyncOn is DownscaleSync on an explicit backend.
func DownscaleSyncOn(b ResampleBackend, src *Pixmap, targetWidth, targetHeight int) (*Pixmap, error) {
	srcImg, err := consumeSource(src, targetWidth, targetHeight)
	if err != nil {
		return nil, err
	}

	surf, err := b.NewSurface(targetWidth, targetHeight)
	if err != nil {
		return nil, err
	}
	defer surf.Release()

	if err := surf.Blit(srcImg); err != nil {
		return nil, err
	}
	img, err := surf.Readback()
	if err != nil {
		return nil, err
	}

	out := fromRGBA(img)
	out.MarkNonReadable()
	return out, nil
}

// consumeSource transfers the payload out of src, enforcing the
// ownership contract: src is unusable after this returns, on every
// outcome.
func consumeSource(src *Pixmap, targetWidth, targetHeight int) (*image.RGBA, error) {
	if src == nil {
		return nil, ErrNonReadable
	}
	srcImg := src.take()
	if srcImg == nil {
		return nil, ErrNonReadable
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, ErrBadTargetSize
	}
	return srcImg, nil
}
