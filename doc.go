// Package texload provides asynchronous texture acquisition for Go.
//
// # Overview
//
// texload fetches an encoded image from a remote location and produces a
// ready-to-use in-memory pixel buffer ([Pixmap]). A [Loader] drives a
// bounded retry loop with cooperative cancellation and multi-phase
// progress reporting; the actual fetch/decode work is delegated to a
// [Pipeline] strategy. A companion downscale engine resamples an
// already-decoded buffer through pluggable resample backends.
//
// # Quick Start
//
//	import "github.com/gogpu/texload"
//
//	loader := texload.NewLoader(texload.NewDirectPipeline(nil))
//	err := loader.Load(context.Background(), texload.LoadRequest{
//	    URL:         "https://example.com/albedo.png",
//	    MaxAttempts: 3,
//	    RetryDelay:  time.Second,
//	}, texload.Callbacks{
//	    OnComplete: func(pm *texload.Pixmap) { /* upload to GPU */ },
//	    OnFailure:  func(r texload.FailureReason, err error) { /* log */ },
//	})
//
// Load blocks until the terminal callback has been delivered; run it in a
// goroutine for fire-and-forget loading and use [Loader.Cancel] from any
// other goroutine to stop it at the next checkpoint.
//
// # Pipelines
//
// [DirectPipeline] performs a single fetch whose payload is decoded as a
// common raster format (PNG, JPEG, GIF, plus WebP/BMP/TIFF via
// golang.org/x/image). [TwoPhasePipeline] fetches raw bytes first and
// then decodes them through an explicit [Codec], parameterized for
// multi-image containers (image index, cubemap face, mip limits).
//
// # Downscaling
//
// [Downscale] and [DownscaleSync] resample a decoded buffer onto a
// scratch surface provided by a resample backend. A CPU backend is built
// in and always available; importing the wgpu subpackage registers a
// GPU-accelerated backend:
//
//	import _ "github.com/gogpu/texload/wgpu" // enable GPU resampling
//
// Both downscale paths consume the source buffer: it is released on
// every return path and must not be reused by the caller.
package texload
