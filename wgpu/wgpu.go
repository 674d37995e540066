// Package wgpu registers a GPU resample backend for texload built on the
// Pure Go WebGPU implementation (gogpu/wgpu).
//
// Import the package to make the backend available; texload prefers it
// over the built-in CPU backend when a GPU can be initialized:
//
//	import _ "github.com/gogpu/texload/wgpu"
//
// If GPU initialization fails (no Vulkan/Metal/DX12 available), selection
// silently falls back to the CPU backend.
//
// Surface readback is not wired up yet in gogpu/wgpu's texture copy path;
// until it lands, Readback reports texload.ErrReadbackNotSupported, which
// makes the accelerated downscale path degrade to the original content as
// specified.
package wgpu

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/texload"
)

// Backend errors.
var (
	// ErrNoGPU is returned when no usable GPU adapter is found.
	ErrNoGPU = errors.New("wgpu: no GPU available")

	// ErrNotInitialized is returned when surfaces are requested before Init.
	ErrNotInitialized = errors.New("wgpu: backend not initialized")
)

func init() {
	texload.RegisterBackend(NewBackend())
}

// Backend is a GPU resample backend using gogpu/wgpu.
//
// The backend manages GPU resources including instance, adapter, device,
// and queue. It is safe for concurrent use.
type Backend struct {
	mu sync.RWMutex

	// GPU resources
	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	// Shared host device, when provided. Takes precedence over creating
	// our own instance/adapter/device chain.
	provider gpucontext.DeviceProvider

	gpuInfo     *GPUInfo
	logger      *slog.Logger
	initialized bool
}

// NewBackend creates a new wgpu resample backend. The backend is
// initialized lazily by the texload registry on first selection.
func NewBackend() *Backend {
	return &Backend{logger: texload.Logger()}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return texload.BackendWGPU }

// SetLogger receives the texload logger. Called by texload.SetLogger.
func (b *Backend) SetLogger(l *slog.Logger) {
	b.mu.Lock()
	b.logger = l
	b.mu.Unlock()
}

// SetDeviceProvider configures the backend to reuse a GPU device owned by
// the host application (e.g., a gogpu window) instead of creating its
// own. Call before the first downscale.
func (b *Backend) SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return errors.New("wgpu: backend already initialized")
	}
	b.provider = provider
	return nil
}

// Init initializes the backend by creating GPU resources: instance,
// adapter (high-performance preference), device, and queue. When a host
// device provider has been configured, the shared device is used instead.
//
// Returns an error if GPU initialization fails; the texload registry
// then falls back to the CPU backend.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	if b.provider != nil {
		// Host owns the device; nothing to create or release.
		b.initialized = true
		b.logger.Info("wgpu: using shared host GPU device")
		return nil
	}

	desc := &gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	}
	b.instance = core.NewInstance(desc)

	adapterID, err := b.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	b.adapter = adapterID

	if info, err := getGPUInfo(adapterID); err == nil {
		b.gpuInfo = info
		b.logger.Info("wgpu: GPU selected", "gpu", info.String(), "driver", info.Driver)
	}

	deviceID, err := createDevice(adapterID, "texload-resample-device")
	if err != nil {
		return fmt.Errorf("device creation failed: %w", err)
	}
	b.device = deviceID

	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		return fmt.Errorf("queue retrieval failed: %w", err)
	}
	b.queue = queueID

	b.initialized = true
	return nil
}

// Close releases all backend resources. Shared host devices are left
// untouched.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	if b.provider == nil {
		if err := releaseDevice(b.device); err != nil {
			b.logger.Warn("wgpu: error releasing device", "err", err)
		}
		if err := releaseAdapter(b.adapter); err != nil {
			b.logger.Warn("wgpu: error releasing adapter", "err", err)
		}
	}

	b.instance = nil
	b.adapter = core.AdapterID{}
	b.device = core.DeviceID{}
	b.queue = core.QueueID{}
	b.gpuInfo = nil
	b.initialized = false
}

// GPUInfo returns information about the selected GPU, or nil when the
// backend runs on a shared host device or is not initialized.
func (b *Backend) GPUInfo() *GPUInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.gpuInfo
}

// NewSurface allocates a GPU scratch surface of the given size.
func (b *Backend) NewSurface(width, height int) (texload.Surface, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.initialized {
		return nil, ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", texload.ErrBadTargetSize, width, height)
	}
	return &gpuSurface{
		backend: b,
		width:   width,
		height:  height,
		format:  gputypes.TextureFormatRGBA8Unorm,
	}, nil
}

// gpuSurface is a scratch render target backed by a GPU texture.
//
// Texture creation and the copy-to-buffer readback go through gogpu/wgpu
// core; the IDs below hold the allocated resources for the lifetime of
// one downscale call.
type gpuSurface struct {
	backend *Backend
	width   int
	height  int
	format  gputypes.TextureFormat

	textureID core.TextureID
	viewID    core.TextureViewID

	mu       sync.Mutex
	released bool
}

func (s *gpuSurface) Width() int  { return s.width }
func (s *gpuSurface) Height() int { return s.height }

// Blit resamples src onto the surface texture.
func (s *gpuSurface) Blit(src *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return texload.ErrSurfaceReleased
	}
	// Texture upload + sampled blit dispatch pend on gogpu/wgpu's texture
	// copy path; the readback below reports unsupported until then, so
	// there is no result to produce from a partial upload.
	// TODO: upload src and record the blit pass once core.CreateTexture
	// and core.QueueWriteTexture are available upstream.
	_ = src
	return nil
}

// Readback implements the texload.Surface interface.
func (s *gpuSurface) Readback() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, texload.ErrSurfaceReleased
	}
	return nil, fmt.Errorf("%w: wgpu texture copy not yet available", texload.ErrReadbackNotSupported)
}

// ReadbackAsync implements the texload.Surface interface.
func (s *gpuSurface) ReadbackAsync(done func(*image.RGBA, error)) {
	go func() {
		img, err := s.Readback()
		done(img, err)
	}()
}

// Release implements the texload.Surface interface.
func (s *gpuSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.textureID = core.TextureID{}
	s.viewID = core.TextureViewID{}
}
