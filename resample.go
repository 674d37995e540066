package texload

import (
	"errors"
	"image"
	"sync"
)

// Resample errors.
var (
	// ErrNoBackend is returned when no resample backend is available.
	ErrNoBackend = errors.New("texload: no resample backend available")

	// ErrSurfaceReleased is returned when operating on a released surface.
	ErrSurfaceReleased = errors.New("texload: surface has been released")

	// ErrReadbackNotSupported indicates the backend cannot read pixels
	// back to the CPU. The accelerated downscale path degrades to the
	// original content when it sees this.
	ErrReadbackNotSupported = errors.New("texload: readback not supported")

	// ErrBadTargetSize is returned for non-positive target dimensions.
	ErrBadTargetSize = errors.New("texload: target dimensions must be positive")
)

// Well-known resample backend names.
const (
	// BackendSoftware is the built-in CPU backend.
	BackendSoftware = "software"

	// BackendWGPU is the GPU backend registered by the wgpu subpackage.
	BackendWGPU = "wgpu"
)

// Surface is a scratch resample target with a scoped lifetime: acquired
// for one downscale call and released before it returns, regardless of
// outcome.
//
// Surface operations carry the execution-context affinity of their
// backend: a GPU surface must be driven from whatever context the host
// rendering system requires. The engine does not enforce this.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Blit resamples src onto the full surface extent.
	Blit(src *image.RGBA) error

	// Readback blocks until the surface pixels are available on the CPU.
	Readback() (*image.RGBA, error)

	// ReadbackAsync schedules a readback and invokes done exactly once
	// with the result. done may run on another goroutine.
	ReadbackAsync(done func(*image.RGBA, error))

	// Release frees the surface. Idempotent.
	Release()
}

// ResampleBackend allocates resample surfaces.
//
// Backends register themselves via RegisterBackend, typically from an
// init function in their own package. The built-in software backend is
// always registered.
type ResampleBackend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init prepares backend resources. Called once, lazily, before the
	// first surface allocation. Init failure makes the backend
	// unavailable for selection.
	Init() error

	// Close releases backend resources.
	Close()

	// NewSurface allocates a scratch surface of the given size.
	NewSurface(width, height int) (Surface, error)
}

var (
	backendMu        sync.RWMutex
	resampleBackends = make(map[string]ResampleBackend)
	backendInitErr   = make(map[string]error)

	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// RegisterBackend adds a resample backend to the registry. Registering a
// name that already exists replaces the previous entry. The current
// logger is propagated to backends that accept one.
func RegisterBackend(b ResampleBackend) {
	backendMu.Lock()
	defer backendMu.Unlock()
	resampleBackends[b.Name()] = b
	delete(backendInitErr, b.Name())
	propagateLogger(b, Logger())
}

// UnregisterBackend removes a backend from the registry. Useful in tests.
func UnregisterBackend(name string) {
	backendMu.Lock()
	defer backendMu.Unlock()
	delete(resampleBackends, name)
	delete(backendInitErr, name)
}

// Backends returns the names of all registered resample backends.
func Backends() []string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	names := make([]string, 0, len(resampleBackends))
	for name := range resampleBackends {
		names = append(names, name)
	}
	return names
}

// BackendByName returns an initialized backend by name.
func BackendByName(name string) (ResampleBackend, error) {
	backendMu.Lock()
	defer backendMu.Unlock()
	return initLocked(name)
}

// DefaultBackend returns the best available backend by priority
// (wgpu > software), initializing it on first use. Backends whose Init
// fails are skipped.
func DefaultBackend() (ResampleBackend, error) {
	backendMu.Lock()
	defer backendMu.Unlock()

	for _, name := range backendPriority {
		b, err := initLocked(name)
		if err == nil {
			return b, nil
		}
	}
	// Fallback: any registered backend that initializes.
	for name := range resampleBackends {
		b, err := initLocked(name)
		if err == nil {
			return b, nil
		}
	}
	return nil, ErrNoBackend
}

// initLocked initializes a registered backend once, caching the failure.
// backendMu must be held for writing.
func initLocked(name string) (ResampleBackend, error) {
	b, ok := resampleBackends[name]
	if !ok {
		return nil, ErrNoBackend
	}
	if err, failed := backendInitErr[name]; failed {
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	err := b.Init()
	backendInitErr[name] = err
	if err != nil {
		Logger().Warn("resample backend unavailable", "backend", name, "err", err)
		return nil, err
	}
	Logger().Info("resample backend initialized", "backend", name)
	return b, nil
}

func init() {
	RegisterBackend(newSoftwareBackend())
}
