package renderer

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
)

var (
	// ErrReleased is returned by Render after Release.
	ErrReleased = errors.New("renderer released")

	// ErrInvalidFrame is returned when a frame carries non-finite geometry.
	ErrInvalidFrame = errors.New("invalid frame")
)

// Instance is one billboard. Position is the world-space center, Scale the
// half-extent of the quad and Color is linear RGBA.
type Instance struct {
	Position [3]float32
	Scale    float32
	Color    [4]float32
}

// Frame is everything needed to draw one image.
type Frame struct {
	Camera    camera.GPUCameraUniform
	Clear     [4]float32
	Instances []Instance
}

// Surface is the drawable the wgpu backend presents to.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *slog.Logger

	width  int
	height int

	frames    uint64
	lastFrame Frame
	released  bool

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// Renderer draws frames of instanced billboards through a backend.
type Renderer interface {
	// BackendType returns the backend the renderer was created with.
	BackendType() RendererBackendType

	// Resize reconfigures the backend for a new surface size. Zero sizes (a
	// minimized window) are ignored.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// Size returns the current surface size.
	Size() (width, height int)

	// SetPresentMode changes how frames are presented.
	SetPresentMode(mode PresentMode)

	// Render validates and draws a frame. The frame's instances are copied, so
	// the caller may reuse the slice after Render returns.
	//
	// Parameters:
	//   - frame: the frame to draw
	//
	// Returns:
	//   - error: ErrInvalidFrame, ErrReleased, or a backend error
	Render(frame Frame) error

	// Frames returns the number of frames rendered successfully.
	Frames() uint64

	// LastFrame returns a copy of the last frame rendered successfully.
	LastFrame() Frame

	// Release frees backend resources. Further Render calls fail.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer for the given backend type. The surface is
// required for BackendTypeWGPU and ignored for BackendTypeHeadless.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the drawable to present to
//   - options: functional options applied before the backend is created
//
// Returns:
//   - Renderer: the new renderer
//   - error: an error if the backend could not be created
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      slog.Default(),
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
	}
	for _, option := range options {
		option(r)
	}
	r.logger = r.logger.With("component", "renderer", "backend", backendType.String())

	switch backendType {
	case BackendTypeWGPU:
		if surface == nil {
			return nil, fmt.Errorf("wgpu backend requires a surface")
		}
		b, err := newWGPURendererBackend(surface.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.presentMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
		}
		r.backend = b
		r.width, r.height = surface.Width(), surface.Height()
	case BackendTypeHeadless:
		r.backend = &headlessRendererBackend{}
		r.backend.SetPresentMode(r.presentMode)
		if surface != nil {
			r.width, r.height = surface.Width(), surface.Height()
		}
	default:
		return nil, fmt.Errorf("unsupported renderer backend %d", backendType)
	}

	if r.width > 0 && r.height > 0 {
		r.backend.ConfigureSurface(r.width, r.height)
	}
	r.logger.Debug("renderer created", "width", r.width, "height", r.height)
	return r, nil
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if width <= 0 || height <= 0 || r.released {
		return
	}
	r.width, r.height = width, height
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presentMode = mode
	r.backend.SetPresentMode(mode)
	if r.width > 0 && r.height > 0 && !r.released {
		r.backend.ConfigureSurface(r.width, r.height)
	}
}

func (r *renderer) Render(frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.released {
		return ErrReleased
	}
	for i, inst := range frame.Instances {
		if !finite(inst.Position[0]) || !finite(inst.Position[1]) || !finite(inst.Position[2]) || !finite(inst.Scale) {
			return fmt.Errorf("%w: instance %d has non-finite position or scale", ErrInvalidFrame, i)
		}
	}
	if err := r.backend.Draw(frame); err != nil {
		return fmt.Errorf("failed to draw frame %d: %w", r.frames, err)
	}

	r.frames++
	r.lastFrame.Camera = frame.Camera
	r.lastFrame.Clear = frame.Clear
	r.lastFrame.Instances = append(r.lastFrame.Instances[:0], frame.Instances...)
	return nil
}

func (r *renderer) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

func (r *renderer) LastFrame() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.lastFrame
	f.Instances = append([]Instance(nil), r.lastFrame.Instances...)
	return f
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.backend.Release()
	r.logger.Debug("renderer released", "frames", r.frames)
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
