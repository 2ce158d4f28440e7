package renderer

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeHeadless selects a backend that draws nothing. Frames are still
	// validated and recorded, which makes it the backend for tests and batch runs.
	BackendTypeHeadless
)

// String returns the configuration name of the backend type.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeHeadless:
		return "headless"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend draws validated frames. Implementations are not required to be
// safe for concurrent use; the renderer serializes every call.
type RendererBackend interface {
	// ConfigureSurface resizes the render target.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	ConfigureSurface(width, height int)

	// SetPresentMode sets the surface present mode.
	SetPresentMode(mode PresentMode)

	// Draw uploads the frame's camera and instances and presents one image.
	//
	// Parameters:
	//   - frame: the frame to draw
	//
	// Returns:
	//   - error: an error if the frame could not be drawn
	Draw(frame Frame) error

	// Release frees every resource the backend holds.
	Release()
}

type headlessRendererBackend struct {
	width       int
	height      int
	presentMode PresentMode
}

var _ RendererBackend = &headlessRendererBackend{}

func (h *headlessRendererBackend) ConfigureSurface(width, height int) {
	h.width = width
	h.height = height
}

func (h *headlessRendererBackend) SetPresentMode(mode PresentMode) {
	h.presentMode = mode
}

func (h *headlessRendererBackend) Draw(Frame) error {
	return nil
}

func (h *headlessRendererBackend) Release() {}
