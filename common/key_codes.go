package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyW     = 87  // W key (ASCII)
	KeyA     = 65  // A key (ASCII)
	KeyS     = 83  // S key (ASCII)
	KeyD     = 68  // D key (ASCII)
	KeyQ     = 81  // Q key (ASCII)
	KeyE     = 69  // E key (ASCII)
	KeyF     = 70  // F key (ASCII), reframes the camera
	KeyP     = 80  // P key (ASCII), toggles pause
	KeyR     = 82  // R key (ASCII), resets the population
	KeySpace = 32  // Spacebar (ASCII), toggles pause
	KeyEsc   = 256 // Escape key (GLFW)
	KeyRight = 262 // Right arrow (GLFW), orbits right
	KeyLeft  = 263 // Left arrow (GLFW), orbits left
	KeyDown  = 264 // Down arrow (GLFW), orbits down
	KeyUp    = 265 // Up arrow (GLFW), orbits up
)
