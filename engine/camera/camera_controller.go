package camera

// CameraController drives the camera's eye and target. Orbit input accumulates
// as pending angular and radial motion that Update bleeds in one damping
// fraction per frame. Pan input translates eye and target together immediately.
type CameraController interface {
	// Position returns the current camera eye position in world space.
	//
	// Returns:
	//   - x, y, z: the eye position
	Position() (x, y, z float32)

	// SetPosition overrides the eye position. The next orbit change recomputes it
	// from the spherical coordinates.
	SetPosition(x, y, z float32)

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - x, y, z: the target position
	Target() (x, y, z float32)

	// SetTarget moves the orbit pivot and recomputes the eye position.
	//
	// Parameters:
	//   - x, y, z: the new target position
	SetTarget(x, y, z float32)

	// Zoom queues a radial change of delta * ZoomSpeed. Positive values move closer.
	//
	// Parameters:
	//   - delta: the scroll amount
	Zoom(delta float32)

	// OrbitLeft queues one OrbitSpeed step of negative azimuth.
	OrbitLeft()

	// OrbitRight queues one OrbitSpeed step of positive azimuth.
	OrbitRight()

	// OrbitUp queues one OrbitSpeed step of positive elevation.
	OrbitUp()

	// OrbitDown queues one OrbitSpeed step of negative elevation.
	OrbitDown()

	// OrbitBy queues a pointer drag, scaled by MouseSensitivity.
	//
	// Parameters:
	//   - dx: horizontal drag in pixels
	//   - dy: vertical drag in pixels
	OrbitBy(dx, dy float32)

	// Radius returns the current distance from target to eye.
	Radius() float32

	// SetRadius sets the radius immediately, clamped to the radius bounds.
	SetRadius(radius float32)

	// MinRadius returns the lower radius bound.
	MinRadius() float32

	// MaxRadius returns the upper radius bound.
	MaxRadius() float32

	// Azimuth returns the horizontal angle around the Y axis in radians.
	Azimuth() float32

	// SetAzimuth sets the azimuth immediately.
	SetAzimuth(azimuth float32)

	// Elevation returns the vertical angle from the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the elevation immediately, clamped to the elevation bounds.
	SetElevation(elevation float32)

	// MinElevation returns the lower elevation bound.
	MinElevation() float32

	// MaxElevation returns the upper elevation bound.
	MaxElevation() float32

	// OrbitSpeed returns the angle queued by a single keyboard orbit step.
	OrbitSpeed() float32

	// MouseSensitivity returns the radians queued per dragged pixel.
	MouseSensitivity() float32

	// ZoomSpeed returns the radius change queued per unit of scroll.
	ZoomSpeed() float32

	// DampingFactor returns the share of pending motion applied per Update.
	DampingFactor() float32

	// SetDampingFactor sets the damping factor. Values outside (0, 1] are ignored.
	SetDampingFactor(factor float32)

	// PanRight moves eye and target along the camera's right axis.
	PanRight(delta float32)

	// PanUp moves eye and target along the camera's up axis.
	PanUp(delta float32)

	// PanForward moves eye and target along the view direction.
	PanForward(delta float32)

	// PanSpeed returns the pan distance per unit of delta.
	PanSpeed() float32

	// FrameTo animates target and radius to the given values over seconds,
	// easing out. A non-positive duration snaps immediately.
	//
	// Parameters:
	//   - x, y, z: the new target
	//   - radius: the new orbit radius
	//   - seconds: animation duration
	FrameTo(x, y, z, radius, seconds float32)

	// Framing reports whether a FrameTo animation is still running.
	Framing() bool

	// Update advances the framing animation by dt seconds and applies one
	// damping fraction of pending orbit motion.
	//
	// Parameters:
	//   - dt: elapsed seconds since the previous frame
	Update(dt float32)
}
