package camera

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// settleEpsilon is the pending magnitude below which damped motion snaps to rest.
const settleEpsilon = 1e-6

type cameraControllerImpl struct {
	mu *sync.Mutex

	// position is derived from target and the spherical coordinates.
	position [3]float32
	target   [3]float32

	radius    float32
	azimuth   float32
	elevation float32

	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	damping          float32
	pendingAzimuth   float32
	pendingElevation float32
	pendingRadius    float32

	// framing holds tweens for target x, y, z and radius; nil when idle.
	framing []*gween.Tween
}

var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit camera controller.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		radius:    12.0,
		azimuth:   0.0,
		elevation: math32.Pi / 6,

		minRadius:    0.5,
		maxRadius:    1000.0,
		minElevation: -math32.Pi/2 + 0.05,
		maxElevation: math32.Pi/2 - 0.05,

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        1.0,
		panSpeed:         0.1,

		damping: 1.0,
	}

	for _, option := range options {
		option(cc)
	}

	cc.radius = clamp(cc.radius, cc.minRadius, cc.maxRadius)
	cc.elevation = clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// updatePosition recomputes the eye from target and spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := math32.Cos(cc.elevation)
	sinElev := math32.Sin(cc.elevation)
	cosAzim := math32.Cos(cc.azimuth)
	sinAzim := math32.Sin(cc.azimuth)

	cc.position[0] = cc.target[0] + cc.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.radius*sinElev
	cc.position[2] = cc.target[2] + cc.radius*cosElev*cosAzim
}

// localAxes returns right, up and forward consistent with common.LookAt and a
// world up of +Y. All axes are zero when eye and target coincide.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward [3]float32) {
	b := [3]float32{
		cc.position[0] - cc.target[0],
		cc.position[1] - cc.target[1],
		cc.position[2] - cc.target[2],
	}
	bLen := math32.Sqrt(b[0]*b[0] + b[1]*b[1] + b[2]*b[2])
	if bLen < 1e-8 {
		return
	}
	b[0], b[1], b[2] = b[0]/bLen, b[1]/bLen, b[2]/bLen

	// cross((0,1,0), b)
	rLen := math32.Sqrt(b[2]*b[2] + b[0]*b[0])
	if rLen < 1e-8 {
		return
	}
	right = [3]float32{b[2] / rLen, 0, -b[0] / rLen}
	up = [3]float32{
		b[1]*right[2] - b[2]*right[1],
		b[2]*right[0] - b[0]*right[2],
		b[0]*right[1] - b[1]*right[0],
	}
	forward = [3]float32{-b[0], -b[1], -b[2]}
	return
}

func (cc *cameraControllerImpl) translate(axis [3]float32, offset float32) {
	for i := range 3 {
		cc.target[i] += axis[i] * offset
		cc.position[i] += axis[i] * offset
	}
}

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) SetPosition(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.position = [3]float32{x, y, z}
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target[0], cc.target[1], cc.target[2]
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = [3]float32{x, y, z}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingRadius -= delta * cc.zoomSpeed
}

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth -= cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth += cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingElevation += cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingElevation -= cc.orbitSpeed
}

func (cc *cameraControllerImpl) OrbitBy(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.pendingAzimuth -= dx * cc.mouseSensitivity
	cc.pendingElevation += dy * cc.mouseSensitivity
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.radius = clamp(radius, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minRadius
}

func (cc *cameraControllerImpl) MaxRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRadius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinElevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minElevation
}

func (cc *cameraControllerImpl) MaxElevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxElevation
}

func (cc *cameraControllerImpl) OrbitSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orbitSpeed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) DampingFactor() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.damping
}

func (cc *cameraControllerImpl) SetDampingFactor(factor float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if factor > 0 && factor <= 1 {
		cc.damping = factor
	}
}

func (cc *cameraControllerImpl) PanRight(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, _, _ := cc.localAxes()
	cc.translate(right, delta*cc.panSpeed)
}

func (cc *cameraControllerImpl) PanUp(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, up, _ := cc.localAxes()
	cc.translate(up, delta*cc.panSpeed)
}

func (cc *cameraControllerImpl) PanForward(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	_, _, forward := cc.localAxes()
	cc.translate(forward, delta*cc.panSpeed)
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}

func (cc *cameraControllerImpl) FrameTo(x, y, z, radius, seconds float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	radius = clamp(radius, cc.minRadius, cc.maxRadius)
	cc.pendingRadius = 0
	if seconds <= 0 {
		cc.framing = nil
		cc.target = [3]float32{x, y, z}
		cc.radius = radius
		cc.updatePosition()
		return
	}
	cc.framing = []*gween.Tween{
		gween.New(cc.target[0], x, seconds, ease.OutCubic),
		gween.New(cc.target[1], y, seconds, ease.OutCubic),
		gween.New(cc.target[2], z, seconds, ease.OutCubic),
		gween.New(cc.radius, radius, seconds, ease.OutCubic),
	}
}

func (cc *cameraControllerImpl) Framing() bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.framing != nil
}

func (cc *cameraControllerImpl) Update(dt float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if cc.framing != nil {
		finished := true
		for i, tw := range cc.framing {
			val, done := tw.Update(dt)
			if i < 3 {
				cc.target[i] = val
			} else {
				cc.radius = val
			}
			finished = finished && done
		}
		if finished {
			cc.framing = nil
		}
	}

	stepAz := cc.pendingAzimuth * cc.damping
	stepEl := cc.pendingElevation * cc.damping
	stepR := cc.pendingRadius * cc.damping
	cc.pendingAzimuth = settle(cc.pendingAzimuth - stepAz)
	cc.pendingElevation = settle(cc.pendingElevation - stepEl)
	cc.pendingRadius = settle(cc.pendingRadius - stepR)

	cc.azimuth += stepAz
	cc.elevation = clamp(cc.elevation+stepEl, cc.minElevation, cc.maxElevation)
	cc.radius = clamp(cc.radius+stepR, cc.minRadius, cc.maxRadius)
	cc.updatePosition()
}

func settle(v float32) float32 {
	if math32.Abs(v) < settleEpsilon {
		return 0
	}
	return v
}
