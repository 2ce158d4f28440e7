package scene

import (
	"errors"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-demos/engine/camera"
	"github.com/Carmen-Shannon/oxy-demos/engine/game_object"
	"github.com/Carmen-Shannon/oxy-demos/engine/renderer"
	"github.com/Carmen-Shannon/oxy-demos/engine/simulation"
	"github.com/Carmen-Shannon/oxy-demos/engine/workers"
)

// ErrNoRenderer is returned by Draw when the scene has no renderer attached.
var ErrNoRenderer = errors.New("scene has no renderer")

// defaultPackThreshold is the population above which instance packing is
// split across the pack pool.
const defaultPackThreshold = 2048

// Scene is the scene graph the simulations publish into. It implements
// simulation.Spawner: every spawned handle is a GameObject held in an ID-keyed
// registry, and Draw turns the enabled objects into one renderer frame.
// Thread-safe for concurrent access.
type Scene interface {
	simulation.Spawner

	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Renderer returns the scene's renderer, or nil.
	Renderer() renderer.Renderer

	// SetRenderer replaces the scene's renderer.
	//
	// Parameters:
	//   - r: the new renderer
	SetRenderer(r renderer.Renderer)

	// ClearColor returns the background color.
	ClearColor() [4]float32

	// SetClearColor sets the background color.
	SetClearColor(c [4]float32)

	// Add registers an existing GameObject, assigning an ID if it has none.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object's ID
	Add(obj game_object.GameObject) uint64

	// Get retrieves a GameObject by its ID. Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Remove removes a GameObject by ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id uint64)

	// Count returns the number of registered objects.
	Count() int

	// Objects returns the registered objects in ID order.
	Objects() []game_object.GameObject

	// Clear removes every object.
	Clear()

	// Resize forwards a new surface size to the renderer and the camera aspect.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// BuildFrame updates the camera and packs every enabled object, in ID order,
	// into a renderer frame. The returned instance slice is reused by the next call.
	//
	// Returns:
	//   - renderer.Frame: the frame
	BuildFrame() renderer.Frame

	// Draw builds a frame and renders it.
	//
	// Returns:
	//   - error: ErrNoRenderer or the renderer's error
	Draw() error
}

type scene struct {
	mu *sync.RWMutex

	name       string
	cam        camera.Camera
	r          renderer.Renderer
	clearColor [4]float32

	registry map[uint64]game_object.GameObject
	order    []uint64
	nextID   uint64

	// instances is reused across frames to avoid per-frame allocation.
	instances []renderer.Instance

	// packPool splits instance packing across workers for large populations.
	// It is taken from the shared pools on first use; a WaitGroup is the
	// per-frame barrier.
	packPool      worker.DynamicWorkerPool
	packWorkers   int
	packThreshold int
}

var _ Scene = &scene{}

// NewScene creates a new Scene. The camera is required; the renderer may be
// attached later with SetRenderer.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach, or nil
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		cam:           cam,
		r:             r,
		clearColor:    [4]float32{0, 0, 0, 1},
		registry:      make(map[uint64]game_object.GameObject),
		nextID:        1,
		packWorkers:   1,
		packThreshold: defaultPackThreshold,
	}
	for _, option := range options {
		option(s)
	}
	slices.Sort(s.order)
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) SetRenderer(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *scene) ClearColor() [4]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clearColor
}

func (s *scene) SetClearColor(c [4]float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearColor = c
}

func (s *scene) Spawn(spec simulation.SpawnSpec) simulation.Handle {
	scale := spec.Scale
	if scale <= 0 {
		scale = 1
	}
	obj := game_object.NewGameObject(
		game_object.WithName(spec.Name),
		game_object.WithColor(spec.Color),
		game_object.WithScale(scale, scale, scale),
	)
	s.Add(obj)
	return obj
}

func (s *scene) Release(h simulation.Handle) {
	obj, ok := h.(game_object.GameObject)
	if !ok {
		return
	}
	s.Remove(obj.ID())
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.ID() == 0 {
		obj.SetID(s.nextID)
	}
	s.nextID = max(s.nextID, obj.ID()+1)
	if _, exists := s.registry[obj.ID()]; !exists {
		s.order = append(s.order, obj.ID())
		if n := len(s.order); n > 1 && s.order[n-2] > s.order[n-1] {
			slices.Sort(s.order)
		}
	}
	s.registry[obj.ID()] = obj
	return obj.ID()
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.registry[id]; !exists {
		return
	}
	delete(s.registry, id)
	if i, found := slices.BinarySearch(s.order, id); found {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game_object.GameObject, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.registry[id])
	}
	return out
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[uint64]game_object.GameObject)
	s.order = nil
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if r := s.Renderer(); r != nil {
		r.Resize(width, height)
	}
	s.cam.SetAspect(float32(width) / float32(height))
}

func (s *scene) BuildFrame() renderer.Frame {
	s.cam.Update()

	s.mu.Lock()
	defer s.mu.Unlock()

	objs := make([]game_object.GameObject, 0, len(s.order))
	for _, id := range s.order {
		if obj := s.registry[id]; obj.Enabled() {
			objs = append(objs, obj)
		}
	}
	s.instances = slices.Grow(s.instances[:0], len(objs))[:len(objs)]

	if s.packWorkers > 1 && len(objs) >= s.packThreshold {
		s.packParallel(objs)
	} else {
		packInstances(s.instances, objs)
	}

	return renderer.Frame{
		Camera:    s.cam.Uniform(),
		Clear:     s.clearColor,
		Instances: s.instances,
	}
}

// packParallel fills s.instances in contiguous chunks on the pack pool. Each
// chunk writes a disjoint range, so the result is identical to packInstances.
// Caller must hold s.mu.
func (s *scene) packParallel(objs []game_object.GameObject) {
	if s.packPool == nil {
		s.packPool = workers.Shared(s.packWorkers)
	}
	chunks := min(s.packWorkers, workers.QueueSize, len(objs))
	size := (len(objs) + chunks - 1) / chunks

	var wg sync.WaitGroup
	for c := range chunks {
		lo := c * size
		hi := min(lo+size, len(objs))
		if lo >= hi {
			break
		}
		wg.Add(1)
		s.packPool.SubmitTask(worker.Task{
			ID: c,
			Do: func() (any, error) {
				defer wg.Done()
				packInstances(s.instances[lo:hi], objs[lo:hi])
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func packInstances(dst []renderer.Instance, objs []game_object.GameObject) {
	for i, obj := range objs {
		pos, scale, _ := obj.TransformData()
		dst[i] = renderer.Instance{
			Position: pos,
			Scale:    scale[0],
			Color:    obj.Color(),
		}
	}
}

func (s *scene) Draw() error {
	r := s.Renderer()
	if r == nil {
		return ErrNoRenderer
	}
	return r.Render(s.BuildFrame())
}
