package simulation

import "sync"

// DetachedHandle is a Handle that only stores the last written transform.
type DetachedHandle struct {
	Spec     SpawnSpec
	Position [3]float32
	Rotation [3]float32
	Writes   int
}

var _ Handle = &DetachedHandle{}

func (h *DetachedHandle) SetPosition(x, y, z float32) {
	h.Position = [3]float32{x, y, z}
	h.Writes++
}

func (h *DetachedHandle) SetRotation(rx, ry, rz float32) {
	h.Rotation = [3]float32{rx, ry, rz}
}

// DetachedSpawner hands out DetachedHandles and tracks which are live.
type DetachedSpawner struct {
	mu       sync.Mutex
	live     map[*DetachedHandle]struct{}
	spawned  int
	released int
}

var _ Spawner = &DetachedSpawner{}

// NewDetachedSpawner creates an empty DetachedSpawner.
func NewDetachedSpawner() *DetachedSpawner {
	return &DetachedSpawner{live: make(map[*DetachedHandle]struct{})}
}

func (s *DetachedSpawner) Spawn(spec SpawnSpec) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := &DetachedHandle{Spec: spec}
	s.live[h] = struct{}{}
	s.spawned++
	return h
}

func (s *DetachedSpawner) Release(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dh, ok := h.(*DetachedHandle); ok {
		if _, live := s.live[dh]; live {
			delete(s.live, dh)
			s.released++
		}
	}
}

// Live returns the number of handles spawned and not yet released.
func (s *DetachedSpawner) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Counts returns the total number of Spawn and Release calls that took effect.
func (s *DetachedSpawner) Counts() (spawned, released int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawned, s.released
}
