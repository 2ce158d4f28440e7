package scene

import "github.com/Carmen-Shannon/oxy-demos/engine/game_object"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithObjects adds initial game objects to the scene.
//
// Parameters:
//   - objects: the game objects to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			if obj.ID() == 0 {
				obj.SetID(s.nextID)
				s.nextID++
			} else if obj.ID() >= s.nextID {
				s.nextID = obj.ID() + 1
			}
			if _, exists := s.registry[obj.ID()]; !exists {
				s.order = append(s.order, obj.ID())
			}
			s.registry[obj.ID()] = obj
		}
	}
}

// WithPackWorkers sets the number of workers used to pack instances for large
// populations. Values below 2 keep packing on the calling goroutine.
//
// Parameters:
//   - n: the number of workers
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPackWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		s.packWorkers = max(n, 1)
	}
}

// WithPackThreshold sets the population at which packing goes parallel.
//
// Parameters:
//   - n: the threshold
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithPackThreshold(n int) SceneBuilderOption {
	return func(s *scene) {
		if n > 0 {
			s.packThreshold = n
		}
	}
}

// WithClearColor sets the background color.
//
// Parameters:
//   - c: linear RGBA
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithClearColor(c [4]float32) SceneBuilderOption {
	return func(s *scene) {
		s.clearColor = c
	}
}
