package input

import "github.com/Carmen-Shannon/oxy-demos/common"

// Bindings maps key codes to control actions and publishes them on a bus.
type Bindings struct {
	bus  Bus
	keys map[uint32]ControlKind
}

// NewBindings creates bindings with the default keys: Space and P toggle pause,
// R resets.
//
// Parameters:
//   - bus: the bus to publish to
//
// Returns:
//   - *Bindings: the bindings
func NewBindings(bus Bus) *Bindings {
	return &Bindings{
		bus: bus,
		keys: map[uint32]ControlKind{
			common.KeySpace: ControlTogglePause,
			common.KeyP:     ControlTogglePause,
			common.KeyR:     ControlReset,
		},
	}
}

// Bind maps a key code to a control action, replacing any existing binding.
func (b *Bindings) Bind(keyCode uint32, kind ControlKind) {
	b.keys[keyCode] = kind
}

// Unbind removes the binding of a key code.
func (b *Bindings) Unbind(keyCode uint32) {
	delete(b.keys, keyCode)
}

// Bound reports whether keyCode is bound to a control action.
func (b *Bindings) Bound(keyCode uint32) bool {
	_, ok := b.keys[keyCode]
	return ok
}

// HandleKey publishes the control event bound to keyCode, if any.
//
// Returns:
//   - bool: true if the key was bound
func (b *Bindings) HandleKey(keyCode uint32) bool {
	kind, ok := b.keys[keyCode]
	if !ok {
		return false
	}
	b.bus.Publish(ControlEvent{Kind: kind, Source: "key"})
	return true
}

// OnKeyPress adapts HandleKey to the window key callback signature.
func (b *Bindings) OnKeyPress(keyCode uint32) {
	b.HandleKey(keyCode)
}
