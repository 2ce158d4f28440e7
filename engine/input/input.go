// Package input turns raw key presses into control events (pause, reset) and
// delivers them to the frame loop through a donburi event bus.
package input

import (
	"sync"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ControlKind identifies a control action.
type ControlKind uint8

const (
	// ControlTogglePause flips the simulation between running and paused.
	ControlTogglePause ControlKind = iota + 1
	// ControlReset discards the population and clock and recreates them.
	ControlReset
)

func (k ControlKind) String() string {
	switch k {
	case ControlTogglePause:
		return "toggle-pause"
	case ControlReset:
		return "reset"
	default:
		return "unknown"
	}
}

// ControlEvent is a control action and where it came from ("key", "config", ...).
type ControlEvent struct {
	Kind   ControlKind
	Source string
}

// ControlEventType is the donburi event type carrying control events.
var ControlEventType = events.NewEventType[ControlEvent]()

// Bus queues control events from any goroutine and delivers them to
// subscribers on the goroutine that calls Process.
type Bus interface {
	// Publish queues an event. Safe for concurrent use.
	//
	// Parameters:
	//   - e: the event to queue
	Publish(e ControlEvent)

	// Subscribe registers a handler. Handlers run inside Process.
	//
	// Parameters:
	//   - fn: the handler
	Subscribe(fn func(e ControlEvent))

	// Process delivers every queued event in publish order.
	//
	// Returns:
	//   - int: the number of events delivered
	Process() int
}

type bus struct {
	mu      sync.Mutex
	pending []ControlEvent

	// world is only touched from Subscribe and Process, which run on the loop goroutine.
	world donburi.World
}

var _ Bus = &bus{}

// NewBus creates an empty control event bus backed by its own donburi world.
func NewBus() Bus {
	return &bus{world: donburi.NewWorld()}
}

func (b *bus) Publish(e ControlEvent) {
	b.mu.Lock()
	b.pending = append(b.pending, e)
	b.mu.Unlock()
}

func (b *bus) Subscribe(fn func(e ControlEvent)) {
	ControlEventType.Subscribe(b.world, func(_ donburi.World, e ControlEvent) {
		fn(e)
	})
}

func (b *bus) Process() int {
	b.mu.Lock()
	queued := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(queued) == 0 {
		return 0
	}
	for _, e := range queued {
		ControlEventType.Publish(b.world, e)
	}
	ControlEventType.ProcessEvents(b.world)
	return len(queued)
}
