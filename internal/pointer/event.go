// Package pointer routes host pointer input to a tree of hit regions.
//
// Down and up events are delivered to the deepest region under the pointer
// and bubble towards the root until a listener stops propagation. Global move
// events reach every region regardless of where the pointer is, so a drag
// keeps tracking after the pointer leaves a small hit area. Releasing the
// pointer away from the region that received the down event delivers
// UpOutside to it.
package pointer

import "github.com/inamate/transformer/internal/engine"

// Type identifies a pointer event.
type Type string

const (
	Down       Type = "pointerdown"
	Up         Type = "pointerup"
	UpOutside  Type = "pointerupoutside"
	GlobalMove Type = "globalpointermove"
)

// Event is a pointer event in global (canvas) coordinates.
type Event struct {
	Type   Type
	Global engine.Point

	// Target is the deepest region the event was dispatched to.
	Target *Region
	// CurrentTarget is the region whose listener is running.
	CurrentTarget *Region

	stopped bool
}

// StopPropagation prevents ancestors of the current region from receiving the event.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped reports whether propagation was stopped.
func (e *Event) Stopped() bool {
	return e.stopped
}

// Listener handles a pointer event.
type Listener func(e *Event)
