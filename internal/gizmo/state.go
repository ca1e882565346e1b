package gizmo

import "fmt"

// State is the transformer's interaction state. Exactly one is active.
type State int

const (
	Idle State = iota
	GroupMoving
	HandleDragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case GroupMoving:
		return "group-moving"
	case HandleDragging:
		return "handle-dragging"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "idle":
		*s = Idle
	case "group-moving":
		*s = GroupMoving
	case "handle-dragging":
		*s = HandleDragging
	default:
		return fmt.Errorf("unknown gizmo state %q", b)
	}
	return nil
}
