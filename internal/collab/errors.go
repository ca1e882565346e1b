package collab

import "errors"

var (
	ErrGizmoBusy     = errors.New("gizmo is being dragged by another client")
	ErrUnsupportedOp = errors.New("unsupported operation")

	errMissingType = errors.New("message has no type")
)
