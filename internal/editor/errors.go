package editor

import "errors"

var (
	ErrNoDocument    = errors.New("no document loaded")
	ErrUnknownObject = errors.New("unknown object")
)
