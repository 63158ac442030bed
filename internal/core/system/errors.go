package system

import "errors"

var (
	ErrWorldInactive = errors.New("world is not active")
	ErrUnknownUnit   = errors.New("unknown unit")
)
