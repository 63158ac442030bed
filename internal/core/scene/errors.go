package scene

import "errors"

var (
	ErrUnboundBody   = errors.New("body is not bound to a unit")
	ErrDuplicateBody = errors.New("unit already has a body in the scene")
)
