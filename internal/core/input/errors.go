package input

import "errors"

var (
	ErrUnknownAction = errors.New("unknown script action")
	ErrOffScreen     = errors.New("script point is outside the viewport")
)
