package units

import "errors"

var (
	ErrBusRequired       = errors.New("unit requires an event bus")
	ErrNoCapabilities    = errors.New("unit must have at least one capability")
	ErrNavigatorRequired = errors.New("moveable unit requires a navigator")
)
