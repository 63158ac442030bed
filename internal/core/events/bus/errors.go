package bus

import (
	"errors"
	"fmt"
)

var (
	ErrNilEvent = errors.New("nil event payload")
)

// HandlerPanicError wraps a value recovered from a panicking handler.
type HandlerPanicError struct {
	EventType    string
	Subscription string
	Value        any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("handler %s for %s panicked: %v", e.Subscription, e.EventType, e.Value)
}
