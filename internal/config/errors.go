package config

import "errors"

var (
	ErrInvalidTickRate      = errors.New("tick rate must be positive")
	ErrInvalidDragThreshold = errors.New("drag threshold must not be negative")
	ErrInvalidViewport      = errors.New("viewport must have a positive size")
	ErrInvalidCamera        = errors.New("invalid camera")
	ErrFeedAddrRequired     = errors.New("feed address is required when the feed is enabled")
)
