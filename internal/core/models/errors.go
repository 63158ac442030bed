package models

import "errors"

var (
	ErrUnknownCapability = errors.New("unknown capability")
)
