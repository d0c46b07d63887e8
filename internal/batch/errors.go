package batch

import "errors"

var (
	ErrUnknownVariant     = errors.New("unknown batch variant")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
