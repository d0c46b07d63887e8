package cache

import "errors"

var (
	ErrBackendClosed = errors.New("cache backend closed")
)
