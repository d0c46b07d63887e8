package identifier

import "errors"

var (
	ErrInvalidIdentifier = errors.New("invalid combined identifier")
	ErrInvalidDate       = errors.New("invalid canto date")
)
