package token

import "errors"

var (
	ErrAuthorizationFailed = errors.New("authorization against canto failed")
)
