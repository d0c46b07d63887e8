package filerecord

import "errors"

var (
	ErrRecordNotFound  = errors.New("file record not found")
	ErrRenditionFailed = errors.New("rendition could not be produced")
)
