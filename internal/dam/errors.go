package dam

import "errors"

var (
	ErrFolderNotFound        = errors.New("folder does not exist")
	ErrMaterializationFailed = errors.New("local copy of remote file failed")
)
