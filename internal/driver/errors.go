package driver

import "errors"

var (
	// ErrUnsupportedOperation is returned by operations outside the capability set of the driver
	ErrUnsupportedOperation = errors.New("operation not supported by the canto driver")

	// ErrUploadTimeout is returned when an upload was accepted but not processed in time.
	// The file usually appears remotely later on.
	ErrUploadTimeout = errors.New("file not fully processed, please reload")

	ErrUploadTarget    = errors.New("files need to be within an album, not a folder")
	ErrFolderCreation  = errors.New("creating the folder did not work")
	ErrUnknownHash     = errors.New("unsupported hash algorithm")
	ErrUnknownStorage  = errors.New("no canto storage configured with this id")
	ErrFileUnavailable = errors.New("file has no public url")
)
