package status

// Status codes for API responses
// 1000-1999: Success codes
// 4000-4999: Client error codes
// 5000-5999: Server error codes

const (
	// Success codes (1000-1999)
	StatusOK           int16 = 1000
	StatusCreated      int16 = 1001
	StatusAccepted     int16 = 1002
	StatusUpdated      int16 = 1003
	StatusDeleted      int16 = 1004
	StatusFileUploaded int16 = 1030

	// Client error codes (4000-4999)
	StatusBadRequest       int16 = 4000
	StatusNotFound         int16 = 4003
	StatusValidationFailed int16 = 4010

	// Server error codes (5000-5999)
	StatusInternalServerError  int16 = 5000
	StatusNotImplemented       int16 = 5001
	StatusFileSystemError      int16 = 5040
	StatusExternalServiceError int16 = 5050
)
