package identifier

import (
	"fmt"
	"time"
)

// Remote dates look like 20240131235959123 (second resolution plus milliseconds)
const cantoDateLayout = "20060102150405"

// ParseCantoDate converts a remote date string into a time in UTC
func ParseCantoDate(value string) (time.Time, error) {
	if len(value) < len(cantoDateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	t, err := time.ParseInLocation(cantoDateLayout, value[:len(cantoDateLayout)], time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	return t, nil
}

// CantoTimestamp returns the unix timestamp of a remote date, 0 if it cannot be parsed
func CantoTimestamp(value string) int64 {
	t, err := ParseCantoDate(value)
	if err != nil {
		return 0
	}
	return t.Unix()
}
