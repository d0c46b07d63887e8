package utils

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Counter for sequential uniqueness
var sequenceCounter uint64 = 0

// GenerateShortID creates a short request id for log correlation
func GenerateShortID() string {
	buf := make([]byte, 0, 32)

	timeBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(timeBytes, uint64(time.Now().UnixNano()))
	buf = append(buf, timeBytes...)

	counterBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(counterBytes, atomic.AddUint64(&sequenceCounter, 1))
	buf = append(buf, counterBytes...)

	random := uuid.New()
	buf = append(buf, random[:]...)

	hash := sha256.Sum256(buf)
	encoded := base64.URLEncoding.EncodeToString(hash[:16])

	// Remove padding
	return encoded[:22]
}

// TempFileName returns a unique file name inside dir, e.g. canto_clone_<uuid>.jpg
func TempFileName(dir, prefix, extension string) string {
	name := prefix + uuid.NewString()
	if extension != "" {
		name += "." + strings.TrimPrefix(extension, ".")
	}
	return filepath.Join(dir, name)
}

// SleepContext waits for d or until ctx is done
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
