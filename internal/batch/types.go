package batch

import "time"

const (
	// DefaultPauseEvery is the number of items processed between two rate limit pauses
	DefaultPauseEvery = 1000
	DefaultPause      = 60 * time.Second
)

// Variant selects what a job refreshes
type Variant string

const (
	// FrontendAssets refreshes referenced files whose remote version is newer
	FrontendAssets Variant = "frontend-assets"
	// Metadata refreshes the metadata of every file
	Metadata Variant = "metadata"
)

// Valid reports whether v is a known variant
func (v Variant) Valid() bool {
	return v == FrontendAssets || v == Metadata
}
