// Package metadata converts remote asset records to local file metadata and
// pushes edited local metadata back as property updates.
package metadata

import (
	"strings"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/pkg/canto"
)

// Keys of extracted metadata
const (
	KeyTitle            = "title"
	KeyWidth            = "width"
	KeyHeight           = "height"
	KeyDescription      = "description"
	KeyCopyright        = "copyright"
	KeyKeywords         = "keywords"
	KeyModificationDate = "content_modification_date"
	KeyCreationDate     = "content_creation_date"
)

// Extractor reads metadata from asset records
type Extractor struct{}

// Extract returns the non empty metadata of asset, nil for a missing asset
func (Extractor) Extract(asset *canto.Asset) map[string]any {
	if asset == nil {
		return nil
	}

	data := map[string]any{}
	setString := func(key string, values ...string) {
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				data[key] = v
				return
			}
		}
	}
	setInt := func(key string, v int64) {
		if v > 0 {
			data[key] = v
		}
	}

	setString(KeyTitle, asset.Default.Title, asset.Name)
	setString(KeyDescription, asset.Description, asset.Default.Description)
	setString(KeyCopyright, asset.Copyright, asset.Default.Copyright)
	setInt(KeyWidth, asset.Width.Int())
	setInt(KeyHeight, asset.Height.Int())
	setInt(KeyModificationDate, identifier.CantoTimestamp(asset.Default.DateModified))
	setInt(KeyCreationDate, identifier.CantoTimestamp(asset.Default.DateUploaded))

	keywords := append(append([]string{}, asset.Keyword...), asset.Tag...)
	setString(KeyKeywords, strings.Join(keywords, ", "))

	return data
}
