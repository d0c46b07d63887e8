package driver

import (
	"context"

	"github.com/jacobsenj/canto-fal/internal/metadata"
)

// ExportMetadata pushes local metadata of a file to its remote asset using the configured
// export mapping. It reports false when nothing was exported.
func (d *Driver) ExportMetadata(ctx context.Context, fileIdentifier string, language int, data map[string]any) (bool, error) {
	mapping, err := metadata.ParseMapping(d.cfg.MetadataExportMapping)
	if err != nil {
		return false, err
	}
	return d.exporter.Export(ctx, fileIdentifier, mapping, language, data), nil
}
