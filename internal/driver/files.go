package driver

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/pkg/canto"
)

// mapSortBy translates file listing sort fields to remote sort orders
func mapSortBy(sort string) string {
	switch sort {
	case "name":
		return canto.SortByName
	case "fileext":
		return canto.SortByScheme
	case "size":
		return canto.SortBySize
	}
	return canto.SortByTime
}

// FileExists reports whether an asset can be fetched. Folder identifiers never exist as files.
func (d *Driver) FileExists(ctx context.Context, fileIdentifier string) bool {
	id, err := identifier.Decode(fileIdentifier)
	if err != nil || id.IsFolder() {
		return false
	}
	return d.repo.GetFileDetails(ctx, id.Scheme, id.ID) != nil
}

// FileInfo describes an asset. Assets missing remotely are described by the fallback record.
// Folder identifiers are described as folders.
func (d *Driver) FileInfo(ctx context.Context, fileIdentifier string) FileInfo {
	info := FileInfo{
		Identifier:     fileIdentifier,
		IdentifierHash: d.HashIdentifier(fileIdentifier),
		StorageID:      d.cfg.StorageID,
		Atime:          d.now().Unix(),
	}

	id, err := identifier.Decode(fileIdentifier)
	if err == nil && id.IsFolder() {
		if folder, err := d.FolderInfo(ctx, fileIdentifier); err == nil {
			info.Name = folder.Name
			info.Mtime = folder.Mtime
			info.Ctime = folder.Ctime
		}
		return info
	}

	var asset *canto.Asset
	if err == nil {
		asset = d.repo.GetFileDetails(ctx, id.Scheme, id.ID)
	}
	if asset == nil {
		info.Name = fallbackFileName
		info.Extension = "jpg"
		info.Size = fallbackFileSize
		info.FolderIdentifiers = []string{}
		return info
	}

	return d.describe(info, asset)
}

func (d *Driver) describe(info FileInfo, asset *canto.Asset) FileInfo {
	info.Name = asset.Name
	info.Extension = strings.TrimPrefix(filepath.Ext(asset.Name), ".")
	info.MimeType = asset.Default.ContentType
	info.Size = asset.Default.Size.Int()
	info.Mtime = identifier.CantoTimestamp(asset.Default.DateModified)
	info.Ctime = identifier.CantoTimestamp(asset.Default.DateUploaded)

	info.FolderIdentifiers = make([]string, 0, len(asset.RelatedAlbums))
	for _, album := range asset.RelatedAlbums {
		info.FolderIdentifiers = append(info.FolderIdentifiers, identifier.Encode(identifier.Scheme(album.Scheme), album.ID))
	}
	return info
}

// resolveFiles fetches the assets of an album, paging past the remote page
// size. Folders and the root never hold files.
func (d *Driver) resolveFiles(ctx context.Context, folderIdentifier string, opts ListOptions) []canto.Asset {
	id, err := identifier.Decode(folderIdentifier)
	if err != nil || id.Scheme == identifier.SchemeFolder || folderIdentifier == d.root {
		return nil
	}

	direction := canto.SortAscending
	if opts.SortRev {
		direction = canto.SortDescending
	}
	return d.repo.AllFilesInFolder(ctx, id.ID, opts.Start, opts.NumberOfItems, mapSortBy(opts.Sort), direction)
}

// FilesInFolder lists the assets of an album. Listed assets are cached on the way.
func (d *Driver) FilesInFolder(ctx context.Context, folderIdentifier string, opts ListOptions) []string {
	assets := d.resolveFiles(ctx, folderIdentifier, opts)

	ids := make([]string, 0, len(assets))
	for i := range assets {
		combined := identifier.Encode(identifier.Scheme(assets[i].Scheme), assets[i].ID)
		d.repo.SeedFile(ctx, combined, &assets[i])
		ids = append(ids, combined)
	}
	return ids
}

// CountFilesInFolder counts the assets of an album
func (d *Driver) CountFilesInFolder(ctx context.Context, folderIdentifier string) int {
	id, err := identifier.Decode(folderIdentifier)
	if err != nil || id.Scheme == identifier.SchemeFolder || folderIdentifier == d.root {
		return 0
	}
	return d.repo.CountFilesInFolder(ctx, id.ID)
}

// FileInFolder returns the identifier of the asset named fileName inside an album
func (d *Driver) FileInFolder(ctx context.Context, fileName, folderIdentifier string) string {
	for _, asset := range d.resolveFiles(ctx, folderIdentifier, ListOptions{}) {
		if asset.Name == fileName {
			return identifier.Encode(identifier.Scheme(asset.Scheme), asset.ID)
		}
	}
	return ""
}

// FileExistsInFolder reports whether one of the albums of the asset lies below folderIdentifier
func (d *Driver) FileExistsInFolder(ctx context.Context, fileIdentifier, folderIdentifier string) bool {
	for _, album := range d.FileInfo(ctx, fileIdentifier).FolderIdentifiers {
		if d.IsWithin(ctx, folderIdentifier, album) {
			return true
		}
	}
	return false
}

// FileDetails returns the remote asset record, nil when the identifier is malformed or the asset is absent
func (d *Driver) FileDetails(ctx context.Context, fileIdentifier string) *canto.Asset {
	id, err := identifier.Decode(fileIdentifier)
	if err != nil || id.IsFolder() {
		return nil
	}
	return d.repo.GetFileDetails(ctx, id.Scheme, id.ID)
}

// ForgetFile drops the cached details of a file so the next lookup asks the remote side again
func (d *Driver) ForgetFile(ctx context.Context, fileIdentifier string) error {
	id, err := identifier.Decode(fileIdentifier)
	if err != nil {
		return err
	}
	return d.repo.ForgetFile(ctx, identifier.Encode(id.Scheme, id.ID))
}
