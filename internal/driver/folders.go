package driver

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jacobsenj/canto-fal/internal/dam"
	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/pkg/canto"
)

// FolderExists reports whether the folder or album can be fetched
func (d *Driver) FolderExists(ctx context.Context, folderIdentifier string) bool {
	if folderIdentifier == d.root {
		return true
	}
	id, err := identifier.Decode(folderIdentifier)
	if err != nil || !id.IsFolder() {
		return false
	}
	_, err = d.repo.GetFolderDetails(ctx, id.Scheme, id.ID)
	return err == nil
}

// FolderInfo describes a folder. Folder names are prefixed with "F: " and album names with "A: ".
func (d *Driver) FolderInfo(ctx context.Context, folderIdentifier string) (FolderInfo, error) {
	if folderIdentifier == "" || folderIdentifier == d.root {
		now := d.now().Unix()
		return FolderInfo{
			Identifier: d.root,
			StorageID:  d.cfg.StorageID,
			Name:       rootFolderName,
			Mtime:      now,
			Ctime:      now,
			IDPath:     identifier.IDOf(d.root),
		}, nil
	}

	id, err := identifier.Decode(folderIdentifier)
	if err != nil {
		return FolderInfo{}, err
	}
	folder, err := d.repo.GetFolderDetails(ctx, id.Scheme, id.ID)
	if err != nil {
		return FolderInfo{}, err
	}

	prefix := "F: "
	if id.Scheme == identifier.SchemeAlbum {
		prefix = "A: "
	}

	return FolderInfo{
		Identifier: folderIdentifier,
		StorageID:  d.cfg.StorageID,
		Name:       prefix + folder.Name,
		Mtime:      identifier.CantoTimestamp(folder.Time),
		Ctime:      identifier.CantoTimestamp(folder.Created),
		IDPath:     folder.IDPath,
	}, nil
}

// ParentFolderIdentifier resolves the parent through the id path of a folder.
// The parent of the root is the root itself, files report the root.
func (d *Driver) ParentFolderIdentifier(ctx context.Context, id string) string {
	if id == "" {
		return identifier.Root
	}
	if id == d.root {
		return id
	}

	c, err := identifier.Decode(id)
	if err != nil || !c.IsFolder() {
		return d.root
	}

	folder, err := d.repo.GetFolderDetails(ctx, c.Scheme, c.ID)
	if err != nil {
		return d.root
	}
	path := dam.SplitIDPath(folder.IDPath)
	if len(path) <= 1 {
		return d.root
	}

	// albums only live in folders
	return identifier.Encode(identifier.SchemeFolder, path[len(path)-2])
}

// treePath converts the id path of a folder into the tree path relative to the root
func (d *Driver) treePath(scheme identifier.Scheme, folder *canto.Folder) []string {
	segments := dam.SplitIDPath(folder.IDPath)
	path := make([]string, len(segments))
	for i, segment := range segments {
		s := identifier.SchemeFolder
		if i == len(segments)-1 {
			s = identifier.Scheme(folder.Scheme)
			if !s.Valid() {
				s = scheme
			}
		}
		path[i] = identifier.Encode(s, segment)
	}

	if i := slices.Index(path, d.root); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// FoldersInFolder lists the folders and albums below a folder. Albums have no subfolders.
// Folders are always ordered by name, SortRev reverses the order.
func (d *Driver) FoldersInFolder(ctx context.Context, folderIdentifier string, opts ListOptions) []string {
	id, err := identifier.Decode(folderIdentifier)
	if err != nil || id.Scheme == identifier.SchemeAlbum {
		return []string{}
	}

	direction := canto.SortAscending
	if opts.SortRev {
		direction = canto.SortDescending
	}
	tree := d.repo.FolderTree(ctx, canto.SortByName, direction)

	var level dam.Tree
	if folderIdentifier == d.root {
		level = tree
		if node, ok := tree.Find(d.root); ok {
			level = node.Children
		}
	} else {
		folder, err := d.repo.GetFolderDetails(ctx, id.Scheme, id.ID)
		if err != nil {
			return []string{}
		}
		var ok bool
		level, ok = tree.Descend(d.treePath(id.Scheme, folder))
		if !ok {
			return []string{}
		}
	}

	var ids []string
	if opts.Recursive {
		ids = level.Flatten()
	} else {
		ids = level.Identifiers()
	}

	return page(ids, opts.Start, opts.NumberOfItems)
}

// page applies the start offset and the item budget, 0 items means unlimited
func page(ids []string, start, numberOfItems int) []string {
	if start > 0 {
		if start >= len(ids) {
			return []string{}
		}
		ids = ids[start:]
	}
	if numberOfItems > 0 && numberOfItems < len(ids) {
		ids = ids[:numberOfItems]
	}
	if ids == nil {
		return []string{}
	}
	return ids
}

// CountFoldersInFolder counts the folders FoldersInFolder would list
func (d *Driver) CountFoldersInFolder(ctx context.Context, folderIdentifier string, recursive bool) int {
	return len(d.FoldersInFolder(ctx, folderIdentifier, ListOptions{Recursive: recursive}))
}

// FolderInFolder returns the only direct subfolder named folderName, empty when there is none or several.
// Both the plain name and the prefixed display name match.
func (d *Driver) FolderInFolder(ctx context.Context, folderName, folderIdentifier string) string {
	var matches []string
	for _, child := range d.FoldersInFolder(ctx, folderIdentifier, ListOptions{}) {
		info, err := d.FolderInfo(ctx, child)
		if err != nil {
			continue
		}
		if info.Name == folderName || displayless(info.Name) == folderName {
			matches = append(matches, child)
		}
	}
	if len(matches) != 1 {
		return ""
	}
	return matches[0]
}

func displayless(name string) string {
	return strings.TrimPrefix(strings.TrimPrefix(name, "F: "), "A: ")
}

// FolderExistsInFolder reports whether folderIdentifier lies below parentFolderIdentifier
func (d *Driver) FolderExistsInFolder(ctx context.Context, parentFolderIdentifier, folderIdentifier string) bool {
	if parentFolderIdentifier == folderIdentifier {
		return true
	}

	parent, err := identifier.Decode(parentFolderIdentifier)
	if err != nil {
		return false
	}
	id, err := identifier.Decode(folderIdentifier)
	if err != nil {
		return false
	}
	if parentFolderIdentifier == d.root && d.cfg.RootFolder == identifier.Root {
		return id.IsFolder()
	}

	folder, err := d.repo.GetFolderDetails(ctx, id.Scheme, id.ID)
	if err != nil {
		return false
	}
	return slices.Contains(dam.SplitIDPath(folder.IDPath), parent.ID)
}

// IsFolderEmpty reports whether a folder has neither files nor subfolders
func (d *Driver) IsFolderEmpty(ctx context.Context, folderIdentifier string) bool {
	return d.CountFilesInFolder(ctx, folderIdentifier)+d.CountFoldersInFolder(ctx, folderIdentifier, false) == 0
}

// IsWithin reports whether identifier is located below folderIdentifier
func (d *Driver) IsWithin(ctx context.Context, folderIdentifier, id string) bool {
	if !identifier.IsValid(folderIdentifier) || !identifier.IsValid(id) {
		return false
	}
	if identifier.IsFolderScheme(identifier.SchemeOf(id)) {
		return d.FolderExistsInFolder(ctx, folderIdentifier, id)
	}
	return d.FileExistsInFolder(ctx, id, folderIdentifier)
}

// String is used in log lines
func (i FolderInfo) String() string {
	return fmt.Sprintf("%s (%s)", i.Name, i.Identifier)
}

// Tree returns the folder tree below the root ordered by name
func (d *Driver) Tree(ctx context.Context) dam.Tree {
	tree := d.repo.FolderTree(ctx, canto.SortByName, canto.SortAscending)
	if node, ok := tree.Find(d.root); ok {
		return node.Children
	}
	return tree
}
