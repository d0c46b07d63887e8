package dam

import (
	"strings"

	"github.com/jacobsenj/canto-fal/internal/identifier"
	"github.com/jacobsenj/canto-fal/pkg/canto"
)

// FolderNode is a folder or album of the library tree
type FolderNode struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	Created    int64    `json:"created"`
	Modified   int64    `json:"modified"`
	IDPath     []string `json:"idPath"`
	Children   Tree     `json:"children,omitempty"`
}

// Tree is an ordered list of sibling nodes
type Tree []FolderNode

// Find returns the direct child with the given combined identifier
func (t Tree) Find(id string) (FolderNode, bool) {
	for _, node := range t {
		if node.Identifier == id {
			return node, true
		}
	}
	return FolderNode{}, false
}

// Descend walks path from this level down and returns the children of the last node
func (t Tree) Descend(path []string) (Tree, bool) {
	level := t
	for _, id := range path {
		node, ok := level.Find(id)
		if !ok {
			return nil, false
		}
		level = node.Children
	}
	return level, true
}

// Identifiers returns the identifiers of the direct children
func (t Tree) Identifiers() []string {
	ids := make([]string, 0, len(t))
	for _, node := range t {
		ids = append(ids, node.Identifier)
	}
	return ids
}

// Flatten returns every identifier below this level, parents before their children
func (t Tree) Flatten() []string {
	var ids []string
	var walk func(Tree)
	walk = func(level Tree) {
		for _, node := range level {
			ids = append(ids, node.Identifier)
			walk(node.Children)
		}
	}
	walk(t)
	return ids
}

// buildTree converts the remote tree and reports every visited folder to visit
func buildTree(folders []canto.Folder, visit func(id string, f canto.Folder)) Tree {
	tree := make(Tree, 0, len(folders))
	for _, f := range folders {
		id := identifier.Encode(identifier.Scheme(f.Scheme), f.ID)
		children := f.Children
		f.Children = nil
		visit(id, f)

		tree = append(tree, FolderNode{
			Identifier: id,
			Name:       f.Name,
			Created:    identifier.CantoTimestamp(f.Created),
			Modified:   identifier.CantoTimestamp(f.Time),
			IDPath:     SplitIDPath(f.IDPath),
			Children:   buildTree(children, visit),
		})
	}
	return tree
}

// SplitIDPath splits a slash separated id path, empty segments are dropped
func SplitIDPath(idPath string) []string {
	var ids []string
	for _, id := range strings.Split(idPath, "/") {
		id = strings.Trim(strings.TrimSpace(id), `"`)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
