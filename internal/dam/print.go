package dam

import (
	"github.com/disiqueira/gotree/v3"
)

// Print renders t below a root labelled label, one node per line
func Print(label string, t Tree) string {
	root := gotree.New(label)
	addNodes(root, t)
	return root.Print()
}

func addNodes(parent gotree.Tree, t Tree) {
	for _, node := range t {
		addNodes(parent.Add(node.Name+" ("+node.Identifier+")"), node.Children)
	}
}
