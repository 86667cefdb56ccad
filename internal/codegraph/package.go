package codegraph

import (
	"strings"
)

// packageName returns the package or namespace declared by tree. The package
// query runs first; when it is unavailable or captures nothing, the root's
// immediate children are scanned for a package declaration node.
func (e *QueryEngine) packageName(tree *SyntaxTree, d *Descriptor) string {
	root := tree.Root()
	if tree.Grammar != nil {
		for _, c := range e.intentCaptures(tree.Grammar, d, IntentPackage, root, tree.Source) {
			if c.Label == labelPackage {
				if name := strings.TrimSpace(tree.Text(c.Node)); name != "" {
					return name
				}
			}
		}
	}
	return structuralPackage(tree, d)
}

func structuralPackage(tree *SyntaxTree, d *Descriptor) string {
	if len(d.PackageTypes) == 0 {
		return ""
	}
	root := tree.Root()
	for i := uint(0); i < root.ChildCount(); i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		for _, t := range d.PackageTypes {
			if child.Kind() == t {
				return d.stripPackage(tree.Text(child))
			}
		}
	}
	return ""
}
