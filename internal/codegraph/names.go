package codegraph

import "strings"

// names returns the deduplicated @name captures of intent in first-seen
// order.
func (e *QueryEngine) names(tree *SyntaxTree, d *Descriptor, intent Intent) []string {
	if tree.Grammar == nil {
		return nil
	}
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, c := range e.intentCaptures(tree.Grammar, d, intent, tree.Root(), tree.Source) {
		if c.Label != labelName {
			continue
		}
		name := strings.TrimSpace(tree.Text(c.Node))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
