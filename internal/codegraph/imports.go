package codegraph

import (
	"strings"
)

// imports runs the import query over tree and builds one ImportInfo per
// imported path. Entries with the same path and raw text are collapsed.
func (e *QueryEngine) imports(tree *SyntaxTree, d *Descriptor, filePath string) []ImportInfo {
	if tree.Grammar == nil || d.buildImports == nil {
		return nil
	}

	var (
		out  []ImportInfo
		seen = make(map[string]bool)
	)
	for _, c := range e.intentCaptures(tree.Grammar, d, IntentImports, tree.Root(), tree.Source) {
		if c.Label != labelImport {
			continue
		}
		raw := strings.TrimSpace(tree.Text(c.Node))
		startLine, endLine, _, _ := span(c.Node)
		for _, info := range d.buildImports(c.Node, tree.Source) {
			if info.Path == "" && len(info.ImportedNames) == 0 {
				continue
			}
			info.FilePath = filePath
			info.StartLine = startLine
			info.EndLine = endLine
			info.RawText = raw

			key := info.Path + "\x00" + info.RawText
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, info)
		}
	}
	return out
}
