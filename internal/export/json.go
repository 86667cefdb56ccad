// Package export renders code graphs for consumption outside the process.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/dusk-indust/codegraph/internal/codegraph"
	"github.com/dusk-indust/codegraph/internal/graphstore"
)

// Document is the top-level JSON export structure. It holds no timestamps
// so repeated exports of the same sources are byte-identical.
type Document struct {
	Metadata      map[string]string            `json:"metadata"`
	Nodes         []codegraph.CodeNode         `json:"nodes"`
	Relationships []codegraph.CodeRelationship `json:"relationships"`
	Clusters      []graphstore.Cluster         `json:"clusters,omitempty"`
}

// NewDocument merges per-language graphs into one document. Counts in the
// merged metadata are summed; languages are listed comma-separated in
// sorted order.
func NewDocument(graphs []*codegraph.CodeGraph, clusters []graphstore.Cluster) *Document {
	doc := &Document{
		Metadata:      map[string]string{codegraph.MetaPlatform: codegraph.Platform},
		Nodes:         []codegraph.CodeNode{},
		Relationships: []codegraph.CodeRelationship{},
		Clusters:      clusters,
	}

	var (
		languages []string
		files     int
	)
	for _, g := range graphs {
		if g == nil {
			continue
		}
		doc.Nodes = append(doc.Nodes, g.Nodes...)
		doc.Relationships = append(doc.Relationships, g.Relationships...)
		if l := g.Metadata[codegraph.MetaLanguage]; l != "" {
			languages = append(languages, l)
		}
		if n, err := strconv.Atoi(g.Metadata[codegraph.MetaFileCount]); err == nil {
			files += n
		}
	}
	sort.Strings(languages)

	doc.Metadata[codegraph.MetaLanguage] = strings.Join(languages, ",")
	doc.Metadata[codegraph.MetaFileCount] = strconv.Itoa(files)
	doc.Metadata[codegraph.MetaNodeCount] = strconv.Itoa(len(doc.Nodes))
	doc.Metadata[codegraph.MetaRelationshipCount] = strconv.Itoa(len(doc.Relationships))
	return doc
}

// Graph returns the merged nodes and relationships of d as one graph.
func (d *Document) Graph() *codegraph.CodeGraph {
	return &codegraph.CodeGraph{
		Nodes:         d.Nodes,
		Relationships: d.Relationships,
		Metadata:      d.Metadata,
	}
}

// WriteJSON writes doc as indented JSON followed by a newline.
func WriteJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: encode json: %w", err)
	}
	return nil
}
