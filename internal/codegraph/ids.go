package codegraph

import (
	"encoding/hex"
	"strconv"

	"github.com/zeebo/xxh3"
)

// NodeID returns the stable id of a declaration: the 128-bit xxh3 hash of
// its file path, qualified name, kind and in-file ordinal, as 32 hex digits.
// The ordinal is zero for the first declaration with a given qualified name
// and kind.
func NodeID(filePath, qualifiedName string, kind ElementKind, ordinal int) string {
	h := xxh3.New()
	_, _ = h.WriteString(filePath)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(qualifiedName)
	_, _ = h.Write([]byte{0})
	_, _ = h.WriteString(string(kind))
	if ordinal > 0 {
		_, _ = h.WriteString("#" + strconv.Itoa(ordinal))
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:])
}

// idGenerator hands out NodeIDs for one file, numbering overloads and other
// same-name declarations in visit order.
type idGenerator struct {
	filePath string
	seen     map[string]int
}

func newIDGenerator(filePath string) *idGenerator {
	return &idGenerator{filePath: filePath, seen: make(map[string]int)}
}

func (g *idGenerator) next(qualifiedName string, kind ElementKind) string {
	key := string(kind) + "\x00" + qualifiedName
	ordinal := g.seen[key]
	g.seen[key] = ordinal + 1
	return NodeID(g.filePath, qualifiedName, kind, ordinal)
}
