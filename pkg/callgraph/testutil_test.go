package callgraph

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/stretchr/testify/require"

	tt "github.com/l3aro/gopyan/pkg/types"
)

// parsePython parses a Python source snippet directly, without touching
// the filesystem, for unit tests that only need a tree-sitter tree.
func parsePython(t *testing.T, src string) (*sitter.Tree, []byte) {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	b := []byte(src)
	tree := parser.Parse(nil, b)
	require.NotNil(t, tree)
	return tree, b
}

// writeFiles materializes a map of relative path -> source into a fresh
// temp directory and returns the directory plus absolute file paths in
// map-iteration order (unspecified).
func writeFiles(t *testing.T, files map[string]string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	var paths []string
	for rel, src := range files {
		full := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(src), 0o644))
		paths = append(paths, full)
	}
	return dir, paths
}

// hasEdgeSuffix reports whether edges contains one whose Source/Target have the
// given suffixes (namespace-qualified names are verbose; tests only assert
// on the interesting tail).
func hasEdgeSuffix(edges []tt.Edge, srcSuffix, dstSuffix string) bool {
	for _, e := range edges {
		if hasSuffix(e.Source, srcSuffix) && hasSuffix(e.Target, dstSuffix) {
			return true
		}
	}
	return false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
