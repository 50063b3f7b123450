// Package extractor bootstraps the tree-sitter parser used to turn Python
// source files into the concrete syntax trees pkg/callgraph walks. It is
// deliberately thin: the teacher's original extractor flattened each file
// into a ModuleInfo (functions/classes/imports as independent lists), which
// does not fit a two-pass, AST-resident visitor that must revisit the same
// tree with the scope stack and binding engine live — so only the parser
// bootstrap and file-extension knowledge survive here. See DESIGN.md.
package extractor

import (
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Extensions lists the file extensions recognized as Python source.
var Extensions = []string{".py", ".pyw", ".pyi"}

// IsPythonFile reports whether path has a recognized Python extension.
func IsPythonFile(path string) bool {
	for _, ext := range Extensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// NewPythonParser returns a tree-sitter parser configured for Python.
// Callers must serialize use of one parser instance (tree-sitter parsers
// are not safe for concurrent Parse calls); pkg/callgraph's Analyze uses
// one parser from a single goroutine, parsing files one after another.
func NewPythonParser() *sitter.Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return parser
}

// ParseFile reads and parses a single Python source file, returning its
// tree-sitter tree and raw source bytes. The caller owns the returned tree
// and must call tree.Close() when done with it.
func ParseFile(parser *sitter.Parser, path string) (*sitter.Tree, []byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	tree := parser.Parse(nil, src)
	if tree == nil || tree.RootNode() == nil {
		return nil, nil, fmt.Errorf("parsing %s: empty tree", path)
	}
	return tree, src, nil
}
