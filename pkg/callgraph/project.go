package callgraph

import (
	"fmt"
	"path/filepath"

	"github.com/l3aro/gopyan/internal/scanner"
	"github.com/l3aro/gopyan/pkg/extractor"
	tt "github.com/l3aro/gopyan/pkg/types"
)

// AnalyzeDir scans root for Python source files (honoring .gopyanignore
// and the scanner's default excludes) and runs Analyze over the result.
// cmd/gcq's commands do not call it: they collect files themselves
// (collectFiles) and call Analyze directly.
func AnalyzeDir(root string) (*tt.Graph, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	infos, err := scanner.Scan(absRoot)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", absRoot, err)
	}

	var files []string
	for _, fi := range infos {
		if extractor.IsPythonFile(fi.FullPath) {
			files = append(files, fi.FullPath)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no Python files found under %s", absRoot)
	}

	return Analyze(files, Options{Root: absRoot})
}
