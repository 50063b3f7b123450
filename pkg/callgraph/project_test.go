package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeDirFindsPythonFilesRecursively(t *testing.T) {
	root, _ := writeFiles(t, map[string]string{
		"pkg/mod.py":            "def top():\n    return helper()\n",
		"pkg/helpers.py":        "def helper():\n    return 1\n",
		"pkg/notes.txt":         "not python",
		"pkg/__pycache__/x.py":  "def ignored():\n    pass\n",
	})

	g, err := AnalyzeDir(root)
	require.NoError(t, err)
	assert.True(t, hasEdgeSuffix(g.Uses, "top", "helper"))

	for _, n := range g.Nodes {
		assert.NotEqual(t, "ignored", n.Name)
	}
}

func TestAnalyzeDirNoPythonFilesReturnsError(t *testing.T) {
	root, _ := writeFiles(t, map[string]string{
		"readme.md": "nothing to see here",
	})

	_, err := AnalyzeDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no Python files found")
}

func TestAnalyzeDirHonorsGopyanignore(t *testing.T) {
	root, _ := writeFiles(t, map[string]string{
		".gopyanignore": "skip_me.py\n",
		"mod.py":        "def used():\n    return 1\n",
		"skip_me.py":    "def should_not_appear():\n    pass\n",
	})

	g, err := AnalyzeDir(root)
	require.NoError(t, err)
	for _, n := range g.Nodes {
		assert.NotEqual(t, "should_not_appear", n.Name)
	}
}
