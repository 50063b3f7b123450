package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstImport(t *testing.T, src, ns string) ImportBinding {
	t.Helper()
	tree, b := parsePython(t, src)
	stmt := tree.RootNode().Child(0)
	out := parseImportStatement(stmt, b, ns)
	require.NotEmpty(t, out)
	return out[0]
}

func TestParsePlainImport(t *testing.T) {
	imp := firstImport(t, "import pkg.sub.mod\n", "")
	assert.Equal(t, []string{"pkg"}, imp.BoundNames)
	assert.Equal(t, "pkg.sub.mod", imp.Target)
}

func TestParsePlainImportAliased(t *testing.T) {
	imp := firstImport(t, "import numpy as np\n", "")
	assert.Equal(t, []string{"np"}, imp.BoundNames)
	assert.Equal(t, "numpy", imp.Target)
}

func TestParseFromImport(t *testing.T) {
	imp := firstImport(t, "from pkg.sub import thing\n", "")
	assert.Equal(t, []string{"thing"}, imp.BoundNames)
	assert.Equal(t, "pkg.sub.thing", imp.Target)
}

func TestParseFromImportAliased(t *testing.T) {
	imp := firstImport(t, "from pkg.sub import thing as t\n", "")
	assert.Equal(t, []string{"t"}, imp.BoundNames)
	assert.Equal(t, "pkg.sub.thing", imp.Target)
}

func TestParseFromImportWildcard(t *testing.T) {
	imp := firstImport(t, "from pkg.sub import *\n", "")
	assert.True(t, imp.IsWildcard)
	assert.Equal(t, "pkg.sub", imp.WildcardModule)
}

func TestParseFromImportSingleDotUsesOwnPackage(t *testing.T) {
	imp := firstImport(t, "from . import sibling\n", "pkg.sub.mod")
	assert.Equal(t, []string{"sibling"}, imp.BoundNames)
	assert.Equal(t, "pkg.sub.sibling", imp.Target)
}

func TestParseFromImportDoubleDotWalksUpTwice(t *testing.T) {
	imp := firstImport(t, "from .. import thing\n", "pkg.sub.mod")
	assert.Equal(t, "pkg.thing", imp.Target)
}

func TestParseFromImportDotWithSubmodule(t *testing.T) {
	imp := firstImport(t, "from .sibling import thing\n", "pkg.sub.mod")
	assert.Equal(t, "pkg.sub.sibling.thing", imp.Target)
}
