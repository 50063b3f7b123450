package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/l3aro/gopyan/pkg/types"
)

func TestRegistryGetOrCreateInterns(t *testing.T) {
	r := NewRegistry()
	a := r.GetOrCreate("pkg.mod", "Foo", tt.Unknown, 0, 0, false)
	b := r.GetOrCreate("pkg.mod", "Foo", tt.Class, 3, 0, true)
	require.Same(t, a, b)
	assert.Equal(t, tt.Class, a.Flavor)
	assert.True(t, a.Defined)
	assert.Equal(t, 3, a.Lineno)
}

func TestRegistryFlavorNeverDowngrades(t *testing.T) {
	r := NewRegistry()
	n := r.GetOrCreate("pkg.mod", "Foo", tt.Class, 1, 0, true)
	r.GetOrCreate("pkg.mod", "Foo", tt.Unknown, 0, 0, false)
	assert.Equal(t, tt.Class, n.Flavor)
}

func TestRegistryByName(t *testing.T) {
	r := NewRegistry()
	r.GetOrCreate("pkg.a", "run", tt.Function, 1, 0, true)
	r.GetOrCreate("pkg.b", "run", tt.Function, 2, 0, true)
	got := r.ByName("run")
	require.Len(t, got, 2)
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	n := r.GetOrCreate("", "mystery", tt.Unknown, 0, 0, false)
	r.GetOrCreate("pkg", "known", tt.Function, 1, 0, true)
	r.Remove(n)

	_, ok := r.Lookup("", "mystery")
	assert.False(t, ok)
	assert.Empty(t, r.ByName("mystery"))
	assert.Len(t, r.AllNodes(), 1)
}

func TestParentNamespace(t *testing.T) {
	assert.Equal(t, "pkg.mod", ParentNamespace("pkg.mod.Class"))
	assert.Equal(t, "", ParentNamespace("toplevel"))
}
