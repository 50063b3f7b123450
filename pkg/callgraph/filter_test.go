package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tt "github.com/l3aro/gopyan/pkg/types"
)

func sampleGraph() *tt.Graph {
	// a -> b -> c -> d, plus an unrelated e -> f chain.
	nodes := []*tt.Node{
		{Namespace: "pkg", Name: "a"},
		{Namespace: "pkg", Name: "b"},
		{Namespace: "pkg", Name: "c"},
		{Namespace: "pkg", Name: "d"},
		{Namespace: "pkg", Name: "e"},
		{Namespace: "pkg", Name: "f"},
	}
	uses := []tt.Edge{
		{Source: "pkg.a", Target: "pkg.b"},
		{Source: "pkg.b", Target: "pkg.c"},
		{Source: "pkg.c", Target: "pkg.d"},
		{Source: "pkg.e", Target: "pkg.f"},
	}
	defines := []tt.Edge{
		{Source: "pkg", Target: "pkg.a"},
	}
	return &tt.Graph{Nodes: nodes, Uses: uses, Defines: defines}
}

func TestFilterForwardUnbounded(t *testing.T) {
	g := sampleGraph()
	out := Filter(g, []tt.Key{{Namespace: "pkg", Name: "a"}}, true, false, 0, false)

	var names []string
	for _, n := range out.Nodes {
		names = append(names, n.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c", "d"}, names)
	assert.Len(t, out.Uses, 3)
}

func TestFilterForwardDepthBounded(t *testing.T) {
	g := sampleGraph()
	out := Filter(g, []tt.Key{{Namespace: "pkg", Name: "a"}}, true, false, 1, false)

	var names []string
	for _, n := range out.Nodes {
		names = append(names, n.Name)
	}
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestFilterBackward(t *testing.T) {
	g := sampleGraph()
	out := Filter(g, []tt.Key{{Namespace: "pkg", Name: "d"}}, false, true, 0, false)

	var names []string
	for _, n := range out.Nodes {
		names = append(names, n.Name)
	}
	assert.ElementsMatch(t, []string{"d", "c", "b", "a"}, names)
}

func TestFilterIncludeDefines(t *testing.T) {
	g := sampleGraph()
	out := Filter(g, []tt.Key{{Namespace: "pkg", Name: "a"}}, true, false, 0, true)
	assert.NotEmpty(t, out.Defines)
}

func TestFilterNoSeedsKeepsEverything(t *testing.T) {
	g := sampleGraph()
	out := Filter(g, nil, true, true, 0, false)
	assert.Len(t, out.Nodes, len(g.Nodes))
}
