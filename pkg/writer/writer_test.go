package writer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/l3aro/gopyan/pkg/types"
)

func sampleGraph() *tt.Graph {
	return &tt.Graph{
		Nodes: []*tt.Node{
			{Namespace: "pkg", Name: "Widget", Flavor: tt.Class, Filename: "pkg.py", Lineno: 1},
			{Namespace: "pkg.Widget", Name: "render", Flavor: tt.Method, Filename: "pkg.py", Lineno: 2},
		},
		Defines: []tt.Edge{{Source: "pkg.Widget", Target: "pkg.Widget.render"}},
		Uses:    []tt.Edge{{Source: "pkg.Widget.render", Target: "pkg.Widget"}},
	}
}

func TestWriteJSONRoundtrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleGraph()))

	var decoded tt.Graph
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Nodes, 2)
	assert.Equal(t, "Widget", decoded.Nodes[0].Name)
}

func TestWriteDotIncludesNodesAndEdges(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDot(&buf, sampleGraph(), DotOptions{DrawDefines: true, DrawUses: true})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "digraph callgraph {"))
	assert.Contains(t, out, `"pkg.Widget"`)
	assert.Contains(t, out, `"pkg.Widget.render"`)
	assert.Contains(t, out, `"pkg.Widget" -> "pkg.Widget.render" [style=dashed, color=grey];`)
	assert.Contains(t, out, `"pkg.Widget.render" -> "pkg.Widget";`)
}

func TestWriteDotOmitsDefinesWhenDisabled(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDot(&buf, sampleGraph(), DotOptions{DrawDefines: false, DrawUses: true})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "style=dashed")
}

func TestWriteDotAnnotateAddsLocation(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDot(&buf, sampleGraph(), DotOptions{Annotate: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `pkg.py:1`)
}

func TestWriteDotGroupByFileEmitsClusters(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDot(&buf, sampleGraph(), DotOptions{GroupByFile: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "subgraph cluster_0")
}
