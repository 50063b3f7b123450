package callgraph

import (
	"sort"

	tt "github.com/l3aro/gopyan/pkg/types"
)

// resolveImports is the supplemented phase that runs once both visitor
// passes are done: for every `from module import *` seen, it expands the
// wildcard into uses edges from the importing module to every top-level
// name module actually defines, now that every file has been visited and
// module contents are fully known. Plain and aliased imports are already
// resolved during the visitor passes and need no further work here.
func resolveImports(a *Analyzer, ctxs []*fileCtx) {
	for _, w := range a.pendingWildcards {
		importer, ok := a.reg.Lookup(parentNS(w.intoNamespace), leafName(w.intoNamespace))
		if !ok {
			continue
		}
		for _, n := range a.reg.AllNodes() {
			if n.Namespace == w.fromModule {
				e := tt.Edge{Source: importer.QualifiedName(), Target: n.QualifiedName()}
				if e.Source == e.Target || a.usesSeen[e] {
					continue
				}
				a.usesSeen[e] = true
				a.usesOut = append(a.usesOut, e)
			}
		}
	}
}

// postprocess runs spec.md §4.7's four steps: wildcard contraction,
// unknown removal, deduplication, and (left optional, exposed separately
// as PruneOrphans) orphan pruning.
func postprocess(a *Analyzer) {
	contractWildcards(a)
	removeUnknowns(a)
	a.definesOut = dedupEdges(a.definesOut)
	a.usesOut = dedupEdges(a.usesOut)
}

// contractWildcards rewrites every edge incident on an unknown node whose
// terminal name has exactly one concrete (non-Unknown) counterpart
// anywhere in the registry, per the "conservative: contract only when
// exactly one global candidate exists" reference behavior spec.md's Open
// Questions section settles on.
func contractWildcards(a *Analyzer) {
	replacement := map[string]string{} // unknown qualified name -> concrete qualified name
	for _, u := range a.reg.AllNodes() {
		if u.Flavor != tt.Unknown {
			continue
		}
		var candidate *tt.Node
		count := 0
		for _, c := range a.reg.ByName(u.Name) {
			if c.Flavor == tt.Unknown {
				continue
			}
			candidate = c
			count++
		}
		if count == 1 {
			replacement[u.QualifiedName()] = candidate.QualifiedName()
		}
	}
	if len(replacement) == 0 {
		return
	}
	rewrite := func(edges []tt.Edge) []tt.Edge {
		out := make([]tt.Edge, len(edges))
		for i, e := range edges {
			if r, ok := replacement[e.Source]; ok {
				e.Source = r
			}
			if r, ok := replacement[e.Target]; ok {
				e.Target = r
			}
			out[i] = e
		}
		return out
	}
	a.definesOut = rewrite(a.definesOut)
	a.usesOut = rewrite(a.usesOut)
}

// removeUnknowns deletes every remaining Unknown node — whatever wildcard
// contraction didn't resolve — along with every edge incident on it, so
// the postprocessed graph satisfies spec.md §3's "contains no unknown
// nodes" invariant.
func removeUnknowns(a *Analyzer) {
	unresolved := map[string]bool{}
	snapshot := append([]*tt.Node(nil), a.reg.AllNodes()...)
	for _, n := range snapshot {
		if n.Flavor == tt.Unknown {
			unresolved[n.QualifiedName()] = true
			a.reg.Remove(n)
		}
	}
	if len(unresolved) == 0 {
		return
	}
	keep := func(edges []tt.Edge) []tt.Edge {
		var out []tt.Edge
		for _, e := range edges {
			if unresolved[e.Source] || unresolved[e.Target] {
				continue
			}
			out = append(out, e)
		}
		return out
	}
	a.definesOut = keep(a.definesOut)
	a.usesOut = keep(a.usesOut)
}

// dedupEdges removes duplicate edges and sorts the result by
// (source, target) so the final graph's edge order is stable across runs,
// independent of map- and goroutine-free but still nondeterministic
// traversal order upstream.
func dedupEdges(edges []tt.Edge) []tt.Edge {
	seen := map[tt.Edge]bool{}
	var out []tt.Edge
	for _, e := range edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out
}

// PruneOrphans drops every node with no incident defines or uses edge —
// spec.md §4.7 step 4, left optional there and exposed here as a
// caller-invoked pass rather than folded into postprocess, so a graph
// that genuinely has isolated definitions (an unused helper function, say)
// can still be inspected before pruning.
func PruneOrphans(g *tt.Graph) *tt.Graph {
	connected := map[string]bool{}
	for _, e := range g.Defines {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	for _, e := range g.Uses {
		connected[e.Source] = true
		connected[e.Target] = true
	}
	out := &tt.Graph{Defines: g.Defines, Uses: g.Uses, Errors: g.Errors}
	for _, n := range g.Nodes {
		if connected[n.QualifiedName()] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	return out
}
