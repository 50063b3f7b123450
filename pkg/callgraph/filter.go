package callgraph

import (
	tt "github.com/l3aro/gopyan/pkg/types"
)

// Filter narrows a completed graph to the forward- and/or
// backward-reachable neighborhood of seeds, optionally bounded to depth
// hops (depth <= 0 means unbounded) — grounded on
// pyan.analyzer.CallGraphVisitor.filter()/get_related_nodes(), which
// restrict a computed graph to a seed set's neighborhood the same way.
// includeDefines controls whether defines edges survive into the result
// at all (pyan's --no-defines).
func Filter(g *tt.Graph, seeds []tt.Key, forward, backward bool, depth int, includeDefines bool) *tt.Graph {
	out := &tt.Graph{Errors: g.Errors}

	keep := map[string]bool{}
	if len(seeds) == 0 {
		for _, n := range g.Nodes {
			keep[n.QualifiedName()] = true
		}
	} else {
		adjFwd, adjBack := buildAdjacency(g.Uses)
		for _, s := range seeds {
			start := s.Name
			if s.Namespace != "" {
				start = s.Namespace + "." + s.Name
			}
			if forward {
				bfs(start, adjFwd, keep, depth)
			}
			if backward {
				bfs(start, adjBack, keep, depth)
			}
			keep[start] = true
		}
	}

	for _, n := range g.Nodes {
		if keep[n.QualifiedName()] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Uses {
		if keep[e.Source] && keep[e.Target] {
			out.Uses = append(out.Uses, e)
		}
	}
	if includeDefines {
		for _, e := range g.Defines {
			if keep[e.Source] && keep[e.Target] {
				out.Defines = append(out.Defines, e)
			}
		}
	}
	return out
}

func buildAdjacency(edges []tt.Edge) (fwd, back map[string][]string) {
	fwd = make(map[string][]string)
	back = make(map[string][]string)
	for _, e := range edges {
		fwd[e.Source] = append(fwd[e.Source], e.Target)
		back[e.Target] = append(back[e.Target], e.Source)
	}
	return
}

// bfs marks every node reachable from start within depth hops (depth<=0
// means unbounded) as kept.
func bfs(start string, adj map[string][]string, keep map[string]bool, depth int) {
	type item struct {
		node string
		d    int
	}
	queue := []item{{start, 0}}
	keep[start] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth > 0 && cur.d >= depth {
			continue
		}
		for _, next := range adj[cur.node] {
			if !keep[next] {
				keep[next] = true
				queue = append(queue, item{next, cur.d + 1})
			}
		}
	}
}
