// Package writer renders a computed call graph to the external formats
// spec.md treats as out-of-core collaborators: JSON (the graph's own
// shape, for tooling) and Graphviz dot (for the colorized/annotated
// rendering pyan itself produces).
package writer

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	tt "github.com/l3aro/gopyan/pkg/types"
)

// WriteJSON encodes the graph as indented JSON.
func WriteJSON(w io.Writer, g *tt.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}

// DotOptions controls the Graphviz rendering.
type DotOptions struct {
	DrawDefines bool
	DrawUses    bool
	ColorByFile bool
	Annotate    bool
	GroupByFile bool
}

// WriteDot renders the graph as a Graphviz dot digraph. Defines edges are
// drawn dashed/grey; uses edges solid/black — the same visual convention
// pyan's own dot writer uses.
func WriteDot(w io.Writer, g *tt.Graph, opts DotOptions) error {
	fmt.Fprintln(w, "digraph callgraph {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=filled, fontsize=10];")

	fileHue := map[string]int{}
	if opts.ColorByFile {
		files := map[string]bool{}
		for _, n := range g.Nodes {
			if n.Filename != "" {
				files[n.Filename] = true
			}
		}
		var sorted []string
		for f := range files {
			sorted = append(sorted, f)
		}
		sort.Strings(sorted)
		for i, f := range sorted {
			fileHue[f] = i
		}
	}

	if opts.GroupByFile {
		byFile := map[string][]*tt.Node{}
		var files []string
		for _, n := range g.Nodes {
			if _, ok := byFile[n.Filename]; !ok {
				files = append(files, n.Filename)
			}
			byFile[n.Filename] = append(byFile[n.Filename], n)
		}
		sort.Strings(files)
		for i, f := range files {
			fmt.Fprintf(w, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(w, "    label=%q;\n", f)
			for _, n := range byFile[f] {
				writeNode(w, n, opts, fileHue)
			}
			fmt.Fprintln(w, "  }")
		}
	} else {
		for _, n := range g.Nodes {
			writeNode(w, n, opts, fileHue)
		}
	}

	if opts.DrawDefines {
		for _, e := range g.Defines {
			fmt.Fprintf(w, "  %q -> %q [style=dashed, color=grey];\n", e.Source, e.Target)
		}
	}
	if opts.DrawUses {
		for _, e := range g.Uses {
			fmt.Fprintf(w, "  %q -> %q;\n", e.Source, e.Target)
		}
	}
	fmt.Fprintln(w, "}")
	return nil
}

func writeNode(w io.Writer, n *tt.Node, opts DotOptions, fileHue map[string]int) {
	label := n.Name
	if opts.Annotate && n.Filename != "" {
		label = fmt.Sprintf("%s\\n%s:%d", n.Name, n.Filename, n.Lineno)
	}
	color := "lightgrey"
	switch n.Flavor {
	case tt.Class:
		color = "lightblue"
	case tt.Module:
		color = "khaki"
	case tt.Function, tt.Method, tt.StaticMethod, tt.ClassMethod:
		color = "palegreen"
	}
	if opts.ColorByFile {
		if hue, ok := fileHue[n.Filename]; ok {
			color = fmt.Sprintf("%q", fmt.Sprintf("0.%02d 0.3 1.0", (hue*37)%100))
		}
	}
	fmt.Fprintf(w, "  %q [label=%q, fillcolor=%s];\n", n.QualifiedName(), label, color)
}
