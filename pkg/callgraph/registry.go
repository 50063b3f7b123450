package callgraph

import (
	tt "github.com/l3aro/gopyan/pkg/types"
)

// Registry interns every node by its (namespace, name) key so that two
// definition sites sharing a qualified name collapse into one *types.Node,
// and upgrades a node's flavor in place when a more specific definition is
// seen later. Mirrors pyan.analyzer.CallGraphVisitor.get_node.
//
// The analyzer drives this single-threaded (spec.md §5: parsing may run
// concurrently, but binding and the two visitor passes share one writer),
// so no locking is done here.
type Registry struct {
	byKey map[tt.Key]*tt.Node
	order []*tt.Node

	// byName indexes nodes by bare name only, across all namespaces — used
	// by wildcard contraction in postprocessing,
	// mirroring pyan's self.nodes[name] list-of-candidates map.
	byName map[string][]*tt.Node

	// moduleFile maps a module namespace to the source file it was parsed
	// from, so nodes created lazily (e.g. an unknown referenced before its
	// defining module is visited) still get a Filename once known.
	moduleFile map[string]string

	currentFile string
}

// NewRegistry returns an empty node registry.
func NewRegistry() *Registry {
	return &Registry{
		byKey:      make(map[tt.Key]*tt.Node),
		byName:     make(map[string][]*tt.Node),
		moduleFile: make(map[string]string),
	}
}

// SetCurrentFile tells the registry which source file subsequent
// GetOrCreate calls without an explicit filename should attribute nodes to.
func (r *Registry) SetCurrentFile(filename string) {
	r.currentFile = filename
}

// SetModuleFile records the file a module-level namespace was defined in.
func (r *Registry) SetModuleFile(namespace, filename string) {
	r.moduleFile[namespace] = filename
}

// GetOrCreate returns the existing node for (namespace, name), upgrading
// its flavor if flavor is more specific than what is on file, and marking
// it Defined and recording the given position (when lineno is non-zero)
// whenever markDefined is true.
// A freshly created node is marked Defined only when markDefined is true —
// callers creating nodes for uses of an as-yet-unseen name pass false.
func (r *Registry) GetOrCreate(namespace, name string, flavor tt.Flavor, lineno, col int, markDefined bool) *tt.Node {
	key := tt.Key{Namespace: namespace, Name: name}
	if n, ok := r.byKey[key]; ok {
		if flavor.MoreSpecificThan(n.Flavor) {
			n.Flavor = flavor
		}
		if markDefined {
			n.Defined = true
			if lineno != 0 {
				n.Lineno = lineno
				n.Col = col
			}
		}
		return n
	}
	filename := r.currentFile
	if f, ok := r.moduleFile[namespace]; ok {
		filename = f
	}
	n := &tt.Node{
		Namespace: namespace,
		Name:      name,
		Flavor:    flavor,
		Filename:  filename,
		Lineno:    lineno,
		Col:       col,
		Defined:   markDefined,
	}
	r.byKey[key] = n
	r.order = append(r.order, n)
	r.byName[name] = append(r.byName[name], n)
	return n
}

// Lookup returns the node for (namespace, name) if it has been created.
func (r *Registry) Lookup(namespace, name string) (*tt.Node, bool) {
	n, ok := r.byKey[tt.Key{Namespace: namespace, Name: name}]
	return n, ok
}

// ByName returns every node (in any namespace) with the given bare name,
// in creation order — pyan's "candidate set" for wildcard resolution.
func (r *Registry) ByName(name string) []*tt.Node {
	return r.byName[name]
}

// AllNodes returns every interned node in creation order.
func (r *Registry) AllNodes() []*tt.Node {
	return r.order
}

// Remove deletes a node from the registry entirely — used by postprocess's
// unknown-removal pass.
func (r *Registry) Remove(n *tt.Node) {
	key := tt.Key{Namespace: n.Namespace, Name: n.Name}
	delete(r.byKey, key)
	for i, x := range r.order {
		if x == n {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	list := r.byName[n.Name]
	for i, x := range list {
		if x == n {
			r.byName[n.Name] = append(list[:i], list[i+1:]...)
			break
		}
	}
}

// ParentNamespace returns the namespace a node's own namespace lives in
// (i.e. strips the last dotted component), or "" if n is top-level.
// Used by walkUpNamespace to resolve relative imports.
func ParentNamespace(namespace string) string {
	for i := len(namespace) - 1; i >= 0; i-- {
		if namespace[i] == '.' {
			return namespace[:i]
		}
	}
	return ""
}
