package callgraph

import (
	tt "github.com/l3aro/gopyan/pkg/types"
)

// Binding is the value bound to a name in a scope's Defs map. Most bindings
// carry a single Node; a tuple-unpacking assignment whose right-hand side
// is ambiguous (e.g. unpacking a call result) instead carries a Set of
// candidate nodes, all of which gain a uses edge when the name is read —
// spec.md §4.4's "cartesian" fallback for unpacking it cannot bind
// positionally.
type Binding struct {
	Node       *tt.Node
	Set        []*tt.Node
	Unresolved bool

	// Ordered carries one candidate per RHS position for a literal
	// tuple/list-display right-hand side (spec.md §4.4's positional
	// unpacking form), so bindUnpacking can match target positions exactly
	// instead of falling back to the cartesian strategy. An entry is nil
	// where that position's value has no trackable identity.
	Ordered []*tt.Node
}

func bindNode(n *tt.Node) *Binding   { return &Binding{Node: n} }
func bindSet(ns []*tt.Node) *Binding { return &Binding{Set: ns} }
func bindUnresolved() *Binding       { return &Binding{Unresolved: true} }

// bindOrdered wraps a positional candidate list. Set is populated with the
// non-nil entries so a direct read of the binding (no unpacking) still
// behaves like the cartesian/ambiguous case.
func bindOrdered(ordered []*tt.Node) *Binding {
	return &Binding{Ordered: ordered, Set: nonNilNodes(ordered)}
}

func nonNilNodes(ns []*tt.Node) []*tt.Node {
	var out []*tt.Node
	for _, n := range ns {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// Nodes flattens a binding to the list of nodes a use of it should connect
// to — a single-element slice for a plain binding, the full candidate set
// for an ambiguous unpacking, or nil for an unresolved/empty binding.
func (b *Binding) Nodes() []*tt.Node {
	if b == nil {
		return nil
	}
	if b.Node != nil {
		return []*tt.Node{b.Node}
	}
	return b.Set
}

// Scope is one lexical scope's live binding state during the visitor
// passes: the current value of every name defined in or visible from this
// scope. A single Scope object is created per module, class and function
// body and reused across both visitor passes (spec.md §4.3), so a name's
// binding set in pass two reflects every assignment seen in pass one plus
// pass two up to the current point. Lambda and comprehension scopes are
// created afresh each time the visitor reaches them.
type Scope struct {
	Key   string
	Table *SymbolTable

	// Defs holds the current binding for every name this scope can resolve
	// without falling through to an enclosing scope — i.e. every parameter
	// and every name the symbol table says is bound here, except names
	// declared global/nonlocal, which resolve in an enclosing scope.
	Defs map[string]*Binding
}

// NewScope creates an empty scope for the given fully-qualified key
// (e.g. "pkg.mod.MyClass.my_method"), seeding Defs with one empty entry per
// locally-bound name from its symbol table so Stack.find can recognize the
// name as belonging to this scope before it is ever assigned.
func NewScope(key string, table *SymbolTable) *Scope {
	sc := &Scope{Key: key, Table: table, Defs: make(map[string]*Binding)}
	if table != nil {
		for name, flags := range table.Symbols {
			if flags.Bound && !flags.Global && !flags.Nonlocal {
				sc.Defs[name] = nil
			} else if flags.Parameter {
				sc.Defs[name] = nil
			}
		}
	}
	return sc
}

// Stack is the chain of enclosing scopes active at the point the visitor
// currently sits, innermost last — the run-time analogue of Python's LEGB
// name resolution (Local, Enclosing, Global, Builtin; Builtin is out of
// scope per spec.md's Non-goals).
type Stack struct {
	frames []*Scope
}

// NewStack returns an empty scope stack.
func NewStack() *Stack { return &Stack{} }

func (s *Stack) Push(sc *Scope) { s.frames = append(s.frames, sc) }

func (s *Stack) Pop() *Scope {
	if len(s.frames) == 0 {
		return nil
	}
	sc := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return sc
}

func (s *Stack) Current() *Scope {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// find walks the stack from innermost to outermost looking for a scope
// whose Defs map has an entry (possibly nil) for name; class scopes are
// skipped except when they are the innermost frame, matching Python's rule
// that a class body does not contribute to the enclosing-scope chain seen
// by nested functions.
func (s *Stack) find(name string, skipClassUnlessInnermost bool) *Scope {
	for i := len(s.frames) - 1; i >= 0; i-- {
		sc := s.frames[i]
		if skipClassUnlessInnermost && sc.Table != nil && sc.Table.Kind == "class" && i != len(s.frames)-1 {
			continue
		}
		if _, ok := sc.Defs[name]; ok {
			return sc
		}
	}
	return nil
}

// Get resolves a name read: the innermost scope (per LEGB, class bodies
// opaque to nested functions) that declares the name, and its current
// binding. A declared-but-never-assigned name (e.g. referenced before
// first assignment in its own scope, or a bare global/nonlocal declaration
// whose home scope hasn't assigned yet) resolves with a nil Binding.
func (s *Stack) Get(name string) (*Scope, *Binding) {
	sc := s.find(name, true)
	if sc == nil {
		return nil, nil
	}
	return sc, sc.Defs[name]
}

// Set stores a binding for name in the innermost scope that declares it
// (its "home" per the symbol table, honoring global/nonlocal), falling
// back to the current scope if no declaring scope is found — e.g. an
// attribute-chain or comprehension target the symbol table pre-scan
// under-counts.
func (s *Stack) Set(name string, b *Binding) {
	sc := s.find(name, true)
	if sc == nil {
		sc = s.Current()
	}
	if sc == nil {
		return
	}
	sc.Defs[name] = b
}

// ScopeTable is the analysis-wide registry of Scope objects keyed by their
// fully-qualified name, persisting across both visitor passes — the
// equivalent of pyan's self.scopes dict built once by analyze_scopes.
type ScopeTable struct {
	byKey map[string]*Scope
}

func NewScopeTable() *ScopeTable {
	return &ScopeTable{byKey: make(map[string]*Scope)}
}

func (t *ScopeTable) GetOrCreate(key string, table *SymbolTable) *Scope {
	if sc, ok := t.byKey[key]; ok {
		return sc
	}
	sc := NewScope(key, table)
	t.byKey[key] = sc
	return sc
}

func (t *ScopeTable) Lookup(key string) (*Scope, bool) {
	sc, ok := t.byKey[key]
	return sc, ok
}
