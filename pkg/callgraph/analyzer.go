// Package callgraph builds a static call/uses graph for a set of Python
// source files: which functions, methods, and classes reference which
// others, at class granularity rather than per-instance. It walks each
// file's tree-sitter syntax tree twice — once to establish every
// definition and scope binding, once more to resolve uses now that
// forward references across the whole file set are known — the same
// two-pass shape as the analyzer this package's approach is grounded on.
package callgraph

import (
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/l3aro/gopyan/pkg/extractor"
	tt "github.com/l3aro/gopyan/pkg/types"
)

// Options configures one analysis run.
type Options struct {
	// Root is the directory file paths are made relative to when deriving
	// each file's dotted module namespace.
	Root string
}

// fileCtx holds everything the two visitor passes need for one source
// file, computed once up front.
type fileCtx struct {
	Filename  string
	Namespace string
	Root      *sitter.Node
	Src       []byte
	Table     *SymbolTable
	TableIdx  map[*sitter.Node]*SymbolTable
}

// Analyzer holds the state shared by both visitor passes across the whole
// file set: the node registry, scope table, class hierarchy, and the
// running edge lists.
type Analyzer struct {
	reg     *Registry
	scopes  *ScopeTable
	classes *ClassTable
	attrs   *AttributeResolver
	stack   *Stack

	src      []byte
	filename string
	pass     int

	currentClass     *tt.Node
	currentSelfName  string
	defStack         []*tt.Node
	currentTableIdx  map[*sitter.Node]*SymbolTable
	currentNamespace string

	definesSeen map[tt.Edge]bool
	usesSeen    map[tt.Edge]bool
	definesOut  []tt.Edge
	usesOut     []tt.Edge

	pendingWildcards []wildcardImport

	errors []tt.FileError
}

// Analyze parses every file, builds symbol tables, and runs the two
// visitor passes, returning the assembled graph. Parse failures on
// individual files are recorded as errors and do not abort the run
// (spec.md §7).
func Analyze(files []string, opts Options) (*tt.Graph, error) {
	parser := extractor.NewPythonParser()
	defer parser.Close()

	a := &Analyzer{
		reg:         NewRegistry(),
		scopes:      NewScopeTable(),
		classes:     NewClassTable(),
		stack:       NewStack(),
		definesSeen: make(map[tt.Edge]bool),
		usesSeen:    make(map[tt.Edge]bool),
	}
	a.attrs = NewAttributeResolver(a.reg, a.classes)

	var ctxs []*fileCtx
	for _, f := range files {
		tree, src, err := extractor.ParseFile(parser, f)
		if err != nil {
			a.errors = append(a.errors, tt.FileError{File: f, Err: err.Error()})
			continue
		}
		ns := modulePath(opts.Root, f)
		table := BuildSymbolTable(tree.RootNode(), src)
		ctxs = append(ctxs, &fileCtx{
			Filename:  f,
			Namespace: ns,
			Root:      tree.RootNode(),
			Src:       src,
			Table:     table,
			TableIdx:  IndexSymbolTables(table),
		})
		a.reg.SetModuleFile(ns, f)
	}

	for pass := 1; pass <= 2; pass++ {
		a.pass = pass
		for _, fc := range ctxs {
			a.visitFile(fc)
		}
	}

	resolveImports(a, ctxs)
	postprocess(a)

	graph := &tt.Graph{
		Nodes:   a.reg.AllNodes(),
		Defines: a.definesOut,
		Uses:    a.usesOut,
		Errors:  a.errors,
	}
	return graph, nil
}

// modulePath derives a file's dotted module namespace from its path
// relative to root, dropping a trailing "__init__" component the way
// Python package imports do.
func modulePath(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)
	for _, ext := range extractor.Extensions {
		if strings.HasSuffix(rel, ext) {
			rel = rel[:len(rel)-len(ext)]
			break
		}
	}
	parts := strings.Split(rel, "/")
	if len(parts) > 0 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	var clean []string
	for _, p := range parts {
		if p != "" && p != "." {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, ".")
}

func (a *Analyzer) visitFile(fc *fileCtx) {
	a.src = fc.Src
	a.filename = fc.Filename
	a.stack = NewStack()
	a.currentClass = nil
	a.currentSelfName = ""
	a.defStack = nil

	modNode := a.reg.GetOrCreate(parentNS(fc.Namespace), leafName(fc.Namespace), tt.Module, 0, 0, a.pass == 1)
	modNode.Filename = fc.Filename
	modScope := a.scopes.GetOrCreate(fc.Namespace, fc.Table)
	a.stack.Push(modScope)
	a.pushDef(modNode)

	a.currentTableIdx = fc.TableIdx
	a.currentNamespace = fc.Namespace
	a.visitBlock(fc.Root)

	a.popDef()
	a.stack.Pop()
}

func parentNS(dotted string) string {
	i := strings.LastIndex(dotted, ".")
	if i < 0 {
		return ""
	}
	return dotted[:i]
}

func leafName(dotted string) string {
	i := strings.LastIndex(dotted, ".")
	if i < 0 {
		return dotted
	}
	return dotted[i+1:]
}

func (a *Analyzer) pushDef(n *tt.Node)  { a.defStack = append(a.defStack, n) }
func (a *Analyzer) popDef() *tt.Node {
	if len(a.defStack) == 0 {
		return nil
	}
	n := a.defStack[len(a.defStack)-1]
	a.defStack = a.defStack[:len(a.defStack)-1]
	return n
}
func (a *Analyzer) currentDef() *tt.Node {
	if len(a.defStack) == 0 {
		return nil
	}
	return a.defStack[len(a.defStack)-1]
}

func (a *Analyzer) unknown(name string) *tt.Node {
	return a.reg.GetOrCreate("", name, tt.Unknown, 0, 0, false)
}

func (a *Analyzer) recordUse(target *tt.Node) {
	if a.pass != 2 || target == nil {
		return
	}
	src := a.currentDef()
	if src == nil {
		return
	}
	e := tt.Edge{Source: src.QualifiedName(), Target: target.QualifiedName()}
	if e.Source == e.Target {
		return
	}
	if a.usesSeen[e] {
		return
	}
	a.usesSeen[e] = true
	a.usesOut = append(a.usesOut, e)
}

func (a *Analyzer) recordDefine(parent, child *tt.Node) {
	if a.pass != 1 || parent == nil || child == nil {
		return
	}
	e := tt.Edge{Source: parent.QualifiedName(), Target: child.QualifiedName()}
	if a.definesSeen[e] {
		return
	}
	a.definesSeen[e] = true
	a.definesOut = append(a.definesOut, e)
}

// tableFor looks up the symbol table for a scope-opening syntax node
// within the file currently being visited.
func (a *Analyzer) tableFor(n *sitter.Node) *SymbolTable {
	return a.currentTableIdx[n]
}

func (a *Analyzer) qualify(name string) string {
	if a.currentNamespace == "" {
		return name
	}
	return a.currentNamespace + "." + name
}

func (a *Analyzer) lineCol(n *sitter.Node) (int, int) {
	if n == nil {
		return 0, 0
	}
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}
