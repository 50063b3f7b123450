package callgraph

import (
	sitter "github.com/smacker/go-tree-sitter"
	tt "github.com/l3aro/gopyan/pkg/types"
)

// evalExpr evaluates an expression node to the Binding a name bound to it
// would carry, recording uses edges for anything read along the way.
// Unhandled or unresolvable expression shapes return an unresolved
// Binding rather than failing the analysis — spec.md §7 treats semantic
// ambiguity as "best effort, never a hard error".
func (a *Analyzer) evalExpr(n *sitter.Node) *Binding {
	if n == nil {
		return bindUnresolved()
	}
	switch n.Type() {
	case "identifier":
		return a.evalIdentifier(n)
	case "attribute":
		return a.evalAttributeExpr(n)
	case "call":
		return a.evalCall(n)
	case "parenthesized_expression":
		return a.evalExpr(firstNamedChild(n))
	case "conditional_expression":
		// `a if cond else b`: value is ambiguous between both arms.
		left := fieldOrNamedChild(n, "consequence")
		right := fieldOrNamedChild(n, "alternative")
		lb, rb := a.evalExpr(left), a.evalExpr(right)
		return bindSet(append(lb.Nodes(), rb.Nodes()...))
	case "boolean_operator":
		left := fieldOrNamedChild(n, "left")
		right := fieldOrNamedChild(n, "right")
		lb, rb := a.evalExpr(left), a.evalExpr(right)
		return bindSet(append(lb.Nodes(), rb.Nodes()...))
	case "named_expression":
		val := a.evalExpr(fieldOrNamedChild(n, "value"))
		name := fieldOrNamedChild(n, "name")
		if name != nil {
			a.stack.Set(nodeText(name, a.src), val)
		}
		return val
	case "tuple", "expression_list", "list":
		return a.evalOrderedSequence(n)
	default:
		if isLiteralNode(n) {
			return bindUnresolved()
		}
		// Subscript, binary/unary ops, comprehensions, lambdas, f-strings,
		// etc: visit for nested uses, but the expression's own value isn't
		// tracked as an object identity.
		a.visitExprForUses(n)
		return bindUnresolved()
	}
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			return c
		}
	}
	return nil
}

func (a *Analyzer) evalIdentifier(n *sitter.Node) *Binding {
	name := nodeText(n, a.src)
	if name == "super" {
		return bindUnresolved()
	}
	if a.isSelfParam(name) && a.currentClass != nil {
		a.recordUse(a.currentClass)
		return bindNode(a.currentClass)
	}
	_, b := a.stack.Get(name)
	if b != nil && (b.Node != nil || len(b.Set) > 0) {
		for _, node := range b.Nodes() {
			a.recordUse(node)
		}
		return b
	}
	// Suppress unknown-node creation only when name is bound locally (and
	// not declared global/nonlocal) in the innermost scope currently being
	// visited — a read-before-assignment of a name about to become local
	// there, not an error. This mirrors pyan's check against
	// self.scope_stack[-1].locals, the *current* frame only: a free read of
	// an enclosing function's not-yet-assigned local still gets an unknown
	// node and a uses edge, since that name isn't local here.
	cur := a.stack.Current()
	if cur != nil && cur.Table != nil && cur.Table.IsLocalOnly(name) {
		return bindUnresolved()
	}
	// Free reference: not locally suppressed — attribute it to an unknown
	// node under the bare name, the wildcard-import convention.
	n2 := a.unknown(name)
	a.recordUse(n2)
	return bindNode(n2)
}

// evalOrderedSequence evaluates a literal tuple/list-display RHS
// (`a, b = x, y`) into a positional candidate list: one entry per element,
// using the first node of an ambiguous element's binding and nil where the
// element carries no trackable identity at all. bindUnpacking consumes this
// to match unpacking targets by position instead of falling back to the
// cartesian strategy (spec.md §4.4 Scenario 5).
func (a *Analyzer) evalOrderedSequence(n *sitter.Node) *Binding {
	var elems []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			elems = append(elems, c)
		}
	}
	ordered := make([]*tt.Node, len(elems))
	for i, el := range elems {
		nodes := a.evalExpr(el).Nodes()
		if len(nodes) > 0 {
			ordered[i] = nodes[0]
		}
	}
	return bindOrdered(ordered)
}

// nodeBinding wraps a single ordered-sequence candidate, which may be nil
// where that position carried no trackable identity.
func nodeBinding(n *tt.Node) *Binding {
	if n == nil {
		return bindUnresolved()
	}
	return bindNode(n)
}

// isSelfParam reports whether name is the first parameter of the method
// currently being visited (conventionally "self", but Python does not
// require that spelling).
func (a *Analyzer) isSelfParam(name string) bool {
	return a.currentSelfName != "" && name == a.currentSelfName
}

func (a *Analyzer) evalAttributeExpr(n *sitter.Node) *Binding {
	objExpr := fieldOrNamedChild(n, "object")
	attrNode := fieldOrNamedChild(n, "attribute")
	if attrNode == nil {
		return bindUnresolved()
	}
	attrName := nodeText(attrNode, a.src)

	objBinding := a.evalExpr(objExpr)
	var results []*tt.Node
	for _, obj := range objBinding.Nodes() {
		if n, ok := a.attrs.GetAttribute(obj, attrName); ok {
			results = append(results, n)
		} else {
			un := a.unknown(attrName)
			results = append(results, un)
		}
	}
	if len(results) == 0 {
		un := a.unknown(attrName)
		results = append(results, un)
	}
	for _, r := range results {
		a.recordUse(r)
	}
	if len(results) == 1 {
		return bindNode(results[0])
	}
	return bindSet(results)
}

func (a *Analyzer) evalCall(n *sitter.Node) *Binding {
	fn := fieldOrNamedChild(n, "function")
	args := extractCallArgs(n, a.src)

	if fn != nil && fn.Type() == "identifier" && nodeText(fn, a.src) == "super" {
		base := a.attrs.SuperBase(a.currentClass)
		for _, pos := range args.Positional {
			a.visitExprForUses(pos)
		}
		if base == nil {
			return bindUnresolved()
		}
		return bindNode(base)
	}

	callee := a.evalExpr(fn)
	for _, pos := range args.Positional {
		a.visitExprForUses(pos)
	}
	for _, kw := range args.Keyword {
		a.visitExprForUses(kw)
	}
	// Calling a class constructs an instance of it; pyan tracks attribute
	// access against the class node itself rather than a distinct instance
	// identity, so the call's value is the same node(s) its callee bound to.
	return callee
}

// visitExprForUses walks an expression purely for its nested name/attribute
// reads (e.g. inside subscripts, binary operators, f-strings, comprehension
// bodies) without trying to track the expression's own resulting identity.
func (a *Analyzer) visitExprForUses(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier", "attribute", "call", "named_expression":
		a.evalExpr(n)
		return
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		a.visitComprehension(n)
		return
	case "lambda":
		a.visitLambda(n)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		a.visitExprForUses(n.Child(i))
	}
}
