package callgraph

import (
	sitter "github.com/smacker/go-tree-sitter"

	tt "github.com/l3aro/gopyan/pkg/types"
)

// visitBlock visits every statement of a module or suite body in order.
func (a *Analyzer) visitBlock(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		a.visitStatement(n.Child(i))
	}
}

func (a *Analyzer) visitStatement(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition":
		a.visitFunctionDef(n, nil)
	case "decorated_definition":
		a.visitDecoratedDef(n)
	case "class_definition":
		a.visitClassDef(n)
	case "expression_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			a.visitExprStatementChild(n.Child(i))
		}
	case "assignment":
		a.visitAssignment(n)
	case "augmented_assignment":
		a.visitAugmentedAssignment(n)
	case "return_statement", "yield":
		for i := 0; i < int(n.ChildCount()); i++ {
			a.visitExprForUses(n.Child(i))
		}
	case "for_statement":
		a.visitFor(n)
	case "while_statement":
		a.visitChildrenGeneric(n)
	case "if_statement":
		a.visitChildrenGeneric(n)
	case "with_statement":
		a.visitWith(n)
	case "try_statement":
		a.visitChildrenGeneric(n)
	case "except_clause":
		a.visitExceptClause(n)
	case "import_statement", "import_from_statement":
		a.visitImport(n)
	case "del_statement":
		a.visitDel(n)
	case "match_statement":
		a.visitMatch(n)
	case "global_statement", "nonlocal_statement", "pass_statement", "break_statement", "continue_statement":
		// handled by the symbol-table pre-scan; nothing to bind here.
	case "assert_statement", "raise_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			a.visitExprForUses(n.Child(i))
		}
	case "type_alias_statement":
		a.visitTypeAlias(n)
	case "block":
		a.visitBlock(n)
	default:
		a.visitChildrenGeneric(n)
	}
}

// visitChildrenGeneric recurses into a statement's children as a fallback
// for constructs without target-binding semantics of their own (if/while
// conditions, try bodies, elif/else suites).
func (a *Analyzer) visitChildrenGeneric(n *sitter.Node) {
	cond := fieldOrNamedChild(n, "condition")
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "block" {
			a.visitBlock(c)
		} else if cond != nil && c == cond {
			a.visitExprForUses(c)
		} else if c.IsNamed() {
			a.visitStatement(c)
		}
	}
}

func (a *Analyzer) visitExprStatementChild(n *sitter.Node) {
	switch n.Type() {
	case "assignment":
		a.visitAssignment(n)
	case "augmented_assignment":
		a.visitAugmentedAssignment(n)
	default:
		a.visitExprForUses(n)
	}
}

// --- function / class definitions ---

func (a *Analyzer) visitFunctionDef(n *sitter.Node, decorators []*sitter.Node) {
	nameNode := fieldOrNamedChild(n, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, a.src)
	lineno, col := a.lineCol(n)

	kind := tt.Method
	if a.currentClass == nil {
		kind = tt.Function
	} else if hasDecoratorNamed(decorators, a.src, "staticmethod") {
		kind = tt.StaticMethod
	} else if hasDecoratorNamed(decorators, a.src, "classmethod") {
		kind = tt.ClassMethod
	}

	fnNode := a.reg.GetOrCreate(a.currentNamespace, name, kind, lineno, col, a.pass == 1)
	fnNode.Async = isAsyncDef(n)
	parent := a.currentDef()
	a.recordDefine(parent, fnNode)
	a.stack.Set(name, bindNode(fnNode))

	table := a.tableFor(n)
	scopeKey := a.qualify(name)
	scope := a.scopes.GetOrCreate(scopeKey, table)

	savedNS, savedTableIdx, savedSelf := a.currentNamespace, a.currentTableIdx, a.currentSelfName
	a.currentNamespace = scopeKey
	a.pushDef(fnNode)
	a.stack.Push(scope)

	params := fieldOrNamedChild(n, "parameters")
	a.bindParameters(params, kind)

	body := fieldOrNamedChild(n, "body")
	a.visitBlock(body)

	a.stack.Pop()
	a.popDef()
	a.currentNamespace, a.currentTableIdx, a.currentSelfName = savedNS, savedTableIdx, savedSelf
}

func (a *Analyzer) bindParameters(params *sitter.Node, kind tt.Flavor) {
	plist := extractParameters(params, a.src)
	first := true
	for _, p := range plist {
		if p.Kind == ParamKeywordOnlyMarker || p.Kind == ParamPositionalOnlyMarker {
			continue
		}
		if p.Default != nil {
			a.visitExprForUses(p.Default)
		}
		if first && (kind == tt.Method || kind == tt.ClassMethod) {
			a.currentSelfName = p.Name
			first = false
			continue
		}
		first = false
		a.stack.Set(p.Name, bindUnresolved())
	}
}

func hasDecoratorNamed(decorators []*sitter.Node, src []byte, name string) bool {
	for _, d := range decorators {
		if decoratorName(d, src) == name {
			return true
		}
	}
	return false
}

func (a *Analyzer) visitDecoratedDef(n *sitter.Node) {
	var decorators []*sitter.Node
	var def *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "decorator" {
			decorators = append(decorators, c)
		} else if c.Type() == "function_definition" || c.Type() == "class_definition" {
			def = c
		}
	}
	for _, d := range decorators {
		for j := 0; j < int(d.ChildCount()); j++ {
			a.visitExprForUses(d.Child(j))
		}
	}
	if def == nil {
		return
	}
	if def.Type() == "class_definition" {
		a.visitClassDef(def)
		return
	}
	a.visitFunctionDef(def, decorators)
}

func (a *Analyzer) visitClassDef(n *sitter.Node) {
	nameNode := fieldOrNamedChild(n, "name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, a.src)
	lineno, col := a.lineCol(n)

	classNode := a.reg.GetOrCreate(a.currentNamespace, name, tt.Class, lineno, col, a.pass == 1)
	parent := a.currentDef()
	a.recordDefine(parent, classNode)
	a.stack.Set(name, bindNode(classNode))

	// Base classes are resolved in the enclosing scope, before entering the
	// class body's own namespace.
	var baseNodes []*tt.Node
	for _, baseExpr := range extractBases(n, a.src) {
		b := a.evalExpr(baseExpr)
		for _, bn := range b.Nodes() {
			baseNodes = append(baseNodes, bn)
			a.recordUse(bn)
		}
	}
	a.classes.AddBases(classNode, baseNodes)

	table := a.tableFor(n)
	scopeKey := a.qualify(name)
	scope := a.scopes.GetOrCreate(scopeKey, table)

	savedNS, savedTableIdx, savedClass, savedSelf := a.currentNamespace, a.currentTableIdx, a.currentClass, a.currentSelfName
	a.currentNamespace = scopeKey
	a.currentClass = classNode
	a.currentSelfName = ""
	a.pushDef(classNode)
	a.stack.Push(scope)

	body := fieldOrNamedChild(n, "body")
	a.visitBlock(body)

	a.stack.Pop()
	a.popDef()
	a.currentNamespace, a.currentTableIdx, a.currentClass, a.currentSelfName = savedNS, savedTableIdx, savedClass, savedSelf
}

// --- assignment / binding targets ---

// visitAssignment binds every target of a (possibly chained) assignment to
// the single innermost right-hand side value. tree-sitter-python nests a
// chain like `a = b = c = expr` as assignment(left=a,
// right=assignment(left=b, right=assignment(left=c, right=expr))), so this
// walks down through nested "assignment" nodes collecting every left before
// evaluating the one real RHS, per spec.md §4.4's chained-assignment form.
func (a *Analyzer) visitAssignment(n *sitter.Node) {
	var lefts []*sitter.Node
	cur := n
	for {
		left := fieldOrNamedChild(cur, "left")
		right := fieldOrNamedChild(cur, "right")
		typ := fieldOrNamedChild(cur, "type")
		if typ != nil {
			a.visitExprForUses(typ)
		}
		lefts = append(lefts, left)

		if right != nil && right.Type() == "assignment" {
			cur = right
			continue
		}

		val := bindUnresolved()
		if right != nil {
			val = a.evalExpr(right)
		}
		for _, l := range lefts {
			a.bindTarget(l, val)
		}
		return
	}
}

func (a *Analyzer) visitAugmentedAssignment(n *sitter.Node) {
	left := fieldOrNamedChild(n, "left")
	right := fieldOrNamedChild(n, "right")
	a.visitExprForUses(left)
	val := a.evalExpr(right)
	a.bindTarget(left, val)
}

// bindTarget binds value to an assignment target, handling plain names,
// tuple/list unpacking (with at most one starred element bound the whole
// remainder, per spec.md §4.4), and attribute targets — which, when the
// object resolves to the enclosing class (self.x = ...) or another
// class/module/namespace node, define a class- or module-level attribute
// node rather than merely binding a local name.
func (a *Analyzer) bindTarget(target *sitter.Node, value *Binding) {
	if target == nil {
		return
	}
	switch target.Type() {
	case "identifier":
		name := nodeText(target, a.src)
		a.stack.Set(name, value)
		if a.currentClass != nil && a.inClassBodyDirectly() {
			a.defineAttribute(a.currentClass, name, target, value)
		}
	case "pattern_list", "tuple_pattern", "list_pattern", "tuple", "list":
		a.bindUnpacking(target, value)
	case "attribute":
		a.bindAttributeTarget(target, value)
	case "subscript":
		// obj[key] = value: uses obj and key, no new identity is bound.
		a.visitExprForUses(fieldOrNamedChild(target, "value"))
		a.visitExprForUses(fieldOrNamedChild(target, "subscript"))
	default:
		a.visitExprForUses(target)
	}
}

// inClassBodyDirectly reports whether the current def node (the uses-edge
// source) is the class itself — i.e. we are executing a class-body
// statement, not inside one of its methods.
func (a *Analyzer) inClassBodyDirectly() bool {
	return a.currentDef() == a.currentClass
}

func (a *Analyzer) defineAttribute(owner *tt.Node, name string, site *sitter.Node, value *Binding) {
	lineno, col := a.lineCol(site)
	ns := owner.QualifiedName()
	attrNode := a.reg.GetOrCreate(ns, name, tt.Name, lineno, col, a.pass == 1)
	a.recordDefine(owner, attrNode)
	_ = value
}

func (a *Analyzer) bindAttributeTarget(target *sitter.Node, value *Binding) {
	objExpr := fieldOrNamedChild(target, "object")
	attrNode := fieldOrNamedChild(target, "attribute")
	if attrNode == nil {
		return
	}
	attrName := nodeText(attrNode, a.src)
	objBinding := a.evalExpr(objExpr)
	for _, obj := range objBinding.Nodes() {
		switch obj.Flavor {
		case tt.Class, tt.Module, tt.Namespace:
			a.defineAttribute(obj, attrName, target, value)
		}
	}
}

// bindUnpacking distributes value across a tuple/list pattern. When value
// carries an ordered positional candidate list (a literal tuple/list RHS),
// it is matched against target positions exactly, a starred element taking
// whatever falls in the middle (spec.md §4.4 Scenario 5: `a, *b, c = x, y,
// z, w` -> a->x, c->w, b->{y,z}). Otherwise falls back to the cartesian
// strategy: a single starred element receives the whole candidate set (it
// can't be split positionally); plain elements line up positionally only
// when the candidate count matches exactly and there is no star.
func (a *Analyzer) bindUnpacking(target *sitter.Node, value *Binding) {
	var elems []*sitter.Node
	for i := 0; i < int(target.ChildCount()); i++ {
		c := target.Child(i)
		if c.IsNamed() {
			elems = append(elems, c)
		}
	}
	if value.Ordered != nil {
		a.bindUnpackingOrdered(elems, value.Ordered)
		return
	}
	a.bindUnpackingCartesian(elems, value.Nodes())
}

// bindUnpackingOrdered matches elems against an ordered positional
// candidate list by index: elements before a starred element take the
// matching leading candidates, elements after it take the matching
// trailing candidates, and the starred element collects whatever remains
// in the middle. Falls back to the cartesian strategy when the candidate
// count can't satisfy every fixed position.
func (a *Analyzer) bindUnpackingOrdered(elems []*sitter.Node, ordered []*tt.Node) {
	starIdx := -1
	for i, e := range elems {
		if e.Type() == "list_splat_pattern" {
			starIdx = i
			break
		}
	}

	if starIdx == -1 {
		if len(ordered) != len(elems) {
			a.bindUnpackingCartesian(elems, nonNilNodes(ordered))
			return
		}
		for i, el := range elems {
			a.bindTarget(el, nodeBinding(ordered[i]))
		}
		return
	}

	nBefore := starIdx
	nAfter := len(elems) - starIdx - 1
	if len(ordered) < nBefore+nAfter {
		a.bindUnpackingCartesian(elems, nonNilNodes(ordered))
		return
	}
	for i := 0; i < nBefore; i++ {
		a.bindTarget(elems[i], nodeBinding(ordered[i]))
	}
	mid := ordered[nBefore : len(ordered)-nAfter]
	if inner := firstNamedChildOfType(elems[starIdx], "identifier"); inner != nil {
		a.bindTarget(inner, bindSet(nonNilNodes(mid)))
	}
	for i := 0; i < nAfter; i++ {
		a.bindTarget(elems[starIdx+1+i], nodeBinding(ordered[len(ordered)-nAfter+i]))
	}
}

// bindUnpackingCartesian is the ambiguous-RHS fallback: a single starred
// element receives the whole candidate set (it can't be split
// positionally); plain elements line up positionally when the candidate
// count matches exactly, falling back to the full candidate set for every
// element otherwise (spec.md §4.4's "cartesian" fallback).
func (a *Analyzer) bindUnpackingCartesian(elems []*sitter.Node, candidates []*tt.Node) {
	positional := len(candidates) == len(elems) && !hasStarred(elems)
	for i, el := range elems {
		if el.Type() == "list_splat_pattern" {
			inner := firstNamedChildOfType(el, "identifier")
			if inner != nil {
				a.bindTarget(inner, bindSet(candidates))
			}
			continue
		}
		if positional {
			a.bindTarget(el, bindNode(candidates[i]))
		} else {
			a.bindTarget(el, bindSet(candidates))
		}
	}
}

func hasStarred(elems []*sitter.Node) bool {
	for _, e := range elems {
		if e.Type() == "list_splat_pattern" {
			return true
		}
	}
	return false
}

// --- for / with / except / del / match / import ---

func (a *Analyzer) visitFor(n *sitter.Node) {
	left := fieldOrNamedChild(n, "left")
	right := fieldOrNamedChild(n, "right")
	iterBinding := a.evalExpr(right)
	async := isAsyncDef(n)
	a.wireIteratorProtocol(iterBinding, async)
	a.bindTarget(left, bindUnresolved())

	body := fieldOrNamedChild(n, "body")
	a.visitBlock(body)
	alt := fieldOrNamedChild(n, "alternative")
	if alt != nil {
		a.visitStatement(alt)
	}
}

// wireIteratorProtocol records uses edges for the dunder methods Python's
// for-loop (or async for) protocol invokes on the iterated object:
// __iter__/__next__, or __aiter__/__anext__ for async for.
func (a *Analyzer) wireIteratorProtocol(iterBinding *Binding, async bool) {
	iterMethod, nextMethod := "__iter__", "__next__"
	if async {
		iterMethod, nextMethod = "__aiter__", "__anext__"
	}
	for _, obj := range iterBinding.Nodes() {
		if n, ok := a.attrs.GetAttribute(obj, iterMethod); ok {
			a.recordUse(n)
		}
		if n, ok := a.attrs.GetAttribute(obj, nextMethod); ok {
			a.recordUse(n)
		}
	}
}

func (a *Analyzer) visitWith(n *sitter.Node) {
	async := isAsyncDef(n)
	enterMethod, exitMethod := "__enter__", "__exit__"
	if async {
		enterMethod, exitMethod = "__aenter__", "__aexit__"
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "with_clause" {
			a.visitWithClause(c, enterMethod, exitMethod)
		} else if c.Type() == "with_item" {
			a.visitWithItem(c, enterMethod, exitMethod)
		}
	}
	body := fieldOrNamedChild(n, "body")
	a.visitBlock(body)
}

func (a *Analyzer) visitWithClause(n *sitter.Node, enterMethod, exitMethod string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "with_item" {
			a.visitWithItem(c, enterMethod, exitMethod)
		}
	}
}

func (a *Analyzer) visitWithItem(n *sitter.Node, enterMethod, exitMethod string) {
	value := fieldOrNamedChild(n, "value")
	binding := a.evalExpr(value)
	for _, obj := range binding.Nodes() {
		if m, ok := a.attrs.GetAttribute(obj, enterMethod); ok {
			a.recordUse(m)
		}
		if m, ok := a.attrs.GetAttribute(obj, exitMethod); ok {
			a.recordUse(m)
		}
	}
	alias := fieldOrNamedChild(n, "alias")
	if alias != nil {
		a.bindTarget(alias, binding)
	}
}

func (a *Analyzer) visitExceptClause(n *sitter.Node) {
	var alias *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "identifier" && i == int(n.ChildCount())-2 {
			alias = c
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == alias {
			continue
		}
		if c.Type() == "block" {
			a.visitBlock(c)
		} else if c.IsNamed() {
			a.visitExprForUses(c)
		}
	}
	if alias != nil {
		a.stack.Set(nodeText(alias, a.src), bindUnresolved())
	}
}

func (a *Analyzer) visitDel(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		target := n.Child(i)
		if !target.IsNamed() {
			continue
		}
		switch target.Type() {
		case "attribute":
			obj := a.evalExpr(fieldOrNamedChild(target, "object"))
			for _, o := range obj.Nodes() {
				if m, ok := a.attrs.GetAttribute(o, "__delattr__"); ok {
					a.recordUse(m)
				}
			}
		case "subscript":
			obj := a.evalExpr(fieldOrNamedChild(target, "value"))
			for _, o := range obj.Nodes() {
				if m, ok := a.attrs.GetAttribute(o, "__delitem__"); ok {
					a.recordUse(m)
				}
			}
		default:
			a.visitExprForUses(target)
		}
	}
}

func (a *Analyzer) visitMatch(n *sitter.Node) {
	subject := fieldOrNamedChild(n, "subject")
	a.visitExprForUses(subject)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "case_clause" {
			a.visitCaseClause(c)
		}
	}
}

func (a *Analyzer) visitCaseClause(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "class_pattern":
			cls := firstNamedChild(c)
			if cls != nil {
				b := a.evalExpr(cls)
				for _, nd := range b.Nodes() {
					a.recordUse(nd)
				}
			}
		case "block":
			a.visitBlock(c)
		case "if_clause":
			a.visitExprForUses(c)
		}
	}
}

func (a *Analyzer) visitImport(n *sitter.Node) {
	for _, imp := range parseImportStatement(n, a.src, a.currentNamespace) {
		if imp.IsWildcard {
			if a.pass == 2 {
				a.pendingWildcards = append(a.pendingWildcards, wildcardImport{
					intoNamespace: a.currentNamespace,
					fromModule:    imp.WildcardModule,
				})
			}
			continue
		}
		targetNode := a.moduleOrSymbolNode(imp.Target)
		for _, bound := range imp.BoundNames {
			a.stack.Set(bound, bindNode(targetNode))
		}
	}
}

// moduleOrSymbolNode resolves a dotted import target to a node: an
// existing module/definition if the registry already has one (possibly
// filed under a different file visited earlier), or otherwise a
// Module-flavored placeholder node keyed (dotted, ""). Placeholders are
// not revisited after the passes; the second pass's lookup finds
// definitions from files visited later in the first pass.
func (a *Analyzer) moduleOrSymbolNode(dotted string) *tt.Node {
	if dotted == "" {
		return a.unknown("")
	}
	if n, ok := a.reg.Lookup(parentNS(dotted), leafName(dotted)); ok {
		return n
	}
	return a.reg.GetOrCreate(dotted, "", tt.Module, 0, 0, false)
}

func (a *Analyzer) visitTypeAlias(n *sitter.Node) {
	left := fieldOrNamedChild(n, "left")
	right := fieldOrNamedChild(n, "right")
	if left != nil {
		name := nodeText(left, a.src)
		node := a.reg.GetOrCreate(a.currentNamespace, name, tt.Name, 0, 0, a.pass == 1)
		a.recordDefine(a.currentDef(), node)
	}
	a.visitExprForUses(right)
}

// --- comprehensions / lambdas ---

func (a *Analyzer) visitComprehension(n *sitter.Node) {
	table := a.tableFor(n)
	// A comprehension gets its own scope for loop variables and the body,
	// but never its own graph node or uses-edge identity — reads and calls
	// inside it are attributed to the enclosing function/class/module, the
	// same as a for-loop body would be.
	compScope := NewScope(a.currentNamespace+".<comp>", table)
	a.stack.Push(compScope)

	var lastIterable *sitter.Node
	first := true
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() != "for_in_clause" {
			continue
		}
		left := fieldOrNamedChild(c, "left")
		right := fieldOrNamedChild(c, "right")
		if first {
			lastIterable = right
			first = false
		}
		iterBinding := a.evalExpr(right)
		a.wireIteratorProtocol(iterBinding, isAsyncDef(c))
		a.bindTarget(left, bindUnresolved())
	}
	_ = lastIterable
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "if_clause":
			a.visitExprForUses(c)
		}
	}
	body := fieldOrNamedChild(n, "body")
	if body == nil {
		body = firstNamedChild(n)
	}
	a.visitExprForUses(body)
	key1 := fieldOrNamedChild(n, "key")
	if key1 != nil {
		a.visitExprForUses(key1)
	}

	a.stack.Pop()
}

func (a *Analyzer) visitLambda(n *sitter.Node) {
	table := a.tableFor(n)
	scope := NewScope(a.currentNamespace+".<lambda>", table)
	a.stack.Push(scope)
	params := fieldOrNamedChild(n, "parameters")
	a.bindParameters(params, tt.Function)
	body := fieldOrNamedChild(n, "body")
	a.visitExprForUses(body)
	a.stack.Pop()
}

type wildcardImport struct {
	intoNamespace string
	fromModule    string
}
