package callgraph

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// SymbolFlags records what is known about one identifier's binding status
// within a single lexical scope, per spec.md §4.1: whether it is a
// parameter, declared global or nonlocal, or bound (assigned, imported, or
// defined somewhere in this scope). Free names (referenced but not bound
// here) are not recorded; a name that is only read has no entry.
type SymbolFlags struct {
	Parameter bool
	Global    bool
	Nonlocal  bool
	Bound     bool
}

// SymbolTable is the pre-scan record for one lexically distinct compound
// construct: module body, class body, function body, lambda, or
// comprehension. Go has no equivalent of Python's `symtable` module, so
// this is built directly from the tree-sitter CST by walking each scope's
// body once, stopping at nested scope boundaries.
type SymbolTable struct {
	Name     string
	Kind     string // "module", "class", "function", "lambda", "comprehension"
	Symbols  map[string]*SymbolFlags
	Children []*SymbolTable

	// Node is the syntax node that opens this scope (nil for the module).
	Node *sitter.Node
}

func newSymbolTable(name, kind string, node *sitter.Node) *SymbolTable {
	return &SymbolTable{
		Name:    name,
		Kind:    kind,
		Symbols: make(map[string]*SymbolFlags),
		Node:    node,
	}
}

func (t *SymbolTable) flags(name string) *SymbolFlags {
	f, ok := t.Symbols[name]
	if !ok {
		f = &SymbolFlags{}
		t.Symbols[name] = f
	}
	return f
}

func (t *SymbolTable) markBound(name string) {
	if name == "" {
		return
	}
	t.flags(name).Bound = true
}

// IsLocalOnly reports whether name is bound in this scope and not declared
// global/nonlocal — the condition spec.md §4.1 uses to suppress unknown-node
// creation for loop counters and temporaries that never escape their scope.
func (t *SymbolTable) IsLocalOnly(name string) bool {
	f, ok := t.Symbols[name]
	if !ok {
		return false
	}
	return f.Bound && !f.Global && !f.Nonlocal
}

// BuildSymbolTable walks the module's root syntax node and produces the
// tree of per-scope symbol tables rooted at the module scope.
func BuildSymbolTable(root *sitter.Node, src []byte) *SymbolTable {
	mod := newSymbolTable("", "module", root)
	scanBlock(root, src, mod)
	return mod
}

// IndexSymbolTables flattens a symbol table tree into a lookup from the
// syntax node that opens each scope to its table, so the visitor (which
// walks the same tree a second time, interleaved with binding) can find
// the table built for any function/class/lambda/comprehension node it
// encounters without re-deriving traversal order.
func IndexSymbolTables(root *SymbolTable) map[*sitter.Node]*SymbolTable {
	idx := make(map[*sitter.Node]*SymbolTable)
	var walk func(t *SymbolTable)
	walk = func(t *SymbolTable) {
		if t.Node != nil {
			idx[t.Node] = t
		}
		for _, c := range t.Children {
			walk(c)
		}
	}
	walk(root)
	return idx
}

// scanBlock populates table with the identifiers directly bound in node's
// body (not recursing into nested function/class/lambda bodies — those get
// their own child SymbolTable, appended to table.Children).
func scanBlock(node *sitter.Node, src []byte, table *SymbolTable) {
	if node == nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		scanStatement(node.Child(i), src, table)
	}
}

func scanStatement(n *sitter.Node, src []byte, table *SymbolTable) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "function_definition":
		scanFunctionDef(n, src, table, "function")
	case "decorated_definition":
		def := fieldOrNamedChild(n, "definition")
		if def != nil && def.Type() == "class_definition" {
			scanClassDef(def, src, table)
		} else if def != nil {
			kind := "function"
			if isDecoratedClassMethodKind(n, src) == "classmethod" || isDecoratedClassMethodKind(n, src) == "staticmethod" {
				kind = "function"
			}
			scanFunctionDef(def, src, table, kind)
		}
	case "class_definition":
		scanClassDef(n, src, table)
	case "lambda":
		scanLambda(n, src, table)
	case "expression_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "assignment", "augmented_assignment":
				scanStatement(c, src, table)
			default:
				scanExprForBindings(c, src, table)
			}
		}
	case "assignment":
		scanAssignmentTargets(n, src, table)
	case "augmented_assignment":
		left := fieldOrNamedChild(n, "left")
		collectTargetNames(left, src, table)
	case "named_expression":
		name := fieldOrNamedChild(n, "name")
		if name != nil {
			table.markBound(nodeText(name, src))
		}
		value := fieldOrNamedChild(n, "value")
		scanExprForBindings(value, src, table)
	case "for_statement":
		left := fieldOrNamedChild(n, "left")
		collectTargetNames(left, src, table)
		scanChildren(n, src, table)
	case "with_statement":
		scanWithClauses(n, src, table)
		scanChildren(n, src, table)
	case "import_statement", "import_from_statement":
		scanImportNames(n, src, table)
	case "global_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c.Type() == "identifier" {
				table.flags(nodeText(c, src)).Global = true
			}
		}
	case "nonlocal_statement":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			if c.Type() == "identifier" {
				table.flags(nodeText(c, src)).Nonlocal = true
			}
		}
	case "except_clause":
		alias := lastNamedChildOfType(n, src, "identifier")
		if alias != nil {
			table.markBound(nodeText(alias, src))
		}
		scanChildren(n, src, table)
	case "type_alias_statement":
		left := fieldOrNamedChild(n, "left")
		if left != nil {
			table.markBound(nodeText(left, src))
		}
	default:
		scanChildren(n, src, table)
	}
}

func scanChildren(n *sitter.Node, src []byte, table *SymbolTable) {
	for i := 0; i < int(n.ChildCount()); i++ {
		scanStatement(n.Child(i), src, table)
	}
}

// scanExprForBindings descends into expressions looking for walrus
// operators and comprehensions, which bind names even outside a statement
// context, without treating ordinary load-context names as bound.
func scanExprForBindings(n *sitter.Node, src []byte, table *SymbolTable) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "named_expression":
		scanStatement(n, src, table)
		return
	case "list_comprehension", "set_comprehension", "dictionary_comprehension", "generator_expression":
		scanComprehension(n, src, table)
		return
	case "lambda":
		scanLambda(n, src, table)
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		scanExprForBindings(n.Child(i), src, table)
	}
}

func scanAssignmentTargets(n *sitter.Node, src []byte, table *SymbolTable) {
	left := fieldOrNamedChild(n, "left")
	collectTargetNames(left, src, table)
	right := fieldOrNamedChild(n, "right")
	scanExprForBindings(right, src, table)
}

// collectTargetNames records every plain identifier appearing in an
// assignment-target expression as bound in table. Attribute/subscript
// targets are skipped (they bind an attribute on an object, not a local
// name) — mirrors pyan's _collect_target_names.
func collectTargetNames(target *sitter.Node, src []byte, table *SymbolTable) {
	if target == nil {
		return
	}
	switch target.Type() {
	case "identifier":
		table.markBound(nodeText(target, src))
	case "tuple_pattern", "list_pattern", "pattern_list", "tuple", "list":
		for i := 0; i < int(target.ChildCount()); i++ {
			collectTargetNames(target.Child(i), src, table)
		}
	case "list_splat_pattern", "splat_pattern":
		for i := 0; i < int(target.ChildCount()); i++ {
			collectTargetNames(target.Child(i), src, table)
		}
	case "attribute", "subscript":
		// binds an attribute/item, not a local name
	}
}

func scanFunctionDef(n *sitter.Node, src []byte, table *SymbolTable, kind string) {
	nameNode := fieldOrNamedChild(n, "name")
	name := ""
	if nameNode != nil {
		name = nodeText(nameNode, src)
		table.markBound(name)
	}
	child := newSymbolTable(name, kind, n)
	params := fieldOrNamedChild(n, "parameters")
	scanParameters(params, src, child)
	body := fieldOrNamedChild(n, "body")
	scanBlock(body, src, child)
	table.Children = append(table.Children, child)
}

func scanClassDef(n *sitter.Node, src []byte, table *SymbolTable) {
	nameNode := fieldOrNamedChild(n, "name")
	name := ""
	if nameNode != nil {
		name = nodeText(nameNode, src)
		table.markBound(name)
	}
	child := newSymbolTable(name, "class", n)
	body := fieldOrNamedChild(n, "body")
	scanBlock(body, src, child)
	table.Children = append(table.Children, child)
}

func scanLambda(n *sitter.Node, src []byte, table *SymbolTable) {
	child := newSymbolTable("<lambda>", "lambda", n)
	params := fieldOrNamedChild(n, "parameters")
	scanParameters(params, src, child)
	body := fieldOrNamedChild(n, "body")
	scanExprForBindings(body, src, child)
	table.Children = append(table.Children, child)
}

func scanComprehension(n *sitter.Node, src []byte, table *SymbolTable) {
	kindName := map[string]string{
		"list_comprehension":       "<listcomp>",
		"set_comprehension":        "<setcomp>",
		"dictionary_comprehension": "<dictcomp>",
		"generator_expression":     "<genexpr>",
	}[n.Type()]
	child := newSymbolTable(kindName, "comprehension", n)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "for_in_clause" {
			left := fieldOrNamedChild(c, "left")
			collectTargetNames(left, src, child)
			right := fieldOrNamedChild(c, "right")
			scanExprForBindings(right, src, table) // every clause's iterable is scanned in the enclosing table
			_ = right
		}
	}
	table.Children = append(table.Children, child)
}

func scanParameters(params *sitter.Node, src []byte, table *SymbolTable) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		switch p.Type() {
		case "identifier":
			table.flags(nodeText(p, src)).Parameter = true
		case "typed_parameter", "default_parameter", "typed_default_parameter":
			id := firstNamedChildOfType(p, "identifier")
			if id != nil {
				table.flags(nodeText(id, src)).Parameter = true
			}
		case "list_splat_pattern":
			id := firstNamedChildOfType(p, "identifier")
			if id != nil {
				table.flags(nodeText(id, src)).Parameter = true
			}
		case "dictionary_splat_pattern":
			id := firstNamedChildOfType(p, "identifier")
			if id != nil {
				table.flags(nodeText(id, src)).Parameter = true
			}
		}
	}
}

func scanWithClauses(n *sitter.Node, src []byte, table *SymbolTable) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "with_item" {
			alias := fieldOrNamedChild(c, "alias")
			if alias != nil {
				collectTargetNames(alias, src, table)
			}
		} else if c.Type() == "with_clause" {
			scanWithClauses(c, src, table)
		}
	}
}

func scanImportNames(n *sitter.Node, src []byte, table *SymbolTable) {
	for _, imp := range parseImportStatement(n, src, "") {
		for _, bound := range imp.BoundNames {
			table.markBound(bound)
		}
	}
}

// --- small tree-sitter helpers shared across this package ---

func nodeText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) || start > end {
		return ""
	}
	return string(src[start:end])
}

// fieldOrNamedChild looks up a child by tree-sitter field name, falling
// back to nil if absent. go-tree-sitter exposes ChildByFieldName directly.
func fieldOrNamedChild(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

func firstNamedChildOfType(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

func lastNamedChildOfType(n *sitter.Node, src []byte, typ string) *sitter.Node {
	_ = src
	var found *sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == typ {
			found = c
		}
	}
	return found
}

// isDecoratedClassMethodKind inspects a decorated_definition's decorator
// list for @staticmethod / @classmethod, returning "staticmethod",
// "classmethod", or "" otherwise.
func isDecoratedClassMethodKind(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() != "decorator" {
			continue
		}
		name := decoratorName(c, src)
		switch name {
		case "staticmethod":
			return "staticmethod"
		case "classmethod":
			return "classmethod"
		}
	}
	return ""
}

func decoratorName(dec *sitter.Node, src []byte) string {
	for i := 0; i < int(dec.ChildCount()); i++ {
		c := dec.Child(i)
		switch c.Type() {
		case "identifier":
			return nodeText(c, src)
		case "attribute":
			attr := fieldOrNamedChild(c, "attribute")
			if attr != nil {
				return nodeText(attr, src)
			}
		case "call":
			fn := fieldOrNamedChild(c, "function")
			return decoratorNameOfExpr(fn, src)
		}
	}
	return ""
}

func decoratorNameOfExpr(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return nodeText(n, src)
	case "attribute":
		attr := fieldOrNamedChild(n, "attribute")
		return nodeText(attr, src)
	}
	return ""
}
