package callgraph

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ImportBinding is one name introduced into the importing scope by an
// import statement, together with the fully-qualified module or symbol it
// refers to. Relative imports are resolved to an absolute dotted path
// using the importing file's own module namespace.
type ImportBinding struct {
	// BoundNames are the local identifiers this import introduces (usually
	// one; "import a.b.c" binds only "a" per Python semantics).
	BoundNames []string
	// Target is the fully-qualified dotted name the *first* bound name
	// refers to (module path, or "module.symbol" for a from-import).
	Target     string
	IsWildcard bool
	// WildcardModule is set when IsWildcard is true: the module the `*`
	// names should be pulled from during resolveImports postprocessing.
	WildcardModule string
}

// parseImportStatement extracts every name bound by one import_statement
// or import_from_statement node, resolving relative from-imports (the
// leading dots) against currentNamespace. Grounded on the dotted_name /
// aliased_import / relative_import / wildcard_import node shapes of the
// Python tree-sitter grammar.
func parseImportStatement(n *sitter.Node, src []byte, currentNamespace string) []ImportBinding {
	switch n.Type() {
	case "import_statement":
		return parsePlainImport(n, src)
	case "import_from_statement":
		return parseFromImport(n, src, currentNamespace)
	}
	return nil
}

func parsePlainImport(n *sitter.Node, src []byte) []ImportBinding {
	var out []ImportBinding
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "dotted_name":
			full := nodeText(c, src)
			first := strings.SplitN(full, ".", 2)[0]
			out = append(out, ImportBinding{BoundNames: []string{first}, Target: full})
		case "aliased_import":
			name := fieldOrNamedChild(c, "name")
			alias := fieldOrNamedChild(c, "alias")
			if name == nil || alias == nil {
				continue
			}
			out = append(out, ImportBinding{
				BoundNames: []string{nodeText(alias, src)},
				Target:     nodeText(name, src),
			})
		}
	}
	return out
}

func parseFromImport(n *sitter.Node, src []byte, currentNamespace string) []ImportBinding {
	moduleNode := fieldOrNamedChild(n, "module_name")
	modulePath := resolveRelativeModule(moduleNode, src, currentNamespace)

	var out []ImportBinding
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "wildcard_import":
			out = append(out, ImportBinding{IsWildcard: true, WildcardModule: modulePath})
		case "dotted_name":
			if c == moduleNode {
				continue
			}
			name := nodeText(c, src)
			out = append(out, ImportBinding{
				BoundNames: []string{name},
				Target:     joinDotted(modulePath, name),
			})
		case "aliased_import":
			nameN := fieldOrNamedChild(c, "name")
			aliasN := fieldOrNamedChild(c, "alias")
			if nameN == nil || aliasN == nil {
				continue
			}
			sym := nodeText(nameN, src)
			out = append(out, ImportBinding{
				BoundNames: []string{nodeText(aliasN, src)},
				Target:     joinDotted(modulePath, sym),
			})
		}
	}
	return out
}

// resolveRelativeModule returns the absolute dotted module path for a
// module_name field that may be a plain dotted_name or a relative_import
// (leading dots, optionally followed by a dotted_name), resolved against
// the importing module's own namespace the way Python resolves "from ."
// imports against the enclosing package: one dot means "this package",
// each further dot walks up one more level before the named submodule (if
// any) is appended.
func resolveRelativeModule(n *sitter.Node, src []byte, currentNamespace string) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "relative_import":
		dots := 0
		var rest string
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "import_prefix":
				dots = strings.Count(nodeText(c, src), ".")
			case "dotted_name":
				rest = nodeText(c, src)
			}
		}
		pkg := walkUpNamespace(currentNamespace, dots)
		if rest == "" {
			return pkg
		}
		return joinDotted(pkg, rest)
	case "dotted_name":
		return nodeText(n, src)
	}
	return nodeText(n, src)
}

// walkUpNamespace strips one trailing dotted component per level, starting
// from ns's own enclosing package (one dot == the package containing ns).
func walkUpNamespace(ns string, levels int) string {
	if levels <= 0 {
		return ns
	}
	cur := ParentNamespace(ns)
	for i := 1; i < levels; i++ {
		cur = ParentNamespace(cur)
	}
	return cur
}

func joinDotted(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}
