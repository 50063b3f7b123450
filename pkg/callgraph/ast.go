package callgraph

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// ParamKind classifies one entry of a function's parameter list.
type ParamKind int

const (
	ParamPositional ParamKind = iota
	ParamVararg               // *args
	ParamKwarg                // **kwargs
	ParamKeywordOnlyMarker    // bare "*" separator
	ParamPositionalOnlyMarker // "/" separator
)

// Param is one parsed parameter of a function_definition or lambda.
type Param struct {
	Name       string
	Kind       ParamKind
	Default    *sitter.Node
	Annotation *sitter.Node
}

// extractParameters walks a `parameters` (or `lambda_parameters`) node into
// an ordered list of Params, in the shapes tree-sitter-python produces:
// identifier, typed_parameter, default_parameter, typed_default_parameter,
// list_splat_pattern (*args), dictionary_splat_pattern (**kwargs), plus the
// bare positional_separator "/" and keyword_separator "*" markers.
func extractParameters(params *sitter.Node, src []byte) []Param {
	if params == nil {
		return nil
	}
	var out []Param
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		switch p.Type() {
		case "identifier":
			out = append(out, Param{Name: nodeText(p, src), Kind: ParamPositional})
		case "typed_parameter":
			id := firstNamedChildOfType(p, "identifier")
			if id != nil {
				out = append(out, Param{
					Name:       nodeText(id, src),
					Kind:       ParamPositional,
					Annotation: fieldOrNamedChild(p, "type"),
				})
			}
		case "default_parameter":
			name := fieldOrNamedChild(p, "name")
			if name != nil {
				out = append(out, Param{
					Name:    nodeText(name, src),
					Kind:    ParamPositional,
					Default: fieldOrNamedChild(p, "value"),
				})
			}
		case "typed_default_parameter":
			name := fieldOrNamedChild(p, "name")
			if name != nil {
				out = append(out, Param{
					Name:       nodeText(name, src),
					Kind:       ParamPositional,
					Default:    fieldOrNamedChild(p, "value"),
					Annotation: fieldOrNamedChild(p, "type"),
				})
			}
		case "list_splat_pattern":
			id := firstNamedChildOfType(p, "identifier")
			if id != nil {
				out = append(out, Param{Name: nodeText(id, src), Kind: ParamVararg})
			}
		case "dictionary_splat_pattern":
			id := firstNamedChildOfType(p, "identifier")
			if id != nil {
				out = append(out, Param{Name: nodeText(id, src), Kind: ParamKwarg})
			}
		case "positional_separator":
			out = append(out, Param{Kind: ParamPositionalOnlyMarker})
		case "keyword_separator":
			out = append(out, Param{Kind: ParamKeywordOnlyMarker})
		}
	}
	return out
}

// extractBases returns the positional base-class expression nodes of a
// class_definition's superclass list, skipping keyword arguments such as
// metaclass=. Each returned node may be identifier, attribute, call,
// subscript (generic bases like Base[T]), list, or tuple — spec.md leaves
// resolving the latter three to best effort.
func extractBases(classDef *sitter.Node, src []byte) []*sitter.Node {
	argList := fieldOrNamedChild(classDef, "superclasses")
	if argList == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(argList.ChildCount()); i++ {
		a := argList.Child(i)
		switch a.Type() {
		case "keyword_argument":
			continue
		case "(", ")", ",":
			continue
		default:
			out = append(out, a)
		}
	}
	return out
}

// CallArgs is the parsed argument list of a `call` node.
type CallArgs struct {
	Positional []*sitter.Node
	Keyword    map[string]*sitter.Node
}

func extractCallArgs(call *sitter.Node, src []byte) CallArgs {
	out := CallArgs{Keyword: make(map[string]*sitter.Node)}
	argList := fieldOrNamedChild(call, "arguments")
	if argList == nil {
		return out
	}
	for i := 0; i < int(argList.ChildCount()); i++ {
		a := argList.Child(i)
		switch a.Type() {
		case "keyword_argument":
			name := fieldOrNamedChild(a, "name")
			val := fieldOrNamedChild(a, "value")
			if name != nil {
				out.Keyword[nodeText(name, src)] = val
			}
		case "(", ")", ",":
			continue
		default:
			out.Positional = append(out.Positional, a)
		}
	}
	return out
}

// isLiteralNode reports whether n is a literal constant (string, number,
// bool, None) that the analyzer treats as having no resolvable identity —
// attribute/call chains rooted at a literal resolve to Unknown.
func isLiteralNode(n *sitter.Node) bool {
	switch n.Type() {
	case "string", "concatenated_string", "integer", "float", "true", "false", "none":
		return true
	}
	return false
}

// isAsyncDef reports whether a function_definition, for_statement, or
// with_statement is prefixed with the `async` keyword.
func isAsyncDef(n *sitter.Node) bool {
	if n.ChildCount() == 0 {
		return false
	}
	return n.Child(0).Type() == "async"
}
