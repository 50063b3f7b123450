package callgraph

import (
	tt "github.com/l3aro/gopyan/pkg/types"
)

// ClassTable records each class node's direct base nodes (added on every
// visitor pass, so a base that only resolves in the second pass is
// included) and memoizes method-resolution-order linearizations for
// attribute lookup and super() support.
//
// The linearization is computed statically, by name, the same way pyan
// does: depth-first left-to-right over the declared bases, keeping only
// the first occurrence of each ancestor — not Python's runtime C3
// algorithm, which needs the actual classes loaded to resolve diamond
// inheritance consistently. Good enough for a static approximation and
// documented as such (spec.md's MRO note).
type ClassTable struct {
	bases map[*tt.Node][]*tt.Node
	mro   map[*tt.Node][]*tt.Node
}

func NewClassTable() *ClassTable {
	return &ClassTable{
		bases: make(map[*tt.Node][]*tt.Node),
		mro:   make(map[*tt.Node][]*tt.Node),
	}
}

func (c *ClassTable) AddBases(class *tt.Node, bases []*tt.Node) {
	c.bases[class] = append(c.bases[class], bases...)
	// Linearizations memoized before these bases were known are stale.
	c.mro = make(map[*tt.Node][]*tt.Node)
}

// MRO returns class's linearization, class itself first.
func (c *ClassTable) MRO(class *tt.Node) []*tt.Node {
	if class == nil {
		return nil
	}
	if m, ok := c.mro[class]; ok {
		return m
	}
	// Mark as in-progress with a partial result to break cycles from
	// malformed or mutually-referential base lists.
	c.mro[class] = []*tt.Node{class}
	seen := map[*tt.Node]bool{class: true}
	order := []*tt.Node{class}
	for _, base := range c.bases[class] {
		for _, anc := range c.MRO(base) {
			if !seen[anc] {
				seen[anc] = true
				order = append(order, anc)
			}
		}
	}
	c.mro[class] = order
	return order
}

// AttributeResolver implements get_attribute/resolve_attribute: given an
// object node (a Class, Module, or Namespace-flavored node standing in for
// an instance we can't track precisely) and an attribute name, finds the
// node that attribute access would bind to, or nil if unresolved.
type AttributeResolver struct {
	reg     *Registry
	classes *ClassTable
}

func NewAttributeResolver(reg *Registry, classes *ClassTable) *AttributeResolver {
	return &AttributeResolver{reg: reg, classes: classes}
}

// GetAttribute mirrors pyan's get_attribute: own-namespace lookup first,
// then — if objNode is a class — MRO-ordered ancestor lookup, skipping the
// class itself (tail of the MRO) since that was already tried.
func (a *AttributeResolver) GetAttribute(objNode *tt.Node, attrName string) (*tt.Node, bool) {
	if objNode == nil {
		return nil, false
	}
	ns := objNode.QualifiedName()
	if n, ok := a.reg.Lookup(ns, attrName); ok {
		return n, true
	}
	if objNode.Flavor != tt.Class {
		return nil, false
	}
	mro := a.classes.MRO(objNode)
	if len(mro) <= 1 {
		return nil, false
	}
	for _, anc := range mro[1:] {
		ancNS := anc.QualifiedName()
		if n, ok := a.reg.Lookup(ancNS, attrName); ok {
			return n, true
		}
	}
	return nil, false
}

// SuperBase returns the node attribute lookups against `super()` inside a
// method of class should start searching from: the first ancestor in
// class's MRO after itself, or nil if class has no resolvable base.
func (a *AttributeResolver) SuperBase(class *tt.Node) *tt.Node {
	if class == nil {
		return nil
	}
	mro := a.classes.MRO(class)
	if len(mro) <= 1 {
		return nil
	}
	return mro[1]
}

// ResolveAttributeChain resolves a dotted chain of attribute accesses
// rooted at objNode (e.g. objNode.a.b.c for names = ["a","b","c"]),
// returning the final node and whether the full chain resolved. A chain
// that resolves only partway returns (nil, false); no Unknown nodes are
// created here.
func (a *AttributeResolver) ResolveAttributeChain(objNode *tt.Node, names []string) (*tt.Node, bool) {
	cur := objNode
	for _, name := range names {
		n, ok := a.GetAttribute(cur, name)
		if !ok {
			return nil, false
		}
		cur = n
	}
	return cur, true
}
