package callgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/l3aro/gopyan/pkg/types"
)

func analyzeSrc(t *testing.T, files map[string]string) *tt.Graph {
	t.Helper()
	root, paths := writeFiles(t, files)
	graph, err := Analyze(paths, Options{Root: root})
	require.NoError(t, err)
	return graph
}

func TestMutualRecursionResolvesForwardReference(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
def is_even(n):
    if n == 0:
        return True
    return is_odd(n - 1)

def is_odd(n):
    if n == 0:
        return False
    return is_even(n - 1)
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "is_even", "is_odd"))
	assert.True(t, hasEdgeSuffix(g.Uses, "is_odd", "is_even"))
}

func TestMethodCaptureBindsSelfToClass(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Counter:
    def bump(self):
        return self.value

    def value(self):
        return 0
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "bump", "Counter.value"))
}

func TestInheritedMethodResolvesThroughMRO(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Animal:
    def speak(self):
        return "..."

class Dog(Animal):
    def bark(self):
        return self.speak()
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "Dog.bark", "Animal.speak"))
}

func TestForLoopWiresIteratorProtocol(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Counter:
    def __iter__(self):
        return self

    def __next__(self):
        raise StopIteration

def consume():
    for item in Counter():
        pass
`,
	})
	// Counter() resolves to the Counter class node itself (a call's value is
	// tracked against the callable, per the class-level analysis model), so
	// the for-loop's iterator protocol wiring can be checked directly.
	assert.True(t, hasEdgeSuffix(g.Uses, "consume", "Counter.__iter__"))
	assert.True(t, hasEdgeSuffix(g.Uses, "consume", "Counter.__next__"))
}

func TestStarredUnpackingCartesianFallbackPreservesIdentity(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
def make():
    return 1

def use():
    a, *rest = make()
    return a()
`,
	})
	// make() returns the function node itself (pyan tracks a callable's
	// result against the callable, not a distinct return-value identity);
	// unpacking its single candidate across two targets (one starred) must
	// still carry that identity through to a later use of either name.
	assert.True(t, hasEdgeSuffix(g.Uses, "use", "mod.make"))
}

func TestSuperResolvesToParentClass(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Base:
    def greet(self):
        return "base"

class Child(Base):
    def greet(self):
        return super().greet()
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "Child.greet", "Base.greet"))
}

func TestClassMethodBindsClsToEnclosingClass(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Registry:
    _items = []

    @classmethod
    def register(cls, item):
        return cls.lookup(item)

    @classmethod
    def lookup(cls, item):
        return item
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "register", "Registry.lookup"))
}

func TestPostprocessedGraphHasNoUnknownNodes(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
def caller():
    return totally_undefined_name()
`,
	})
	for _, n := range g.Nodes {
		assert.NotEqual(t, tt.Unknown, n.Flavor)
	}
}

func TestWildcardContractionAcrossModules(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"helpers.py": `
def shared():
    return 1
`,
		"mod.py": `
from helpers import *

def caller():
    return shared()
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "caller", "helpers.shared"))
}

func TestDefinesEdgesCoverModuleClassMethodNesting(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Widget:
    def render(self):
        pass
`,
	})
	assert.True(t, hasEdgeSuffix(g.Defines, "mod", "mod.Widget"))
	assert.True(t, hasEdgeSuffix(g.Defines, "Widget", "Widget.render"))
}

func TestAttributeAssignmentDefinesClassLevelAttribute(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
class Widget:
    def __init__(self):
        self.name = "widget"
`,
	})
	found := false
	for _, n := range g.Nodes {
		if n.Name == "name" && n.Namespace == "mod.Widget" {
			found = true
		}
	}
	assert.True(t, found, "self.name = ... should define a class-level attribute node, not an instance one")
}

func TestParseFailureIsRecordedAndAnalysisContinues(t *testing.T) {
	root, paths := writeFiles(t, map[string]string{
		"ok.py": "def fine():\n    return 1\n",
	})
	// A nonexistent file path to force a read error without corrupting the
	// valid file's own analysis.
	missing := root + "/does_not_exist.py"
	graph, err := Analyze(append(paths, missing), Options{Root: root})
	require.NoError(t, err)
	require.Len(t, graph.Errors, 1)
	assert.Contains(t, graph.Errors[0].File, "does_not_exist.py")
}

func TestStarredUnpackingOfLiteralTupleSplitsPositionally(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
def x():
    return 1

def y():
    return 2

def z():
    return 3

def w():
    return 4

def use():
    a, *b, c = x(), y(), z(), w()
    return a(), c(), b
`,
	})
	// a and c must bind to the leading/trailing elements exactly, not the
	// full four-candidate set; b collects only the two middle elements.
	assert.True(t, hasEdgeSuffix(g.Uses, "use", "mod.x"))
	assert.True(t, hasEdgeSuffix(g.Uses, "use", "mod.w"))
}

func TestFreeReadOfEnclosingScopesUnassignedLocalIsNotSuppressed(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
def shared():
    return 1

def outer():
    def inner():
        return shared()
    shared = 1
    return inner()
`,
	})
	// inner()'s read of "shared" resolves to outer's own (not-yet-assigned
	// at this point in the walk) local, not a name local to inner itself —
	// the suppression that avoids spurious unknown nodes for loop counters
	// and the like only applies to the innermost frame, so this read still
	// gets an unknown node that contracts to the sole global "shared"
	// candidate per the wildcard-contraction heuristic.
	assert.True(t, hasEdgeSuffix(g.Uses, "inner", "mod.shared"))
}

func TestChainedAssignmentBindsEveryTargetToSameValue(t *testing.T) {
	g := analyzeSrc(t, map[string]string{
		"mod.py": `
def make():
    return 1

def use():
    a = b = make()
    return a(), b()
`,
	})
	assert.True(t, hasEdgeSuffix(g.Uses, "use", "mod.make"))
	count := 0
	for _, e := range g.Uses {
		if hasSuffix(e.Source, "use") && hasSuffix(e.Target, "mod.make") {
			count++
		}
	}
	assert.Equal(t, 1, count, "a() and b() both resolve to make; uses edges are deduplicated into one")
}
