package symtab

import (
	"testing"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/stretchr/testify/require"
)

func leaf(typeName string, category ir.SemanticCategory, value string, start, end ir.Position, prevEnd *ir.Position) *ir.Node {
	base := ir.MakeSimpleBase(start, end, prevEnd)
	n := ir.NewNode(typeName, category, ir.LanguageRholang, base, nil)
	n.Value = value
	return n
}

// contract x0(y) = { y!(1) } — one formal y, visible only in the body.
func buildContractIR() ir.DocumentIR {
	var contractPrevEnd = ir.Position{Byte: 0}
	nameVar := leaf(ir.KindVar, ir.CategoryVariable, "x0", ir.Position{Byte: 0}, ir.Position{Byte: 2}, &contractPrevEnd)

	formalsPrevEnd := ir.Position{Byte: 3}
	formalVar := leaf(ir.KindVar, ir.CategoryVariable, "y", ir.Position{Byte: 3}, ir.Position{Byte: 4}, &formalsPrevEnd)
	formalsNode := ir.NewNode(ir.KindFormals, ir.CategoryBinding, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 3}, ir.Position{Byte: 4}, &contractPrevEnd),
		[]ir.SemanticNode{formalVar})

	bodyPrevEnd := ir.Position{Byte: 6}
	chanVar := leaf(ir.KindVar, ir.CategoryVariable, "y", ir.Position{Byte: 6}, ir.Position{Byte: 7}, &bodyPrevEnd)
	argLit := leaf(ir.KindLongLiteral, ir.CategoryLiteral, "1", ir.Position{Byte: 8}, ir.Position{Byte: 9}, &bodyPrevEnd)
	sendNode := ir.NewNode(ir.KindSend, ir.CategoryInvocation, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 6}, ir.Position{Byte: 10}, &contractPrevEnd),
		[]ir.SemanticNode{chanVar, argLit})
	sendNode.ChannelName = "y"

	rootPrevEnd := ir.Position{}
	contractNode := ir.NewNode(ir.KindContract, ir.CategoryBinding, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 0}, ir.Position{Byte: 11}, &rootPrevEnd),
		[]ir.SemanticNode{nameVar, formalsNode, sendNode})
	contractNode.ChannelName = "x0"
	contractNode.BoundNames = []string{"x0", "y"}

	root := ir.NewNode(ir.KindSource, ir.CategoryBlock, ir.LanguageRholang,
		ir.MakeSimpleBase(ir.Position{Byte: 0}, ir.Position{Byte: 11}, &ir.Position{}),
		[]ir.SemanticNode{contractNode})

	return ir.DocumentIR{Root: root}
}

func TestBuildScopeTreeBindsFormalsInBody(t *testing.T) {
	doc := buildContractIR()
	table := Build("file:///test.rho", doc)

	require.Len(t, table.Globals, 1)
	require.Equal(t, "x0", table.Globals[0].Name)

	contractNode := doc.Root.ChildAt(0)
	contractScope, ok := contractNode.Metadata().SymbolTable.(*Scope)
	require.True(t, ok)

	_, found := contractScope.Lookup("y")
	require.True(t, found, "formal y must be visible in the contract's own scope")

	_, found = table.Root.Lookup("y")
	require.False(t, found, "formal y must not leak into the root scope")
}

func TestScopeLookupWalksParents(t *testing.T) {
	root := NewScope(nil, ir.Position{}, ir.Position{Byte: 100})
	root.Define(&Symbol{Name: "outer", Kind: KindVariable})
	inner := NewScope(root, ir.Position{Byte: 10}, ir.Position{Byte: 50})
	inner.Define(&Symbol{Name: "inner", Kind: KindVariable})

	_, ok := inner.Lookup("outer")
	require.True(t, ok, "inner scope must see outer-scope bindings")

	_, ok = root.Lookup("inner")
	require.False(t, ok, "outer scope must not see inner-scope bindings")
}

func TestScopeShadowing(t *testing.T) {
	root := NewScope(nil, ir.Position{}, ir.Position{Byte: 100})
	root.Define(&Symbol{Name: "x", Kind: KindVariable, Location: Location{URI: "outer"}})
	inner := NewScope(root, ir.Position{Byte: 0}, ir.Position{Byte: 50})
	inner.Define(&Symbol{Name: "x", Kind: KindVariable, Location: Location{URI: "inner"}})

	sym, ok := inner.Lookup("x")
	require.True(t, ok)
	require.Equal(t, "inner", sym.Location.URI, "the innermost binding must win")

	all := inner.Shadowed("x")
	require.Len(t, all, 2)
	require.Equal(t, "inner", all[0].Location.URI)
	require.Equal(t, "outer", all[1].Location.URI)
}

func TestInvertedIndexRecordsUses(t *testing.T) {
	table := NewTable(ir.Position{Byte: 100})
	table.RecordUse(5, Location{URI: "file:///a.rho", Start: ir.Position{Byte: 20}})
	table.RecordUse(5, Location{URI: "file:///a.rho", Start: ir.Position{Byte: 40}})

	uses := table.UsesOf(5)
	require.Len(t, uses, 2)
}

func TestScopeAtFindsInnermostContaining(t *testing.T) {
	root := NewScope(nil, ir.Position{Byte: 0}, ir.Position{Byte: 100})
	inner := NewScope(root, ir.Position{Byte: 10}, ir.Position{Byte: 30})

	got := root.ScopeAt(15)
	require.Same(t, inner, got)

	got = root.ScopeAt(50)
	require.Same(t, root, got)
}
