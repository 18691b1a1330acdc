package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// leaf builds a *Node with no children, threading prevEnd the same way the
// bridge does.
func leaf(typeName string, category SemanticCategory, value string, start, end Position, prevEnd *Position) *Node {
	base := MakeSimpleBase(start, end, prevEnd)
	n := NewNode(typeName, category, LanguageRholang, base, nil)
	n.Value = value
	return n
}

func TestWalkReconstructsAbsolutePositions(t *testing.T) {
	// par( send(0..5), send(5..10) ), where par spans 0..10.
	parPrevEnd := Position{}
	childPrevEnd := Position{Byte: 0}
	c1 := leaf(KindSend, CategoryInvocation, "", Position{Byte: 0}, Position{Byte: 5}, &childPrevEnd)
	c2 := leaf(KindSend, CategoryInvocation, "", Position{Byte: 5}, Position{Byte: 10}, &childPrevEnd)

	parBase := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 10}, &parPrevEnd)
	par := NewNode(KindPar, CategoryBlock, LanguageRholang, parBase, []SemanticNode{c1, c2})

	var visited []Position
	Walk(par, Position{Byte: 0}, func(n SemanticNode, start, end Position) bool {
		visited = append(visited, start, end)
		return true
	})

	require.Equal(t, []Position{
		{Byte: 0}, {Byte: 10}, // par
		{Byte: 0}, {Byte: 5}, // c1
		{Byte: 5}, {Byte: 10}, // c2
	}, visited)
}

func TestWalkVisitFalseSkipsChildren(t *testing.T) {
	prevEnd := Position{}
	childPrevEnd := Position{}
	child := leaf(KindVar, CategoryVariable, "x", Position{Byte: 1}, Position{Byte: 2}, &childPrevEnd)
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 3}, &prevEnd)
	parent := NewNode(KindBlock, CategoryBlock, LanguageRholang, base, []SemanticNode{child})

	var count int
	Walk(parent, Position{Byte: 0}, func(n SemanticNode, start, end Position) bool {
		count++
		return false
	})

	require.Equal(t, 1, count, "returning false from visit must prevent descending into children")
}

func TestTransformingVisitorStructuralSharing(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 5}, &prevEnd)
	unchangedChild := NewNode(KindVar, CategoryVariable, LanguageRholang, base, nil)
	root := NewNode(KindBlock, CategoryBlock, LanguageRholang, base, []SemanticNode{unchangedChild})

	v := &TransformingVisitor{Rebuild: RebuildNode}
	result := v.Apply(root)

	require.Same(t, root, result, "no node replaced: Apply must return the exact original root")
}

func TestTransformingVisitorRebuildsOnChange(t *testing.T) {
	prevEnd := Position{}
	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 5}, &prevEnd)
	original := NewNode(KindVar, CategoryVariable, LanguageRholang, base, nil)
	original.Value = "old"
	root := NewNode(KindBlock, CategoryBlock, LanguageRholang, base, []SemanticNode{original})

	replacement := NewNode(KindVar, CategoryVariable, LanguageRholang, base, nil)
	replacement.Value = "new"

	v := &TransformingVisitor{
		TransformNode: func(n SemanticNode) SemanticNode {
			if gn, ok := n.(*Node); ok && gn.Value == "old" {
				return replacement
			}
			return nil
		},
		Rebuild: RebuildNode,
	}
	result := v.Apply(root)

	require.NotSame(t, root, result, "a changed child must force the parent to be rebuilt")
	rebuilt, ok := result.(*Node)
	require.True(t, ok)
	require.Equal(t, "new", rebuilt.ChildAt(0).(*Node).Value)
}

func TestCollectVariableNamesExcludesWildcard(t *testing.T) {
	prevEnd := Position{}
	a := leaf(KindVar, CategoryVariable, "a", Position{Byte: 0}, Position{Byte: 1}, &prevEnd)
	wild := leaf(KindWildcard, CategoryVariable, "_", Position{Byte: 1}, Position{Byte: 2}, &prevEnd)
	b := leaf(KindVar, CategoryVariable, "b", Position{Byte: 2}, Position{Byte: 3}, &prevEnd)

	base := MakeSimpleBase(Position{Byte: 0}, Position{Byte: 3}, &prevEnd)
	formals := NewNode(KindFormals, CategoryBinding, LanguageRholang, base, []SemanticNode{a, wild, b})

	names := CollectVariableNames(formals)
	require.Equal(t, []string{"a", "b"}, names)
}

func TestSemanticCategoryString(t *testing.T) {
	require.Equal(t, "Binding", CategoryBinding.String())
	require.Equal(t, "Unknown", SemanticCategory(99).String())
}

func TestCategoryForMetta(t *testing.T) {
	require.Equal(t, CategoryVariable, categoryFor(MettaKindVar, LanguageMetta))
	require.Equal(t, CategoryLiteral, categoryFor(MettaKindLiteral, LanguageMetta))
	require.Equal(t, CategoryLanguageSpecific, categoryFor(MettaKindExpr, LanguageMetta))
}
