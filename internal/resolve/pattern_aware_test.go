package resolve

import (
	"testing"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/patindex"
	"github.com/stretchr/testify/require"
)

func varNode(name string) *ir.Node {
	n := ir.NewNode(ir.KindVar, ir.CategoryVariable, ir.LanguageRholang, ir.NodeBase{}, nil)
	n.Value = name
	return n
}

func longLit(value string) *ir.Node {
	n := ir.NewNode(ir.KindLongLiteral, ir.CategoryLiteral, ir.LanguageRholang, ir.NodeBase{}, nil)
	n.Value = value
	return n
}

func stringLit(value string) *ir.Node {
	n := ir.NewNode(ir.KindStringLit, ir.CategoryLiteral, ir.LanguageRholang, ir.NodeBase{}, nil)
	n.Value = value
	return n
}

func sendNode(channel ir.SemanticNode, args ...ir.SemanticNode) *ir.Node {
	children := append([]ir.SemanticNode{channel}, args...)
	return ir.NewNode(ir.KindSend, ir.CategoryInvocation, ir.LanguageRholang, ir.NodeBase{}, children)
}

func TestPatternAwareResolverMatchesConcreteOverload(t *testing.T) {
	idx := patindex.NewIndex()
	shape, _ := patindex.EncodeShapes([]ir.SemanticNode{longLit("1")})
	idx.Insert("foo", shape, patindex.Location{URI: "a.rho", Byte: 1})

	resolver := NewPatternAwareResolver(idx)
	send := sendNode(varNode("foo"), longLit("1"))

	results := resolver.Resolve("foo", ResolutionContext{IRNode: send})
	require.Len(t, results, 1)
	require.Equal(t, "a.rho", results[0].URI)
}

func TestPatternAwareResolverExtractsQuotedStringChannel(t *testing.T) {
	idx := patindex.NewIndex()
	shape, _ := patindex.EncodeShapes([]ir.SemanticNode{longLit("1")})
	idx.Insert("myContract", shape, patindex.Location{URI: "a.rho", Byte: 1})

	quote := ir.NewNode(ir.KindQuote, ir.CategoryBlock, ir.LanguageRholang, ir.NodeBase{},
		[]ir.SemanticNode{stringLit("myContract")})

	resolver := NewPatternAwareResolver(idx)
	send := sendNode(quote, longLit("1"))

	results := resolver.Resolve("myContract", ResolutionContext{IRNode: send})
	require.Len(t, results, 1)
}

func TestPatternAwareResolverEmptyWhenNotSendNode(t *testing.T) {
	idx := patindex.NewIndex()
	resolver := NewPatternAwareResolver(idx)

	nonSend := varNode("foo")
	require.Empty(t, resolver.Resolve("foo", ResolutionContext{IRNode: nonSend}))
}

func TestPatternAwareResolverEmptyWhenChannelNameMismatches(t *testing.T) {
	idx := patindex.NewIndex()
	resolver := NewPatternAwareResolver(idx)

	send := sendNode(varNode("bar"), longLit("1"))
	require.Empty(t, resolver.Resolve("foo", ResolutionContext{IRNode: send}))
}

func TestPatternAwareResolverEmptyWhenNoPatternMatch(t *testing.T) {
	idx := patindex.NewIndex()
	shape, _ := patindex.EncodeShapes([]ir.SemanticNode{longLit("1")})
	idx.Insert("foo", shape, patindex.Location{URI: "a.rho", Byte: 1})

	resolver := NewPatternAwareResolver(idx)
	send := sendNode(varNode("foo"), longLit("2"))

	require.Empty(t, resolver.Resolve("foo", ResolutionContext{IRNode: send}))
}

func TestPatternAwareResolverSupportsOnlyRholang(t *testing.T) {
	resolver := NewPatternAwareResolver(patindex.NewIndex())
	require.True(t, resolver.SupportsLanguage(ir.LanguageRholang))
	require.False(t, resolver.SupportsLanguage(ir.LanguageMetta))
}
