package resolve

import (
	"testing"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/symtab"
	"github.com/stretchr/testify/require"
)

func TestLexicalResolverFindsInnermostBinding(t *testing.T) {
	root := symtab.NewScope(nil, ir.Position{}, ir.Position{Byte: 100})
	inner := symtab.NewScope(root, ir.Position{Byte: 10}, ir.Position{Byte: 50})

	root.Define(&symtab.Symbol{Name: "x", Kind: symtab.KindVariable, Location: symtab.Location{URI: "outer.rho"}})
	inner.Define(&symtab.Symbol{Name: "x", Kind: symtab.KindContract, Location: symtab.Location{URI: "inner.rho"}})

	resolver := NewLexicalResolver(ir.LanguageRholang)
	results := resolver.Resolve("x", ResolutionContext{Scope: inner})

	require.Len(t, results, 1)
	require.Equal(t, "inner.rho", results[0].URI)
	require.Equal(t, SymbolKindFunction, results[0].Kind)
}

func TestLexicalResolverNoScopeInContext(t *testing.T) {
	resolver := NewLexicalResolver(ir.LanguageRholang)
	require.Empty(t, resolver.Resolve("x", ResolutionContext{}))
}

func TestLexicalResolverUnboundName(t *testing.T) {
	root := symtab.NewScope(nil, ir.Position{}, ir.Position{Byte: 100})
	resolver := NewLexicalResolver(ir.LanguageRholang)
	require.Empty(t, resolver.Resolve("nope", ResolutionContext{Scope: root}))
}

func TestLexicalResolverSupportsLanguage(t *testing.T) {
	resolver := NewLexicalResolver(ir.LanguageMetta)
	require.True(t, resolver.SupportsLanguage(ir.LanguageMetta))
	require.False(t, resolver.SupportsLanguage(ir.LanguageRholang))
}
