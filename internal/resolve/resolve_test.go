package resolve

import (
	"testing"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/stretchr/testify/require"
)

type mockResolver struct {
	results  []SymbolLocation
	language ir.SourceLanguage
}

func (m *mockResolver) Resolve(string, ResolutionContext) []SymbolLocation { return m.results }
func (m *mockResolver) SupportsLanguage(l ir.SourceLanguage) bool          { return m.language == l }
func (m *mockResolver) Name() string                                      { return "mockResolver" }

var _ SymbolResolver = (*mockResolver)(nil)

type mockFilter struct {
	apply bool
	keep  int // number of leading candidates to keep when apply is true
}

func (f *mockFilter) Filter(candidates []SymbolLocation, _ FilterContext) ([]SymbolLocation, bool) {
	if !f.apply {
		return nil, false
	}
	if f.keep >= len(candidates) {
		return candidates, true
	}
	return candidates[:f.keep], true
}
func (f *mockFilter) AppliesToLanguage(ir.SourceLanguage) bool { return true }
func (f *mockFilter) Name() string                             { return "mockFilter" }

func loc(uri string) SymbolLocation {
	return SymbolLocation{URI: uri, Kind: SymbolKindFunction, Confidence: ConfidenceExact}
}

func TestComposableResolverReturnsBaseCandidatesUnfiltered(t *testing.T) {
	base := &mockResolver{results: []SymbolLocation{loc("a.rho")}, language: ir.LanguageRholang}
	resolver := NewComposableSymbolResolver(base, nil, nil)

	results := resolver.Resolve("foo", ResolutionContext{Language: ir.LanguageRholang})
	require.Len(t, results, 1)
}

func TestComposableResolverFilterRefines(t *testing.T) {
	base := &mockResolver{results: []SymbolLocation{loc("a.rho"), loc("b.rho")}, language: ir.LanguageRholang}
	filter := &mockFilter{apply: true, keep: 1}
	resolver := NewComposableSymbolResolver(base, []SymbolFilter{filter}, nil)

	results := resolver.Resolve("foo", ResolutionContext{Language: ir.LanguageRholang})
	require.Len(t, results, 1)
	require.Equal(t, "a.rho", results[0].URI)
}

func TestComposableResolverFilterEmptyRollsBackToUnfiltered(t *testing.T) {
	base := &mockResolver{results: []SymbolLocation{loc("a.rho"), loc("b.rho")}, language: ir.LanguageRholang}
	filter := &mockFilter{apply: true, keep: 0}
	resolver := NewComposableSymbolResolver(base, []SymbolFilter{filter}, nil)

	results := resolver.Resolve("foo", ResolutionContext{Language: ir.LanguageRholang})
	require.Len(t, results, 2, "an emptying filter must roll back to the unfiltered candidate set")
}

func TestComposableResolverFilterPassthroughOnNotApplicable(t *testing.T) {
	base := &mockResolver{results: []SymbolLocation{loc("a.rho")}, language: ir.LanguageRholang}
	filter := &mockFilter{apply: false}
	resolver := NewComposableSymbolResolver(base, []SymbolFilter{filter}, nil)

	results := resolver.Resolve("foo", ResolutionContext{Language: ir.LanguageRholang})
	require.Len(t, results, 1)
}

func TestComposableResolverFallbackWhenBaseEmpty(t *testing.T) {
	base := &mockResolver{language: ir.LanguageRholang}
	fallback := &mockResolver{results: []SymbolLocation{loc("global.rho")}, language: ir.LanguageRholang}
	resolver := NewComposableSymbolResolver(base, nil, fallback)

	results := resolver.Resolve("foo", ResolutionContext{Language: ir.LanguageRholang})
	require.Len(t, results, 1)
	require.Equal(t, "global.rho", results[0].URI)
}

func TestComposableResolverNoFallbackConfigured(t *testing.T) {
	base := &mockResolver{language: ir.LanguageRholang}
	resolver := NewComposableSymbolResolver(base, nil, nil)

	results := resolver.Resolve("foo", ResolutionContext{Language: ir.LanguageRholang})
	require.Empty(t, results)
}

func TestComposableResolverSupportsLanguageChecksBothArms(t *testing.T) {
	base := &mockResolver{language: ir.LanguageRholang}
	fallback := &mockResolver{language: ir.LanguageMetta}
	resolver := NewComposableSymbolResolver(base, nil, fallback)

	require.True(t, resolver.SupportsLanguage(ir.LanguageRholang))
	require.True(t, resolver.SupportsLanguage(ir.LanguageMetta))
}

func TestGenericGlobalResolverReturnsAllLocations(t *testing.T) {
	g := NewGenericGlobalResolver(ir.LanguageRholang)
	g.Index("foo", loc("a.rho"))
	g.Index("foo", loc("b.rho"))

	results := g.Resolve("foo", ResolutionContext{})
	require.Len(t, results, 2)
}

func TestGenericGlobalResolverSymbolNotFound(t *testing.T) {
	g := NewGenericGlobalResolver(ir.LanguageRholang)
	require.Empty(t, g.Resolve("missing", ResolutionContext{}))
}

func TestGenericGlobalResolverClearRemovesEntries(t *testing.T) {
	g := NewGenericGlobalResolver(ir.LanguageRholang)
	g.Index("foo", loc("a.rho"))
	g.Clear("foo")
	require.Empty(t, g.Resolve("foo", ResolutionContext{}))
}
