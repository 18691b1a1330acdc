package resolve

import (
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/symtab"
)

// LexicalResolver is the base resolver for ordinary identifier
// goto-definition: innermost-scope lookup via the scope tree symtab.Build
// produces. Shadowing means there is exactly one answer, so Resolve returns
// at most one location (unlike GenericGlobalResolver, which returns every
// workspace-wide declaration under a name).
type LexicalResolver struct {
	Language ir.SourceLanguage
}

// NewLexicalResolver constructs a resolver for language.
func NewLexicalResolver(language ir.SourceLanguage) *LexicalResolver {
	return &LexicalResolver{Language: language}
}

func symKindOf(k symtab.Kind) SymbolKind {
	if k == symtab.KindContract {
		return SymbolKindFunction
	}
	return SymbolKindVariable
}

func (l *LexicalResolver) Resolve(symbol string, ctx ResolutionContext) []SymbolLocation {
	scope, ok := ctx.Scope.(*symtab.Scope)
	if !ok || scope == nil {
		return nil
	}

	sym, found := scope.Lookup(symbol)
	if !found {
		return nil
	}

	return []SymbolLocation{{
		URI:        sym.Location.URI,
		Start:      sym.Location.Start,
		End:        sym.Location.End,
		Kind:       symKindOf(sym.Kind),
		Confidence: ConfidenceExact,
	}}
}

func (l *LexicalResolver) SupportsLanguage(language ir.SourceLanguage) bool {
	return l.Language == language
}

func (l *LexicalResolver) Name() string { return "LexicalResolver" }

var _ SymbolResolver = (*LexicalResolver)(nil)
