package resolve

import "github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"

// ComposableSymbolResolver is the main resolution entry point: a base
// resolver finds initial candidates (typically lexical scope lookup), each
// filter in turn narrows them using call-site context, and a fallback
// resolver (typically the workspace-global index) is tried only when the
// base resolver itself found nothing.
type ComposableSymbolResolver struct {
	Base     SymbolResolver
	Filters  []SymbolFilter
	Fallback SymbolResolver
}

// NewComposableSymbolResolver constructs a resolver chain. filters and
// fallback may be nil.
func NewComposableSymbolResolver(base SymbolResolver, filters []SymbolFilter, fallback SymbolResolver) *ComposableSymbolResolver {
	return &ComposableSymbolResolver{Base: base, Filters: filters, Fallback: fallback}
}

// applyFilters threads candidates through the filter chain. A filter that
// returns an empty refinement aborts the chain immediately and rolls back
// to the pre-chain candidate set, rather than to the previous filter's
// output: an empty result means "I tried to narrow and found nothing,"
// which is evidence the narrowing itself is unreliable here, not that the
// unfiltered set should be trimmed by whatever the prior filter left.
func (c *ComposableSymbolResolver) applyFilters(candidates []SymbolLocation, fctx FilterContext) []SymbolLocation {
	if len(candidates) == 0 {
		return candidates
	}

	original := candidates
	current := candidates

	for _, f := range c.Filters {
		if !f.AppliesToLanguage(fctx.Language) {
			continue
		}

		refined, applicable := f.Filter(current, fctx)
		if !applicable {
			continue
		}
		if len(refined) == 0 {
			return original
		}
		current = refined
	}

	return current
}

func (c *ComposableSymbolResolver) Resolve(symbol string, ctx ResolutionContext) []SymbolLocation {
	base := c.Base.Resolve(symbol, ctx)

	if len(base) > 0 {
		fctx := FilterContext{
			CallSite: ctx.IRNode,
			Symbol:   symbol,
			Language: ctx.Language,
			Context:  ctx,
		}
		return c.applyFilters(base, fctx)
	}

	if c.Fallback != nil {
		return c.Fallback.Resolve(symbol, ctx)
	}

	return nil
}

func (c *ComposableSymbolResolver) SupportsLanguage(language ir.SourceLanguage) bool {
	if c.Base != nil && c.Base.SupportsLanguage(language) {
		return true
	}
	return c.Fallback != nil && c.Fallback.SupportsLanguage(language)
}

func (c *ComposableSymbolResolver) Name() string { return "ComposableSymbolResolver" }

var _ SymbolResolver = (*ComposableSymbolResolver)(nil)
