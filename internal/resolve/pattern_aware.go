package resolve

import (
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/patindex"
)

// PatternAwareResolver enhances contract goto-definition by matching a
// call site's argument shapes against indexed contract formals, enabling
// overload resolution: `foo!(1)` and `foo!("x")` can resolve to different
// declarations of `foo` when the workspace defines more than one. It only
// ever fires for a Send call site in Rholang; every other shape, or any
// failure extracting a channel name or arguments, degrades to an empty
// result so the composed fallback (lexical, then global) takes over.
type PatternAwareResolver struct {
	Index *patindex.Index
}

// NewPatternAwareResolver constructs a resolver backed by idx.
func NewPatternAwareResolver(idx *patindex.Index) *PatternAwareResolver {
	return &PatternAwareResolver{Index: idx}
}

// extractChannelName reads a Send node's channel expression: either a bare
// Var, or a quoted string literal (`@"contractName"!(...)`).
func extractChannelName(channel ir.SemanticNode) (string, bool) {
	gn, ok := channel.(*ir.Node)
	if !ok {
		return "", false
	}
	if gn.Category() == ir.CategoryVariable {
		return gn.Value, gn.Value != ""
	}
	if gn.TypeName() == ir.KindQuote && gn.ChildCount() == 1 {
		inner, ok := gn.ChildAt(0).(*ir.Node)
		if ok && inner.TypeName() == ir.KindStringLit {
			return inner.Value, inner.Value != ""
		}
	}
	return "", false
}

func (p *PatternAwareResolver) Resolve(symbol string, ctx ResolutionContext) []SymbolLocation {
	if p.Index == nil || ctx.IRNode == nil {
		return nil
	}

	send, ok := ctx.IRNode.(*ir.Node)
	if !ok || send.TypeName() != ir.KindSend || send.ChildCount() == 0 {
		return nil
	}

	channelName, ok := extractChannelName(send.ChildAt(0))
	if !ok || channelName != symbol {
		return nil
	}

	args := make([]ir.SemanticNode, 0, send.ChildCount()-1)
	for i := 1; i < send.ChildCount(); i++ {
		args = append(args, send.ChildAt(i))
	}

	argsShape, ok := patindex.EncodeShapes(args)
	if !ok {
		return nil
	}

	locs := p.Index.QueryByPattern(channelName, argsShape)
	if len(locs) == 0 {
		return nil
	}

	out := make([]SymbolLocation, len(locs))
	for i, loc := range locs {
		pos := ir.Position{Byte: loc.Byte, Row: loc.Line, Column: loc.Col}
		out[i] = SymbolLocation{
			URI:        loc.URI,
			Start:      pos,
			End:        pos,
			Kind:       SymbolKindFunction,
			Confidence: ConfidenceExact,
		}
	}
	return out
}

func (p *PatternAwareResolver) SupportsLanguage(language ir.SourceLanguage) bool {
	return language == ir.LanguageRholang
}

func (p *PatternAwareResolver) Name() string { return "PatternAwareResolver" }

var _ SymbolResolver = (*PatternAwareResolver)(nil)
