// Package resolve implements goto-definition symbol resolution: a base
// lexical-scope lookup, composed with optional per-language filters and an
// optional global fallback, per spec §4.6 and the composable resolver chain
// it's grounded on.
package resolve

import "github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"

// SymbolKind classifies what a resolved location denotes, independent of
// internal/symtab.Kind since a resolver may point at a non-declaration
// location (e.g. a pattern-matched overload site).
type SymbolKind int

const (
	SymbolKindVariable SymbolKind = iota
	SymbolKindFunction
	SymbolKindOther
)

// ResolutionConfidence distinguishes an exact structural match from a
// best-effort fuzzy one, surfaced to callers that want to rank or label
// goto-definition results (e.g. "did you mean").
type ResolutionConfidence int

const (
	ConfidenceExact ResolutionConfidence = iota
	ConfidenceFuzzy
)

// SymbolLocation is a single resolved definition site.
type SymbolLocation struct {
	URI        string
	Start, End ir.Position
	Kind       SymbolKind
	Confidence ResolutionConfidence
}

// ResolutionContext carries everything a resolver needs beyond the bare
// symbol name: which document and language the lookup originates in, the
// call-site IR node (when the lookup is triggered from an invocation, so a
// pattern-aware resolver can inspect its arguments), and the scope the
// lookup starts from.
type ResolutionContext struct {
	URI      string
	Language ir.SourceLanguage

	// IRNode is the call-site node the lookup originates from, or nil if
	// resolution was triggered from a bare identifier with no enclosing
	// invocation (e.g. a plain variable reference).
	IRNode ir.SemanticNode

	// Scope is the lexical scope the lookup starts from; nil for resolvers
	// that don't need one (GenericGlobalResolver).
	Scope any
}

// FilterContext is what a SymbolFilter sees: the call site and symbol name
// from the resolution, plus the full resolution context for filters that
// need more.
type FilterContext struct {
	CallSite ir.SemanticNode
	Symbol   string
	Language ir.SourceLanguage
	Context  ResolutionContext
}

// SymbolResolver resolves a symbol name at a position to zero or more
// candidate definition locations.
type SymbolResolver interface {
	Resolve(symbol string, ctx ResolutionContext) []SymbolLocation
	SupportsLanguage(language ir.SourceLanguage) bool
	Name() string
}

// SymbolFilter refines a base resolver's candidates using call-site
// context a bare name lookup doesn't have (argument shapes, overload
// patterns). Returning (nil, false) means "not applicable, pass candidates
// through unchanged"; returning (refined, true) replaces candidates only
// when refined is non-empty — an empty refined result means the filter
// couldn't narrow further and the caller falls back to the unfiltered set.
type SymbolFilter interface {
	Filter(candidates []SymbolLocation, fctx FilterContext) ([]SymbolLocation, bool)
	AppliesToLanguage(language ir.SourceLanguage) bool
	Name() string
}
