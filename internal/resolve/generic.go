package resolve

import (
	"sync"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// GenericGlobalResolver implements a flat, position-independent, per-
// language global scope: every location ever declared under a name is
// returned, with no lexical filtering. It is the workspace-wide fallback a
// ComposableSymbolResolver reaches for when the lexical resolver finds
// nothing in the current document's scope chain — cross-document contract
// references are the typical case.
type GenericGlobalResolver struct {
	Language ir.SourceLanguage

	// mu guards symbols: the incremental indexer re-indexes multiple files
	// concurrently (internal/indexer.Driver), so every document's
	// contribution to this shared map must be serialized.
	mu sync.RWMutex

	// symbols is language-keyed only implicitly: one resolver instance
	// handles exactly one language, mirroring the source's per-language
	// resolver instantiation rather than carrying the language dimension
	// inside the map itself.
	symbols map[string][]SymbolLocation
}

// NewGenericGlobalResolver constructs an empty resolver for language.
func NewGenericGlobalResolver(language ir.SourceLanguage) *GenericGlobalResolver {
	return &GenericGlobalResolver{Language: language, symbols: make(map[string][]SymbolLocation)}
}

// Index records a declaration site under name. Called once per document
// re-index for every symtab.Table.Globals entry contributed by that
// document.
func (g *GenericGlobalResolver) Index(name string, loc SymbolLocation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.symbols[name] = append(g.symbols[name], loc)
}

// Clear drops every location previously indexed for name, used before
// re-indexing a document so stale declarations don't linger.
func (g *GenericGlobalResolver) Clear(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.symbols, name)
}

// RemoveURI drops every location previously indexed under name that was
// declared in uri, leaving other URIs' declarations of the same name
// intact. A re-index calls this per stale name before Index-ing the
// document's fresh globals, so two files sharing a contract name (the
// overload case, spec §4.5) don't clobber each other's entries the way a
// blanket Clear would.
func (g *GenericGlobalResolver) RemoveURI(name, uri string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	locs, ok := g.symbols[name]
	if !ok {
		return
	}
	kept := make([]SymbolLocation, 0, len(locs))
	for _, loc := range locs {
		if loc.URI != uri {
			kept = append(kept, loc)
		}
	}
	if len(kept) == 0 {
		delete(g.symbols, name)
		return
	}
	g.symbols[name] = kept
}

func (g *GenericGlobalResolver) Resolve(symbol string, _ ResolutionContext) []SymbolLocation {
	g.mu.RLock()
	defer g.mu.RUnlock()

	locs, ok := g.symbols[symbol]
	if !ok {
		return nil
	}
	out := make([]SymbolLocation, len(locs))
	copy(out, locs)
	return out
}

func (g *GenericGlobalResolver) SupportsLanguage(language ir.SourceLanguage) bool {
	return g.Language == language
}

func (g *GenericGlobalResolver) Name() string { return "GenericGlobalResolver" }

var _ SymbolResolver = (*GenericGlobalResolver)(nil)
