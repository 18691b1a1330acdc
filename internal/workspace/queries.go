package workspace

import (
	"sort"
	"strings"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/cache"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/completion"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/resolve"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/symtab"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/vdoc"
)

// TextEdit is one replacement in a document, the domain-layer shape a
// server handler lowers into `protocol.TextEdit`/`protocol.WorkspaceEdit`.
type TextEdit struct {
	URI     string
	Start   ir.Position
	End     ir.Position
	NewText string
}

// SymbolOccurrence pairs a located name with its own span and the document
// it was found in, the common shape Definition/References/DocumentHighlight
// all return.
type SymbolOccurrence struct {
	URI   string
	Start ir.Position
	End   ir.Position
}

// located is one ancestor frame on the path from the document root down to
// the innermost node containing a queried byte offset.
type located struct {
	node  ir.SemanticNode
	start ir.Position
	end   ir.Position
}

// pathAt returns every node on the root-to-innermost path containing
// byteOffset, in outside-in order.
func pathAt(root ir.SemanticNode, byteOffset uint32) []located {
	var path []located
	var walk func(ir.SemanticNode, ir.Position)
	walk = func(n ir.SemanticNode, start ir.Position) {
		if n == nil {
			return
		}
		end := ir.AbsoluteEnd(n, start)
		if byteOffset < start.Byte || byteOffset > end.Byte {
			return
		}
		path = append(path, located{node: n, start: start, end: end})

		prevEnd := start
		for i := 0; i < n.ChildCount(); i++ {
			child := n.ChildAt(i)
			if child == nil {
				continue
			}
			childStart := ir.AbsolutePosition(child, prevEnd)
			walk(child, childStart)
			prevEnd = ir.AbsoluteEnd(child, childStart)
		}
	}
	walk(root, ir.Position{})
	return path
}

// findSymbolAt locates the innermost CategoryVariable occurrence covering
// byteOffset, together with the nearest enclosing Send node (if any), so a
// caller can populate ResolutionContext.IRNode for pattern-aware overload
// resolution when the cursor sits inside an invocation's channel position.
func findSymbolAt(doc *Document, byteOffset uint32) (name string, scope *symtab.Scope, callSite ir.SemanticNode, ok bool) {
	if doc == nil || doc.Doc.Root == nil {
		return "", nil, nil, false
	}
	path := pathAt(doc.Doc.Root, byteOffset)
	if len(path) == 0 {
		return "", nil, nil, false
	}

	innermost := path[len(path)-1]
	gn, isNode := innermost.node.(*ir.Node)
	if !isNode || gn.Category() != ir.CategoryVariable || gn.Value == "" {
		return "", nil, nil, false
	}

	scope, _ = innermost.node.Metadata().SymbolTable.(*symtab.Scope)

	for i := len(path) - 1; i >= 0; i-- {
		if sendNode, ok := path[i].node.(*ir.Node); ok && sendNode.TypeName() == ir.KindSend {
			callSite = sendNode
			break
		}
	}

	return gn.Value, scope, callSite, true
}

// Definition resolves the symbol under pos in uri to its declaration
// site(s). More than one result means an unresolved overload ambiguity (the
// pattern-aware resolver found no single best match, or no resolver fired
// at all and the lexical/global fallback found more than one workspace-wide
// candidate for the name).
func (s *State) Definition(uri string, pos ir.Position) ([]resolve.SymbolLocation, error) {
	doc, ok := s.documentAt(uri)
	if !ok {
		return nil, nil
	}

	name, scope, callSite, ok := findSymbolAt(doc, pos.Byte)
	if !ok {
		return nil, nil
	}

	resolver := s.resolverFor(doc.Language)
	return resolver.Resolve(name, resolve.ResolutionContext{
		URI:      uri,
		Language: doc.Language,
		IRNode:   callSite,
		Scope:    scope,
	}), nil
}

// References returns every recorded use of the symbol under pos, plus its
// declaration site when includeDeclaration is true (§6 textDocument/references).
func (s *State) References(uri string, pos ir.Position, includeDeclaration bool) ([]SymbolOccurrence, error) {
	doc, ok := s.documentAt(uri)
	if !ok {
		return nil, nil
	}

	name, scope, callSite, ok := findSymbolAt(doc, pos.Byte)
	if !ok {
		return nil, nil
	}

	resolver := s.resolverFor(doc.Language)
	locs := resolver.Resolve(name, resolve.ResolutionContext{
		URI: uri, Language: doc.Language, IRNode: callSite, Scope: scope,
	})
	if len(locs) == 0 {
		return nil, nil
	}

	var out []SymbolOccurrence
	for _, loc := range locs {
		declDoc, ok := s.documentAt(loc.URI)
		if !ok || declDoc.SymTab == nil {
			continue
		}
		if includeDeclaration {
			out = append(out, SymbolOccurrence{URI: loc.URI, Start: loc.Start, End: loc.End})
		}
		for _, use := range declDoc.SymTab.UsesOf(loc.Start.Byte) {
			out = append(out, SymbolOccurrence{URI: use.URI, Start: use.Start, End: use.End})
		}
	}
	return out, nil
}

// Rename produces the set of text edits needed to rename the symbol under
// pos to newName: one edit for the declaration, one for every recorded use.
// Exact per-occurrence spans (rather than whole-binding-construct spans)
// come from internal/symtab's precise VariableOccurrence-based Location
// tracking (§8 scenario S1).
func (s *State) Rename(uri string, pos ir.Position, newName string) ([]TextEdit, error) {
	occurrences, err := s.References(uri, pos, true)
	if err != nil || len(occurrences) == 0 {
		return nil, err
	}

	edits := make([]TextEdit, 0, len(occurrences))
	for _, occ := range occurrences {
		edits = append(edits, TextEdit{URI: occ.URI, Start: occ.Start, End: occ.End, NewText: newName})
	}
	return edits, nil
}

// HoverInfo is what a hover query returns: the resolved declaration's kind
// and name, plus any doc comment immediately preceding it.
type HoverInfo struct {
	Name          string
	Kind          string
	Documentation string
	Start         ir.Position
	End           ir.Position
}

// Hover resolves the symbol under pos and returns its declaration-site doc
// comment, if any (§6 textDocument/hover).
func (s *State) Hover(uri string, pos ir.Position) (HoverInfo, bool, error) {
	doc, ok := s.documentAt(uri)
	if !ok {
		return HoverInfo{}, false, nil
	}

	name, scope, callSite, ok := findSymbolAt(doc, pos.Byte)
	if !ok {
		return HoverInfo{}, false, nil
	}

	resolver := s.resolverFor(doc.Language)
	locs := resolver.Resolve(name, resolve.ResolutionContext{
		URI: uri, Language: doc.Language, IRNode: callSite, Scope: scope,
	})
	if len(locs) == 0 {
		return HoverInfo{}, false, nil
	}

	best := locs[0]
	declDoc, ok := s.documentAt(best.URI)
	if !ok {
		return HoverInfo{Name: name, Start: best.Start, End: best.End}, true, nil
	}

	var docComment strings.Builder
	for i, c := range declDoc.Doc.DocCommentsBefore(best.Start) {
		if i > 0 {
			docComment.WriteString("\n")
		}
		docComment.WriteString(c.Text)
	}

	kind := "variable"
	if best.Kind == resolve.SymbolKindFunction {
		kind = "contract"
	}

	return HoverInfo{
		Name:          name,
		Kind:          kind,
		Documentation: docComment.String(),
		Start:         best.Start,
		End:           best.End,
	}, true, nil
}

// DocumentHighlight returns every occurrence of the symbol under pos within
// uri alone (as opposed to References, which spans the whole workspace).
func (s *State) DocumentHighlight(uri string, pos ir.Position) ([]SymbolOccurrence, error) {
	all, err := s.References(uri, pos, true)
	if err != nil {
		return nil, err
	}
	var out []SymbolOccurrence
	for _, occ := range all {
		if occ.URI == uri {
			out = append(out, occ)
		}
	}
	return out, nil
}

// Completion returns ranked completion candidates for query at pos. fuzzy
// selects QueryFuzzy (bounded edit distance) over QueryPrefix.
func (s *State) Completion(uri string, pos ir.Position, query string, fuzzy bool) []completion.CompletionSymbol {
	doc, ok := s.documentAt(uri)
	var atScope *symtab.Scope
	if ok && doc.SymTab != nil {
		atScope = doc.SymTab.Root.ScopeAt(pos.Byte)
	}

	var candidates []completion.CompletionSymbol
	criteria := completion.ExactPrefixCriteria()
	if fuzzy {
		candidates = s.dict.QueryFuzzy(query, 2, completion.AlgorithmStandard)
		criteria = completion.FuzzyCriteria()
	} else {
		for _, m := range s.dict.QueryPrefix(query) {
			candidates = append(candidates, completion.CompletionSymbol{Metadata: m})
		}
	}

	// Dictionary entries carry no per-declaration scope of their own, so
	// every candidate is scored against the request position's own scope
	// depth: candidates are not distinguished by proximity, only the
	// request's nesting level penalizes completion inside deeply nested
	// blocks uniformly. A future per-declaration scope depth would sharpen
	// this; see DESIGN.md.
	depth := 0
	if atScope != nil {
		depth = atScope.Depth()
	}
	for i := range candidates {
		candidates[i].ScopeDepth = depth
	}

	return completion.RankCompletions(candidates, criteria)
}

// DocumentSymbolEntry is one entry in a textDocument/documentSymbol response.
type DocumentSymbolEntry struct {
	Name  string
	Kind  string
	Start ir.Position
	End   ir.Position
}

// DocumentSymbols lists every symbol uri declares at workspace-global scope
// (contracts) plus every name bound anywhere in its scope tree.
func (s *State) DocumentSymbols(uri string) ([]DocumentSymbolEntry, error) {
	doc, ok := s.documentAt(uri)
	if !ok || doc.SymTab == nil {
		return nil, nil
	}

	var out []DocumentSymbolEntry
	for _, g := range doc.SymTab.Globals {
		out = append(out, DocumentSymbolEntry{Name: g.Name, Kind: g.Kind.String(), Start: g.Location.Start, End: g.Location.End})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start.Byte != out[j].Start.Byte {
			return out[i].Start.Byte < out[j].Start.Byte
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// WorkspaceSymbolEntry is one entry in a workspace/symbol response.
type WorkspaceSymbolEntry struct {
	URI   string
	Name  string
	Kind  string
	Start ir.Position
	End   ir.Position
}

// WorkspaceSymbol scans every cached document's global declarations for a
// case-insensitive substring match against query, sorted by name. This is a
// simple linear prefix/substring scan over the current document cache
// rather than a suffix-array index (SPEC_FULL §D.3): workspace sizes this
// server targets make a dedicated index unnecessary, and the cache itself
// is already bounded by its LRU capacity.
func (s *State) WorkspaceSymbol(query string) []WorkspaceSymbolEntry {
	query = strings.ToLower(query)
	var out []WorkspaceSymbolEntry
	for _, doc := range s.cache.Snapshot() {
		if doc == nil || doc.SymTab == nil {
			continue
		}
		for _, g := range doc.SymTab.Globals {
			if query != "" && !strings.Contains(strings.ToLower(g.Name), query) {
				continue
			}
			out = append(out, WorkspaceSymbolEntry{
				URI: doc.URI, Name: g.Name, Kind: g.Kind.String(), Start: g.Location.Start, End: g.Location.End,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].URI < out[j].URI
	})
	return out
}

// MappedPosition pairs a host-document position with the embedded region it
// was mapped from, used by a semantic-tokens response to place tokens found
// inside an embedded-language region back at their host-document coordinates
// (§4.10, §8 scenario S3).
type MappedPosition struct {
	Region   vdoc.Region
	Position ir.Position
}

// MapEmbeddedPosition maps (r, c), a position expressed in region's own
// content coordinate space, back to its host-document position.
func (s *State) MapEmbeddedPosition(region vdoc.Region, r, c uint32) ir.Position {
	return vdoc.MapPosition(region.Start, r, c)
}

// EmbeddedRegions returns the embedded-language regions detected in uri at
// its last index.
func (s *State) EmbeddedRegions(uri string) []vdoc.Region {
	doc, ok := s.documentAt(uri)
	if !ok {
		return nil
	}
	return doc.Regions
}

// FoldingRangeEntry is one foldable span in a textDocument/foldingRange
// response.
type FoldingRangeEntry struct {
	Start ir.Position
	End   ir.Position
}

// Diagnostics returns every parse-error diagnostic attached to uri's last
// indexed tree, for a transport layer that pushes
// textDocument/publishDiagnostics after each re-index (§D.4).
func (s *State) Diagnostics(uri string) []ir.Diagnostic {
	doc, ok := s.documentAt(uri)
	if !ok || doc.Doc.Root == nil {
		return nil
	}
	var out []ir.Diagnostic
	ir.Walk(doc.Doc.Root, ir.Position{}, func(n ir.SemanticNode, start, end ir.Position) bool {
		if d := n.Metadata().Diagnostic; d != nil {
			out = append(out, *d)
		}
		return true
	})
	return out
}

// CacheStats returns the in-memory document cache's activity counters,
// surfaced through the workspace/executeCommand debug command (§D.1).
func (s *State) CacheStats() cache.CacheStats {
	return s.cache.Stats()
}

// FoldingRange returns one foldable range per multi-line block, binding or
// collection construct in uri, the three node categories substantial
// enough in practice to be worth collapsing.
func (s *State) FoldingRange(uri string) ([]FoldingRangeEntry, error) {
	doc, ok := s.documentAt(uri)
	if !ok || doc.Doc.Root == nil {
		return nil, nil
	}

	var out []FoldingRangeEntry
	ir.Walk(doc.Doc.Root, ir.Position{}, func(n ir.SemanticNode, start, end ir.Position) bool {
		if end.Row <= start.Row {
			return true
		}
		switch n.Category() {
		case ir.CategoryBlock, ir.CategoryBinding, ir.CategoryCollection:
			out = append(out, FoldingRangeEntry{Start: start, End: end})
		}
		return true
	})
	return out, nil
}
