package server

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/symtab"
)

// cacheStatsCommand is the one workspace/executeCommand this server
// advertises: a debug surface over the in-memory cache's hit/miss/eviction
// counters (§D.1).
const cacheStatsCommand = "rho-lsp.cacheStats"

// posFromParams converts an LSP position over uri's current buffer text
// into the byte-offset-bearing ir.Position every workspace.State query
// takes. ok is false when uri isn't currently open, the only case a byte
// offset can't be computed.
func (s *Server) posFromParams(uri string, pos protocol.Position) (ir.Position, bool) {
	if s.state == nil {
		return ir.Position{}, false
	}
	text, ok := s.state.BufferText(uri)
	if !ok {
		return ir.Position{}, false
	}
	byteOffset := pos.IndexIn(text)
	if byteOffset < 0 {
		byteOffset = 0
	}
	return ir.Position{Row: pos.Line, Column: pos.Character, Byte: uint32(byteOffset)}, true
}

func protocolPosition(p ir.Position) protocol.Position {
	return protocol.Position{Line: p.Row, Character: p.Column}
}

func protocolRange(start, end ir.Position) protocol.Range {
	return protocol.Range{Start: protocolPosition(start), End: protocolPosition(end)}
}

func protocolLocation(uri string, start, end ir.Position) protocol.Location {
	return protocol.Location{URI: uri, Range: protocolRange(start, end)}
}

func symbolKindFor(kind string) protocol.SymbolKind {
	switch kind {
	case symtab.KindContract.String():
		return protocol.SymbolKindFunction
	case symtab.KindBundle.String():
		return protocol.SymbolKindNamespace
	default:
		return protocol.SymbolKindVariable
	}
}

func completionItemKindFor(kind string) protocol.CompletionItemKind {
	switch kind {
	case symtab.KindContract.String():
		return protocol.CompletionItemKindFunction
	case symtab.KindBundle.String():
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindVariable
	}
}

func (s *Server) onDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	pos, ok := s.posFromParams(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	locs, err := s.state.Definition(params.TextDocument.URI, pos)
	if err != nil || len(locs) == 0 {
		return nil, err
	}
	out := make([]protocol.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, protocolLocation(l.URI, l.Start, l.End))
	}
	return out, nil
}

func (s *Server) onReferences(_ *glsp.Context, params *protocol.ReferenceParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	pos, ok := s.posFromParams(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	occs, err := s.state.References(params.TextDocument.URI, pos, params.Context.IncludeDeclaration)
	if err != nil || len(occs) == 0 {
		return nil, err
	}
	out := make([]protocol.Location, 0, len(occs))
	for _, o := range occs {
		out = append(out, protocolLocation(o.URI, o.Start, o.End))
	}
	return out, nil
}

func (s *Server) onRename(_ *glsp.Context, params *protocol.RenameParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	pos, ok := s.posFromParams(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	edits, err := s.state.Rename(params.TextDocument.URI, pos, params.NewName)
	if err != nil || len(edits) == 0 {
		return nil, err
	}
	changes := make(map[string][]protocol.TextEdit)
	for _, e := range edits {
		changes[e.URI] = append(changes[e.URI], protocol.TextEdit{
			Range:   protocolRange(e.Start, e.End),
			NewText: e.NewText,
		})
	}
	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

func (s *Server) onHover(_ *glsp.Context, params *protocol.HoverParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	pos, ok := s.posFromParams(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	info, found, err := s.state.Hover(params.TextDocument.URI, pos)
	if err != nil || !found {
		return nil, err
	}
	value := info.Kind + " " + info.Name
	if info.Documentation != "" {
		value += "\n\n" + info.Documentation
	}
	rng := protocolRange(info.Start, info.End)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindPlainText, Value: value},
		Range:    &rng,
	}, nil
}

func (s *Server) onDocumentHighlight(_ *glsp.Context, params *protocol.DocumentHighlightParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	pos, ok := s.posFromParams(params.TextDocument.URI, params.Position)
	if !ok {
		return nil, nil
	}
	occs, err := s.state.DocumentHighlight(params.TextDocument.URI, pos)
	if err != nil || len(occs) == 0 {
		return nil, err
	}
	out := make([]protocol.DocumentHighlight, 0, len(occs))
	for _, o := range occs {
		out = append(out, protocol.DocumentHighlight{Range: protocolRange(o.Start, o.End)})
	}
	return out, nil
}

func (s *Server) onDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	entries, err := s.state.DocumentSymbols(params.TextDocument.URI)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	out := make([]any, 0, len(entries))
	for _, e := range entries {
		rng := protocolRange(e.Start, e.End)
		out = append(out, protocol.DocumentSymbol{
			Name:           e.Name,
			Kind:           symbolKindFor(e.Kind),
			Range:          rng,
			SelectionRange: rng,
		})
	}
	return out, nil
}

func (s *Server) onWorkspaceSymbol(_ *glsp.Context, params *protocol.WorkspaceSymbolParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	entries := s.state.WorkspaceSymbol(params.Query)
	if len(entries) == 0 {
		return nil, nil
	}
	out := make([]protocol.SymbolInformation, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.SymbolInformation{
			Name:     e.Name,
			Kind:     symbolKindFor(e.Kind),
			Location: protocolLocation(e.URI, e.Start, e.End),
		})
	}
	return out, nil
}

func (s *Server) onFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	entries, err := s.state.FoldingRange(params.TextDocument.URI)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	out := make([]protocol.FoldingRange, 0, len(entries))
	for _, e := range entries {
		out = append(out, protocol.FoldingRange{
			StartLine: e.Start.Row,
			EndLine:   e.End.Row,
		})
	}
	return out, nil
}

func (s *Server) onCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	uri := params.TextDocument.URI
	text, ok := s.state.BufferText(uri)
	if !ok {
		return nil, nil
	}
	byteOffset := params.Position.IndexIn(text)
	if byteOffset < 0 {
		return nil, nil
	}
	query := completionPrefix(text, byteOffset)
	pos := ir.Position{Row: params.Position.Line, Column: params.Position.Character, Byte: uint32(byteOffset)}

	candidates := s.state.Completion(uri, pos, query, false)
	out := make([]protocol.CompletionItem, 0, len(candidates))
	for _, c := range candidates {
		kind := completionItemKindFor(c.Metadata.Kind)
		detail := c.Metadata.Signature
		out = append(out, protocol.CompletionItem{
			Label:  c.Metadata.Name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return out, nil
}

func (s *Server) onExecuteCommand(_ *glsp.Context, params *protocol.ExecuteCommandParams) (any, error) {
	if s.state == nil {
		return nil, nil
	}
	if params.Command != cacheStatsCommand {
		return nil, nil
	}
	stats := s.state.CacheStats()
	return map[string]any{
		"queries":   stats.Queries,
		"hits":      stats.Hits,
		"misses":    stats.Misses,
		"evictions": stats.Evictions,
		"size":      stats.Size,
	}, nil
}

// completionPrefix returns the run of identifier bytes immediately before
// byteOffset in text, the partial word a completion request is narrowing.
func completionPrefix(text string, byteOffset int) string {
	if byteOffset < 0 || byteOffset > len(text) {
		return ""
	}
	start := byteOffset
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	return text[start:byteOffset]
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
