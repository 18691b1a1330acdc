// Package server wires the glsp JSON-RPC transport to internal/workspace's
// State: every handler here is a thin translator between LSP wire types and
// the domain-layer queries State exposes, the same transport/domain split
// the teacher keeps between internal/server and its state package.
package server

import (
	"context"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/config"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/utils"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/workspace"
)

const lsName = "rho-lsp"

var version = "0.1.0"

var serverLogger = commonlog.GetLoggerf("rho-lsp.server")

// Server owns the glsp handler table and the workspace State it delegates
// every request to. State itself isn't built until initialize tells us the
// workspace root.
type Server struct {
	config *config.Config
	state  *workspace.State
	h      protocol.Handler
}

// NewServer builds a Server with its handler table wired, but no State yet.
func NewServer() *Server {
	s := &Server{
		config: config.NewConfig(),
	}
	s.h = protocol.Handler{
		Initialize:                    s.initialize,
		Initialized:                   s.initialized,
		Shutdown:                      s.shutdown,
		SetTrace:                      s.setTrace,
		TextDocumentDidOpen:           s.didOpen,
		TextDocumentDidChange:         s.didChange,
		TextDocumentDidSave:           s.didSave,
		TextDocumentDidClose:          s.didClose,
		TextDocumentDefinition:        s.onDefinition,
		TextDocumentReferences:        s.onReferences,
		TextDocumentRename:            s.onRename,
		TextDocumentHover:             s.onHover,
		TextDocumentDocumentHighlight: s.onDocumentHighlight,
		TextDocumentDocumentSymbol:    s.onDocumentSymbol,
		TextDocumentFoldingRange:      s.onFoldingRange,
		TextDocumentCompletion:        s.onCompletion,
		WorkspaceSymbol:               s.onWorkspaceSymbol,
		WorkspaceExecuteCommand:       s.onExecuteCommand,
	}
	return s
}

// Run starts the stdio JSON-RPC loop; it blocks until the client
// disconnects or sends `exit`.
func (s *Server) Run() {
	srv := glspserver.NewServer(&s.h, lsName, false)
	srv.RunStdio()
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	caps := s.h.CreateServerCapabilities()
	openClose := true
	change := protocol.TextDocumentSyncKindIncremental
	caps.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &openClose,
		Change:    &change,
	}
	caps.DefinitionProvider = true
	caps.ReferencesProvider = true
	caps.RenameProvider = true
	caps.HoverProvider = true
	caps.DocumentHighlightProvider = true
	caps.DocumentSymbolProvider = true
	caps.WorkspaceSymbolProvider = true
	caps.FoldingRangeProvider = true
	caps.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"!", "."},
	}
	caps.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: []string{cacheStatsCommand},
	}

	if params.RootURI != nil {
		s.config.WorkspaceRootPath = utils.UriToPath(*params.RootURI)
	} else if len(params.WorkspaceFolders) > 0 {
		s.config.WorkspaceRootPath = utils.UriToPath(params.WorkspaceFolders[0].URI)
	} else {
		s.config.WorkspaceRootPath = "."
	}

	s.config.ApplyInitializationOptions(params.InitializationOptions)
	s.config.LoadProjectOverride()

	s.state = workspace.New(s.config, nil, nil)
	s.state.StartBackgroundIndexing(context.Background(), s.config.DebounceWindow())

	serverLogger.Infof("initialized workspace root %s", s.config.WorkspaceRoot())

	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error { return nil }

func (s *Server) shutdown(_ *glsp.Context) error {
	if s.state != nil {
		s.state.Shutdown()
	}
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, p *protocol.SetTraceParams) error {
	protocol.SetTraceValue(p.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, p *protocol.DidOpenTextDocumentParams) error {
	if s.state == nil {
		return nil
	}
	s.state.OpenDocument(p.TextDocument.URI, p.TextDocument.Text, int(p.TextDocument.Version))
	s.publishDiagnostics(ctx, p.TextDocument.URI)
	return nil
}

func (s *Server) didChange(_ *glsp.Context, p *protocol.DidChangeTextDocumentParams) error {
	if s.state == nil {
		return nil
	}
	uri := p.TextDocument.URI
	text, ok := s.state.BufferText(uri)
	if !ok {
		return nil
	}

	for _, c := range p.ContentChanges {
		switch ch := c.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = ch.Text
		case protocol.TextDocumentContentChangeEvent:
			start := ch.Range.Start.IndexIn(text)
			end := ch.Range.End.IndexIn(text)
			if start >= 0 && end >= start && end <= len(text) {
				text = text[:start] + ch.Text + text[end:]
			}
		}
	}
	s.state.ChangeDocument(uri, text, int(p.TextDocument.Version))
	return nil
}

func (s *Server) didSave(ctx *glsp.Context, p *protocol.DidSaveTextDocumentParams) error {
	if s.state == nil {
		return nil
	}
	s.state.SaveDocument(p.TextDocument.URI)
	s.publishDiagnostics(ctx, p.TextDocument.URI)
	return nil
}

// publishDiagnostics forces an immediate re-index of uri (bypassing the
// debounce window that would otherwise defer it to the background ticker)
// and pushes whatever parse-error diagnostics it finds. Called on open and
// save, when a client expects immediate feedback; didChange leaves
// diagnosing to the debounced background cycle instead of reparsing on
// every keystroke.
func (s *Server) publishDiagnostics(ctx *glsp.Context, uri string) {
	if _, err := s.state.FlushNow(context.Background()); err != nil {
		serverLogger.Warningf("re-index before publishing diagnostics failed: %v", err)
	}

	diags := s.state.Diagnostics(uri)
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		sev := protocol.DiagnosticSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    protocolRange(d.Start, d.End),
			Severity: &sev,
			Message:  d.Message,
		})
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: out,
	})
}

func (s *Server) didClose(_ *glsp.Context, p *protocol.DidCloseTextDocumentParams) error {
	if s.state == nil {
		return nil
	}
	s.state.CloseDocument(p.TextDocument.URI)
	return nil
}
