package workspace

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/tliron/commonlog"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/cache"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/completion"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/config"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/depgraph"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/dirty"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/indexer"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/patindex"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/resolve"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/symtab"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/utils"
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/vdoc"
)

var logger = commonlog.GetLoggerf("rho-lsp.workspace")

// State is the single process-wide record of everything the server knows
// about the open workspace: the document cache, the dependency and pattern
// indexes, the completion dictionary, and the per-language resolver chains
// that every query (definition, references, rename, hover, completion)
// reads from. One State is created at `initialize` and torn down at
// `shutdown`.
type State struct {
	config     *config.Config
	parser     Parser
	fileReader FileReader

	cache      *cache.MemoryCache[*Document]
	persistent *cache.PersistentCache

	mu          sync.RWMutex
	currentHash map[string]cache.ContentHash
	openBuffers map[string]string
	versions    map[string]int
	declaredBy  map[string][]string // uri -> global names it last contributed

	dirty  *dirty.Tracker
	graph  *depgraph.Graph
	driver *indexer.Driver

	patIndex *patindex.Index
	dict     *completion.Dictionary

	vdocRegistry *vdoc.DetectorRegistry
	vdocWorker   *vdoc.Worker

	globals   map[ir.SourceLanguage]*resolve.GenericGlobalResolver
	resolvers map[ir.SourceLanguage]resolve.SymbolResolver

	stopBackground context.CancelFunc
}

// New constructs a State wired to cfg. A nil parser defaults to
// PlaceholderParser; a nil reader defaults to reading from the local
// filesystem.
func New(cfg *config.Config, parser Parser, reader FileReader) *State {
	if parser == nil {
		parser = PlaceholderParser{}
	}
	if reader == nil {
		reader = osFileReader{}
	}

	s := &State{
		config:       cfg,
		parser:       parser,
		fileReader:   reader,
		cache:        cache.NewMemoryCache[*Document](cfg.CacheCapacity()),
		currentHash:  make(map[string]cache.ContentHash),
		openBuffers:  make(map[string]string),
		versions:     make(map[string]int),
		declaredBy:   make(map[string][]string),
		dirty:        dirty.NewTrackerWithDebounce(cfg.DebounceWindow()),
		graph:        depgraph.New(),
		patIndex:     patindex.NewIndex(),
		dict:         completion.NewDictionary(),
		vdocRegistry: vdoc.NewDetectorRegistryWithDefaults(),
		globals:      make(map[ir.SourceLanguage]*resolve.GenericGlobalResolver),
		resolvers:    make(map[ir.SourceLanguage]resolve.SymbolResolver),
	}
	s.vdocWorker = vdoc.NewWorker(s.vdocRegistry)

	for _, lang := range []ir.SourceLanguage{ir.LanguageRholang, ir.LanguageMetta} {
		global := resolve.NewGenericGlobalResolver(lang)
		s.globals[lang] = global
		lexicalChain := resolve.NewComposableSymbolResolver(resolve.NewLexicalResolver(lang), nil, global)
		if lang == ir.LanguageRholang {
			s.resolvers[lang] = resolve.NewComposableSymbolResolver(
				resolve.NewPatternAwareResolver(s.patIndex), nil, lexicalChain,
			)
		} else {
			s.resolvers[lang] = lexicalChain
		}
	}

	if dir, err := cfg.PersistentCacheDir(); err == nil && dir != "" {
		if pc, err := cache.OpenPersistentCache(dir, cfg.WorkspaceRoot(), cfg.ServerVersion()); err == nil {
			s.persistent = pc
			if dict, err := completion.LoadDictionaryFromFile(pc.DictionaryPath()); err == nil {
				s.dict = dict
			}
		} else {
			logger.Warningf("persistent cache unavailable, starting cold: %v", err)
		}
	}

	s.driver = indexer.New(s.dirty, s.graph, s)

	return s
}

// StartBackgroundIndexing launches a ticker-driven loop that drains the
// dirty set and runs a re-index cycle whenever the debounce window has
// elapsed. Cancel ctx (or call Shutdown) to stop it.
func (s *State) StartBackgroundIndexing(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		tick = dirty.DefaultDebounce
	}
	ctx, cancel := context.WithCancel(ctx)
	s.stopBackground = cancel

	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.driver.MaybeRun(ctx); err != nil {
					logger.Warningf("background re-index cycle failed: %v", err)
				}
			}
		}
	}()
}

// Shutdown stops background indexing and the embedded-region worker, and
// flushes the completion dictionary to disk for the next warm start.
func (s *State) Shutdown() {
	if s.stopBackground != nil {
		s.stopBackground()
	}
	s.vdocWorker.Stop()
	s.persistDictionary()
}

// persistDictionary snapshots the completion dictionary to the persistent
// cache directory, so a restarted server's New can reload it via
// completion.LoadDictionaryFromFile instead of waiting for the first
// re-index cycle to repopulate it from scratch (§4.7, §D.1).
func (s *State) persistDictionary() {
	if s.persistent == nil {
		return
	}
	if err := s.dict.SaveToFile(s.persistent.DictionaryPath()); err != nil {
		logger.Warningf("persistent dictionary write failed: %v", err)
	}
}

func (s *State) resolverFor(language ir.SourceLanguage) resolve.SymbolResolver {
	if r, ok := s.resolvers[language]; ok {
		return r
	}
	return s.resolvers[ir.LanguageRholang]
}

func (s *State) globalFor(language ir.SourceLanguage) *resolve.GenericGlobalResolver {
	if g, ok := s.globals[language]; ok {
		return g
	}
	return s.globals[ir.LanguageRholang]
}

// documentAt returns the currently cached Document for uri, following its
// last-known content hash. Ordinary LRU eviction of a non-open document
// means a miss here is possible even for a uri this State has indexed
// before; callers treat a miss as "not currently available," not an error.
func (s *State) documentAt(uri string) (*Document, bool) {
	s.mu.RLock()
	hash, ok := s.currentHash[uri]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return s.cache.Get(cache.CacheKey{URI: uri, Hash: hash})
}

// BufferText returns uri's current in-memory buffer text, for a transport
// layer that needs to fold an incremental textDocument/didChange delta onto
// the document's last known text before calling ChangeDocument.
func (s *State) BufferText(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.openBuffers[uri]
	return text, ok
}

// OpenDocument registers uri as open in the editor with text, and marks it
// dirty for re-indexing at high priority (§4.9's open-document priority).
func (s *State) OpenDocument(uri, text string, version int) {
	s.mu.Lock()
	s.openBuffers[uri] = text
	s.versions[uri] = version
	s.mu.Unlock()
	s.dirty.MarkDirty(uri, dirty.PriorityHigh, dirty.DidOpen)
}

// ChangeDocument updates uri's in-memory text to the post-edit full
// document text (the incremental-edit-application step, if any, has
// already happened by the time this is called) and marks it dirty.
func (s *State) ChangeDocument(uri, text string, version int) {
	s.mu.Lock()
	s.openBuffers[uri] = text
	s.versions[uri] = version
	s.mu.Unlock()
	s.dirty.MarkDirty(uri, dirty.PriorityHigh, dirty.DidChange)
}

// SaveDocument marks uri dirty with DidSave, so a re-index runs even if the
// editor's save round-trip produced no didChange (e.g. external formatting).
func (s *State) SaveDocument(uri string) {
	s.dirty.MarkDirty(uri, dirty.PriorityHigh, dirty.DidSave)
}

// CloseDocument unpins uri from the in-memory cache (making it eligible for
// LRU eviction) and forgets its open-buffer text, then marks it dirty at
// normal priority so the next re-index cycle rebuilds its index entries
// from the file's on-disk content.
func (s *State) CloseDocument(uri string) {
	s.mu.Lock()
	delete(s.openBuffers, uri)
	hash, ok := s.currentHash[uri]
	s.mu.Unlock()
	if ok {
		s.cache.MarkClosed(cache.CacheKey{URI: uri, Hash: hash})
	}
	s.dirty.MarkDirty(uri, dirty.PriorityNormal, dirty.FileWatcher)
}

// FlushNow runs an immediate, unconditional re-index cycle, bypassing the
// debounce window (used by the server on didOpen and didSave, before it
// publishes diagnostics).
func (s *State) FlushNow(ctx context.Context) ([]indexer.Result, error) {
	return s.driver.Run(ctx)
}

func (s *State) readText(uri string) (string, error) {
	s.mu.RLock()
	text, open := s.openBuffers[uri]
	s.mu.RUnlock()
	if open {
		return text, nil
	}
	return s.fileReader.ReadFile(uri)
}

// warmStart returns uri's persisted parse tree in place of re-parsing it,
// when uri isn't currently open (an open buffer's text lives only in
// memory and changes on every edit, so there's nothing on disk to warm
// start from) and the persistent cache holds an entry for it whose content
// hash exactly matches hash. Load's own mtime check (§4.7) only rejects an
// entry older than the file on disk; comparing hashes too rejects an entry
// whose content differs from the file even though the file's mtime is not
// newer (e.g. an entry saved from an unsaved editor buffer), so a
// re-index never silently reuses a tree for content it doesn't match. This
// is the read half of the warm-start path IndexFile's Save keeps feeding
// on every cold re-index (scenario: reopening the same workspace finishes
// in strictly less time than a cold start because the parser is skipped
// for every file the cache already holds).
func (s *State) warmStart(uri string, hash cache.ContentHash) (ir.DocumentIR, bool) {
	if s.persistent == nil {
		return ir.DocumentIR{}, false
	}
	s.mu.RLock()
	_, open := s.openBuffers[uri]
	s.mu.RUnlock()
	if open {
		return ir.DocumentIR{}, false
	}

	info, err := os.Stat(utils.UriToPath(uri))
	if err != nil {
		return ir.DocumentIR{}, false
	}
	entry, ok, err := s.persistent.Load(uri, info.ModTime())
	if err != nil || !ok || entry.ContentHash != hash {
		return ir.DocumentIR{}, false
	}
	return entry.DocumentIR(), true
}

// IndexFile implements indexer.FileIndexer: re-parse uri, rebuild its
// symbol table and this document's contributions to the pattern index,
// completion dictionary, and global resolver, then return the set of other
// files uri's unresolved-locally identifiers point at (the implicit
// cross-file references §4.9 asks the dependency graph to track).
func (s *State) IndexFile(ctx context.Context, uri string) ([]string, error) {
	text, err := s.readText(uri)
	if err != nil {
		return nil, err
	}

	language := detectLanguage(uri)
	hash := cache.ComputeContentHash([]byte(text))

	docIR, warm := s.warmStart(uri, hash)
	if !warm {
		parseNode, err := s.parser.Parse(text, language)
		if err != nil {
			return nil, err
		}
		docIR = ir.BuildDocumentIR(parseNode, language)
	}

	table := symtab.Build(uri, docIR)
	regions := s.vdocRegistry.DetectAll(text, docIR)

	s.mu.RLock()
	version := s.versions[uri]
	s.mu.RUnlock()

	global := s.globalFor(language)

	s.mu.Lock()
	staleNames := s.declaredBy[uri]
	s.mu.Unlock()

	s.dict.RemoveDocumentSymbols(uri)
	for _, name := range staleNames {
		global.RemoveURI(name, uri)
	}

	freshNames := make([]string, 0, len(table.Globals))
	for _, sym := range table.Globals {
		freshNames = append(freshNames, sym.Name)
		global.Index(sym.Name, resolve.SymbolLocation{
			URI:        uri,
			Start:      sym.Location.Start,
			End:        sym.Location.End,
			Kind:       resolve.SymbolKindFunction,
			Confidence: resolve.ConfidenceExact,
		})
		s.dict.Insert(uri, completion.SymbolMetadata{
			Name: sym.Name,
			Kind: sym.Kind.String(),
		})
	}

	for _, decl := range collectContracts(docIR.Root, ir.Position{}) {
		decl.loc.URI = uri
		s.patIndex.Insert(decl.name, decl.shape, decl.loc)
		s.patIndex.InvalidateContractIndex(decl.name)
	}

	doc := &Document{
		URI:      uri,
		Text:     text,
		Language: language,
		Version:  version,
		Hash:     hash,
		Doc:      docIR,
		SymTab:   table,
		Regions:  regions,
	}
	s.cache.Insert(cache.CacheKey{URI: uri, Hash: hash}, doc, time.Now())

	s.mu.Lock()
	s.currentHash[uri] = hash
	s.declaredBy[uri] = freshNames
	s.mu.Unlock()

	if s.persistent != nil && !warm {
		// A warm-started entry is already on disk byte-for-byte (its content
		// hash matched), so re-saving it would just burn a write for no
		// change.
		entry := cache.NewSerializableCachedDocument(uri, hash, doc.Version, language, time.Now(), docIR)
		if err := s.persistent.Save(entry); err != nil {
			logger.Warningf("persistent cache write failed for %s: %v", uri, err)
		}
	}

	var dependsOn []string
	resolver := s.resolverFor(language)
	walkUses(docIR.Root, ir.Position{}, false, func(name string, _, _ ir.Position, scope *symtab.Scope) {
		locs := resolver.Resolve(name, resolve.ResolutionContext{URI: uri, Language: language, Scope: scope})
		for _, loc := range locs {
			if loc.URI != "" && loc.URI != uri {
				dependsOn = utils.AppendUnique(dependsOn, loc.URI)
			}
		}
	})

	return dependsOn, nil
}

// LinkSymbols implements indexer.FileIndexer's batched cross-file pass: for
// every currently cached document, re-walk its genuine (non-binder)
// identifier occurrences, resolve each through the full per-language
// resolver chain, and record the hit on the declaring document's inverted
// use index. Completion reference counts are then recomputed from scratch,
// so a deleted call site's count drops rather than lingering.
func (s *State) LinkSymbols(ctx context.Context) {
	snapshot := s.cache.Snapshot()

	for _, doc := range snapshot {
		if doc == nil || doc.SymTab == nil {
			continue
		}
		doc.SymTab.ResetUses()
	}

	for _, doc := range snapshot {
		if doc == nil || doc.Doc.Root == nil {
			continue
		}
		resolver := s.resolverFor(doc.Language)
		docURI := doc.URI
		walkUses(doc.Doc.Root, ir.Position{}, false, func(name string, start, end ir.Position, scope *symtab.Scope) {
			locs := resolver.Resolve(name, resolve.ResolutionContext{URI: docURI, Language: doc.Language, Scope: scope})
			if len(locs) == 0 {
				return
			}
			best := locs[0]
			declDoc, ok := s.documentAt(best.URI)
			if !ok || declDoc.SymTab == nil {
				return
			}
			declDoc.SymTab.RecordUse(best.Start.Byte, symtab.Location{URI: docURI, Start: start, End: end})
		})
	}

	for _, doc := range snapshot {
		if doc == nil || doc.SymTab == nil {
			continue
		}
		for _, g := range doc.SymTab.Globals {
			count := len(doc.SymTab.UsesOf(g.Location.Start.Byte))
			s.dict.SetReferenceCount(g.Name, count)
		}
	}

	s.persistDictionary()
}

// contractDecl is one contract declaration's pattern-index contribution,
// gathered by collectContracts.
type contractDecl struct {
	name  string
	shape []byte
	loc   patindex.Location
}

// collectContracts finds every contract declaration in n's subtree and
// encodes its formals shape for overload resolution (§4.5). A contract's
// first child is its own name (excluded from the shape, matching
// extractChannelName's treatment of the call site's channel); its last
// child is its body (excluded as not part of the formals); everything
// between is the formals pattern encoded exactly as Send's argument list is
// at a call site, so QueryByPattern can match one against the other.
func collectContracts(n ir.SemanticNode, start ir.Position) []contractDecl {
	var out []contractDecl
	var walk func(ir.SemanticNode, ir.Position)
	walk = func(cur ir.SemanticNode, curStart ir.Position) {
		if cur == nil {
			return
		}
		if gn, ok := cur.(*ir.Node); ok && gn.TypeName() == ir.KindContract && gn.ChannelName != "" && gn.ChildCount() >= 2 {
			var nameStart ir.Position
			var formals []ir.SemanticNode
			childPrevEnd := curStart
			for i := 0; i < gn.ChildCount(); i++ {
				child := gn.ChildAt(i)
				childStart := ir.AbsolutePosition(child, childPrevEnd)
				switch {
				case i == 0:
					nameStart = childStart
				case i < gn.ChildCount()-1:
					// A middle child is typically a Formals wrapper around
					// the individual formal patterns; EncodeShapes needs
					// those patterns themselves; a middle child with no
					// children of its own (a bare formal, no wrapper) is
					// used directly.
					if child.ChildCount() > 0 {
						for j := 0; j < child.ChildCount(); j++ {
							formals = append(formals, child.ChildAt(j))
						}
					} else {
						formals = append(formals, child)
					}
				}
				childPrevEnd = ir.AbsoluteEnd(child, childStart)
			}
			if shape, ok := patindex.EncodeShapes(formals); ok {
				out = append(out, contractDecl{
					name:  gn.ChannelName,
					shape: shape,
					loc:   patindex.Location{Byte: nameStart.Byte, Line: nameStart.Row, Col: nameStart.Column},
				})
			}
		}

		childPrevEnd := curStart
		for i := 0; i < cur.ChildCount(); i++ {
			child := cur.ChildAt(i)
			if child == nil {
				continue
			}
			childStart := ir.AbsolutePosition(child, childPrevEnd)
			walk(child, childStart)
			childPrevEnd = ir.AbsoluteEnd(child, childStart)
		}
	}
	walk(n, start)
	return out
}

// walkUses visits every genuine (non-binder) CategoryVariable occurrence in
// n's subtree, in document order, calling visit with its name, span, and
// the lexical scope attached to it. A binding construct's binder children
// (everything but its last/body child) are skipped, mirroring
// internal/symtab/builder.go's own binder/body split: those occurrences are
// declarations, not uses.
func walkUses(n ir.SemanticNode, start ir.Position, skip bool, visit func(name string, start, end ir.Position, scope *symtab.Scope)) {
	if n == nil {
		return
	}
	end := ir.AbsoluteEnd(n, start)

	if !skip && n.Category() == ir.CategoryVariable {
		if gn, ok := n.(*ir.Node); ok && gn.Value != "" && gn.TypeName() != ir.KindWildcard {
			scope, _ := n.Metadata().SymbolTable.(*symtab.Scope)
			visit(gn.Value, start, end, scope)
		}
	}

	childCount := n.ChildCount()
	prevEnd := start
	for i := 0; i < childCount; i++ {
		child := n.ChildAt(i)
		if child == nil {
			continue
		}
		childStart := ir.AbsolutePosition(child, prevEnd)

		childSkip := skip
		if n.Category() == ir.CategoryBinding {
			childSkip = i < childCount-1
		}

		walkUses(child, childStart, childSkip, visit)
		prevEnd = ir.AbsoluteEnd(child, childStart)
	}
}
