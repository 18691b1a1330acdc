package cache

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// CurrentCacheVersion is the on-disk format version. Increment on any
// breaking change to SerializableCachedDocument's shape; a version
// mismatch discards the entire cache directory rather than attempting a
// partial migration (§4.7, §7 CacheVersionMismatch).
const CurrentCacheVersion = 1

// CacheMetadata is the workspace cache directory's metadata.json.
type CacheMetadata struct {
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	EntryCount    int       `json:"entry_count"`
	ServerVersion string    `json:"server_version"`
}

// serialNode is the gob-friendly mirror of ir.SemanticNode: a plain struct
// tree with no interface fields, since the runtime *ir.Node's relevant
// state lives entirely behind exported accessor methods (Base, Category,
// TypeName, Language, ChildAt) plus three exported fields (Value,
// BoundNames, ChannelName). Metadata (symbol table handle, diagnostics,
// doc comments) is deliberately not persisted. The symbol-table handle is
// rebuilt in milliseconds by re-running internal/symtab over the restored
// tree, the same "skip what's cheap to reconstruct" policy the original
// cache applies to its parse tree and rope. Parse-error diagnostics and
// attached doc comments are not rebuilt: a restored tree carries none (the
// comment stream itself is persisted separately, see serialComment).
type serialNode struct {
	Base        ir.NodeBase
	Category    ir.SemanticCategory
	TypeName    string
	Language    ir.SourceLanguage
	Value       string
	BoundNames  []string
	ChannelName string
	Children    []*serialNode
}

func toSerialNode(n ir.SemanticNode) *serialNode {
	if n == nil {
		return nil
	}
	s := &serialNode{
		Base:     n.Base(),
		Category: n.Category(),
		TypeName: n.TypeName(),
		Language: n.Language(),
	}
	if gn, ok := n.(*ir.Node); ok {
		s.Value = gn.Value
		s.BoundNames = append([]string(nil), gn.BoundNames...)
		s.ChannelName = gn.ChannelName
	}
	count := n.ChildCount()
	if count == 0 {
		return s
	}
	s.Children = make([]*serialNode, count)
	for i := 0; i < count; i++ {
		s.Children[i] = toSerialNode(n.ChildAt(i))
	}
	return s
}

func (s *serialNode) toNode() ir.SemanticNode {
	if s == nil {
		return nil
	}
	children := make([]ir.SemanticNode, len(s.Children))
	for i, c := range s.Children {
		children[i] = c.toNode()
	}
	n := ir.NewNode(s.TypeName, s.Category, s.Language, s.Base, children)
	n.Value = s.Value
	n.BoundNames = append([]string(nil), s.BoundNames...)
	n.ChannelName = s.ChannelName
	return n
}

// serialComment is the gob-friendly mirror of ir.Comment, restoring the
// bridge-computed run-membership bits via RestoreRunFlags rather than
// replaying the whole document's comment stream.
type serialComment struct {
	Kind                ir.CommentKind
	Base                ir.NodeBase
	Text                string
	EndByte             uint32
	PrecedesDeclaration bool
	ContiguousWithNext  bool
}

func toSerialComment(c ir.Comment) serialComment {
	return serialComment{
		Kind:                c.Kind,
		Base:                c.Base,
		Text:                c.Text,
		EndByte:             c.EndByte(),
		PrecedesDeclaration: c.PrecedesDeclaration(),
		ContiguousWithNext:  c.ContiguousWithNext(),
	}
}

func (s serialComment) toComment() ir.Comment {
	c := ir.NewComment(s.Kind, s.Base, s.Text, s.EndByte)
	c.RestoreRunFlags(s.PrecedesDeclaration, s.ContiguousWithNext)
	return c
}

// SerializableCachedDocument is the per-entry on-disk payload: everything
// expensive to recompute (the parsed IR and comment stream), plus the
// metadata needed to validate and re-key the entry on load. Grounded on
// `persistent_cache.rs`'s `SerializableCachedDocument`, narrowed to what
// this module actually persists (see serialNode's doc comment).
type SerializableCachedDocument struct {
	URI        string
	ContentHash ContentHash
	Version    int
	Language   ir.SourceLanguage
	ModifiedAt time.Time

	root     *serialNode
	comments []serialComment
}

// NewSerializableCachedDocument captures doc (and its comment stream) into
// their on-disk mirror form.
func NewSerializableCachedDocument(uri string, hash ContentHash, version int, language ir.SourceLanguage, modifiedAt time.Time, doc ir.DocumentIR) SerializableCachedDocument {
	comments := make([]serialComment, len(doc.Comments))
	for i, c := range doc.Comments {
		comments[i] = toSerialComment(c)
	}
	return SerializableCachedDocument{
		URI:         uri,
		ContentHash: hash,
		Version:     version,
		Language:    language,
		ModifiedAt:  modifiedAt,
		root:        toSerialNode(doc.Root),
		comments:    comments,
	}
}

// DocumentIR reconstructs the ir.DocumentIR this entry captured.
func (e SerializableCachedDocument) DocumentIR() ir.DocumentIR {
	comments := make([]ir.Comment, len(e.comments))
	for i, c := range e.comments {
		comments[i] = c.toComment()
	}
	return ir.DocumentIR{Root: e.root.toNode(), Comments: comments}
}

// gobEntry is the exact shape written to disk; SerializableCachedDocument
// keeps root/comments unexported so callers go through DocumentIR()/
// NewSerializableCachedDocument rather than touching the mirror types, but
// gob needs exported fields to encode, hence the separate transfer struct.
type gobEntry struct {
	URI         string
	ContentHash ContentHash
	Version     int
	Language    ir.SourceLanguage
	ModifiedAt  time.Time
	Root        *serialNode
	Comments    []serialComment
}

func (e SerializableCachedDocument) toGob() gobEntry {
	return gobEntry{
		URI:         e.URI,
		ContentHash: e.ContentHash,
		Version:     e.Version,
		Language:    e.Language,
		ModifiedAt:  e.ModifiedAt,
		Root:        e.root,
		Comments:    e.comments,
	}
}

func (g gobEntry) toSerializable() SerializableCachedDocument {
	return SerializableCachedDocument{
		URI:         g.URI,
		ContentHash: g.ContentHash,
		Version:     g.Version,
		Language:    g.Language,
		ModifiedAt:  g.ModifiedAt,
		root:        g.Root,
		comments:    g.Comments,
	}
}

// PersistentCache is the on-disk warm-start store for one workspace,
// rooted at a version-segregated, workspace-hashed directory (§6's
// on-disk cache layout).
type PersistentCache struct {
	dir string
}

// WorkspaceCacheDir computes the workspace-specific cache directory:
// baseCacheDir/v<VERSION>/workspace-<hash16>, where hash16 is the first 16
// hex digits of blake3(workspaceRoot).
func WorkspaceCacheDir(baseCacheDir, workspaceRoot string) string {
	hash := ComputeContentHash([]byte(workspaceRoot))
	hex := hash.String()[:16]
	return filepath.Join(baseCacheDir, fmt.Sprintf("v%d", CurrentCacheVersion), "workspace-"+hex)
}

// OpenPersistentCache opens (creating if absent) the cache directory for
// workspaceRoot under baseCacheDir. A format-version mismatch in an
// existing metadata.json wipes the directory before proceeding: per §7,
// CacheVersionMismatch silently invalidates the whole cache rather than
// attempting partial reuse.
func OpenPersistentCache(baseCacheDir, workspaceRoot, serverVersion string) (*PersistentCache, error) {
	dir := WorkspaceCacheDir(baseCacheDir, workspaceRoot)

	if meta, err := readMetadata(dir); err == nil && meta.Version != CurrentCacheVersion {
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("cache: invalidating stale version at %s: %w", dir, err)
		}
	}

	if err := os.MkdirAll(filepath.Join(dir, "documents"), 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", dir, err)
	}

	pc := &PersistentCache{dir: dir}
	if _, err := readMetadata(dir); err != nil {
		if writeErr := pc.writeMetadata(0, serverVersion); writeErr != nil {
			return nil, writeErr
		}
	}
	return pc, nil
}

func (p *PersistentCache) metadataPath() string { return filepath.Join(p.dir, "metadata.json") }

// DictionaryPath returns the on-disk path for the persisted completion
// dictionary snapshot, stored alongside this cache's per-document entries
// so both warm-start under the same version-segregated, workspace-hashed
// directory (§6's on-disk cache layout).
func (p *PersistentCache) DictionaryPath() string {
	return filepath.Join(p.dir, "dictionary.bin")
}

func (p *PersistentCache) documentPath(uri string) string {
	hash := ComputeContentHash([]byte(uri))
	return filepath.Join(p.dir, "documents", hash.String()[:16]+".bin")
}

func readMetadata(dir string) (CacheMetadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return CacheMetadata{}, err
	}
	var meta CacheMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return CacheMetadata{}, err
	}
	return meta, nil
}

func (p *PersistentCache) writeMetadata(entryCount int, serverVersion string) error {
	meta := CacheMetadata{
		Version:       CurrentCacheVersion,
		CreatedAt:     time.Now(),
		EntryCount:    entryCount,
		ServerVersion: serverVersion,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(p.metadataPath(), data)
}

// Save writes entry atomically (write-temp, then rename). A failure here
// is a CacheIOFailure per §7: callers should log and continue, never
// surface it to the LSP client.
func (p *PersistentCache) Save(entry SerializableCachedDocument) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entry.toGob()); err != nil {
		return fmt.Errorf("cache: encoding entry for %s: %w", entry.URI, err)
	}
	return atomicWrite(p.documentPath(entry.URI), buf.Bytes())
}

// Load reads uri's entry back, returning (entry, false, nil) if no entry
// exists (a plain cache miss, not an error). currentModTime is the
// document's current on-disk modification time, used for the mtime
// validation pass (§4.7): an entry older than the file's current mtime is
// invalid and discarded, never returned.
func (p *PersistentCache) Load(uri string, currentModTime time.Time) (SerializableCachedDocument, bool, error) {
	data, err := os.ReadFile(p.documentPath(uri))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return SerializableCachedDocument{}, false, nil
		}
		return SerializableCachedDocument{}, false, err
	}

	var g gobEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return SerializableCachedDocument{}, false, fmt.Errorf("cache: decoding entry for %s: %w", uri, err)
	}

	entry := g.toSerializable()
	if currentModTime.After(entry.ModifiedAt) {
		return SerializableCachedDocument{}, false, nil
	}
	return entry, true, nil
}

// Remove deletes uri's persisted entry, if any.
func (p *PersistentCache) Remove(uri string) error {
	err := os.Remove(p.documentPath(uri))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// atomicWrite writes data to a temp file in path's directory, then renames
// it over path, so a crash mid-write never leaves a truncated file at path.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
