// Package completion maintains the workspace-wide completion dictionary and
// ranks candidates returned from prefix and fuzzy queries (§4.11).
package completion

import (
	"bufio"
	"encoding/gob"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// SymbolMetadata is what the dictionary stores per declared name: enough
// for a completion item without re-touching the document that declared it.
type SymbolMetadata struct {
	Name           string
	Kind           string
	Documentation  string
	Signature      string
	ReferenceCount int
}

// Dictionary is the workspace-global completion index: every document
// contributes the names it declares, keyed so a re-index can cleanly
// retract a document's prior contributions before adding its fresh ones
// (mirroring `indexer.Driver`'s remove-then-readd edge handling).
type Dictionary struct {
	mu      sync.RWMutex
	entries map[string]SymbolMetadata
	byURI   map[string]map[string]struct{}
}

// NewDictionary constructs an empty completion dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		entries: make(map[string]SymbolMetadata),
		byURI:   make(map[string]map[string]struct{}),
	}
}

// Insert records or overwrites uri's contribution of metadata under its Name.
func (d *Dictionary) Insert(uri string, metadata SymbolMetadata) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries[metadata.Name] = metadata
	names, ok := d.byURI[uri]
	if !ok {
		names = make(map[string]struct{})
		d.byURI[uri] = names
	}
	names[metadata.Name] = struct{}{}
}

// RemoveDocumentSymbols retracts every name uri previously contributed.
// A re-index calls this before Insert-ing the document's fresh symbol set,
// so a renamed or deleted declaration cannot linger in the dictionary.
func (d *Dictionary) RemoveDocumentSymbols(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for name := range d.byURI[uri] {
		delete(d.entries, name)
	}
	delete(d.byURI, uri)
}

// SetReferenceCount updates name's stored ReferenceCount in place, if an
// entry exists for it. Called after the workspace-wide cross-file linking
// pass recomputes use counts from scratch, so a deleted call site's count
// drops rather than lingering at its last indexed value.
func (d *Dictionary) SetReferenceCount(name string, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry, ok := d.entries[name]
	if !ok {
		return
	}
	entry.ReferenceCount = count
	d.entries[name] = entry
}

// QueryPrefix returns every entry whose name starts with prefix, compared
// under Unicode NFC normalization so visually identical names in different
// normalization forms still match (the same guard the teacher applies to
// Twig identifiers via golang.org/x/text).
func (d *Dictionary) QueryPrefix(prefix string) []SymbolMetadata {
	d.mu.RLock()
	defer d.mu.RUnlock()

	normPrefix := norm.NFC.String(prefix)
	var out []SymbolMetadata
	for name, metadata := range d.entries {
		if strings.HasPrefix(norm.NFC.String(name), normPrefix) {
			out = append(out, metadata)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// QueryFuzzy returns every entry within maxDistance edits of query under
// algorithm, each paired with its computed distance so a caller can feed
// the result straight into RankCompletions.
func (d *Dictionary) QueryFuzzy(query string, maxDistance int, algorithm Algorithm) []CompletionSymbol {
	d.mu.RLock()
	defer d.mu.RUnlock()

	normQuery := norm.NFC.String(query)
	var out []CompletionSymbol
	for name, metadata := range d.entries {
		distance, ok := EditDistance(normQuery, norm.NFC.String(name), algorithm, maxDistance)
		if !ok {
			continue
		}
		out = append(out, CompletionSymbol{Metadata: metadata, Distance: distance})
	}
	return out
}

// gobEntry is the on-disk shape Dictionary persists, since gob cannot
// encode the map[string]map[string]struct{} ownership index directly.
type gobEntry struct {
	URI      string
	Metadata SymbolMetadata
}

// SaveToFile persists the dictionary alongside the document cache, so a
// restarted server can serve completions before the first re-index
// finishes.
func (d *Dictionary) SaveToFile(path string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var records []gobEntry
	for uri, names := range d.byURI {
		for name := range names {
			records = append(records, gobEntry{URI: uri, Metadata: d.entries[name]})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].URI != records[j].URI {
			return records[i].URI < records[j].URI
		}
		return records[i].Metadata.Name < records[j].Metadata.Name
	})

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gob.NewEncoder(w).Encode(records); err != nil {
		return err
	}
	return w.Flush()
}

// LoadDictionaryFromFile reconstructs a Dictionary previously written by
// SaveToFile.
func LoadDictionaryFromFile(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var records []gobEntry
	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(&records); err != nil {
		return nil, err
	}

	d := NewDictionary()
	for _, rec := range records {
		d.Insert(rec.URI, rec.Metadata)
	}
	return d, nil
}
