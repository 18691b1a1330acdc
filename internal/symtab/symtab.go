// Package symtab builds and queries the lexical scope tree and the
// workspace-global symbol index described by the workspace analysis engine.
package symtab

import (
	"sync"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// Kind classifies a declared symbol for resolution and completion.
type Kind int

const (
	KindVariable Kind = iota
	KindContract
	KindBundle
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindBundle:
		return "bundle"
	default:
		return "variable"
	}
}

// Location pairs a document URI with a position range.
type Location struct {
	URI   string
	Start ir.Position
	End   ir.Position
}

// Symbol is a single bound name together with where it was declared.
type Symbol struct {
	Name     string
	Kind     Kind
	Location Location
}

// Scope is one node of the lexical scope tree. The root scope has no
// parent; every binding construct (contract, new, let, receive pattern)
// opens a child scope over its body.
type Scope struct {
	parent   *Scope
	children []*Scope
	symbols  map[string][]*Symbol
	// Start/End mark the byte extent the scope governs, so a position can
	// be mapped to its innermost enclosing scope via ScopeAt.
	Start, End ir.Position
}

// NewScope creates a scope as a child of parent (nil for the root).
func NewScope(parent *Scope, start, end ir.Position) *Scope {
	s := &Scope{parent: parent, symbols: make(map[string][]*Symbol), Start: start, End: end}
	if parent != nil {
		parent.children = append(parent.children, s)
	}
	return s
}

// Define binds name in this scope.
func (s *Scope) Define(sym *Symbol) {
	s.symbols[sym.Name] = append(s.symbols[sym.Name], sym)
}

// Lookup searches this scope then walks parent links, returning the
// innermost matching declaration.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if syms, ok := cur.symbols[name]; ok && len(syms) > 0 {
			return syms[len(syms)-1], true
		}
	}
	return nil, false
}

// Shadowed returns every binding for name visible from this scope,
// innermost first, including the ones an inner declaration shadows.
func (s *Scope) Shadowed(name string) []*Symbol {
	var out []*Symbol
	for cur := s; cur != nil; cur = cur.parent {
		if syms, ok := cur.symbols[name]; ok {
			for i := len(syms) - 1; i >= 0; i-- {
				out = append(out, syms[i])
			}
		}
	}
	return out
}

// ScopeAt returns the innermost descendant scope (possibly s itself) whose
// extent contains byte pos.
func (s *Scope) ScopeAt(byteOffset uint32) *Scope {
	for _, child := range s.children {
		if byteOffset >= child.Start.Byte && byteOffset < child.End.Byte {
			return child.ScopeAt(byteOffset)
		}
	}
	return s
}

// Depth returns the number of ancestor scopes between s and the root
// (0 for the root itself), used by completion ranking as a proxy for how
// lexically close a candidate is to the request position (§4.11).
func (s *Scope) Depth() int {
	depth := 0
	for cur := s.parent; cur != nil; cur = cur.parent {
		depth++
	}
	return depth
}

// Table is the per-document symbol table: the root scope plus the
// workspace-global contributions this document makes.
type Table struct {
	Root *Scope

	// Globals lists this document's contract declarations, contributed to
	// the workspace-wide name -> locations fallback map.
	Globals []Symbol

	// Inverted maps a definition location to every use-site location that
	// references it (§4.4's inverted index), keyed by the definition's
	// starting byte offset within this document.
	mu       sync.RWMutex
	inverted map[uint32][]Location
}

// NewTable constructs an empty table with a fresh root scope spanning the
// whole document.
func NewTable(documentEnd ir.Position) *Table {
	return &Table{
		Root:     NewScope(nil, ir.Position{}, documentEnd),
		inverted: make(map[uint32][]Location),
	}
}

// RecordUse appends useLoc to defByte's inverted-index entry.
func (t *Table) RecordUse(defByte uint32, useLoc Location) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inverted[defByte] = append(t.inverted[defByte], useLoc)
}

// UsesOf returns the recorded use sites for the declaration at defByte.
func (t *Table) UsesOf(defByte uint32) []Location {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := t.inverted[defByte]
	cp := make([]Location, len(out))
	copy(cp, out)
	return cp
}

// ResetUses discards every recorded use site. The cross-file linking pass
// calls this on every cached document before re-walking the workspace, so a
// call site removed by an edit doesn't linger as a stale use forever.
func (t *Table) ResetUses() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inverted = make(map[uint32][]Location)
}
