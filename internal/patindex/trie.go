package patindex

import "sync"

// Location is a symbol location recorded in the index, intentionally
// decoupled from internal/symtab.Location so this package has no import
// dependency on the symbol table.
type Location struct {
	URI  string
	Byte uint32
	Line uint32
	Col  uint32
}

type trieNode struct {
	children map[byte]*trieNode
	leaves   []Location
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[byte]*trieNode)}
}

func (n *trieNode) childFor(b byte, create bool) *trieNode {
	if c, ok := n.children[b]; ok {
		return c
	}
	if !create {
		return nil
	}
	c := newTrieNode()
	n.children[b] = c
	return c
}

// Index is the path-addressed trie mapping contract name -> formals shape
// -> declaration locations. Each contract name roots its own subtrie so
// Restrict is O(1) and a contract's query never scans the rest of the
// workspace.
type Index struct {
	mu       sync.RWMutex
	byName   map[string]*trieNode
	allCache map[string][]Location // memoized QueryAllContracts per name
}

// NewIndex constructs an empty pattern index.
func NewIndex() *Index {
	return &Index{
		byName:   make(map[string]*trieNode),
		allCache: make(map[string][]Location),
	}
}

// Insert records a contract declaration's formals shape under name.
func (idx *Index) Insert(name string, formalsShape []byte, loc Location) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	root, ok := idx.byName[name]
	if !ok {
		root = newTrieNode()
		idx.byName[name] = root
	}
	cur := root
	for _, b := range formalsShape {
		cur = cur.childFor(b, true)
	}
	cur.leaves = append(cur.leaves, loc)
	delete(idx.allCache, name)
}

// Restrict returns a handle to the subtrie rooted at name, or (nil, false)
// if no contract by that name has been indexed. The lookup is a single map
// access, independent of workspace size.
func (idx *Index) Restrict(name string) (*Subtrie, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	root, ok := idx.byName[name]
	if !ok {
		return nil, false
	}
	return &Subtrie{root: root}, true
}

// InvalidateContractIndex drops name's cached QueryAllContracts result (and,
// if name is empty, every cached result). Called on any mutating operation
// and by the explicit invalidation signal the spec requires.
func (idx *Index) InvalidateContractIndex(name string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if name == "" {
		idx.allCache = make(map[string][]Location)
		return
	}
	delete(idx.allCache, name)
}

// QueryAllContracts performs a depth-first traversal of name's restricted
// subtrie and collects every leaf, memoizing the result until the next
// mutation of that name's subtrie.
func (idx *Index) QueryAllContracts(name string) []Location {
	idx.mu.RLock()
	if cached, ok := idx.allCache[name]; ok {
		idx.mu.RUnlock()
		return cached
	}
	root, ok := idx.byName[name]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}

	var out []Location
	collectLeaves(root, &out)

	idx.mu.Lock()
	idx.allCache[name] = out
	idx.mu.Unlock()

	return out
}

// QueryByPattern descends name's subtrie matching argsShape, where a hole
// byte on either side unifies with anything on the other, and returns every
// leaf reachable under a matching path.
func (idx *Index) QueryByPattern(name string, argsShape []byte) []Location {
	idx.mu.RLock()
	root, ok := idx.byName[name]
	idx.mu.RUnlock()
	if !ok {
		return nil
	}

	var out []Location
	queryDescend(root, argsShape, 0, &out)
	return out
}

// queryDescend walks pattern against n's subtrie one element at a time. A
// hole is always exactly one byte on whichever side holds it, but the
// element it unifies against on the other side can span many bytes (a
// literal's tag+length+payload, or a compound's open-tag+arity+children+
// close-tag), so the two sides advance by different amounts whenever a hole
// is involved: elementLen/descendElement compute how far the concrete side
// needs to skip, keeping the query byte position and the trie depth from
// drifting out of alignment.
func queryDescend(n *trieNode, pattern []byte, i int, out *[]Location) {
	if n == nil {
		return
	}
	if i >= len(pattern) {
		collectLeaves(n, out)
		return
	}

	b := pattern[i]
	if b == tagHole {
		// A hole in the query unifies with whatever single stored element
		// occupies this position, however many bytes that element's own
		// encoding spans; the hole itself always advances the query by
		// exactly one element.
		for _, c := range descendElement(n) {
			queryDescend(c, pattern, i+1, out)
		}
		return
	}

	next := i + elementLen(pattern, i)

	// The query's own concrete element unifies with a stored hole edge too
	// (the stored pattern side may itself hold a hole at this position); the
	// hole edge is always exactly one trie byte, so the trie advances by one
	// while the query advances past its whole element.
	if c := n.childFor(tagHole, false); c != nil {
		queryDescend(c, pattern, next, out)
	}

	// Walk the query's own element byte-for-byte against a matching
	// concrete stored edge; both sides advance in lockstep here, so no
	// element-length accounting is needed.
	if c := n.childFor(b, false); c != nil {
		queryDescend(c, pattern, i+1, out)
	}
}

// elementLen returns the byte length of the single self-delimiting shape
// element starting at data[i], mirroring shape.go's encodeInto: a hole or
// nil is one byte, a literal is tag+length-prefix+payload, and a compound
// is open-tag+arity+that many recursively measured elements+close-tag.
func elementLen(data []byte, i int) int {
	if i >= len(data) {
		return 0
	}
	switch data[i] {
	case tagHole, tagNil:
		return 1
	case tagLong, tagString, tagBool, tagURI:
		if i+1 >= len(data) {
			return len(data) - i
		}
		return 2 + int(data[i+1])
	case tagListOpn, tagSetOpn, tagMapOpn, tagTupOpn:
		if i+1 >= len(data) {
			return len(data) - i
		}
		arity := int(data[i+1])
		j := i + 2
		for k := 0; k < arity; k++ {
			j += elementLen(data, j)
		}
		return j - i + 1 // + the close tag
	default:
		return 1
	}
}

// closingTagFor returns openTag's matching close tag, as assigned in
// shape.go's encodeInto.
func closingTagFor(openTag byte) byte {
	switch openTag {
	case tagListOpn:
		return tagListCls
	case tagSetOpn:
		return tagSetCls
	case tagMapOpn:
		return tagMapCls
	case tagTupOpn:
		return tagTupCls
	default:
		return 0
	}
}

// descendElement walks exactly one self-delimiting shape element down from
// n, along every stored branch, and returns the nodes reached at the far
// end. It mirrors elementLen's grammar but operates on trie edges instead
// of a flat byte slice, since the trie stores a shape element across
// however many chained single-byte edges that element's encoding needs.
func descendElement(n *trieNode) []*trieNode {
	var out []*trieNode
	for tag, c := range n.children {
		switch tag {
		case tagHole, tagNil:
			out = append(out, c)
		case tagLong, tagString, tagBool, tagURI:
			for lenByte, lenNode := range c.children {
				out = append(out, descendBytes(lenNode, int(lenByte))...)
			}
		case tagListOpn, tagSetOpn, tagMapOpn, tagTupOpn:
			closeTag := closingTagFor(tag)
			for arityByte, arityNode := range c.children {
				for _, tail := range descendElements(arityNode, int(arityByte)) {
					if closeNode := tail.childFor(closeTag, false); closeNode != nil {
						out = append(out, closeNode)
					}
				}
			}
		}
	}
	return out
}

// descendElements consumes count self-delimiting elements in sequence from
// n, returning the nodes reached after all of them.
func descendElements(n *trieNode, count int) []*trieNode {
	nodes := []*trieNode{n}
	for k := 0; k < count; k++ {
		var next []*trieNode
		for _, nd := range nodes {
			next = append(next, descendElement(nd)...)
		}
		nodes = next
	}
	return nodes
}

// descendBytes descends exactly count arbitrary single-byte edges from n,
// along every stored branch, returning the nodes reached. Used to skip a
// literal's payload, whose bytes vary by value and so can branch at every
// position.
func descendBytes(n *trieNode, count int) []*trieNode {
	if count <= 0 {
		return []*trieNode{n}
	}
	var out []*trieNode
	for _, c := range n.children {
		out = append(out, descendBytes(c, count-1)...)
	}
	return out
}

func collectLeaves(n *trieNode, out *[]Location) {
	if n == nil {
		return
	}
	*out = append(*out, n.leaves...)
	for _, c := range n.children {
		collectLeaves(c, out)
	}
}

// Subtrie is a handle to the subtree under a single contract name, returned
// by Index.Restrict.
type Subtrie struct {
	root *trieNode
}

// QueryAllContracts performs a depth-first leaf collection over this
// subtrie directly, bypassing the Index-level memoization cache (used when
// a caller already holds a Subtrie handle and wants an uncached read).
func (s *Subtrie) QueryAllContracts() []Location {
	var out []Location
	collectLeaves(s.root, &out)
	return out
}
