// Package patindex implements the canonical pattern-shape encoding and the
// path-addressed trie used for contract overload resolution (spec §4.5).
// The frozen contract is trie-restrict + depth-first leaf collection; the
// experimental unify/query-multi path the original prototyped alongside it
// is deliberately not reproduced here (see repository design notes).
package patindex

import (
	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// tag bytes for the canonical encoding, kept in the 0xE0-0xFF range so they
// never collide with a compound form's arity byte (0-127 children) or a
// literal's embedded text bytes (ASCII, < 0x80). This keeps the encoding
// prefix-free: a hole can never be confused with the start of a compound
// form, and a compound form's closing tag can never be confused with an
// arity count or atom payload.
const (
	tagHole    byte = 0xE0 // variable or wildcard
	tagLong    byte = 0xE1 // integer literal
	tagString  byte = 0xE2 // string literal
	tagBool    byte = 0xE3 // boolean literal
	tagURI     byte = 0xE4 // URI literal
	tagNil     byte = 0xE5
	tagListOpn byte = 0xF0
	tagListCls byte = 0xF1
	tagSetOpn  byte = 0xF2
	tagSetCls  byte = 0xF3
	tagMapOpn  byte = 0xF4
	tagMapCls  byte = 0xF5
	tagTupOpn  byte = 0xF6
	tagTupCls  byte = 0xF7
)

// EncodeShape serialises n's syntactic shape into the canonical, prefix-free
// byte-string encoding (§4.5). Returns (nil, false) if n contains a
// construct the encoder has no shape for, signalling the "encoding
// failure" degrade-to-unfiltered-resolver failure mode.
func EncodeShape(n ir.SemanticNode) ([]byte, bool) {
	var buf []byte
	if !encodeInto(&buf, n) {
		return nil, false
	}
	return buf, true
}

func encodeInto(buf *[]byte, n ir.SemanticNode) bool {
	if n == nil {
		*buf = append(*buf, tagHole)
		return true
	}

	gn, _ := n.(*ir.Node)

	switch n.Category() {
	case ir.CategoryVariable:
		*buf = append(*buf, tagHole)
		return true

	case ir.CategoryLiteral:
		return encodeLiteral(buf, gn)

	case ir.CategoryCollection:
		var openTag, closeTag byte
		switch n.TypeName() {
		case ir.KindCollectList:
			openTag, closeTag = tagListOpn, tagListCls
		case ir.KindCollectSet:
			openTag, closeTag = tagSetOpn, tagSetCls
		case ir.KindCollectMap:
			openTag, closeTag = tagMapOpn, tagMapCls
		case ir.KindCollectTuple:
			openTag, closeTag = tagTupOpn, tagTupCls
		default:
			return false
		}
		*buf = append(*buf, openTag, byte(n.ChildCount()))
		for i := 0; i < n.ChildCount(); i++ {
			if !encodeInto(buf, n.ChildAt(i)) {
				return false
			}
		}
		*buf = append(*buf, closeTag)
		return true

	case ir.CategoryBlock:
		if n.TypeName() == ir.KindQuote && n.ChildCount() == 1 {
			// A quoted process pattern (@pat) shares its inner shape
			// directly: quoting doesn't change the argument's match shape.
			return encodeInto(buf, n.ChildAt(0))
		}
		return false

	default:
		return false
	}
}

// literalValue appends tag followed by a one-byte length prefix and the
// value's raw bytes (truncated to 255 bytes — long literal payloads collapse
// to the same shape beyond that, which only widens overload matching rather
// than narrowing it). The length prefix, not a sentinel terminator, is what
// keeps embedded bytes in the payload from ever being misread as a boundary.
func literalValue(buf *[]byte, tag byte, value string) {
	v := []byte(value)
	if len(v) > 255 {
		v = v[:255]
	}
	*buf = append(*buf, tag, byte(len(v)))
	*buf = append(*buf, v...)
}

func encodeLiteral(buf *[]byte, gn *ir.Node) bool {
	if gn == nil {
		return false
	}
	switch gn.TypeName() {
	case ir.KindLongLiteral:
		literalValue(buf, tagLong, gn.Value)
		return true
	case ir.KindStringLit:
		literalValue(buf, tagString, gn.Value)
		return true
	case ir.KindBoolLiteral:
		literalValue(buf, tagBool, gn.Value)
		return true
	case ir.KindURILiteral:
		literalValue(buf, tagURI, gn.Value)
		return true
	case ir.KindNil:
		*buf = append(*buf, tagNil)
		return true
	default:
		return false
	}
}

// EncodeShapes encodes every element of nodes in order, failing the whole
// batch if any one element fails to encode (the batch represents a single
// call site's argument list, and a partial pattern is not a valid shape).
// No outer length prefix is needed: each element's encoding is already
// self-delimiting (a single tag byte for holes, a tag + length-prefixed
// payload for literals, matched open/close tags for compounds), so
// concatenating N shapes stays unambiguously decodable byte-for-byte.
func EncodeShapes(nodes []ir.SemanticNode) ([]byte, bool) {
	var buf []byte
	for _, n := range nodes {
		if !encodeInto(&buf, n) {
			return nil, false
		}
	}
	return buf, true
}
