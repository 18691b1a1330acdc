package ir

import "regexp"

// CommentKind distinguishes line comments ("// ...") from block comments
// ("/* ... */").
type CommentKind int

const (
	CommentLine CommentKind = iota
	CommentBlock
)

// Comment is a single comment token. Comments live in a flat sequence
// parallel to the IR tree and are never IR nodes themselves.
type Comment struct {
	Kind  CommentKind
	Base  NodeBase
	Text  string
	IsDoc bool

	// endByte is the comment's absolute end byte offset, denormalized at
	// construction time from the parser's own report (the bridge always
	// has exact absolute positions available, so this avoids needing to
	// replay delta reconstruction just to answer "what precedes pos?").
	// Base remains the spec-mandated delta-encoded source of truth;
	// endByte is a derived cache of the same fact.
	endByte uint32

	// precedesDeclaration is true once the bridge has determined no
	// non-comment token lies between this comment and the following
	// declaration (i.e. it is part of a trailing contiguous run).
	precedesDeclaration bool

	// contiguousWithNext is true unless this is the last comment before a
	// non-comment token breaks the run.
	contiguousWithNext bool

	directiveParsed bool
	directive       string
	hasDirective    bool
}

// directiveRe matches `// @lang` / `// @language: lang` and the block
// equivalents. Group 1 is the language tag.
var directiveRe = regexp.MustCompile(`^\s*[/*]*\s*@(?:language:\s*)?(\w+)`)

// Directive extracts and caches the embedded-language tag this comment
// assigns to the following span, if any. The parse result is memoized on
// the comment record so repeated queries (e.g. from multiple detectors)
// don't re-run the regex.
func (c *Comment) Directive() (string, bool) {
	if !c.directiveParsed {
		c.directiveParsed = true
		if m := directiveRe.FindStringSubmatch(c.Text); m != nil {
			c.directive = m[1]
			c.hasDirective = true
		}
	}
	return c.directive, c.hasDirective
}

// EndByte returns the comment's absolute end byte offset.
func (c Comment) EndByte() uint32 { return c.endByte }

// PrecedesDeclaration reports whether the bridge determined this comment is
// part of a trailing contiguous run that ends immediately before a
// declaration (see CommentsBefore).
func (c Comment) PrecedesDeclaration() bool { return c.precedesDeclaration }

// ContiguousWithNext reports whether the following comment in document
// order continues this comment's run with no intervening non-comment token.
func (c Comment) ContiguousWithNext() bool { return c.contiguousWithNext }

// RestoreRunFlags re-establishes the run-membership bits the bridge
// computes during a full parse. Used only when reconstructing a Comment
// from a persisted snapshot, where recomputing them would require replaying
// the whole document's comment stream.
func (c *Comment) RestoreRunFlags(precedesDeclaration, contiguousWithNext bool) {
	c.precedesDeclaration = precedesDeclaration
	c.contiguousWithNext = contiguousWithNext
}

// IsDocComment reports whether text begins with `///` or `/**`.
func IsDocComment(kind CommentKind, text string) bool {
	switch kind {
	case CommentLine:
		return hasPrefixAfterTrim(text, "///")
	case CommentBlock:
		return hasPrefixAfterTrim(text, "/**")
	default:
		return false
	}
}

func hasPrefixAfterTrim(s, prefix string) bool {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	rest := s[i:]
	if len(rest) < len(prefix) {
		return false
	}
	return rest[:len(prefix)] == prefix
}

// NewComment constructs a Comment, computing IsDoc from its kind and text.
// absoluteEndByte is the comment's known absolute end byte offset.
func NewComment(kind CommentKind, base NodeBase, text string, absoluteEndByte uint32) Comment {
	return Comment{
		Kind:    kind,
		Base:    base,
		Text:    text,
		IsDoc:   IsDocComment(kind, text),
		endByte: absoluteEndByte,
	}
}
