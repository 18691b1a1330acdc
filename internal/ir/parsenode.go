package ir

// ParseNode is the contract a concrete parse tree (tree-sitter or any other
// parser) must satisfy for the parser-to-IR bridge (§4.3) to consume it. The
// concrete Rholang/MeTTa grammar is an external collaborator (spec.md §1) —
// this package never parses source text itself. The shape mirrors
// `github.com/alexaandru/go-tree-sitter-bare`'s Node: byte/point ranges plus
// indexed (not just named) child access, so a real tree-sitter-backed
// adapter is a thin wrapper (see internal/ir/sitteradapter).
type ParseNode interface {
	// Kind is the grammar's node-kind name (e.g. "contract", "send",
	// "new_decl"). The well-known kinds this bridge dispatches on are
	// listed as RholangKind/MettaKind constants below; a grammar targeting
	// this bridge must emit those names for the corresponding constructs.
	Kind() string

	IsNamed() bool
	IsError() bool
	IsMissing() bool

	StartByte() uint32
	EndByte() uint32
	StartPoint() Position
	EndPoint() Position

	ChildCount() int
	Child(i int) ParseNode

	// Text returns this node's source text. Implementations typically slice
	// the document's content buffer by [StartByte:EndByte).
	Text() string
}

// Well-known Rholang node kinds the bridge recognizes. A concrete grammar
// adapter must emit these names for the corresponding syntactic forms.
const (
	KindSource       = "source_file"
	KindContract     = "contract"
	KindNew          = "new_decl"
	KindLet          = "let_decl"
	KindFor          = "for_decl"
	KindSend         = "send"
	KindPar          = "par"
	KindMatch        = "match"
	KindMatchCase    = "match_case"
	KindIf           = "if_else"
	KindBlock        = "block"
	KindQuote        = "quote"
	KindEval         = "eval"
	KindVar          = "var"
	KindWildcard     = "wildcard"
	KindLongLiteral  = "long_literal"
	KindStringLit    = "string_literal"
	KindBoolLiteral  = "bool_literal"
	KindURILiteral   = "uri_literal"
	KindNil          = "nil"
	KindCollectList  = "collection_list"
	KindCollectSet   = "collection_set"
	KindCollectMap   = "collection_map"
	KindCollectTuple = "collection_tuple"
	KindFormals      = "formals"
	KindNameDecl     = "name_decl"
	KindBundle       = "bundle"
	KindLineComment  = "line_comment"
	KindBlockComment = "block_comment"
)

// Well-known MeTTa node kinds for the minimal embedded IR (§4.10); the MeTTa
// evaluator itself is out of scope (spec.md §1 Non-goals), so only the
// shapes needed for semantic tokens / symbol surfacing exist.
const (
	MettaKindSource  = "metta_source"
	MettaKindExpr    = "metta_expr"
	MettaKindSymbol  = "metta_symbol"
	MettaKindVar     = "metta_var"
	MettaKindLiteral = "metta_literal"
)
