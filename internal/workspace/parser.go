package workspace

import "github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"

// Parser turns a document's text into a concrete parse tree. The concrete
// Rholang/MeTTa grammar is declared out of scope (spec.md §1); a real
// implementation wires a tree-sitter grammar through
// internal/ir/sitteradapter. Parser is the seam that lets this workspace
// build and test everything downstream of the parse tree without one.
type Parser interface {
	Parse(text string, language ir.SourceLanguage) (ir.ParseNode, error)
}

// PlaceholderParser treats an entire document as a single unparsed span,
// producing one ParseError placeholder node (per §4.3's "parsing never
// fails the pipeline" contract) covering the whole file. It is the
// default Parser until a real grammar is registered, and keeps every
// downstream component (symbol table, pattern index, cache) exercised
// end-to-end even with no grammar available.
type PlaceholderParser struct{}

func (PlaceholderParser) Parse(text string, _ ir.SourceLanguage) (ir.ParseNode, error) {
	return wholeDocumentNode{text: text}, nil
}

type wholeDocumentNode struct{ text string }

func (n wholeDocumentNode) Kind() string    { return "ERROR" }
func (n wholeDocumentNode) IsNamed() bool   { return true }
func (n wholeDocumentNode) IsError() bool   { return true }
func (n wholeDocumentNode) IsMissing() bool { return false }

func (n wholeDocumentNode) StartByte() uint32 { return 0 }
func (n wholeDocumentNode) EndByte() uint32   { return uint32(len(n.text)) }

func (n wholeDocumentNode) StartPoint() ir.Position { return ir.Position{} }

func (n wholeDocumentNode) EndPoint() ir.Position {
	var row, col uint32
	for _, b := range []byte(n.text) {
		if b == '\n' {
			row++
			col = 0
			continue
		}
		col++
	}
	return ir.Position{Row: row, Column: col, Byte: uint32(len(n.text))}
}

func (n wholeDocumentNode) ChildCount() int        { return 0 }
func (n wholeDocumentNode) Child(int) ir.ParseNode { return nil }
func (n wholeDocumentNode) Text() string           { return n.text }

var _ ir.ParseNode = wholeDocumentNode{}
