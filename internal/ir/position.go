// Package ir implements the persistent, delta-encoded semantic tree shared by
// every analysis in the workspace engine.
package ir

// Position is an absolute zero-based (row, column, byte) coordinate.
type Position struct {
	Row    uint32
	Column uint32
	Byte   uint32
}

// RelativePosition is the delta from a node's start to the previous
// sibling's end. Column is line-relative (absolute) when Row > 0, otherwise
// a signed delta from the previous sibling's column.
type RelativePosition struct {
	DeltaRow    int32
	DeltaColumn int32
	DeltaByte   uint32
}

// NodeBase is embedded in every semantic node and carries the information
// needed to reconstruct absolute positions and to distinguish a node's
// semantic extent from its full syntactic extent.
type NodeBase struct {
	RelativeStart RelativePosition

	// ContentLength is the byte extent from the node's start through the end
	// of its last semantic child.
	ContentLength uint32

	// SyntacticLength is the byte extent from the node's start through its
	// final closing delimiter (equal to ContentLength when there is none).
	SyntacticLength uint32

	SpanLines   uint32
	SpanColumns uint32
}

// MakeBase computes a NodeBase from absolute positions, mutating prevEnd to
// absoluteEnd so the next sibling can compute its own delta. When
// contentEnd is nil, ContentLength equals SyntacticLength.
func MakeBase(absoluteStart, absoluteEnd Position, prevEnd *Position, contentEnd *Position) NodeBase {
	ce := absoluteEnd
	if contentEnd != nil {
		ce = *contentEnd
	}

	deltaByte := satSubU32(absoluteStart.Byte, prevEnd.Byte)
	deltaRow := int32(absoluteStart.Row) - int32(prevEnd.Row)
	var deltaColumn int32
	if deltaRow == 0 {
		deltaColumn = int32(absoluteStart.Column) - int32(prevEnd.Column)
	} else {
		deltaColumn = int32(absoluteStart.Column)
	}

	contentLength := satSubU32(ce.Byte, absoluteStart.Byte)
	syntacticLength := satSubU32(absoluteEnd.Byte, absoluteStart.Byte)

	spanLines := satSubU32(absoluteEnd.Row, absoluteStart.Row)
	var spanColumns uint32
	if spanLines > 0 {
		spanColumns = absoluteEnd.Column
	} else {
		spanColumns = satSubU32(absoluteEnd.Column, absoluteStart.Column)
	}

	*prevEnd = absoluteEnd

	return NodeBase{
		RelativeStart: RelativePosition{
			DeltaRow:    deltaRow,
			DeltaColumn: deltaColumn,
			DeltaByte:   deltaByte,
		},
		ContentLength:   contentLength,
		SyntacticLength: syntacticLength,
		SpanLines:       spanLines,
		SpanColumns:     spanColumns,
	}
}

// MakeSimpleBase is a convenience wrapper for nodes without a closing
// delimiter: ContentLength always equals SyntacticLength.
func MakeSimpleBase(absoluteStart, absoluteEnd Position, prevEnd *Position) NodeBase {
	return MakeBase(absoluteStart, absoluteEnd, prevEnd, nil)
}

// AbsoluteStart reconstructs this node's absolute start position given the
// absolute end position of the preceding sibling (or the parent's content
// start, for a first child).
func (b NodeBase) AbsoluteStart(prevEnd Position) Position {
	row := uint32(int64(prevEnd.Row) + int64(b.RelativeStart.DeltaRow))
	var column uint32
	if b.RelativeStart.DeltaRow == 0 {
		column = uint32(int64(prevEnd.Column) + int64(b.RelativeStart.DeltaColumn))
	} else {
		column = uint32(b.RelativeStart.DeltaColumn)
	}
	return Position{
		Row:    row,
		Column: column,
		Byte:   prevEnd.Byte + b.RelativeStart.DeltaByte,
	}
}

// AbsoluteEnd returns the node's full syntactic end given its own absolute
// start (as reconstructed by AbsoluteStart).
func (b NodeBase) AbsoluteEnd(start Position) Position {
	byteEnd := start.Byte + b.SyntacticLength
	if b.SpanLines == 0 {
		return Position{Row: start.Row, Column: start.Column + b.SpanColumns, Byte: byteEnd}
	}
	return Position{Row: start.Row + b.SpanLines, Column: b.SpanColumns, Byte: byteEnd}
}

// ContentEnd returns the end of the node's semantic content (excluding any
// trailing closing delimiter), used for "contains position" tests that must
// ignore trailing delimiter whitespace.
func (b NodeBase) ContentEnd(start Position) Position {
	if b.ContentLength == b.SyntacticLength {
		return b.AbsoluteEnd(start)
	}
	return Position{Row: start.Row, Column: start.Column, Byte: start.Byte + b.ContentLength}
}

func satSubU32(a, b uint32) uint32 {
	if a < b {
		return 0
	}
	return a - b
}
