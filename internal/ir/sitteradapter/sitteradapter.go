// Package sitteradapter wraps github.com/alexaandru/go-tree-sitter-bare's
// sitter.Node so a real tree-sitter parse satisfies internal/ir's ParseNode
// contract. The concrete Rholang/MeTTa grammar itself is out of scope
// (spec.md §1, SPEC_FULL.md Non-goals); this adapter only shows the shape a
// grammar-backed tree must present once one exists, mirroring the teacher's
// own thin wrapping of sitter.Node in internal/php/node_utils.go.
package sitteradapter

import (
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"
)

// Node adapts a sitter.Node plus the document bytes it was parsed from to
// ir.ParseNode.
type Node struct {
	n       sitter.Node
	content []byte
}

// Wrap adapts root, the tree's root node, for content.
func Wrap(root sitter.Node, content []byte) ir.ParseNode {
	if root.IsNull() {
		return nil
	}
	return Node{n: root, content: content}
}

func (n Node) Kind() string { return n.n.Type() }

func (n Node) IsNamed() bool { return n.n.IsNamed() }

// IsError reports a tree-sitter grammar's generic error-node convention
// ("ERROR" node type), true across every tree-sitter binding regardless of
// the wrapper's own method surface.
func (n Node) IsError() bool { return n.n.Type() == "ERROR" }

func (n Node) IsMissing() bool { return n.n.IsMissing() }

func (n Node) StartByte() uint32 { return uint32(n.n.StartByte()) }
func (n Node) EndByte() uint32   { return uint32(n.n.EndByte()) }

func (n Node) StartPoint() ir.Position { return pointToPosition(n.n.StartPoint(), n.StartByte()) }
func (n Node) EndPoint() ir.Position   { return pointToPosition(n.n.EndPoint(), n.EndByte()) }

func pointToPosition(p sitter.Point, byteOffset uint32) ir.Position {
	return ir.Position{Row: uint32(p.Row), Column: uint32(p.Column), Byte: byteOffset}
}

func (n Node) ChildCount() int { return int(n.n.ChildCount()) }

func (n Node) Child(i int) ir.ParseNode {
	c := n.n.Child(uint32(i))
	if c.IsNull() {
		return nil
	}
	return Node{n: c, content: n.content}
}

func (n Node) Text() string { return n.n.Content(n.content) }
