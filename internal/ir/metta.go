package ir

// NewMettaNode constructs a *Node tagged LanguageMetta. The embedded IR
// uses the same Node type as the host (Rholang) IR — there is no separate
// MeTTa struct — per Design Notes §9's single tagged variant; this
// constructor only fixes the Language field and exists so embedded-region
// builders don't have to repeat NewNode's full parameter list inline.
func NewMettaNode(typeName string, category SemanticCategory, base NodeBase, children []SemanticNode) *Node {
	return NewNode(typeName, category, LanguageMetta, base, children)
}

// NewMettaSymbol constructs a leaf MeTTa symbol/variable node carrying text
// as its Value, per spec §4.10's minimal embedded IR (symbols and
// expressions, no evaluator).
func NewMettaSymbol(base NodeBase, text string) *Node {
	n := NewMettaNode(MettaKindSymbol, CategoryVariable, base, nil)
	n.Value = text
	return n
}

// NewMettaLiteral constructs a leaf MeTTa literal node carrying text as its
// Value.
func NewMettaLiteral(base NodeBase, text string) *Node {
	n := NewMettaNode(MettaKindLiteral, CategoryLiteral, base, nil)
	n.Value = text
	return n
}
