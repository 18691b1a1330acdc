package ir

// Node is the concrete tagged semantic-node implementation shared by the
// host (Rholang) and embedded (MeTTa) IRs, per Design Notes §9's single
// tagged variant over {Host, Embedded(Lang)}. A single struct serves both,
// distinguished by the Language field; AsSource is therefore a type
// identity, and the real "downcast" callers perform is a switch over
// TypeName()/Category()/Language(), not a Go type assertion to a different
// struct.
type Node struct {
	base     NodeBase
	meta     Metadata
	category SemanticCategory
	typeName string
	language SourceLanguage
	children []SemanticNode

	// Value holds literal/variable/name text for leaf-like nodes.
	Value string

	// BoundNames holds the formal/pattern-bound variable names a Binding
	// node introduces (contract formals, `new`, `let`, `for` receive
	// patterns). Populated by the bridge via CollectVariableNames over the
	// binding construct's pattern subtree.
	BoundNames []string

	// ChannelName holds the channel/contract name for an Invocation node
	// (e.g. the `name` in `name!(args)`).
	ChannelName string
}

var _ SemanticNode = (*Node)(nil)

// NewNode constructs a Node. children may be nil.
func NewNode(typeName string, category SemanticCategory, language SourceLanguage, base NodeBase, children []SemanticNode) *Node {
	return &Node{
		base:     base,
		category: category,
		typeName: typeName,
		language: language,
		children: children,
	}
}

func (n *Node) Base() NodeBase             { return n.base }
func (n *Node) Metadata() *Metadata        { return &n.meta }
func (n *Node) Category() SemanticCategory { return n.category }
func (n *Node) TypeName() string           { return n.typeName }
func (n *Node) Language() SourceLanguage   { return n.language }
func (n *Node) ChildCount() int            { return len(n.children) }

func (n *Node) ChildAt(i int) SemanticNode {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) AsSource() SemanticNode { return n }

// Children returns the node's children as a slice. Callers must not mutate
// the returned slice; the IR is immutable once attached to a parent.
func (n *Node) Children() []SemanticNode {
	return n.children
}

// WithChildren returns a shallow copy of n with children replaced. Used by
// TransformingVisitor.Rebuild to implement structural sharing: unaffected
// fields (Value, BoundNames, ChannelName, metadata, base) are copied as-is.
func (n *Node) WithChildren(children []SemanticNode) *Node {
	cp := *n
	cp.children = children
	return &cp
}

// RebuildNode is the generic Rebuild callback for TransformingVisitor, valid
// whenever the original node is a *Node (true for every node this bridge
// produces).
func RebuildNode(original SemanticNode, newChildren []SemanticNode) SemanticNode {
	src, ok := original.(*Node)
	if !ok {
		return original
	}
	return src.WithChildren(newChildren)
}

// CollectVariableNames walks n and returns the text of every
// CategoryVariable descendant (including n itself), in document order. Used
// to bind every variable appearing inside a complex pattern (maps, lists,
// tuples, nested quotes) with the same visibility as a simple parameter,
// per spec §4.4.
func CollectVariableNames(n SemanticNode) []string {
	var names []string
	var walk func(SemanticNode)
	walk = func(cur SemanticNode) {
		if cur == nil {
			return
		}
		if cur.Category() == CategoryVariable {
			if gn, ok := cur.(*Node); ok && gn.Value != "" && gn.TypeName() != KindWildcard {
				names = append(names, gn.Value)
			}
		}
		for i := 0; i < cur.ChildCount(); i++ {
			walk(cur.ChildAt(i))
		}
	}
	walk(n)
	return names
}

// VariableOccurrence pairs a bound variable's name with its own precise
// span, as opposed to CollectVariableNames's bare text.
type VariableOccurrence struct {
	Name  string
	Start Position
	End   Position
}

// CollectVariableOccurrences walks n (whose own absolute start is start)
// and returns every CategoryVariable descendant's name together with its
// precise span, in document order. Generalizes CollectVariableNames with
// position tracking: a caller that must point at the exact bound-name token
// (e.g. symtab recording a precise declaration Location for rename) needs
// this; one that only needs the set of names bound (the bridge's
// BoundNames) doesn't.
func CollectVariableOccurrences(n SemanticNode, start Position) []VariableOccurrence {
	var out []VariableOccurrence
	var walk func(SemanticNode, Position)
	walk = func(cur SemanticNode, curStart Position) {
		if cur == nil {
			return
		}
		curEnd := AbsoluteEnd(cur, curStart)
		if cur.Category() == CategoryVariable {
			if gn, ok := cur.(*Node); ok && gn.Value != "" && gn.TypeName() != KindWildcard {
				out = append(out, VariableOccurrence{Name: gn.Value, Start: curStart, End: curEnd})
			}
		}
		childPrevEnd := curStart
		for i := 0; i < cur.ChildCount(); i++ {
			child := cur.ChildAt(i)
			if child == nil {
				continue
			}
			childStart := AbsolutePosition(child, childPrevEnd)
			walk(child, childStart)
			childPrevEnd = AbsoluteEnd(child, childStart)
		}
	}
	walk(n, start)
	return out
}

// categoryFor maps a ParseNode's grammar-reported Kind to the closed
// SemanticCategory set (spec §3). Rholang kinds this bridge does not
// recognize map to CategoryUnknown. MeTTa kinds other than literals,
// variables and symbols map to CategoryLanguageSpecific so downstream
// consumers can still classify them coarsely without understanding the
// embedded grammar.
func categoryFor(kind string, language SourceLanguage) SemanticCategory {
	if language == LanguageMetta {
		switch kind {
		case MettaKindLiteral:
			return CategoryLiteral
		case MettaKindVar, MettaKindSymbol:
			return CategoryVariable
		default:
			return CategoryLanguageSpecific
		}
	}

	switch kind {
	case KindLongLiteral, KindStringLit, KindBoolLiteral, KindURILiteral, KindNil:
		return CategoryLiteral
	case KindVar, KindWildcard, KindNameDecl:
		return CategoryVariable
	case KindContract, KindNew, KindLet, KindFor, KindFormals, KindBundle:
		return CategoryBinding
	case KindSend, KindEval:
		return CategoryInvocation
	case KindMatch, KindMatchCase:
		return CategoryMatch
	case KindCollectList, KindCollectSet, KindCollectMap, KindCollectTuple:
		return CategoryCollection
	case KindIf:
		return CategoryConditional
	case KindBlock, KindPar, KindQuote, KindSource:
		return CategoryBlock
	default:
		return CategoryUnknown
	}
}

// IsBindingConstruct reports whether kind introduces a new lexical scope
// per spec §4.4 (contract formals, new declarations, let bindings, receive
// patterns).
func IsBindingConstruct(kind string) bool {
	switch kind {
	case KindContract, KindNew, KindLet, KindFor:
		return true
	default:
		return false
	}
}
