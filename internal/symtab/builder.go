package symtab

import "github.com/F1R3FLY-io/rholang-language-server-sub004/internal/ir"

// Build walks doc.Root and constructs the scope tree per spec §4.4: each
// binding construct (contract formals, new, let, receive pattern) opens a
// child scope over its body and records its bound names there. The
// resulting scope is attached to the owning node's Metadata under
// SymbolTable so later passes (resolver, hover) can reach it without
// re-walking.
func Build(uri string, doc ir.DocumentIR) *Table {
	var rootEnd ir.Position
	if doc.Root != nil {
		rootEnd = ir.AbsoluteEnd(doc.Root, ir.Position{})
	}
	table := NewTable(rootEnd)

	if doc.Root == nil {
		return table
	}

	b := &builder{uri: uri, table: table}
	b.walk(doc.Root, ir.Position{}, table.Root)
	return table
}

type builder struct {
	uri   string
	table *Table
}

func (b *builder) walk(n ir.SemanticNode, start ir.Position, scope *Scope) {
	end := ir.AbsoluteEnd(n, start)
	gn, _ := n.(*ir.Node)

	childCount := n.ChildCount()
	childStarts := make([]ir.Position, childCount)
	prevEnd := start
	for i := 0; i < childCount; i++ {
		child := n.ChildAt(i)
		if child == nil {
			childStarts[i] = prevEnd
			continue
		}
		childStarts[i] = ir.AbsolutePosition(child, prevEnd)
		prevEnd = ir.AbsoluteEnd(child, childStarts[i])
	}

	childScope := scope
	if n.Category() == ir.CategoryBinding {
		childScope = NewScope(scope, start, end)
		n.Metadata().SymbolTable = childScope

		if gn != nil {
			// A contract's own declaration Location points at its name
			// token, not its whole span, so goto-definition and rename
			// land on the identifier a reader would actually click.
			nameLoc := Location{URI: b.uri, Start: start, End: end}
			if childCount > 0 {
				if nameChild, ok := n.ChildAt(0).(*ir.Node); ok && nameChild.Category() == ir.CategoryVariable {
					nameLoc = Location{
						URI:   b.uri,
						Start: childStarts[0],
						End:   ir.AbsoluteEnd(n.ChildAt(0), childStarts[0]),
					}
				}
			}
			if gn.TypeName() == ir.KindContract && gn.ChannelName != "" {
				b.table.Globals = append(b.table.Globals, Symbol{
					Name:     gn.ChannelName,
					Kind:     KindContract,
					Location: nameLoc,
				})
			}

			// Every child but the last is a binder (formals, the
			// contract's own name, new-declared names, receive patterns);
			// each bound variable's Location is its own occurrence inside
			// that binder, not the whole construct's span.
			if childCount > 1 {
				for i := 0; i < childCount-1; i++ {
					binder := n.ChildAt(i)
					if binder == nil {
						continue
					}
					for _, occ := range ir.CollectVariableOccurrences(binder, childStarts[i]) {
						kind := KindVariable
						if gn.TypeName() == ir.KindContract && occ.Name == gn.ChannelName {
							kind = KindContract
						}
						childScope.Define(&Symbol{
							Name: occ.Name,
							Kind: kind,
							Location: Location{
								URI:   b.uri,
								Start: occ.Start,
								End:   occ.End,
							},
						})
					}
				}
			}
		}
	} else {
		n.Metadata().SymbolTable = scope
	}

	for i := 0; i < childCount; i++ {
		child := n.ChildAt(i)
		if child == nil {
			continue
		}
		b.walk(child, childStarts[i], childScope)
	}
}
