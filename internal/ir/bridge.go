package ir

// DocumentIR is the parser-to-IR bridge's output: the immutable semantic
// tree plus the flat comment sequence extracted alongside it.
type DocumentIR struct {
	Root     SemanticNode
	Comments []Comment
}

// CommentsBefore returns the contiguous trailing run of comments that
// precede pos with no intervening non-comment token, i.e. the comments
// immediately above a declaration, in document order.
func (d DocumentIR) CommentsBefore(pos Position) []Comment {
	// Comments are appended in document order, so the run ending closest
	// to (and not after) pos is a suffix of some prefix of d.Comments.
	end := -1
	for i, c := range d.Comments {
		if c.EndByte() <= pos.Byte {
			end = i
		} else {
			break
		}
	}
	if end < 0 {
		return nil
	}
	if !d.Comments[end].precedesDeclaration {
		return nil
	}

	start := end
	for start > 0 && d.Comments[start-1].contiguousWithNext && d.Comments[start-1].precedesDeclaration {
		start--
	}
	run := make([]Comment, end-start+1)
	copy(run, d.Comments[start:end+1])
	return run
}

// DocCommentsBefore filters CommentsBefore to doc comments only.
func (d DocumentIR) DocCommentsBefore(pos Position) []Comment {
	all := d.CommentsBefore(pos)
	var docs []Comment
	for _, c := range all {
		if c.IsDoc {
			docs = append(docs, c)
		}
	}
	return docs
}

// bridgeState holds the mutable state threaded through a single
// BuildDocumentIR call.
type bridgeState struct {
	comments   []Comment
	commentEnd Position
	// runOpen is true while the comments appended since the last
	// non-comment token form a contiguous run that currently precedes
	// whatever declaration comes next.
	runOpen  bool
	runStart int
}

// BuildDocumentIR constructs a DocumentIR from a concrete parse tree. The
// parse tree's own grammar is an external collaborator (spec.md §1); this
// function only requires it to satisfy ParseNode. Parsing never fails the
// pipeline: malformed nodes become placeholder IR nodes carrying a
// diagnostic (§4.3 failure mode).
func BuildDocumentIR(root ParseNode, language SourceLanguage) DocumentIR {
	bs := &bridgeState{}
	prevEnd := Position{}
	rootIR := buildNode(root, language, &prevEnd, bs)
	// A run still open here has no declaration after it, so it stays
	// unmarked.
	return DocumentIR{Root: rootIR, Comments: bs.comments}
}

func ptPos(n ParseNode, start bool) Position {
	if start {
		return n.StartPoint()
	}
	return n.EndPoint()
}

// finalizeRun marks every comment collected since the last non-comment
// token as "precedes a declaration" (there is in fact a following
// declaration, since finalizeRun is only called once a following
// non-comment child has been identified, or at end-of-document when no
// declaration follows — in which case the run is left unmarked).
func finalizeRun(bs *bridgeState) {
	if !bs.runOpen {
		return
	}
	for i := bs.runStart; i < len(bs.comments); i++ {
		bs.comments[i].precedesDeclaration = true
		bs.comments[i].contiguousWithNext = i+1 < len(bs.comments)
	}
	bs.runOpen = false
	bs.runStart = len(bs.comments)
}

func buildNode(pn ParseNode, language SourceLanguage, prevEnd *Position, bs *bridgeState) SemanticNode {
	if pn == nil {
		return nil
	}

	absStart := ptPos(pn, true)
	absEnd := ptPos(pn, false)

	if pn.IsError() || pn.IsMissing() {
		base := MakeSimpleBase(absStart, absEnd, prevEnd)
		placeholder := NewNode("error", CategoryUnknown, language, base, nil)
		placeholder.meta.Diagnostic = &Diagnostic{
			Message:  "parse error",
			Severity: SeverityError,
			Start:    absStart,
			End:      absEnd,
		}
		return placeholder
	}

	// A single pass in source-child order: comments and named children must
	// stay interleaved so a trailing comment (one with no declaration after
	// it) is never mistaken for one that precedes a later declaration.
	n := pn.ChildCount()
	localPrevEnd := absStart
	children := make([]SemanticNode, 0, n)
	var lastNamedChild ParseNode
	for i := 0; i < n; i++ {
		c := pn.Child(i)
		if c == nil {
			continue
		}
		if c.Kind() == KindLineComment || c.Kind() == KindBlockComment {
			appendComment(c, bs)
			continue
		}
		if !c.IsNamed() {
			continue
		}
		finalizeRun(bs) // c is a non-comment token: close any pending comment run as "precedes this declaration"
		child := buildNode(c, language, &localPrevEnd, bs)
		children = append(children, child)
		lastNamedChild = c
	}

	var contentEnd *Position
	if lastNamedChild != nil {
		ce := ptPos(lastNamedChild, false)
		contentEnd = &ce
	}

	base := MakeBase(absStart, absEnd, prevEnd, contentEnd)
	category := categoryFor(pn.Kind(), language)
	node := NewNode(pn.Kind(), category, language, base, children)

	switch category {
	case CategoryLiteral, CategoryVariable:
		node.Value = pn.Text()
	}
	if IsBindingConstruct(pn.Kind()) && len(children) > 1 {
		// Convention: a binding construct's last child is its body; every
		// preceding child is a binder (formals, new-declared names, let
		// bindings, a receive pattern) whose variables become bound names.
		// The body is excluded so a variable merely *used* inside it is
		// never mistaken for one the construct itself binds.
		binders := children[:len(children)-1]
		for _, b := range binders {
			node.BoundNames = append(node.BoundNames, CollectVariableNames(b)...)
		}
	}
	// For an invocation, the first child is the target channel; for a
	// contract, the first child is the contract's own declared name (if the
	// grammar supplies one) — both read through ChannelName, since a
	// contract is invoked by the same identifier it declares.
	if (category == CategoryInvocation || pn.Kind() == KindContract) && len(children) > 0 {
		if gn, ok := children[0].(*Node); ok && gn.Category() == CategoryVariable {
			node.ChannelName = gn.Value
		}
	}

	return node
}

func appendComment(c ParseNode, bs *bridgeState) {
	base := MakeSimpleBase(ptPos(c, true), ptPos(c, false), &bs.commentEnd)
	kind := CommentLine
	if c.Kind() == KindBlockComment {
		kind = CommentBlock
	}
	comment := NewComment(kind, base, c.Text(), c.EndByte())
	if !bs.runOpen {
		bs.runOpen = true
		bs.runStart = len(bs.comments)
	}
	bs.comments = append(bs.comments, comment)
}
